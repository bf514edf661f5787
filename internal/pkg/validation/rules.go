// Package validation holds the field rules shared by request binding and services.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/nyaruka/phonenumbers"
)

// Validation rule patterns
var (
	// Usernames are 3-50 characters of letters, digits, dot, dash or underscore.
	UsernamePattern = `^[A-Za-z0-9_.\-]{3,50}$`

	// Student IDs are short alphanumeric registration numbers, e.g. S001 or 21BCE1234.
	StudentIDPattern = `^[A-Za-z0-9\-]{2,30}$`

	PasswordMinLength = 6
	PasswordMaxLength = 72 // bcrypt ignores anything longer

	// DefaultPhoneRegion is used for numbers written without a country code.
	DefaultPhoneRegion = "IN"
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Username  *regexp.Regexp
	StudentID *regexp.Regexp
}{
	Username:  regexp.MustCompile(UsernamePattern),
	StudentID: regexp.MustCompile(StudentIDPattern),
}

// IsValidUsername reports whether s is an acceptable username.
func IsValidUsername(s string) bool {
	return CompiledPatterns.Username.MatchString(s)
}

// IsValidStudentID reports whether s is an acceptable student registration number.
func IsValidStudentID(s string) bool {
	return CompiledPatterns.StudentID.MatchString(s)
}

// NormalizePhone parses raw and returns it in E.164 form.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperrors.ErrInvalidPhone
	}

	num, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidPhone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", apperrors.ErrInvalidPhone
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func validateUsername(fl validator.FieldLevel) bool {
	return IsValidUsername(fl.Field().String())
}

func validateStudentID(fl validator.FieldLevel) bool {
	return IsValidStudentID(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	_, err := NormalizePhone(fl.Field().String())
	return err == nil
}

// jsonFieldName makes validation errors report the JSON key instead of the Go field.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// RegisterValidators installs the custom tags (username, studentid, phone)
// and JSON field naming.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)

	rules := map[string]validator.Func{
		"username":  validateUsername,
		"studentid": validateStudentID,
		"phone":     validatePhone,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q validator: %w", tag, err)
		}
	}
	return nil
}

// RegisterGinValidators installs the custom tags on gin's binding engine.
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return RegisterValidators(v)
}
