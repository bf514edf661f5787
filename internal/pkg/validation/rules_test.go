package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidUsername(t *testing.T) {
	for _, ok := range []string{"stu1", "coordinator_cs", "a.b-c"} {
		assert.True(t, IsValidUsername(ok), ok)
	}
	for _, bad := range []string{"", "ab", "has space", "semi;colon"} {
		assert.False(t, IsValidUsername(bad), bad)
	}
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("98765 43210")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", got)

	got, err = NormalizePhone("+1 650-253-0000")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	_, err = NormalizePhone("12345")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPhone)

	_, err = NormalizePhone("")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPhone)
}

func TestRegisterValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	type form struct {
		Username  string `validate:"required,username"`
		StudentID string `validate:"omitempty,studentid"`
		Phone     string `validate:"omitempty,phone"`
	}

	assert.NoError(t, v.Struct(form{Username: "stu1", StudentID: "S001", Phone: "+919876543210"}))
	assert.NoError(t, v.Struct(form{Username: "stu1"}))

	err := v.Struct(form{Username: "x", Phone: "not-a-phone"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	tags := map[string]string{}
	for _, fe := range verrs {
		tags[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, "username", tags["Username"])
	assert.Equal(t, "phone", tags["Phone"])
}

func TestRegisterValidators_JSONNames(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	type req struct {
		FullName string `json:"full_name" validate:"required"`
	}

	var verrs validator.ValidationErrors
	require.ErrorAs(t, v.Struct(req{}), &verrs)
	assert.Equal(t, "full_name", verrs[0].Field())
}
