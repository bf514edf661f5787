package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/logger"
)

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("requestId", GetRequestID(c)).
			Msg("Unhandled error")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, withField(err,
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message(err, "Validation failed")))
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest,
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, message(err, "Bad request"))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized,
			dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, message(err, "Invalid credentials"))
	case errors.Is(err, apperrors.ErrTokenMissing):
		return http.StatusUnauthorized,
			dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Authentication required")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusForbidden,
			dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token has expired")
	case errors.Is(err, apperrors.ErrTokenRevoked):
		return http.StatusForbidden,
			dto.NewErrorDetail(dto.ErrorCodeTokenRevoked, "Token has been revoked")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusForbidden,
			dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden,
			dto.NewErrorDetail(dto.ErrorCodeForbidden, message(err, "Permission denied"))
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound,
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message(err, "Resource not found"))
	case apperrors.Is(err, apperrors.ErrInvalidTransition, apperrors.ErrUpdateLocked):
		return http.StatusConflict,
			dto.NewErrorDetail(dto.ErrorCodeConflict, message(err, "Conflict"))
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, withField(err,
			dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message(err, "Resource already exists")))
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests,
			dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests, please try again later")
	default:
		return http.StatusInternalServerError,
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// message prefers the CustomError text, then the sentinel chain, then fallback.
// Only called for client errors, whose sentinel texts are safe to show.
func message(err error, fallback string) string {
	if msg := apperrors.PublicMessage(err); msg != "" {
		return msg
	}
	if msg := leafMessage(err); msg != "" {
		return msg
	}
	return fallback
}

// leafMessage returns the text of the first sentinel in the chain that is
// itself a wrapped category, e.g. "email already exists".
func leafMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if isSentinel(e) {
			return capitalize(sentinelText(e))
		}
	}
	return ""
}

var sentinels = []error{
	apperrors.ErrAccountNotFound,
	apperrors.ErrProfileNotFound,
	apperrors.ErrUsernameTaken,
	apperrors.ErrEmailTaken,
	apperrors.ErrIdentityTaken,
	apperrors.ErrStudentIDTaken,
	apperrors.ErrInvalidRole,
	apperrors.ErrMissingRoleData,
	apperrors.ErrInvalidPhone,
	apperrors.ErrInvalidUpload,
	apperrors.ErrCoordinatorNotFound,
	apperrors.ErrCompanyUpdateNotFound,
	apperrors.ErrInvalidStatus,
	apperrors.ErrStatusNotAllowed,
	apperrors.ErrInvalidTransition,
	apperrors.ErrUpdateLocked,
	apperrors.ErrStudentNotFound,
}

func isSentinel(err error) bool {
	for _, s := range sentinels {
		if err == s {
			return true
		}
	}
	return false
}

// sentinelText strips the ": <category>" suffix added when wrapping.
func sentinelText(err error) string {
	text := err.Error()
	if inner := errors.Unwrap(err); inner != nil {
		text = strings.TrimSuffix(text, ": "+inner.Error())
	}
	return text
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func withField(err error, detail *dto.ErrorDetail) *dto.ErrorDetail {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		if field, ok := custom.Details["field"].(string); ok {
			detail.WithField(field)
		}
	}
	return detail
}
