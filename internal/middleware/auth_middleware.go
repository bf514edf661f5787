package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/auth"
	"github.com/lakshya/placement-portal/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// Context keys set by JWTAuth
const (
	principalKey = "principal"
	claimsKey    = "claims"
)

// Gate reject reasons, used as metric labels
const (
	rejectMissing = "missing"
	rejectInvalid = "invalid"
	rejectExpired = "expired"
	rejectRevoked = "revoked"
	rejectRole    = "role"
)

// AuthMiddleware authenticates bearer tokens and enforces roles.
// It never queries the database: the token carries everything it needs.
type AuthMiddleware struct {
	jwtService  *auth.JWTService
	revocations auth.RevocationList
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. revocations may be nil.
func NewAuthMiddleware(jwtService *auth.JWTService, revocations auth.RevocationList, m *metrics.Metrics, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		revocations: revocations,
		metrics:     m,
		logger:      logger,
	}
}

// JWTAuth validates the Authorization header.
// Missing credentials answer 401; an invalid, expired or revoked token answers 403.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if errors.Is(err, apperrors.ErrTokenMissing) {
			m.reject(c, http.StatusUnauthorized, rejectMissing,
				dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Authentication required").
					WithDetails("Authorization header missing"))
			return
		}
		if err != nil {
			m.reject(c, http.StatusForbidden, rejectInvalid,
				dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token").
					WithDetails("Invalid token format"))
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				m.reject(c, http.StatusForbidden, rejectExpired,
					dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token has expired"))
				return
			}
			m.reject(c, http.StatusForbidden, rejectInvalid,
				dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token"))
			return
		}

		if m.revocations != nil && claims.ID != "" {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail open: the signature and expiry already checked out.
				m.logger.Warn().Err(err).Str("jti", claims.ID).Msg("Revocation lookup failed")
			} else if revoked {
				m.reject(c, http.StatusForbidden, rejectRevoked,
					dto.NewErrorDetail(dto.ErrorCodeTokenRevoked, "Token has been revoked"))
				return
			}
		}

		c.Set(claimsKey, claims)
		c.Set(principalKey, claims.Principal())

		c.Next()
	}
}

// RoleRequired allows the request through only when the principal holds one of roles.
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			m.reject(c, http.StatusUnauthorized, rejectMissing,
				dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required"))
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		m.reject(c, http.StatusForbidden, rejectRole,
			dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation"))
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, status int, reason string, detail *dto.ErrorDetail) {
	m.metrics.ObserveGateReject(reason)
	m.logger.Debug().
		Str("reason", reason).
		Str("path", c.FullPath()).
		Int("status", status).
		Msg("Request rejected by auth gate")
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// GetPrincipal returns the authenticated caller stored by JWTAuth.
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}

// GetClaims returns the validated token claims stored by JWTAuth.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}
