package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
)

// DefaultTokenTTL is the session lifetime when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey string
	TokenTTL  time.Duration
	Issuer    string
}

// JWTService signs and verifies session tokens
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// Option customises a JWTService.
type Option func(*JWTService)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig, opts ...Option) *JWTService {
	if config.TokenTTL <= 0 {
		config.TokenTTL = DefaultTokenTTL
	}
	s := &JWTService{
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Claims defines JWT token content
type Claims struct {
	AccountID  int64  `json:"userId"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the request identity.
func (c *Claims) Principal() models.Principal {
	return models.Principal{
		AccountID:  c.AccountID,
		Username:   c.Username,
		Role:       models.Role(c.Role),
		Department: c.Department,
	}
}

// IssuedToken is a signed token and its metadata
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
	ExpiresIn int64
}

// TokenTTL returns the configured session lifetime.
func (s *JWTService) TokenTTL() time.Duration {
	return s.config.TokenTTL
}

// Now returns the service clock reading.
func (s *JWTService) Now() time.Time {
	return s.now()
}

// GenerateToken issues a signed token for the account.
func (s *JWTService) GenerateToken(account *models.Account) (*IssuedToken, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.config.TokenTTL)
	jti := uuid.New().String()

	claims := &Claims{
		AccountID:  account.ID,
		Username:   account.Username,
		Role:       string(account.Role),
		Department: account.DepartmentName(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(account.ID, 10),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssuedToken{
		Token:     signed,
		ID:        jti,
		ExpiresAt: expiresAt,
		ExpiresIn: int64(s.config.TokenTTL.Seconds()),
	}, nil
}

// ValidateToken verifies signature, issuer and expiry and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenMissing
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}

	if claims.AccountID <= 0 || claims.Username == "" || !models.Role(claims.Role).Valid() {
		return nil, apperrors.ErrTokenInvalid
	}

	return claims, nil
}

// RemainingTTL returns how long the token stays valid from the service clock.
func (s *JWTService) RemainingTTL(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(s.now())
}

// ExtractBearerToken pulls the token out of an Authorization header.
// A bare token without the scheme is accepted for the Swagger UI.
// An empty header or a scheme without a token reports ErrTokenMissing.
func ExtractBearerToken(authHeader string) (string, error) {
	fields := strings.Fields(authHeader)
	switch len(fields) {
	case 0:
		return "", apperrors.ErrTokenMissing
	case 1:
		if strings.EqualFold(fields[0], "Bearer") {
			return "", apperrors.ErrTokenMissing
		}
		return fields[0], nil
	case 2:
		if !strings.EqualFold(fields[0], "Bearer") {
			return "", fmt.Errorf("%w: unsupported authorization scheme", apperrors.ErrTokenInvalid)
		}
		return fields[1], nil
	default:
		return "", fmt.Errorf("%w: malformed authorization header", apperrors.ErrTokenInvalid)
	}
}
