package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(clock *fakeClock) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey: "test-secret",
		TokenTTL:  24 * time.Hour,
		Issuer:    "placement-portal",
	}, WithClock(clock.Now))
}

func testAccount() *models.Account {
	dept := "CSE"
	return &models.Account{
		ID:         7,
		Username:   "coordinator_cs",
		Email:      "coord@x.edu",
		Role:       models.RoleCoordinator,
		Department: &dept,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(clock)

	issued, err := svc.GenerateToken(testAccount())
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.Equal(t, int64(86400), issued.ExpiresIn)
	assert.Equal(t, clock.t.Add(24*time.Hour), issued.ExpiresAt)

	claims, err := svc.ValidateToken(issued.Token)
	require.NoError(t, err)

	p := claims.Principal()
	assert.Equal(t, int64(7), p.AccountID)
	assert.Equal(t, "coordinator_cs", p.Username)
	assert.Equal(t, models.RoleCoordinator, p.Role)
	assert.Equal(t, "CSE", p.Department)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestValidateToken_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issuedAt}
	svc := newTestService(clock)

	issued, err := svc.GenerateToken(testAccount())
	require.NoError(t, err)

	clock.t = issuedAt.Add(23*time.Hour + 59*time.Minute)
	_, err = svc.ValidateToken(issued.Token)
	assert.NoError(t, err)
	assert.Equal(t, time.Minute, svc.RemainingTTL(mustClaims(t, issued.Token)))

	clock.t = issuedAt.Add(24*time.Hour + time.Minute)
	_, err = svc.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func mustClaims(t *testing.T, token string) *Claims {
	t.Helper()
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	return claims
}

func TestValidateToken_Rejections(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(clock)

	issued, err := svc.GenerateToken(testAccount())
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "other", Issuer: "placement-portal"}, WithClock(clock.Now))
		_, err := other.ValidateToken(issued.Token)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "test-secret", Issuer: "elsewhere"}, WithClock(clock.Now))
		_, err := other.ValidateToken(issued.Token)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("tampered payload", func(t *testing.T) {
		admin := testAccount()
		admin.ID = 1
		admin.Role = models.RoleAdmin
		other, err := svc.GenerateToken(admin)
		require.NoError(t, err)

		orig := strings.Split(issued.Token, ".")
		swapped := strings.Split(other.Token, ".")
		tampered := strings.Join([]string{orig[0], swapped[1], orig[2]}, ".")
		_, err = svc.ValidateToken(tampered)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.ValidateToken("")
		assert.ErrorIs(t, err, apperrors.ErrTokenMissing)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := mustClaims(t, issued.Token)
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateToken(unsigned)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("unknown role", func(t *testing.T) {
		claims := mustClaims(t, issued.Token)
		claims.Role = "superuser"
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = svc.ValidateToken(forged)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}

func TestNewJWTService_DefaultTTL(t *testing.T) {
	svc := NewJWTService(JWTConfig{SecretKey: "s"})
	assert.Equal(t, 24*time.Hour, svc.TokenTTL())
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "raw token", header: "abc.def.ghi", want: "abc.def.ghi"},
		{name: "empty", header: "", wantErr: apperrors.ErrTokenMissing},
		{name: "scheme only", header: "Bearer ", wantErr: apperrors.ErrTokenMissing},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: apperrors.ErrTokenInvalid},
		{name: "too many parts", header: "Bearer a b", wantErr: apperrors.ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
