package seed

import (
	"context"
	"testing"

	"github.com/lakshya/placement-portal/internal/app/models"
	appRepos "github.com/lakshya/placement-portal/internal/app/repositories"
	"github.com/lakshya/placement-portal/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStore records the writes CreateDefaultData makes. Methods it does not
// override panic through the nil embedded interface.
type seedStore struct {
	appRepos.AccountStore

	accounts     []*models.Account
	students     []*models.StudentProfile
	coordinators []*models.CoordinatorProfile
}

func (s *seedStore) IdentityExists(_ context.Context, username, email string) (bool, error) {
	for _, a := range s.accounts {
		if a.Username == username || a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *seedStore) CreateAccount(_ context.Context, a *models.Account) error {
	a.ID = int64(len(s.accounts) + 1)
	s.accounts = append(s.accounts, a)
	return nil
}

func (s *seedStore) CreateStudentProfile(_ context.Context, p *models.StudentProfile) error {
	s.students = append(s.students, p)
	return nil
}

func (s *seedStore) CreateCoordinatorProfile(_ context.Context, p *models.CoordinatorProfile) error {
	s.coordinators = append(s.coordinators, p)
	return nil
}

func (s *seedStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, store appRepos.AccountStore) error) error {
	return fn(ctx, s)
}

func TestCreateDefaultData_IsIdempotent(t *testing.T) {
	store := &seedStore{}
	opts := Options{
		AdminUsername: "admin",
		AdminEmail:    "admin@placement.local",
		AdminPassword: "admin123",
		DemoUsers:     true,
	}

	require.NoError(t, CreateDefaultData(context.Background(), store, store, opts, zerolog.Nop()))
	require.Len(t, store.accounts, 3)
	require.Len(t, store.students, 1)
	require.Len(t, store.coordinators, 1)

	admin := store.accounts[0]
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "admin123"))

	assert.Equal(t, store.accounts[1].ID, store.coordinators[0].AccountID)
	assert.Equal(t, "CSE", store.accounts[2].DepartmentName())
	assert.Equal(t, store.accounts[2].ID, store.students[0].AccountID)

	require.NoError(t, CreateDefaultData(context.Background(), store, store, opts, zerolog.Nop()))
	assert.Len(t, store.accounts, 3)
}

func TestCreateDefaultData_AdminOnly(t *testing.T) {
	store := &seedStore{}
	err := CreateDefaultData(context.Background(), store, store, Options{
		AdminUsername: "admin",
		AdminEmail:    "admin@placement.local",
		AdminPassword: "admin123",
	}, zerolog.Nop())

	require.NoError(t, err)
	assert.Len(t, store.accounts, 1)
}

func TestCreateDefaultData_MissingPassword(t *testing.T) {
	store := &seedStore{}
	err := CreateDefaultData(context.Background(), store, store, Options{
		AdminUsername: "admin",
		AdminEmail:    "admin@placement.local",
	}, zerolog.Nop())

	assert.Error(t, err)
	assert.Empty(t, store.accounts)
}
