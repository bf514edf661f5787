package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/app/repositories/account"
	"github.com/lakshya/placement-portal/internal/db"
)

// AccountStore defines the account, profile and directory operations used
// by the services. Implementations must be usable inside a transaction.
type AccountStore interface {
	// Accounts
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	IdentityExists(ctx context.Context, username, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdateEmail(ctx context.Context, id int64, email string) error
	SetActive(ctx context.Context, id int64, active bool) error
	ListAccounts(ctx context.Context, f models.AccountFilter, offset, limit uint64) ([]*models.Account, int64, error)

	// Student profiles
	StudentIDExists(ctx context.Context, studentID string) (bool, error)
	CreateStudentProfile(ctx context.Context, p *models.StudentProfile) error
	GetStudentProfile(ctx context.Context, accountID int64) (*models.StudentProfile, error)
	UpdateStudentProfile(ctx context.Context, p *models.StudentProfile) error
	ListStudents(ctx context.Context, f models.StudentFilter, offset, limit uint64) ([]*models.StudentRecord, int64, error)
	GetStudentByStudentID(ctx context.Context, studentID string) (*models.StudentRecord, error)

	// Coordinator profiles
	CreateCoordinatorProfile(ctx context.Context, p *models.CoordinatorProfile) error
	GetCoordinatorProfile(ctx context.Context, accountID int64) (*models.CoordinatorProfile, error)
	UpdateCoordinatorProfile(ctx context.Context, p *models.CoordinatorProfile) error
}

// AccountTransactor runs fn against a store bound to a single transaction.
// Returning an error from fn rolls back every write made through the store.
type AccountTransactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, store AccountStore) error) error
}

// AccountRepository combines the account and profile repositories
type AccountRepository struct {
	*account.Repository
	pool *pgxpool.Pool
}

var (
	_ AccountStore      = (*AccountRepository)(nil)
	_ AccountTransactor = (*AccountRepository)(nil)
)

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		Repository: account.NewRepository(pool),
		pool:       pool,
	}
}

// WithinTransaction implements AccountTransactor on top of db.WithTransaction.
func (r *AccountRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context, store AccountStore) error) error {
	return db.WithTransaction(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &AccountRepository{Repository: account.NewRepository(tx)})
	})
}
