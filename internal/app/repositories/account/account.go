// Package account holds the SQL for accounts and their role profiles.
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/dberrors"
	"github.com/lakshya/placement-portal/internal/pkg/logger"
)

// Unique constraint names from the schema
const (
	UsernameKey           = "accounts_username_key"
	EmailKey              = "accounts_email_key"
	StudentIDKey          = "student_profiles_student_id_key"
	CoordinatorAccountKey = "coordinator_profiles_account_id_key"
	StudentAccountKey     = "student_profiles_pkey"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx so the same repository
// code runs inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// MapUniqueViolation turns a storage unique violation into the matching
// conflict error. Other errors pass through unchanged.
func MapUniqueViolation(err error) error {
	constraint, ok := dberrors.DuplicateConstraint(err)
	if !ok {
		return err
	}
	switch constraint {
	case UsernameKey:
		return apperrors.ErrUsernameTaken
	case EmailKey:
		return apperrors.ErrEmailTaken
	case StudentIDKey:
		return apperrors.ErrStudentIDTaken
	default:
		return fmt.Errorf("duplicate %s: %w", constraint, apperrors.ErrConflict)
	}
}

var accountColumns = []string{
	"id", "username", "email", "password_hash", "role", "department",
	"is_active", "created_at", "updated_at", "last_login_at",
}

// Repository handles account database operations
type Repository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewRepository creates a new Repository
func NewRepository(db DBTX) *Repository {
	return &Repository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	var role string
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role, &a.Department,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt, &a.LastLoginAt)
	if err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	return &a, nil
}

// CreateAccount inserts the account and fills in its generated fields.
func (r *Repository) CreateAccount(ctx context.Context, a *models.Account) error {
	sql, args, err := r.sb.Insert("accounts").
		Columns("username", "email", "password_hash", "role", "department", "is_active").
		Values(a.Username, a.Email, a.PasswordHash, string(a.Role), a.Department, a.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create account SQL")
		return fmt.Errorf("failed to build create account query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if mapped := MapUniqueViolation(err); mapped != err {
			logger.Warn().Str("username", a.Username).Err(mapped).Msg("Account insert rejected by unique constraint")
			return mapped
		}
		logger.Error().Err(err).Str("username", a.Username).Msg("Error executing create account query")
		return fmt.Errorf("error creating account: %w", err)
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Account, error) {
	sql, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get account query: %w", err)
	}

	a, err := scanAccount(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Msg("Error scanning account row")
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	return a, nil
}

// GetAccountByID retrieves an account by ID
func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetAccountByIdentifier retrieves an account by username or, failing
// that, by case-insensitive email.
func (r *Repository) GetAccountByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Or{
		squirrel.Eq{"username": identifier},
		squirrel.Eq{"email": strings.ToLower(identifier)},
	})
}

// IdentityExists reports whether the username or email is already registered.
func (r *Repository) IdentityExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1 OR email = $2)`,
		username, strings.ToLower(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking account identity: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stamps a successful login
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	sql, args, err := r.sb.Update("accounts").
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to update last login time: %w", err)
	}
	return nil
}

// UpdateEmail changes the account email
func (r *Repository) UpdateEmail(ctx context.Context, id int64, email string) error {
	sql, args, err := r.sb.Update("accounts").
		Set("email", strings.ToLower(email)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update email query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := MapUniqueViolation(err); mapped != err {
			return mapped
		}
		logger.Error().Err(err).Int64("accountID", id).Msg("Error executing update email query")
		return fmt.Errorf("error updating email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// SetActive enables or disables login for an account
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	sql, args, err := r.sb.Update("accounts").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set active query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("accountID", id).Msg("Error executing set active query")
		return fmt.Errorf("error updating account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

func accountFilter(f models.AccountFilter) squirrel.And {
	where := squirrel.And{}
	if f.Role != "" {
		where = append(where, squirrel.Eq{"role": string(f.Role)})
	}
	if f.IsActive != nil {
		where = append(where, squirrel.Eq{"is_active": *f.IsActive})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + s + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"username": pattern},
			squirrel.ILike{"email": pattern},
		})
	}
	return where
}

// ListAccounts returns one page of accounts and the total match count.
func (r *Repository) ListAccounts(ctx context.Context, f models.AccountFilter, offset, limit uint64) ([]*models.Account, int64, error) {
	where := accountFilter(f)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("accounts").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count accounts query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting accounts: %w", err)
	}

	sql, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		Where(where).
		OrderBy("id ASC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list accounts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list accounts query")
		return nil, 0, fmt.Errorf("error listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, total, nil
}
