package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/dberrors"
	"github.com/lakshya/placement-portal/internal/pkg/logger"
)

// CompanyUpdateStore defines the persistence operations for company updates
type CompanyUpdateStore interface {
	Create(ctx context.Context, u *models.CompanyUpdate) error
	GetByID(ctx context.Context, id int64) (*models.CompanyUpdate, error)
	List(ctx context.Context, f models.CompanyUpdateFilter, offset, limit uint64) ([]*models.CompanyUpdate, int64, error)
	// The write methods only touch the row while its status is one of the
	// given ones and report ErrCompanyUpdateNotFound otherwise.
	UpdateContent(ctx context.Context, u *models.CompanyUpdate, allowed []models.UpdateStatus) error
	UpdateStatus(ctx context.Context, id int64, from, to models.UpdateStatus, adminNotes *string) error
	Delete(ctx context.Context, id int64, allowed []models.UpdateStatus) error
}

// CompanyUpdateRepository handles database operations for company updates
type CompanyUpdateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

var _ CompanyUpdateStore = (*CompanyUpdateRepository)(nil)

// NewCompanyUpdateRepository creates a new CompanyUpdateRepository
func NewCompanyUpdateRepository(db *pgxpool.Pool) *CompanyUpdateRepository {
	return &CompanyUpdateRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var companyUpdateColumns = []string{
	"cu.id", "cu.coordinator_id", "cu.company_name", "cu.job_title", "cu.job_description",
	"cu.requirements", "cu.package_details", "cu.eligibility_criteria", "cu.application_deadline",
	"cu.interview_schedule", "cu.location", "cu.status", "cu.admin_notes", "cu.created_at",
	"cu.updated_at", "c.name", "c.department",
}

func (r *CompanyUpdateRepository) selectBuilder() squirrel.SelectBuilder {
	return r.sb.Select(companyUpdateColumns...).
		From("company_updates cu").
		Join("coordinator_profiles c ON c.id = cu.coordinator_id")
}

func scanCompanyUpdate(row pgx.Row) (*models.CompanyUpdate, error) {
	var u models.CompanyUpdate
	var status string
	err := row.Scan(&u.ID, &u.CoordinatorID, &u.CompanyName, &u.JobTitle, &u.JobDescription,
		&u.Requirements, &u.PackageDetails, &u.EligibilityCriteria, &u.ApplicationDeadline,
		&u.InterviewSchedule, &u.Location, &status, &u.AdminNotes, &u.CreatedAt,
		&u.UpdatedAt, &u.CoordinatorName, &u.Department)
	if err != nil {
		return nil, err
	}
	u.Status = models.UpdateStatus(status)
	return &u, nil
}

// Create inserts a company update and fills in its generated fields
func (r *CompanyUpdateRepository) Create(ctx context.Context, u *models.CompanyUpdate) error {
	if u.Status == "" {
		u.Status = models.UpdateDraft
	}

	sql, args, err := r.sb.Insert("company_updates").
		Columns("coordinator_id", "company_name", "job_title", "job_description", "requirements",
			"package_details", "eligibility_criteria", "application_deadline", "interview_schedule",
			"location", "status").
		Values(u.CoordinatorID, u.CompanyName, u.JobTitle, u.JobDescription, u.Requirements,
			u.PackageDetails, u.EligibilityCriteria, u.ApplicationDeadline, u.InterviewSchedule,
			u.Location, string(u.Status)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create company update SQL")
		return fmt.Errorf("failed to build create company update query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrCoordinatorNotFound
		}
		logger.Error().Err(err).Int64("coordinatorID", u.CoordinatorID).Msg("Error executing create company update query")
		return fmt.Errorf("error creating company update: %w", err)
	}

	logger.Info().Int64("updateID", u.ID).Int64("coordinatorID", u.CoordinatorID).Msg("Company update created")
	return nil
}

// GetByID retrieves a company update with its coordinator's name and department
func (r *CompanyUpdateRepository) GetByID(ctx context.Context, id int64) (*models.CompanyUpdate, error) {
	sql, args, err := r.selectBuilder().Where(squirrel.Eq{"cu.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get company update query: %w", err)
	}

	u, err := scanCompanyUpdate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrCompanyUpdateNotFound
		}
		logger.Error().Err(err).Int64("updateID", id).Msg("Error scanning company update row")
		return nil, fmt.Errorf("error getting company update: %w", err)
	}
	return u, nil
}

func companyUpdateFilter(f models.CompanyUpdateFilter) squirrel.And {
	where := squirrel.And{}
	if f.CoordinatorID > 0 {
		where = append(where, squirrel.Eq{"cu.coordinator_id": f.CoordinatorID})
	}
	if len(f.Statuses) > 0 {
		where = append(where, squirrel.Eq{"cu.status": statusValues(f.Statuses)})
	}
	return where
}

func statusValues(statuses []models.UpdateStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// List returns one page of company updates, newest first, and the total match count
func (r *CompanyUpdateRepository) List(ctx context.Context, f models.CompanyUpdateFilter, offset, limit uint64) ([]*models.CompanyUpdate, int64, error) {
	where := companyUpdateFilter(f)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("company_updates cu").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count company updates query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting company updates: %w", err)
	}

	sql, args, err := r.selectBuilder().
		Where(where).
		OrderBy("cu.created_at DESC", "cu.id DESC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list company updates query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list company updates query")
		return nil, 0, fmt.Errorf("error listing company updates: %w", err)
	}
	defer rows.Close()

	updates := []*models.CompanyUpdate{}
	for rows.Next() {
		u, err := scanCompanyUpdate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning company update row: %w", err)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating company update rows: %w", err)
	}

	return updates, total, nil
}

// updateContentQuery writes the editable fields while the status is still one of allowed
func (r *CompanyUpdateRepository) updateContentQuery(u *models.CompanyUpdate, allowed []models.UpdateStatus) squirrel.UpdateBuilder {
	return r.sb.Update("company_updates").
		SetMap(map[string]interface{}{
			"company_name":         u.CompanyName,
			"job_title":            u.JobTitle,
			"job_description":      u.JobDescription,
			"requirements":         u.Requirements,
			"package_details":      u.PackageDetails,
			"eligibility_criteria": u.EligibilityCriteria,
			"application_deadline": u.ApplicationDeadline,
			"interview_schedule":   u.InterviewSchedule,
			"location":             u.Location,
			"updated_at":           squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": u.ID}).
		Where(squirrel.Eq{"status": statusValues(allowed)}).
		Suffix("RETURNING updated_at")
}

// UpdateContent writes the editable fields of a company update
func (r *CompanyUpdateRepository) UpdateContent(ctx context.Context, u *models.CompanyUpdate, allowed []models.UpdateStatus) error {
	sql, args, err := r.updateContentQuery(u, allowed).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update company update query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&u.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.ErrCompanyUpdateNotFound
		}
		logger.Error().Err(err).Int64("updateID", u.ID).Msg("Error executing update company update query")
		return fmt.Errorf("error updating company update: %w", err)
	}
	return nil
}

// updateStatusQuery moves the row from one status to another in a single statement
func (r *CompanyUpdateRepository) updateStatusQuery(id int64, from, to models.UpdateStatus, adminNotes *string) squirrel.UpdateBuilder {
	q := r.sb.Update("company_updates").
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": string(from)})
	if adminNotes != nil {
		q = q.Set("admin_notes", *adminNotes)
	}
	return q
}

// UpdateStatus sets the review status and, when given, the admin notes
func (r *CompanyUpdateRepository) UpdateStatus(ctx context.Context, id int64, from, to models.UpdateStatus, adminNotes *string) error {
	sql, args, err := r.updateStatusQuery(id, from, to, adminNotes).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("updateID", id).Str("status", string(to)).Msg("Error executing update status query")
		return fmt.Errorf("error updating company update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCompanyUpdateNotFound
	}
	return nil
}

func (r *CompanyUpdateRepository) deleteQuery(id int64, allowed []models.UpdateStatus) squirrel.DeleteBuilder {
	return r.sb.Delete("company_updates").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusValues(allowed)})
}

// Delete removes a company update
func (r *CompanyUpdateRepository) Delete(ctx context.Context, id int64, allowed []models.UpdateStatus) error {
	sql, args, err := r.deleteQuery(id, allowed).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete company update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("updateID", id).Msg("Error executing delete company update query")
		return fmt.Errorf("error deleting company update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCompanyUpdateNotFound
	}
	return nil
}
