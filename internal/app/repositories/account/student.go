package account

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/dberrors"
	"github.com/lakshya/placement-portal/internal/pkg/logger"
)

var studentColumns = []string{
	"s.account_id", "s.student_id", "s.full_name", "s.phone", "s.branch", "s.cgpa",
	"s.graduation_year", "s.resume_path", "s.placement_status",
}

func scanStudent(row pgx.Row, extra ...interface{}) (*models.StudentProfile, error) {
	var p models.StudentProfile
	var status string
	dest := []interface{}{&p.AccountID, &p.StudentID, &p.FullName, &p.Phone, &p.Branch, &p.CGPA,
		&p.GraduationYear, &p.ResumePath, &status}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	p.PlacementStatus = models.PlacementStatus(status)
	return &p, nil
}

// StudentIDExists checks if a student ID is already registered
func (r *Repository) StudentIDExists(ctx context.Context, studentID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM student_profiles WHERE student_id = $1)`,
		studentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking student ID: %w", err)
	}
	return exists, nil
}

// CreateStudentProfile inserts the student profile for an existing student account
func (r *Repository) CreateStudentProfile(ctx context.Context, p *models.StudentProfile) error {
	if p.PlacementStatus == "" {
		p.PlacementStatus = models.PlacementNotPlaced
	}

	sql, args, err := r.sb.Insert("student_profiles").
		Columns("account_id", "student_id", "full_name", "phone", "branch", "cgpa",
			"graduation_year", "resume_path", "placement_status").
		Values(p.AccountID, p.StudentID, p.FullName, p.Phone, p.Branch, p.CGPA,
			p.GraduationYear, p.ResumePath, string(p.PlacementStatus)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student profile SQL")
		return fmt.Errorf("failed to build create student profile query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		if mapped := MapUniqueViolation(err); mapped != err {
			logger.Warn().Str("studentID", p.StudentID).Err(mapped).Msg("Student profile insert rejected by unique constraint")
			return mapped
		}
		if dberrors.IsCheckViolation(err) {
			return fmt.Errorf("student profile out of range: %w", apperrors.ErrBadRequest)
		}
		logger.Error().Err(err).Int64("accountID", p.AccountID).Str("studentID", p.StudentID).Msg("Error executing create student profile query")
		return fmt.Errorf("error creating student profile: %w", err)
	}

	logger.Info().Int64("accountID", p.AccountID).Str("studentID", p.StudentID).Msg("Student profile created")
	return nil
}

// GetStudentProfile retrieves the student profile owned by an account
func (r *Repository) GetStudentProfile(ctx context.Context, accountID int64) (*models.StudentProfile, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("student_profiles s").
		Where(squirrel.Eq{"s.account_id": accountID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student profile query: %w", err)
	}

	p, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrProfileNotFound
		}
		logger.Error().Err(err).Int64("accountID", accountID).Msg("Error scanning student profile row")
		return nil, fmt.Errorf("error getting student profile: %w", err)
	}
	return p, nil
}

// UpdateStudentProfile writes every mutable column of the profile
func (r *Repository) UpdateStudentProfile(ctx context.Context, p *models.StudentProfile) error {
	sql, args, err := r.sb.Update("student_profiles").
		SetMap(map[string]interface{}{
			"full_name":        p.FullName,
			"phone":            p.Phone,
			"branch":           p.Branch,
			"cgpa":             p.CGPA,
			"graduation_year":  p.GraduationYear,
			"resume_path":      p.ResumePath,
			"placement_status": string(p.PlacementStatus),
		}).
		Where(squirrel.Eq{"account_id": p.AccountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student profile query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsCheckViolation(err) {
			return fmt.Errorf("student profile out of range: %w", apperrors.ErrBadRequest)
		}
		logger.Error().Err(err).Int64("accountID", p.AccountID).Msg("Error executing update student profile query")
		return fmt.Errorf("error updating student profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

func studentFilter(f models.StudentFilter) squirrel.And {
	where := squirrel.And{}
	if f.AccountID > 0 {
		where = append(where, squirrel.Eq{"s.account_id": f.AccountID})
	}
	if f.Branch != "" {
		where = append(where, squirrel.Eq{"s.branch": f.Branch})
	}
	if f.PlacementStatus != "" {
		where = append(where, squirrel.Eq{"s.placement_status": string(f.PlacementStatus)})
	}
	if f.MinCGPA != nil {
		where = append(where, squirrel.GtOrEq{"s.cgpa": *f.MinCGPA})
	}
	if f.GraduationYear != nil {
		where = append(where, squirrel.Eq{"s.graduation_year": *f.GraduationYear})
	}
	return where
}

func (r *Repository) directorySelect() squirrel.SelectBuilder {
	return r.sb.Select(append(append([]string{}, studentColumns...), "a.username", "a.email")...).
		From("student_profiles s").
		Join("accounts a ON a.id = s.account_id")
}

func scanStudentRecord(row pgx.Row) (*models.StudentRecord, error) {
	var rec models.StudentRecord
	p, err := scanStudent(row, &rec.Username, &rec.Email)
	if err != nil {
		return nil, err
	}
	rec.StudentProfile = *p
	return &rec, nil
}

// ListStudents returns one page of the student directory, best CGPA first.
func (r *Repository) ListStudents(ctx context.Context, f models.StudentFilter, offset, limit uint64) ([]*models.StudentRecord, int64, error) {
	where := studentFilter(f)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("student_profiles s").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	sql, args, err := r.directorySelect().
		Where(where).
		OrderBy("s.cgpa DESC NULLS LAST", "s.student_id ASC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := []*models.StudentRecord{}
	for rows.Next() {
		rec, err := scanStudentRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, total, nil
}

// GetStudentByStudentID retrieves a directory entry by its business key
func (r *Repository) GetStudentByStudentID(ctx context.Context, studentID string) (*models.StudentRecord, error) {
	sql, args, err := r.directorySelect().
		Where(squirrel.Eq{"s.student_id": studentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	rec, err := scanStudentRecord(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("studentID", studentID).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student: %w", err)
	}
	return rec, nil
}
