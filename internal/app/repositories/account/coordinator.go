package account

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/dberrors"
	"github.com/lakshya/placement-portal/internal/pkg/logger"
)

// CreateCoordinatorProfile inserts the coordinator profile and sets its ID
func (r *Repository) CreateCoordinatorProfile(ctx context.Context, p *models.CoordinatorProfile) error {
	sql, args, err := r.sb.Insert("coordinator_profiles").
		Columns("account_id", "department", "name", "phone").
		Values(p.AccountID, p.Department, p.Name, p.Phone).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create coordinator profile SQL")
		return fmt.Errorf("failed to build create coordinator profile query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID); err != nil {
		if mapped := MapUniqueViolation(err); mapped != err {
			logger.Warn().Int64("accountID", p.AccountID).Msg("Attempted to create duplicate coordinator profile")
			return mapped
		}
		logger.Error().Err(err).Int64("accountID", p.AccountID).Msg("Error executing create coordinator profile query")
		return fmt.Errorf("error creating coordinator profile: %w", err)
	}

	logger.Info().Int64("accountID", p.AccountID).Int64("coordinatorID", p.ID).Msg("Coordinator profile created")
	return nil
}

// GetCoordinatorProfile retrieves the coordinator profile owned by an account
func (r *Repository) GetCoordinatorProfile(ctx context.Context, accountID int64) (*models.CoordinatorProfile, error) {
	sql, args, err := r.sb.Select("id", "account_id", "department", "name", "phone").
		From("coordinator_profiles").
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get coordinator profile query: %w", err)
	}

	var p models.CoordinatorProfile
	err = r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.AccountID, &p.Department, &p.Name, &p.Phone)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrCoordinatorNotFound
		}
		logger.Error().Err(err).Int64("accountID", accountID).Msg("Error scanning coordinator profile row")
		return nil, fmt.Errorf("error getting coordinator profile: %w", err)
	}
	return &p, nil
}

// UpdateCoordinatorProfile writes name and phone
func (r *Repository) UpdateCoordinatorProfile(ctx context.Context, p *models.CoordinatorProfile) error {
	sql, args, err := r.sb.Update("coordinator_profiles").
		Set("name", p.Name).
		Set("phone", p.Phone).
		Where(squirrel.Eq{"account_id": p.AccountID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update coordinator profile query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("accountID", p.AccountID).Msg("Error executing update coordinator profile query")
		return fmt.Errorf("error updating coordinator profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCoordinatorNotFound
	}
	return nil
}
