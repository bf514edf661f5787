package services

import (
	"context"
	"errors"
	"strconv"

	authz "github.com/lakshya/placement-portal/internal/app/auth"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/app/repositories"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/events"
	"github.com/lakshya/placement-portal/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// CompanyUpdateService defines company update operations
type CompanyUpdateService interface {
	List(ctx context.Context, p models.Principal, query dto.CompanyUpdateListQuery, page models.Page) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, p models.Principal, id int64) (*models.CompanyUpdate, error)
	Create(ctx context.Context, p models.Principal, req *dto.CompanyUpdateRequest) (*models.CompanyUpdate, error)
	Update(ctx context.Context, p models.Principal, id int64, req *dto.CompanyUpdateRequest) (*models.CompanyUpdate, error)
	UpdateStatus(ctx context.Context, p models.Principal, id int64, req *dto.UpdateStatusRequest) (*models.CompanyUpdate, error)
	Delete(ctx context.Context, p models.Principal, id int64) error
}

// companyUpdateServiceImpl implements the CompanyUpdateService interface
type companyUpdateServiceImpl struct {
	updates   repositories.CompanyUpdateStore
	authz     *authz.AuthorizationService
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewCompanyUpdateService creates a new CompanyUpdateService
func NewCompanyUpdateService(
	updates repositories.CompanyUpdateStore,
	authorization *authz.AuthorizationService,
	publisher events.Publisher,
	logger zerolog.Logger,
) CompanyUpdateService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &companyUpdateServiceImpl{
		updates:   updates,
		authz:     authorization,
		publisher: publisher,
		logger:    logger,
	}
}

// callerCoordinatorID returns the coordinator profile ID for coordinators
// and zero for every other role.
func (s *companyUpdateServiceImpl) callerCoordinatorID(ctx context.Context, p models.Principal) (int64, error) {
	if !p.IsCoordinator() {
		return 0, nil
	}
	return s.authz.CoordinatorID(ctx, p)
}

// getVisible loads an update and hides it from callers outside its scope
func (s *companyUpdateServiceImpl) getVisible(ctx context.Context, p models.Principal, id int64) (*models.CompanyUpdate, int64, error) {
	coordinatorID, err := s.callerCoordinatorID(ctx, p)
	if err != nil {
		return nil, 0, err
	}

	u, err := s.updates.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrCompanyUpdateNotFound) {
			s.logger.Error().Err(err).Int64("updateID", id).Msg("Error loading company update")
		}
		return nil, 0, err
	}

	if !authz.CanViewCompanyUpdate(p, coordinatorID, u) {
		s.logger.Debug().Int64("updateID", id).Int64("accountID", p.AccountID).Msg("Company update outside caller scope")
		return nil, 0, apperrors.ErrCompanyUpdateNotFound
	}
	return u, coordinatorID, nil
}

// getOwned loads an update the calling coordinator owns
func (s *companyUpdateServiceImpl) getOwned(ctx context.Context, p models.Principal, id int64) (*models.CompanyUpdate, error) {
	if !p.IsCoordinator() {
		return nil, authz.ErrNotCoordinator
	}
	u, _, err := s.getVisible(ctx, p, id)
	return u, err
}

// List returns the page of company updates visible to p
func (s *companyUpdateServiceImpl) List(ctx context.Context, p models.Principal, query dto.CompanyUpdateListQuery, page models.Page) (*dto.PaginatedResponse, error) {
	filter, err := s.authz.CompanyUpdateFilter(ctx, p, query.Status)
	if err != nil {
		return nil, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page.Number, page.Size)
	updates, total, err := s.updates.List(ctx, filter, offset, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("role", string(p.Role)).Msg("Error listing company updates")
		return nil, err
	}

	return &dto.PaginatedResponse{
		Items:      updates,
		Pagination: helpers.NewPaginationInfo(total, page.Number, int(limit)),
	}, nil
}

// Get returns one company update if p may see it
func (s *companyUpdateServiceImpl) Get(ctx context.Context, p models.Principal, id int64) (*models.CompanyUpdate, error) {
	u, _, err := s.getVisible(ctx, p, id)
	return u, err
}

// Create stores a new draft owned by the calling coordinator
func (s *companyUpdateServiceImpl) Create(ctx context.Context, p models.Principal, req *dto.CompanyUpdateRequest) (*models.CompanyUpdate, error) {
	coordinatorID, err := s.authz.CoordinatorID(ctx, p)
	if err != nil {
		return nil, err
	}

	u := &models.CompanyUpdate{
		CoordinatorID: coordinatorID,
		Status:        models.UpdateDraft,
	}
	req.Apply(u)

	if err := s.updates.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("updateID", u.ID).Int64("coordinatorID", coordinatorID).Msg("Company update drafted")
	return s.updates.GetByID(ctx, u.ID)
}

// Update replaces the content of an update the caller owns. Only drafts
// and rejected updates can be edited.
func (s *companyUpdateServiceImpl) Update(ctx context.Context, p models.Principal, id int64, req *dto.CompanyUpdateRequest) (*models.CompanyUpdate, error) {
	u, err := s.getOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !u.Status.Editable() {
		return nil, apperrors.ErrUpdateLocked
	}

	req.Apply(u)
	if err := s.updates.UpdateContent(ctx, u, models.OwnerMutableStatuses); err != nil {
		return nil, lockedIfMoved(err, apperrors.ErrUpdateLocked)
	}

	s.logger.Info().Int64("updateID", id).Msg("Company update edited")
	return u, nil
}

// UpdateStatus moves an update through review
func (s *companyUpdateServiceImpl) UpdateStatus(ctx context.Context, p models.Principal, id int64, req *dto.UpdateStatusRequest) (*models.CompanyUpdate, error) {
	if !p.IsAdmin() && !p.IsCoordinator() {
		return nil, apperrors.ErrStatusNotAllowed
	}

	u, _, err := s.getVisible(ctx, p, id)
	if err != nil {
		return nil, err
	}

	from := u.Status
	if err := authz.CheckStatusTransition(p.Role, from, req.Status); err != nil {
		s.logger.Info().Int64("updateID", id).Str("from", string(from)).Str("to", string(req.Status)).Str("role", string(p.Role)).Msg("Status change refused")
		return nil, err
	}

	// Only admins annotate reviews.
	notes := req.AdminNotes
	if !p.IsAdmin() {
		notes = nil
	}

	if err := s.updates.UpdateStatus(ctx, id, from, req.Status, notes); err != nil {
		if errors.Is(err, apperrors.ErrCompanyUpdateNotFound) {
			s.logger.Info().Int64("updateID", id).Str("from", string(from)).Msg("Company update changed status concurrently")
		}
		return nil, lockedIfMoved(err, apperrors.ErrInvalidTransition)
	}

	s.logger.Info().Int64("updateID", id).Str("from", string(from)).Str("to", string(req.Status)).Int64("actorID", p.AccountID).Msg("Company update status changed")
	events.PublishAsync(s.publisher, s.logger, events.New(events.CompanyUpdateStatusChange, strconv.FormatInt(id, 10), map[string]interface{}{
		"updateId":    id,
		"companyName": u.CompanyName,
		"from":        from,
		"to":          req.Status,
		"changedBy":   p.AccountID,
	}))

	return s.updates.GetByID(ctx, id)
}

// Delete removes an update the caller owns while it is a draft or rejected
func (s *companyUpdateServiceImpl) Delete(ctx context.Context, p models.Principal, id int64) error {
	u, err := s.getOwned(ctx, p, id)
	if err != nil {
		return err
	}
	if !u.Status.Deletable() {
		return apperrors.ErrUpdateLocked
	}

	if err := s.updates.Delete(ctx, id, models.OwnerMutableStatuses); err != nil {
		return lockedIfMoved(err, apperrors.ErrUpdateLocked)
	}

	s.logger.Info().Int64("updateID", id).Int64("actorID", p.AccountID).Msg("Company update deleted")
	return nil
}

// lockedIfMoved turns a guarded write that matched no row into conflict.
// The row was readable just before, so its status changed in between.
func lockedIfMoved(err, conflict error) error {
	if errors.Is(err, apperrors.ErrCompanyUpdateNotFound) {
		return conflict
	}
	return err
}
