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

// AccountService defines admin account management
type AccountService interface {
	ListAccounts(ctx context.Context, query dto.AccountListQuery, page models.Page) (*dto.PaginatedResponse, error)
	SetActive(ctx context.Context, actor models.Principal, accountID int64, active bool) (*models.Account, error)
}

// accountServiceImpl implements the AccountService interface
type accountServiceImpl struct {
	accounts  repositories.AccountStore
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts repositories.AccountStore, publisher events.Publisher, logger zerolog.Logger) AccountService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &accountServiceImpl{
		accounts:  accounts,
		publisher: publisher,
		logger:    logger,
	}
}

// ListAccounts returns one page of accounts matching the query
func (s *accountServiceImpl) ListAccounts(ctx context.Context, query dto.AccountListQuery, page models.Page) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page.Number, page.Size)
	filter := models.AccountFilter{
		Role:     query.Role,
		IsActive: query.IsActive,
		Search:   query.Search,
	}

	accounts, total, err := s.accounts.ListAccounts(ctx, filter, offset, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing accounts")
		return nil, err
	}

	return &dto.PaginatedResponse{
		Items:      accounts,
		Pagination: helpers.NewPaginationInfo(total, page.Number, int(limit)),
	}, nil
}

// SetActive enables or disables an account. Disabled accounts cannot log in;
// tokens they already hold stay valid until they expire.
func (s *accountServiceImpl) SetActive(ctx context.Context, actor models.Principal, accountID int64, active bool) (*models.Account, error) {
	if accountID <= 0 {
		return nil, apperrors.NewValidationError("id", "account id must be positive")
	}
	if accountID == actor.AccountID && !active {
		return nil, authz.ErrCannotDisableSelf
	}

	if err := s.accounts.SetActive(ctx, accountID, active); err != nil {
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			s.logger.Error().Err(err).Int64("accountID", accountID).Msg("Error updating account status")
		}
		return nil, err
	}

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("accountID", accountID).Bool("active", active).Int64("actorID", actor.AccountID).Msg("Account status changed")
	events.PublishAsync(s.publisher, s.logger, events.New(events.AccountStatusChanged, strconv.FormatInt(accountID, 10), map[string]interface{}{
		"accountId": accountID,
		"isActive":  active,
		"changedBy": actor.AccountID,
	}))

	return account, nil
}
