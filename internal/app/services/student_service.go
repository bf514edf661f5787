package services

import (
	"context"
	"errors"
	"strings"

	authz "github.com/lakshya/placement-portal/internal/app/auth"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/app/repositories"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// StudentService defines the student directory operations
type StudentService interface {
	ListStudents(ctx context.Context, p models.Principal, query dto.StudentListQuery, page models.Page) (*dto.PaginatedResponse, error)
	GetStudent(ctx context.Context, p models.Principal, studentID string) (*dto.StudentResponse, error)
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	accounts repositories.AccountStore
	logger   zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(accounts repositories.AccountStore, logger zerolog.Logger) StudentService {
	return &studentServiceImpl{
		accounts: accounts,
		logger:   logger,
	}
}

// ListStudents returns the page of the directory visible to p
func (s *studentServiceImpl) ListStudents(ctx context.Context, p models.Principal, query dto.StudentListQuery, page models.Page) (*dto.PaginatedResponse, error) {
	filter, err := authz.StudentFilter(p, models.StudentFilter{
		Branch:          strings.TrimSpace(query.Branch),
		PlacementStatus: query.PlacementStatus,
		MinCGPA:         query.MinCGPA,
		GraduationYear:  query.GraduationYear,
	})
	if err != nil {
		return nil, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page.Number, page.Size)
	records, total, err := s.accounts.ListStudents(ctx, filter, offset, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("role", string(p.Role)).Msg("Error listing students")
		return nil, err
	}

	items := make([]dto.StudentResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, dto.NewStudentResponse(rec))
	}

	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page.Number, int(limit)),
	}, nil
}

// GetStudent returns one directory entry by student ID if p may see it
func (s *studentServiceImpl) GetStudent(ctx context.Context, p models.Principal, studentID string) (*dto.StudentResponse, error) {
	rec, err := s.accounts.GetStudentByStudentID(ctx, strings.TrimSpace(studentID))
	if err != nil {
		if !errors.Is(err, apperrors.ErrStudentNotFound) {
			s.logger.Error().Err(err).Str("studentID", studentID).Msg("Error loading student")
		}
		return nil, err
	}

	if err := authz.CanViewStudent(p, rec); err != nil {
		s.logger.Info().Int64("accountID", p.AccountID).Str("studentID", studentID).Msg("Student record access denied")
		return nil, err
	}

	resp := dto.NewStudentResponse(rec)
	return &resp, nil
}
