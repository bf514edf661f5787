// Package auth holds the role scoping rules applied after the gate has
// identified the caller.
package auth

import (
	"context"
	"errors"

	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/logger"
)

// Common authorization errors
var (
	ErrNotCoordinator    = apperrors.NewForbiddenError("only coordinators can perform this action")
	ErrNotStudent        = apperrors.NewForbiddenError("only students can perform this action")
	ErrNoDepartment      = apperrors.NewForbiddenError("coordinator account has no department")
	ErrOtherStudent      = apperrors.NewForbiddenError("students can only view their own record")
	ErrOtherDepartment   = apperrors.NewForbiddenError("student belongs to another department")
	ErrCannotDisableSelf = apperrors.NewBadRequestError("admins cannot deactivate their own account")
)

// CoordinatorLookup resolves the coordinator profile behind an account
type CoordinatorLookup interface {
	GetCoordinatorProfile(ctx context.Context, accountID int64) (*models.CoordinatorProfile, error)
}

// AuthorizationService handles authorization operations
type AuthorizationService struct {
	coordinators CoordinatorLookup
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(coordinators CoordinatorLookup) *AuthorizationService {
	return &AuthorizationService{coordinators: coordinators}
}

// CoordinatorID returns the coordinator profile ID of a coordinator caller.
func (s *AuthorizationService) CoordinatorID(ctx context.Context, p models.Principal) (int64, error) {
	if !p.IsCoordinator() {
		return 0, ErrNotCoordinator
	}
	profile, err := s.coordinators.GetCoordinatorProfile(ctx, p.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCoordinatorNotFound) {
			logger.Warn().Int64("accountID", p.AccountID).Msg("Coordinator account without coordinator profile")
		}
		return 0, err
	}
	return profile.ID, nil
}

// CompanyUpdateFilter narrows a listing to what p may see: admins see
// everything, coordinators their own rows, students published rows only.
// The requested status is applied on top of the scope.
func (s *AuthorizationService) CompanyUpdateFilter(ctx context.Context, p models.Principal, status models.UpdateStatus) (models.CompanyUpdateFilter, error) {
	var f models.CompanyUpdateFilter
	if status != "" {
		f.Statuses = []models.UpdateStatus{status}
	}

	switch p.Role {
	case models.RoleAdmin:
		return f, nil
	case models.RoleCoordinator:
		id, err := s.CoordinatorID(ctx, p)
		if err != nil {
			return f, err
		}
		f.CoordinatorID = id
		return f, nil
	case models.RoleStudent:
		if status != "" && status != models.UpdatePublished {
			return f, apperrors.NewForbiddenError("students can only list published updates")
		}
		f.Statuses = []models.UpdateStatus{models.UpdatePublished}
		return f, nil
	}
	return f, apperrors.ErrPermissionDenied
}

// CanViewCompanyUpdate reports whether p may read u. coordinatorID is the
// caller's coordinator profile ID, zero for other roles.
func CanViewCompanyUpdate(p models.Principal, coordinatorID int64, u *models.CompanyUpdate) bool {
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCoordinator:
		return coordinatorID != 0 && u.CoordinatorID == coordinatorID
	case models.RoleStudent:
		return u.Status == models.UpdatePublished
	}
	return false
}

// CheckStatusTransition validates a review status change. Coordinators
// submit drafts and rejected rows for approval; admins approve, reject
// and publish.
func CheckStatusTransition(role models.Role, from, to models.UpdateStatus) error {
	if !to.Valid() {
		return apperrors.ErrInvalidStatus
	}

	var allowed map[models.UpdateStatus][]models.UpdateStatus
	switch role {
	case models.RoleCoordinator:
		allowed = coordinatorTransitions
	case models.RoleAdmin:
		allowed = adminTransitions
	default:
		return apperrors.ErrStatusNotAllowed
	}

	froms, ok := allowed[to]
	if !ok {
		return apperrors.ErrStatusNotAllowed
	}
	for _, f := range froms {
		if f == from {
			return nil
		}
	}
	return apperrors.ErrInvalidTransition
}

// target status => states it can be entered from
var (
	coordinatorTransitions = map[models.UpdateStatus][]models.UpdateStatus{
		models.UpdatePendingApproval: {models.UpdateDraft, models.UpdateRejected},
	}
	adminTransitions = map[models.UpdateStatus][]models.UpdateStatus{
		models.UpdateApproved:  {models.UpdatePendingApproval},
		models.UpdateRejected:  {models.UpdatePendingApproval, models.UpdateApproved},
		models.UpdatePublished: {models.UpdateApproved},
	}
)

// StudentFilter applies role scoping to a directory query: admins see
// every student, coordinators their department's branch, students
// themselves.
func StudentFilter(p models.Principal, f models.StudentFilter) (models.StudentFilter, error) {
	switch p.Role {
	case models.RoleAdmin:
		return f, nil
	case models.RoleCoordinator:
		if p.Department == "" {
			return f, ErrNoDepartment
		}
		f.Branch = p.Department
		return f, nil
	case models.RoleStudent:
		f.AccountID = p.AccountID
		return f, nil
	}
	return f, apperrors.ErrPermissionDenied
}

// CanViewStudent returns nil when p may read the directory entry.
func CanViewStudent(p models.Principal, s *models.StudentRecord) error {
	switch p.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCoordinator:
		if p.Department == "" {
			return ErrNoDepartment
		}
		if s.Branch != p.Department {
			return ErrOtherDepartment
		}
		return nil
	case models.RoleStudent:
		if s.AccountID != p.AccountID {
			return ErrOtherStudent
		}
		return nil
	}
	return apperrors.ErrPermissionDenied
}
