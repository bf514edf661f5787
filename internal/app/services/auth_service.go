package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/app/repositories"
	"github.com/lakshya/placement-portal/internal/pkg/apperrors"
	"github.com/lakshya/placement-portal/internal/pkg/auth"
	"github.com/lakshya/placement-portal/internal/pkg/events"
	"github.com/lakshya/placement-portal/internal/pkg/filestorage"
	"github.com/lakshya/placement-portal/internal/pkg/metrics"
	"github.com/lakshya/placement-portal/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// TokenType is the scheme clients send tokens back with
const TokenType = "Bearer"

// errLoginFailed is the single message for every failed login, so callers
// cannot tell unknown accounts from wrong passwords or disabled accounts.
var errLoginFailed = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid username or password")

// AuthService defines registration, login and self-service profile operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	GetProfile(ctx context.Context, accountID int64) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, p models.Principal, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UploadResume(ctx context.Context, p models.Principal, fileHeader *multipart.FileHeader) (*dto.StudentProfileResponse, error)
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	accounts    repositories.AccountStore
	transactor  repositories.AccountTransactor
	jwtService  *auth.JWTService
	revocations auth.RevocationList
	storage     filestorage.FileStorage
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	accounts repositories.AccountStore,
	transactor repositories.AccountTransactor,
	jwtService *auth.JWTService,
	revocations auth.RevocationList,
	storage filestorage.FileStorage,
	publisher events.Publisher,
	recorder *metrics.Metrics,
	logger zerolog.Logger,
) AuthService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &authServiceImpl{
		accounts:    accounts,
		transactor:  transactor,
		jwtService:  jwtService,
		revocations: revocations,
		storage:     storage,
		publisher:   publisher,
		metrics:     recorder,
		logger:      logger,
	}
}

// validateRegistration checks the role tag and that exactly the matching
// role data is present. It never touches storage.
func validateRegistration(req *dto.RegisterRequest) error {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("username", "username, email and password are required")
	}
	if !validation.IsValidUsername(req.Username) {
		return apperrors.NewValidationError("username", "username must be 3-50 letters, digits, dots, dashes or underscores")
	}
	if len(req.Password) < validation.PasswordMinLength || len(req.Password) > validation.PasswordMaxLength {
		return apperrors.NewValidationError("password",
			fmt.Sprintf("password must be %d-%d characters", validation.PasswordMinLength, validation.PasswordMaxLength))
	}
	if !req.Role.Valid() {
		return apperrors.NewCustomError(apperrors.ErrInvalidRole, "role must be one of admin, coordinator, student")
	}

	switch req.Role {
	case models.RoleStudent:
		if req.StudentData == nil {
			return apperrors.NewCustomError(apperrors.ErrMissingRoleData, "studentData is required for students")
		}
		if req.CoordinatorData != nil {
			return apperrors.NewValidationError("coordinatorData", "coordinatorData is only accepted for coordinators")
		}
		return validateStudentData(req.StudentData)
	case models.RoleCoordinator:
		if req.Department == nil || *req.Department == "" {
			return apperrors.NewCustomError(apperrors.ErrMissingRoleData, "department is required for coordinators")
		}
		if req.CoordinatorData == nil {
			return apperrors.NewCustomError(apperrors.ErrMissingRoleData, "coordinatorData is required for coordinators")
		}
		if req.StudentData != nil {
			return apperrors.NewValidationError("studentData", "studentData is only accepted for students")
		}
		return validateCoordinatorData(req.CoordinatorData)
	default:
		if req.StudentData != nil || req.CoordinatorData != nil {
			return apperrors.NewValidationError("role", "admins do not take role specific data")
		}
		return nil
	}
}

func validateStudentData(d *dto.StudentData) error {
	d.StudentID = strings.TrimSpace(d.StudentID)
	d.FullName = strings.TrimSpace(d.FullName)
	d.Branch = strings.TrimSpace(d.Branch)

	if !validation.IsValidStudentID(d.StudentID) {
		return apperrors.NewValidationError("studentData.student_id", "student_id must be 2-30 letters, digits or dashes")
	}
	if d.FullName == "" {
		return apperrors.NewValidationError("studentData.full_name", "full_name is required")
	}
	if d.Branch == "" {
		return apperrors.NewValidationError("studentData.branch", "branch is required")
	}
	if d.CGPA != nil && (*d.CGPA < 0 || *d.CGPA > 10) {
		return apperrors.NewValidationError("studentData.cgpa", "cgpa must be between 0 and 10")
	}
	if d.GraduationYear < 2000 || d.GraduationYear > 2100 {
		return apperrors.NewValidationError("studentData.graduation_year", "graduation_year must be between 2000 and 2100")
	}
	if d.Phone != "" {
		phone, err := validation.NormalizePhone(d.Phone)
		if err != nil {
			return apperrors.NewValidationError("studentData.phone", "phone must be a valid phone number")
		}
		d.Phone = phone
	}
	return nil
}

func validateCoordinatorData(d *dto.CoordinatorData) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return apperrors.NewValidationError("coordinatorData.name", "name is required")
	}
	if d.Phone != "" {
		phone, err := validation.NormalizePhone(d.Phone)
		if err != nil {
			return apperrors.NewValidationError("coordinatorData.phone", "phone must be a valid phone number")
		}
		d.Phone = phone
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Register creates an account and its role profile in one transaction and
// returns a session token for it.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	req.Normalize()
	role := string(req.Role)
	if !req.Role.Valid() {
		role = "unknown"
	}

	if err := validateRegistration(req); err != nil {
		s.metrics.ObserveRegistration(role, metrics.OutcomeInvalid)
		return nil, err
	}

	exists, err := s.accounts.IdentityExists(ctx, req.Username, req.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("Error checking identity uniqueness")
		return nil, fmt.Errorf("failed to check identity: %w", err)
	}
	if exists {
		s.metrics.ObserveRegistration(role, metrics.OutcomeFailure)
		return nil, apperrors.ErrIdentityTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	account := &models.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	switch req.Role {
	case models.RoleStudent:
		account.Department = optional(req.StudentData.Branch)
	case models.RoleCoordinator:
		account.Department = req.Department
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, store repositories.AccountStore) error {
		if err := store.CreateAccount(ctx, account); err != nil {
			return err
		}

		switch req.Role {
		case models.RoleStudent:
			d := req.StudentData
			taken, err := store.StudentIDExists(ctx, d.StudentID)
			if err != nil {
				return fmt.Errorf("failed to check student ID: %w", err)
			}
			if taken {
				return apperrors.ErrStudentIDTaken
			}
			return store.CreateStudentProfile(ctx, &models.StudentProfile{
				AccountID:       account.ID,
				StudentID:       d.StudentID,
				FullName:        d.FullName,
				Phone:           optional(d.Phone),
				Branch:          d.Branch,
				CGPA:            d.CGPA,
				GraduationYear:  d.GraduationYear,
				PlacementStatus: models.PlacementNotPlaced,
			})
		case models.RoleCoordinator:
			return store.CreateCoordinatorProfile(ctx, &models.CoordinatorProfile{
				AccountID:  account.ID,
				Department: *req.Department,
				Name:       req.CoordinatorData.Name,
				Phone:      optional(req.CoordinatorData.Phone),
			})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.metrics.ObserveRegistration(role, metrics.OutcomeFailure)
			s.logger.Warn().Err(err).Str("username", req.Username).Msg("Registration rejected by uniqueness")
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", req.Username).Msg("Registration transaction failed")
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	s.metrics.ObserveRegistration(role, metrics.OutcomeSuccess)
	s.logger.Info().Int64("accountID", account.ID).Str("username", account.Username).Str("role", role).Msg("Account registered")
	events.PublishAsync(s.publisher, s.logger, events.New(events.AccountRegistered, strconv.FormatInt(account.ID, 10), map[string]interface{}{
		"accountId":  account.ID,
		"username":   account.Username,
		"role":       account.Role,
		"department": account.DepartmentName(),
	}))

	token, err := s.jwtService.GenerateToken(account)
	if err != nil {
		s.logger.Error().Err(err).Int64("accountID", account.ID).Msg("Failed to issue token after registration")
		return nil, err
	}

	return &dto.RegisterResponse{
		UserID:    account.ID,
		Token:     token.Token,
		TokenType: TokenType,
		ExpiresIn: token.ExpiresIn,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// Login verifies credentials and issues a session token
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	identifier := req.Identifier()
	if identifier == "" || req.Password == "" {
		s.metrics.ObserveLogin(metrics.OutcomeInvalid)
		return nil, apperrors.NewValidationError("username", "username and password are required")
	}

	account, err := s.accounts.GetAccountByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			s.metrics.ObserveLogin(metrics.OutcomeFailure)
			s.logger.Info().Str("identifier", identifier).Msg("Login attempt for unknown account")
			return nil, errLoginFailed
		}
		s.logger.Error().Err(err).Str("identifier", identifier).Msg("Error loading account for login")
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		s.metrics.ObserveLogin(metrics.OutcomeFailure)
		s.logger.Info().Int64("accountID", account.ID).Msg("Login attempt with wrong password")
		return nil, errLoginFailed
	}

	if !account.IsActive {
		s.metrics.ObserveLogin(metrics.OutcomeLocked)
		s.logger.Info().Int64("accountID", account.ID).Msg("Login attempt for disabled account")
		return nil, errLoginFailed
	}

	token, err := s.jwtService.GenerateToken(account)
	if err != nil {
		s.logger.Error().Err(err).Int64("accountID", account.ID).Msg("Failed to issue token")
		return nil, err
	}

	now := s.jwtService.Now()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		s.logger.Warn().Err(err).Int64("accountID", account.ID).Msg("Failed to record last login")
	} else {
		account.LastLoginAt = &now
	}

	profile, err := s.buildProfile(ctx, account)
	if err != nil {
		// The token is valid without the profile.
		s.logger.Warn().Err(err).Int64("accountID", account.ID).Msg("Could not load role profile at login")
		profile = dto.NewProfileResponse(account, nil, nil)
	}

	s.metrics.ObserveLogin(metrics.OutcomeSuccess)
	s.logger.Info().Int64("accountID", account.ID).Str("role", string(account.Role)).Msg("Login successful")

	return &dto.LoginResponse{
		Token:     token.Token,
		TokenType: TokenType,
		ExpiresIn: token.ExpiresIn,
		ExpiresAt: token.ExpiresAt,
		User:      profile,
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime
func (s *authServiceImpl) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrTokenInvalid
	}

	ttl := s.jwtService.RemainingTTL(claims)
	if ttl <= 0 {
		return nil
	}

	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Error().Err(err).Int64("accountID", claims.AccountID).Msg("Failed to revoke token")
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.Info().Int64("accountID", claims.AccountID).Dur("ttl", ttl).Msg("Token revoked")
	return nil
}

// buildProfile loads the role profile that must exist for the account's role
func (s *authServiceImpl) buildProfile(ctx context.Context, account *models.Account) (*dto.ProfileResponse, error) {
	switch account.Role {
	case models.RoleStudent:
		student, err := s.accounts.GetStudentProfile(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		return dto.NewProfileResponse(account, student, nil), nil
	case models.RoleCoordinator:
		coordinator, err := s.accounts.GetCoordinatorProfile(ctx, account.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrCoordinatorNotFound) {
				return nil, apperrors.ErrProfileNotFound
			}
			return nil, err
		}
		return dto.NewProfileResponse(account, nil, coordinator), nil
	}
	return dto.NewProfileResponse(account, nil, nil), nil
}

// GetProfile returns the account together with its role profile
func (s *authServiceImpl) GetProfile(ctx context.Context, accountID int64) (*dto.ProfileResponse, error) {
	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			s.logger.Error().Err(err).Int64("accountID", accountID).Msg("Error loading account")
		}
		return nil, err
	}

	profile, err := s.buildProfile(ctx, account)
	if err != nil {
		if errors.Is(err, apperrors.ErrProfileNotFound) {
			s.logger.Warn().Int64("accountID", accountID).Str("role", string(account.Role)).Msg("Account has no role profile")
		}
		return nil, err
	}
	return profile, nil
}

// checkProfileFields rejects fields that do not belong to the caller's role
func checkProfileFields(role models.Role, req *dto.UpdateProfileRequest) error {
	if req.IsEmpty() {
		return apperrors.NewValidationError("body", "no fields to update")
	}
	switch role {
	case models.RoleStudent:
		if req.HasCoordinatorFields() {
			return apperrors.NewValidationError("name", "students update fullName, not name")
		}
	case models.RoleCoordinator:
		if req.HasStudentFields() {
			return apperrors.NewValidationError("body", "coordinators may only update email, name and phone")
		}
	default:
		if req.HasStudentFields() || req.HasCoordinatorFields() || req.Phone != nil {
			return apperrors.NewValidationError("body", "admins may only update email")
		}
	}
	return nil
}

// UpdateProfile applies a role-dependent partial update
func (s *authServiceImpl) UpdateProfile(ctx context.Context, p models.Principal, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if err := checkProfileFields(p.Role, req); err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if req.Phone != nil {
		phone, err := validation.NormalizePhone(*req.Phone)
		if err != nil {
			return nil, apperrors.NewValidationError("phone", "phone must be a valid phone number")
		}
		req.Phone = &phone
	}

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context, store repositories.AccountStore) error {
		if req.Email != nil {
			if err := store.UpdateEmail(ctx, p.AccountID, *req.Email); err != nil {
				return err
			}
		}

		switch p.Role {
		case models.RoleStudent:
			if !req.HasStudentFields() && req.Phone == nil {
				return nil
			}
			profile, err := store.GetStudentProfile(ctx, p.AccountID)
			if err != nil {
				return err
			}
			if req.FullName != nil {
				profile.FullName = strings.TrimSpace(*req.FullName)
			}
			if req.Phone != nil {
				profile.Phone = req.Phone
			}
			if req.Branch != nil {
				profile.Branch = strings.TrimSpace(*req.Branch)
			}
			if req.CGPA != nil {
				profile.CGPA = req.CGPA
			}
			if req.GraduationYear != nil {
				profile.GraduationYear = *req.GraduationYear
			}
			return store.UpdateStudentProfile(ctx, profile)
		case models.RoleCoordinator:
			if !req.HasCoordinatorFields() && req.Phone == nil {
				return nil
			}
			profile, err := store.GetCoordinatorProfile(ctx, p.AccountID)
			if err != nil {
				if errors.Is(err, apperrors.ErrCoordinatorNotFound) {
					return apperrors.ErrProfileNotFound
				}
				return err
			}
			if req.Name != nil {
				profile.Name = strings.TrimSpace(*req.Name)
			}
			if req.Phone != nil {
				profile.Phone = req.Phone
			}
			return store.UpdateCoordinatorProfile(ctx, profile)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Error().Err(err).Int64("accountID", p.AccountID).Msg("Profile update failed")
		}
		return nil, err
	}

	s.logger.Info().Int64("accountID", p.AccountID).Msg("Profile updated")
	return s.GetProfile(ctx, p.AccountID)
}

// UploadResume stores a PDF résumé for the calling student and records its path
func (s *authServiceImpl) UploadResume(ctx context.Context, p models.Principal, fileHeader *multipart.FileHeader) (*dto.StudentProfileResponse, error) {
	if !p.IsStudent() {
		return nil, apperrors.NewForbiddenError("only students can upload a resume")
	}
	if err := filestorage.ValidateResume(fileHeader); err != nil {
		return nil, err
	}

	profile, err := s.accounts.GetStudentProfile(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}

	path, err := s.storage.SaveFileWithPath(fileHeader, filestorage.ResumeDir)
	if err != nil {
		s.logger.Error().Err(err).Int64("accountID", p.AccountID).Msg("Failed to store resume")
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}

	previous := profile.ResumePath
	profile.ResumePath = &path
	if err := s.accounts.UpdateStudentProfile(ctx, profile); err != nil {
		if delErr := s.storage.DeleteFile(path); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", path).Msg("Failed to remove orphaned resume")
		}
		return nil, err
	}

	if previous != nil && *previous != "" {
		if err := s.storage.DeleteFile(*previous); err != nil {
			s.logger.Warn().Err(err).Str("path", *previous).Msg("Failed to remove previous resume")
		}
	}

	s.logger.Info().Int64("accountID", p.AccountID).Str("path", path).Msg("Resume uploaded")
	return dto.NewStudentProfileResponse(profile), nil
}
