package controllers

import (
	"context"
	"mime/multipart"

	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/pkg/auth"
	"github.com/stretchr/testify/mock"
)

// MockAuthService implements services.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.RegisterResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.LoginResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

func (m *MockAuthService) GetProfile(ctx context.Context, accountID int64) (*dto.ProfileResponse, error) {
	args := m.Called(ctx, accountID)
	resp, _ := args.Get(0).(*dto.ProfileResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, p models.Principal, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	args := m.Called(ctx, p, req)
	resp, _ := args.Get(0).(*dto.ProfileResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) UploadResume(ctx context.Context, p models.Principal, fileHeader *multipart.FileHeader) (*dto.StudentProfileResponse, error) {
	args := m.Called(ctx, p, fileHeader)
	resp, _ := args.Get(0).(*dto.StudentProfileResponse)
	return resp, args.Error(1)
}

// MockAccountService implements services.AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListAccounts(ctx context.Context, query dto.AccountListQuery, page models.Page) (*dto.PaginatedResponse, error) {
	args := m.Called(ctx, query, page)
	resp, _ := args.Get(0).(*dto.PaginatedResponse)
	return resp, args.Error(1)
}

func (m *MockAccountService) SetActive(ctx context.Context, actor models.Principal, accountID int64, active bool) (*models.Account, error) {
	args := m.Called(ctx, actor, accountID, active)
	resp, _ := args.Get(0).(*models.Account)
	return resp, args.Error(1)
}

// MockStudentService implements services.StudentService
type MockStudentService struct {
	mock.Mock
}

func (m *MockStudentService) ListStudents(ctx context.Context, p models.Principal, query dto.StudentListQuery, page models.Page) (*dto.PaginatedResponse, error) {
	args := m.Called(ctx, p, query, page)
	resp, _ := args.Get(0).(*dto.PaginatedResponse)
	return resp, args.Error(1)
}

func (m *MockStudentService) GetStudent(ctx context.Context, p models.Principal, studentID string) (*dto.StudentResponse, error) {
	args := m.Called(ctx, p, studentID)
	resp, _ := args.Get(0).(*dto.StudentResponse)
	return resp, args.Error(1)
}

// MockCompanyUpdateService implements services.CompanyUpdateService
type MockCompanyUpdateService struct {
	mock.Mock
}

func (m *MockCompanyUpdateService) List(ctx context.Context, p models.Principal, query dto.CompanyUpdateListQuery, page models.Page) (*dto.PaginatedResponse, error) {
	args := m.Called(ctx, p, query, page)
	resp, _ := args.Get(0).(*dto.PaginatedResponse)
	return resp, args.Error(1)
}

func (m *MockCompanyUpdateService) Get(ctx context.Context, p models.Principal, id int64) (*models.CompanyUpdate, error) {
	args := m.Called(ctx, p, id)
	resp, _ := args.Get(0).(*models.CompanyUpdate)
	return resp, args.Error(1)
}

func (m *MockCompanyUpdateService) Create(ctx context.Context, p models.Principal, req *dto.CompanyUpdateRequest) (*models.CompanyUpdate, error) {
	args := m.Called(ctx, p, req)
	resp, _ := args.Get(0).(*models.CompanyUpdate)
	return resp, args.Error(1)
}

func (m *MockCompanyUpdateService) Update(ctx context.Context, p models.Principal, id int64, req *dto.CompanyUpdateRequest) (*models.CompanyUpdate, error) {
	args := m.Called(ctx, p, id, req)
	resp, _ := args.Get(0).(*models.CompanyUpdate)
	return resp, args.Error(1)
}

func (m *MockCompanyUpdateService) UpdateStatus(ctx context.Context, p models.Principal, id int64, req *dto.UpdateStatusRequest) (*models.CompanyUpdate, error) {
	args := m.Called(ctx, p, id, req)
	resp, _ := args.Get(0).(*models.CompanyUpdate)
	return resp, args.Error(1)
}

func (m *MockCompanyUpdateService) Delete(ctx context.Context, p models.Principal, id int64) error {
	return m.Called(ctx, p, id).Error(0)
}
