package dto

import (
	"strings"
	"time"

	"github.com/lakshya/placement-portal/internal/app/models"
)

// StudentData is the student half of a registration. Keys follow the
// registration form's snake_case layout.
type StudentData struct {
	StudentID      string   `json:"student_id" binding:"required,studentid" example:"S001"`
	FullName       string   `json:"full_name" binding:"required,min=2,max=100" example:"A B"`
	Phone          string   `json:"phone" binding:"omitempty,phone" example:"+919876543210"`
	Branch         string   `json:"branch" binding:"required,max=50" example:"CSE"`
	CGPA           *float64 `json:"cgpa" binding:"omitempty,gte=0,lte=10" example:"8.2"`
	GraduationYear int      `json:"graduation_year" binding:"required,gte=2000,lte=2100" example:"2025"`
}

// CoordinatorData is the coordinator half of a registration
type CoordinatorData struct {
	Name  string `json:"name" binding:"required,min=2,max=100" example:"Dr. Rao"`
	Phone string `json:"phone" binding:"omitempty,phone" example:"+919876543210"`
}

// RegisterRequest represents an account registration. Exactly the role
// data matching Role must be present: studentData for students,
// department plus coordinatorData for coordinators, nothing for admins.
type RegisterRequest struct {
	Username        string           `json:"username" binding:"required,username" example:"stu1"`
	Email           string           `json:"email" binding:"required,email,max=100" example:"stu1@x.edu"`
	Password        string           `json:"password" binding:"required,min=6,max=72" example:"secret1"`
	Role            models.Role      `json:"role" binding:"required,oneof=admin coordinator student" example:"student"`
	Department      *string          `json:"department" binding:"omitempty,max=100" example:"CSE"`
	StudentData     *StudentData     `json:"studentData"`
	CoordinatorData *CoordinatorData `json:"coordinatorData"`
}

// Normalize trims identity fields and lowercases the email.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Department != nil {
		d := strings.TrimSpace(*r.Department)
		r.Department = &d
	}
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	UserID    int64     `json:"userId" example:"5"`
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType" example:"Bearer"`
	ExpiresIn int64     `json:"expiresIn" example:"86400"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginRequest represents login credentials. Username accepts either the
// username or the email address.
type LoginRequest struct {
	Username string `json:"username" binding:"required_without=Email" example:"stu1"`
	Email    string `json:"email" binding:"omitempty,email" example:"stu1@x.edu"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// Identifier returns the login name to look up.
func (r *LoginRequest) Identifier() string {
	if id := strings.TrimSpace(r.Username); id != "" {
		return id
	}
	return strings.ToLower(strings.TrimSpace(r.Email))
}

// LoginResponse represents a successful authentication
type LoginResponse struct {
	Token     string           `json:"token"`
	TokenType string           `json:"tokenType" example:"Bearer"`
	ExpiresIn int64            `json:"expiresIn" example:"86400"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      *ProfileResponse `json:"user"`
}

// UpdateProfileRequest is a role-dependent partial update. Nil fields are
// left unchanged; fields for another role are rejected.
type UpdateProfileRequest struct {
	Email          *string  `json:"email" binding:"omitempty,email,max=100" example:"stu1@x.edu"`
	FullName       *string  `json:"fullName" binding:"omitempty,min=2,max=100"`
	Phone          *string  `json:"phone" binding:"omitempty,phone"`
	Branch         *string  `json:"branch" binding:"omitempty,max=50"`
	CGPA           *float64 `json:"cgpa" binding:"omitempty,gte=0,lte=10"`
	GraduationYear *int     `json:"graduationYear" binding:"omitempty,gte=2000,lte=2100"`
	Name           *string  `json:"name" binding:"omitempty,min=2,max=100"`
}

// HasStudentFields reports whether any student-only field is set.
func (r *UpdateProfileRequest) HasStudentFields() bool {
	return r.FullName != nil || r.Branch != nil || r.CGPA != nil || r.GraduationYear != nil
}

// HasCoordinatorFields reports whether any coordinator-only field is set.
func (r *UpdateProfileRequest) HasCoordinatorFields() bool {
	return r.Name != nil
}

// IsEmpty reports whether the request changes nothing.
func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.Email == nil && r.Phone == nil && !r.HasStudentFields() && !r.HasCoordinatorFields()
}

// StudentProfileResponse is a student profile with its derived category
type StudentProfileResponse struct {
	models.StudentProfile
	PlacementCategory string `json:"placementCategory" example:"Excellent"`
}

// NewStudentProfileResponse converts a model.
func NewStudentProfileResponse(p *models.StudentProfile) *StudentProfileResponse {
	if p == nil {
		return nil
	}
	return &StudentProfileResponse{
		StudentProfile:    *p,
		PlacementCategory: p.PlacementCategory(),
	}
}

// ProfileResponse is the account together with its role profile
type ProfileResponse struct {
	ID          int64                      `json:"id" example:"5"`
	Username    string                     `json:"username" example:"stu1"`
	Email       string                     `json:"email" example:"stu1@x.edu"`
	Role        models.Role                `json:"role" example:"student"`
	Department  *string                    `json:"department,omitempty" example:"CSE"`
	IsActive    bool                       `json:"isActive" example:"true"`
	CreatedAt   time.Time                  `json:"createdAt"`
	LastLoginAt *time.Time                 `json:"lastLoginAt,omitempty"`
	Student     *StudentProfileResponse    `json:"student,omitempty"`
	Coordinator *models.CoordinatorProfile `json:"coordinator,omitempty"`
}

// NewProfileResponse assembles the response from an account and its optional profiles.
func NewProfileResponse(account *models.Account, student *models.StudentProfile, coordinator *models.CoordinatorProfile) *ProfileResponse {
	if account == nil {
		return nil
	}
	return &ProfileResponse{
		ID:          account.ID,
		Username:    account.Username,
		Email:       account.Email,
		Role:        account.Role,
		Department:  account.Department,
		IsActive:    account.IsActive,
		CreatedAt:   account.CreatedAt,
		LastLoginAt: account.LastLoginAt,
		Student:     NewStudentProfileResponse(student),
		Coordinator: coordinator,
	}
}
