package models

import (
	"time"
)

// Role is the account role tag stored on every account
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleStudent     Role = "student"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleCoordinator, RoleStudent}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleStudent:
		return true
	}
	return false
}

// Account defines the credential record based on the 'accounts' table
type Account struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Username     string     `json:"username" db:"username" example:"stu1"`
	Email        string     `json:"email" db:"email" example:"stu1@x.edu"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role" example:"student"`
	Department   *string    `json:"department,omitempty" db:"department" example:"CSE"`
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// DepartmentName returns the department or an empty string.
func (a *Account) DepartmentName() string {
	if a == nil || a.Department == nil {
		return ""
	}
	return *a.Department
}

// Principal is the identity decoded from a verified session token.
// Handlers and services use it to scope reads and writes by role.
type Principal struct {
	AccountID  int64
	Username   string
	Role       Role
	Department string
}

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// IsCoordinator reports whether the caller holds the coordinator role.
func (p Principal) IsCoordinator() bool { return p.Role == RoleCoordinator }

// IsStudent reports whether the caller holds the student role.
func (p Principal) IsStudent() bool { return p.Role == RoleStudent }
