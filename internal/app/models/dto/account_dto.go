package dto

import "github.com/lakshya/placement-portal/internal/app/models"

// AccountListQuery filters the admin account listing
type AccountListQuery struct {
	Role     models.Role `form:"role" binding:"omitempty,oneof=admin coordinator student"`
	IsActive *bool       `form:"isActive"`
	Search   string      `form:"search" binding:"omitempty,max=100"`
}

// UpdateAccountStatusRequest activates or deactivates an account
type UpdateAccountStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required" example:"false"`
}
