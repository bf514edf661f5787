package dto

import (
	"time"

	"github.com/lakshya/placement-portal/internal/app/models"
)

// CompanyUpdateRequest carries the editable content of a company update
type CompanyUpdateRequest struct {
	CompanyName         string     `json:"companyName" binding:"required,max=100" example:"Acme Corp"`
	JobTitle            string     `json:"jobTitle" binding:"required,max=100" example:"Graduate Engineer"`
	JobDescription      *string    `json:"jobDescription" binding:"omitempty,max=5000"`
	Requirements        *string    `json:"requirements" binding:"omitempty,max=5000"`
	PackageDetails      *string    `json:"packageDetails" binding:"omitempty,max=500" example:"12 LPA"`
	EligibilityCriteria *string    `json:"eligibilityCriteria" binding:"omitempty,max=1000" example:"CGPA >= 7.0"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	InterviewSchedule   *string    `json:"interviewSchedule" binding:"omitempty,max=1000"`
	Location            *string    `json:"location" binding:"omitempty,max=200" example:"Bengaluru"`
}

// Apply copies the request onto u.
func (r *CompanyUpdateRequest) Apply(u *models.CompanyUpdate) {
	u.CompanyName = r.CompanyName
	u.JobTitle = r.JobTitle
	u.JobDescription = r.JobDescription
	u.Requirements = r.Requirements
	u.PackageDetails = r.PackageDetails
	u.EligibilityCriteria = r.EligibilityCriteria
	u.ApplicationDeadline = r.ApplicationDeadline
	u.InterviewSchedule = r.InterviewSchedule
	u.Location = r.Location
}

// UpdateStatusRequest moves a company update through review
type UpdateStatusRequest struct {
	Status     models.UpdateStatus `json:"status" binding:"required,oneof=draft pending_approval approved rejected published" example:"pending_approval"`
	AdminNotes *string             `json:"adminNotes" binding:"omitempty,max=1000"`
}

// CompanyUpdateListQuery filters the company update listing
type CompanyUpdateListQuery struct {
	Status models.UpdateStatus `form:"status" binding:"omitempty,oneof=draft pending_approval approved rejected published"`
}
