package models

import "time"

// UpdateStatus is the review state of a company update
type UpdateStatus string

const (
	UpdateDraft           UpdateStatus = "draft"
	UpdatePendingApproval UpdateStatus = "pending_approval"
	UpdateApproved        UpdateStatus = "approved"
	UpdateRejected        UpdateStatus = "rejected"
	UpdatePublished       UpdateStatus = "published"
)

// Valid reports whether s is a known status.
func (s UpdateStatus) Valid() bool {
	switch s {
	case UpdateDraft, UpdatePendingApproval, UpdateApproved, UpdateRejected, UpdatePublished:
		return true
	}
	return false
}

// OwnerMutableStatuses lists the statuses in which the owning coordinator
// may still edit or delete an update.
var OwnerMutableStatuses = []UpdateStatus{UpdateDraft, UpdateRejected}

// Deletable reports whether an update in this status may be removed by its owner.
func (s UpdateStatus) Deletable() bool {
	return s == UpdateDraft || s == UpdateRejected
}

// Editable reports whether the owning coordinator may still change the content.
func (s UpdateStatus) Editable() bool {
	return s == UpdateDraft || s == UpdateRejected
}

// CompanyUpdate is a recruiting announcement drafted by a coordinator
// and reviewed by an admin before students can see it.
type CompanyUpdate struct {
	ID                  int64        `json:"id" db:"id"`
	CoordinatorID       int64        `json:"coordinatorId" db:"coordinator_id"`
	CompanyName         string       `json:"companyName" db:"company_name"`
	JobTitle            string       `json:"jobTitle" db:"job_title"`
	JobDescription      *string      `json:"jobDescription,omitempty" db:"job_description"`
	Requirements        *string      `json:"requirements,omitempty" db:"requirements"`
	PackageDetails      *string      `json:"packageDetails,omitempty" db:"package_details"`
	EligibilityCriteria *string      `json:"eligibilityCriteria,omitempty" db:"eligibility_criteria"`
	ApplicationDeadline *time.Time   `json:"applicationDeadline,omitempty" db:"application_deadline"`
	InterviewSchedule   *string      `json:"interviewSchedule,omitempty" db:"interview_schedule"`
	Location            *string      `json:"location,omitempty" db:"location"`
	Status              UpdateStatus `json:"status" db:"status"`
	AdminNotes          *string      `json:"adminNotes,omitempty" db:"admin_notes"`
	CreatedAt           time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time    `json:"updatedAt" db:"updated_at"`

	// Joined from coordinator_profiles
	CoordinatorName string `json:"coordinatorName" db:"coordinator_name"`
	Department      string `json:"department" db:"department"`
}
