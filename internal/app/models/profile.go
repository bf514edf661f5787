package models

// PlacementStatus tracks where a student is in the placement season
type PlacementStatus string

const (
	PlacementNotPlaced PlacementStatus = "not_placed"
	PlacementPlaced    PlacementStatus = "placed"
	PlacementOptedOut  PlacementStatus = "opted_out"
)

// StudentProfile defines the student extension based on the 'student_profiles' table
type StudentProfile struct {
	AccountID       int64           `json:"accountId" db:"account_id" example:"5"`
	StudentID       string          `json:"studentId" db:"student_id" example:"S001"`
	FullName        string          `json:"fullName" db:"full_name" example:"A B"`
	Phone           *string         `json:"phone,omitempty" db:"phone" example:"+919876543210"`
	Branch          string          `json:"branch" db:"branch" example:"CSE"`
	CGPA            *float64        `json:"cgpa,omitempty" db:"cgpa" example:"8.7"`
	GraduationYear  int             `json:"graduationYear" db:"graduation_year" example:"2025"`
	ResumePath      *string         `json:"resumePath,omitempty" db:"resume_path"`
	PlacementStatus PlacementStatus `json:"placementStatus" db:"placement_status" example:"not_placed"`
}

// PlacementCategory buckets the CGPA for dashboards.
func (s *StudentProfile) PlacementCategory() string {
	if s.CGPA == nil {
		return "Below Average"
	}
	switch cgpa := *s.CGPA; {
	case cgpa >= 8.5:
		return "Excellent"
	case cgpa >= 7.0:
		return "Good"
	case cgpa >= 6.0:
		return "Average"
	default:
		return "Below Average"
	}
}

// CoordinatorProfile defines the coordinator extension based on the 'coordinator_profiles' table
type CoordinatorProfile struct {
	ID         int64   `json:"coordinatorId" db:"id" example:"3"`
	AccountID  int64   `json:"accountId" db:"account_id" example:"2"`
	Department string  `json:"department" db:"department" example:"CSE"`
	Name       string  `json:"name" db:"name" example:"Dr. Rao"`
	Phone      *string `json:"phone,omitempty" db:"phone"`
}

// StudentRecord is a directory row: the profile joined with its account.
type StudentRecord struct {
	StudentProfile
	Username string `json:"username" db:"username"`
	Email    string `json:"email" db:"email"`
}
