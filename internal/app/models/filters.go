package models

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// AccountFilter narrows the admin account listing.
type AccountFilter struct {
	Role     Role
	IsActive *bool
	Search   string
}

// StudentFilter narrows the student directory. Branch and AccountID are
// also used for role scoping.
type StudentFilter struct {
	AccountID       int64
	Branch          string
	PlacementStatus PlacementStatus
	MinCGPA         *float64
	GraduationYear  *int
}

// CompanyUpdateFilter narrows company update listings. CoordinatorID and
// Statuses carry role scoping.
type CompanyUpdateFilter struct {
	CoordinatorID int64
	Statuses      []UpdateStatus
}
