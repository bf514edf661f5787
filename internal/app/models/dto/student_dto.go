package dto

import "github.com/lakshya/placement-portal/internal/app/models"

// StudentListQuery filters the student directory
type StudentListQuery struct {
	Branch          string                 `form:"branch" binding:"omitempty,max=50"`
	PlacementStatus models.PlacementStatus `form:"placementStatus" binding:"omitempty,oneof=not_placed placed opted_out"`
	MinCGPA         *float64               `form:"minCgpa" binding:"omitempty,gte=0,lte=10"`
	GraduationYear  *int                   `form:"graduationYear" binding:"omitempty,gte=2000,lte=2100"`
}

// StudentResponse is a directory entry
type StudentResponse struct {
	StudentProfileResponse
	Username string `json:"username" example:"stu1"`
	Email    string `json:"email" example:"stu1@x.edu"`
}

// NewStudentResponse converts a directory row.
func NewStudentResponse(s *models.StudentRecord) StudentResponse {
	return StudentResponse{
		StudentProfileResponse: *NewStudentProfileResponse(&s.StudentProfile),
		Username:               s.Username,
		Email:                  s.Email,
	}
}
