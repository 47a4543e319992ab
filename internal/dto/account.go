package dto

import "github.com/noah-isme/ugportal-api/internal/models"

// RegisterStudentRequest captures POST /student/register payload.
type RegisterStudentRequest struct {
	RollNumber string `json:"rollNumber" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Branch     string `json:"branch" validate:"required"`
	Section    string `json:"section" validate:"required"`
}

// RegisterProfessorRequest captures POST /professor/register payload.
type RegisterProfessorRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Branches []string `json:"branches" validate:"required,min=1,dive,required"`
	Sections []string `json:"sections" validate:"required,min=1,dive,required"`
}

// UpdateStudentProfileRequest captures PUT /student/profile payload.
type UpdateStudentProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateProfessorProfileRequest captures PUT /professor/profile payload.
type UpdateProfessorProfileRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Branches []string `json:"branches" validate:"omitempty,dive,required"`
	Sections []string `json:"sections" validate:"omitempty,dive,required"`
}

// EnrollRequest captures POST /student/enroll payload.
type EnrollRequest struct {
	SubjectIDs []string `json:"subjectIds" validate:"required,min=1,dive,required"`
}

// EnrollResponse echoes the subjects the student was enrolled in.
type EnrollResponse struct {
	Message          string           `json:"message"`
	EnrolledSubjects []models.Subject `json:"enrolledSubjects"`
}

// LinkSubjectRequest captures POST /student/linksubject payload.
type LinkSubjectRequest struct {
	RollNumber string   `json:"rollNumber" validate:"required"`
	SubjectIDs []string `json:"subjectIds" validate:"required,min=1,dive,required"`
}

// CreateSubjectRequest captures POST /professor/create-subject payload.
type CreateSubjectRequest struct {
	Name   string `json:"name" validate:"required"`
	Code   string `json:"code" validate:"required"`
	Branch string `json:"branch" validate:"required"`
}

// UploadMarksRequest captures POST /professor/upload-marks payload. Marks is a pointer so a score of zero passes the required check.
type UploadMarksRequest struct {
	StudentID string   `json:"studentId" validate:"required"`
	SubjectID string   `json:"subjectId" validate:"required"`
	Marks     *float64 `json:"marks" validate:"required,gte=0"`
	Type      string   `json:"type" validate:"required,max=50"`
}

// CreateSubjectResponse echoes the stored subject.
type CreateSubjectResponse struct {
	Message string          `json:"message"`
	Subject *models.Subject `json:"subject"`
}

// AvailableSubjectsResponse lists enrolled subjects and what the student may still join.
type AvailableSubjectsResponse struct {
	CurrentSubjects   []models.Subject `json:"currentSubjects"`
	AvailableSubjects []models.Subject `json:"availableSubjects"`
}

// ProfessorDashboardResponse is the landing payload for professors.
type ProfessorDashboardResponse struct {
	Professor   *models.Professor `json:"professor"`
	Subjects    []models.Subject  `json:"subjects"`
	HasSubjects bool              `json:"hasSubjects"`
}
