package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ugportal-api/internal/dto"
	"github.com/noah-isme/ugportal-api/internal/models"
	appErrors "github.com/noah-isme/ugportal-api/pkg/errors"
	"github.com/noah-isme/ugportal-api/pkg/response"
)

type studentService interface {
	Register(ctx context.Context, req dto.RegisterStudentRequest) (*models.Student, error)
	Profile(ctx context.Context, id string) (*models.Student, error)
	UpdateProfile(ctx context.Context, id string, req dto.UpdateStudentProfileRequest) (*models.Student, error)
	AvailableSubjects(ctx context.Context, id string) (*dto.AvailableSubjectsResponse, error)
	Enroll(ctx context.Context, id string, req dto.EnrollRequest) ([]models.Subject, error)
	LinkSubjects(ctx context.Context, req dto.LinkSubjectRequest) error
}

// StudentHandler serves student account and enrolment endpoints.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service studentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// Register godoc
// @Summary Register a student account
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.RegisterStudentRequest true "Student"
// @Success 201 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /student/register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Please provide all required fields"))
		return
	}
	student, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Profile godoc
// @Summary Current student's profile
// @Tags Students
// @Produce json
// @Success 200 {object} models.Student
// @Failure 404 {object} response.ErrorBody
// @Router /student/profile [get]
func (h *StudentHandler) Profile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	student, err := h.service.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// UpdateProfile godoc
// @Summary Update the current student's name and email
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.UpdateStudentProfileRequest true "Profile"
// @Success 200 {object} models.Student
// @Failure 409 {object} response.ErrorBody
// @Router /student/profile [put]
func (h *StudentHandler) UpdateProfile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateStudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}
	student, err := h.service.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// AvailableSubjects godoc
// @Summary Enrolled subjects and subjects still open in the student's branch
// @Tags Students
// @Produce json
// @Success 200 {object} dto.AvailableSubjectsResponse
// @Router /student/available-subjects [get]
func (h *StudentHandler) AvailableSubjects(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.service.AvailableSubjects(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Enroll godoc
// @Summary Enrol the current student in subjects of their branch
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.EnrollRequest true "Subjects"
// @Success 200 {object} dto.EnrollResponse
// @Failure 400 {object} response.ErrorBody
// @Router /student/enroll [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Please provide valid subject IDs"))
		return
	}
	enrolled, err := h.service.Enroll(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.EnrollResponse{Message: "Successfully enrolled in subjects", EnrolledSubjects: enrolled})
}

// LinkSubject godoc
// @Summary Link subjects to a student by roll number
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.LinkSubjectRequest true "Link"
// @Success 200 {object} response.MessageBody
// @Failure 404 {object} response.ErrorBody
// @Router /student/linksubject [post]
func (h *StudentHandler) LinkSubject(c *gin.Context) {
	var req dto.LinkSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Please provide all required fields"))
		return
	}
	if err := h.service.LinkSubjects(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Subjects added to student successfully")
}
