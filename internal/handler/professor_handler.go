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

type professorService interface {
	Register(ctx context.Context, req dto.RegisterProfessorRequest) (*models.Professor, error)
	Profile(ctx context.Context, id string) (*models.Professor, error)
	UpdateProfile(ctx context.Context, id string, req dto.UpdateProfessorProfileRequest) (*models.Professor, error)
	Dashboard(ctx context.Context, id string) (*dto.ProfessorDashboardResponse, error)
	CreateSubject(ctx context.Context, professorID string, req dto.CreateSubjectRequest) (*models.Subject, error)
	UploadMarks(ctx context.Context, professorID string, req dto.UploadMarksRequest) (*models.Mark, error)
}

// ProfessorHandler serves professor account and subject endpoints.
type ProfessorHandler struct {
	service professorService
}

// NewProfessorHandler constructs the handler.
func NewProfessorHandler(service professorService) *ProfessorHandler {
	return &ProfessorHandler{service: service}
}

// Register godoc
// @Summary Register a professor account
// @Tags Professors
// @Accept json
// @Produce json
// @Param payload body dto.RegisterProfessorRequest true "Professor"
// @Success 201 {object} models.Professor
// @Failure 409 {object} response.ErrorBody
// @Router /professor/register [post]
func (h *ProfessorHandler) Register(c *gin.Context) {
	var req dto.RegisterProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Please provide all required fields"))
		return
	}
	professor, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, professor)
}

// Profile godoc
// @Summary Current professor's profile
// @Tags Professors
// @Produce json
// @Success 200 {object} models.Professor
// @Router /professor/profile [get]
func (h *ProfessorHandler) Profile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	professor, err := h.service.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, professor)
}

// UpdateProfile godoc
// @Summary Update the current professor's profile
// @Tags Professors
// @Accept json
// @Produce json
// @Param payload body dto.UpdateProfessorProfileRequest true "Profile"
// @Success 200 {object} models.Professor
// @Router /professor/profile [put]
func (h *ProfessorHandler) UpdateProfile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateProfessorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}
	professor, err := h.service.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, professor)
}

// Dashboard godoc
// @Summary Professor landing data
// @Tags Professors
// @Produce json
// @Success 200 {object} dto.ProfessorDashboardResponse
// @Router /professor/dashboard [get]
func (h *ProfessorHandler) Dashboard(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.service.Dashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// CreateSubject godoc
// @Summary Create a subject taught by the current professor
// @Tags Professors
// @Accept json
// @Produce json
// @Param payload body dto.CreateSubjectRequest true "Subject"
// @Success 201 {object} dto.CreateSubjectResponse
// @Failure 400 {object} response.ErrorBody
// @Router /professor/create-subject [post]
func (h *ProfessorHandler) CreateSubject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Please provide all required fields"))
		return
	}
	subject, err := h.service.CreateSubject(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.CreateSubjectResponse{Message: "Subject created and assigned successfully", Subject: subject})
}

// UploadMarks godoc
// @Summary Record a student's marks in a subject
// @Tags Professors
// @Accept json
// @Produce json
// @Param payload body dto.UploadMarksRequest true "Marks"
// @Success 201 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /professor/upload-marks [post]
func (h *ProfessorHandler) UploadMarks(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UploadMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Please provide all required fields"))
		return
	}
	if _, err := h.service.UploadMarks(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Marks uploaded successfully")
}
