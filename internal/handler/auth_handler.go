package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ugportal-api/internal/models"
	appErrors "github.com/noah-isme/ugportal-api/pkg/errors"
	"github.com/noah-isme/ugportal-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, role models.UserRole, req models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler exposes the student and professor login endpoints.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

// StudentLogin godoc
// @Summary Student login
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /student/login [post]
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	h.login(c, models.RoleStudent)
}

// ProfessorLogin godoc
// @Summary Professor login
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /professor/login [post]
func (h *AuthHandler) ProfessorLogin(c *gin.Context) {
	h.login(c, models.RoleProfessor)
}

func (h *AuthHandler) login(c *gin.Context, role models.UserRole) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Email and password are required"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	result, err := h.service.Login(c.Request.Context(), role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
