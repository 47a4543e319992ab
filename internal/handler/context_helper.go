package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ugportal-api/internal/middleware"
	"github.com/noah-isme/ugportal-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func actorFromContext(c *gin.Context) models.Actor {
	actor := models.Actor{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if claims := claimsFromContext(c); claims != nil {
		actor.ID = claims.UserID
		actor.Role = claims.Role
	}
	return actor
}
