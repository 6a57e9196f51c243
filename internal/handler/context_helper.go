package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-crm-api/internal/middleware"
	"github.com/noah-isme/edu-crm-api/internal/service"
)

// callerFromContext describes the authenticated user of the request. Without
// claims the caller is anonymous and services reject it.
func callerFromContext(c *gin.Context) service.Caller {
	caller := service.Caller{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if claims, ok := middleware.Claims(c); ok {
		caller.UserID = claims.UserID
		caller.Role = claims.Role
	}
	return caller
}
