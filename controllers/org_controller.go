package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chayo-ai/backend/models"
)

type OrgCreator interface {
	CreateOrganization(ctx context.Context, name string, owner int64) (uuid.UUID, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// CreateOrganization registers a tenant with the caller as owner.
func CreateOrganization(orgs OrgCreator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateOrganizationRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body or missing name", "code": "invalid_request"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		id, err := orgs.CreateOrganization(ctx, strings.TrimSpace(req.Name), userID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error", "code": "internal"})
			return
		}
		c.JSON(http.StatusCreated, models.CreateOrganizationResponse{OrganizationID: id.String()})
	}
}

func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
