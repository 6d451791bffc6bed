package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chayo-ai/backend/models"
	"chayo-ai/backend/onboarding"
)

func ListFields(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgParam(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		fields, err := svc.ListFields(ctx, userID(c), orgID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"fields": fields})
	}
}

func UpsertField(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgParam(c)
		if !ok {
			return
		}
		var req models.UpsertFieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "code": "invalid_request"})
			return
		}
		value, err := req.FieldValue()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_request"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		f, err := svc.UpsertField(ctx, userID(c), orgID, c.Param("field_name"), value)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"field": f, "is_answered": f.IsAnswered()})
	}
}
