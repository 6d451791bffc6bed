package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chayo-ai/backend/middlewares"
	"chayo-ai/backend/onboarding"
)

var statusByCode = map[string]int{
	"not_found":            http.StatusNotFound,
	"access_denied":        http.StatusForbidden,
	"precondition_failed":  http.StatusPreconditionFailed,
	"upstream_unavailable": http.StatusServiceUnavailable,
	"unrecognized_value":   http.StatusBadRequest,
}

// respondError writes the taxonomy error as {"error","code"}. Unknown errors
// become a 500 without leaking the message.
func respondError(c *gin.Context, err error) {
	code := onboarding.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func orgParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("org_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id", "code": "invalid_request"})
		return uuid.Nil, false
	}
	return id, true
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(middlewares.UserIDKey)
}
