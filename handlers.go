package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/fpadjusters/claims_backend/config"
	"github.com/fpadjusters/claims_backend/utils"
)

// respondError maps model-layer errors onto HTTP statuses. Tenant mismatches
// return the same 404 body as a plain miss so a caller cannot probe other
// tenants' id space; the denial is still logged with the real reason.
func respondError(c *gin.Context, err error) {
	logger := config.GetLogger()
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, utils.ErrorTenantMismatch):
		tenantId, _ := utils.GetTenantIdFromContext(ctx)
		userId, _ := utils.GetUserIdFromContext(ctx)
		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		logger.WithFields(logrus.Fields{
			"tenant_id":      tenantId,
			"user_id":        userId,
			"correlation_id": cid,
			"path":           c.Request.URL.Path,
		}).Warn("cross-tenant access denied")
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, utils.ErrorDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, utils.ErrorUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service failed"})
	case errors.Is(err, utils.ErrorInternal):
		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		logger.WithFields(logrus.Fields{
			"correlation_id": cid,
			"path":           c.Request.URL.Path,
		}).Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func bindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &v, true
}
