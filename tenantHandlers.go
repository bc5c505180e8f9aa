package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fpadjusters/claims_backend/models"
)

// signupRequest creates a tenant together with its first admin user in one
// request, so a fresh firm never exists without someone able to log in.
type signupRequest struct {
	Tenant models.NewTenant `json:"tenant" binding:"required"`
	Admin  models.NewUser   `json:"admin" binding:"required"`
}

func signupTenantHandler(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	tenant, err := models.CreateTenant(ctx, &req.Tenant)
	if err != nil {
		respondError(c, err)
		return
	}

	req.Admin.TenantId = tenant.ID
	req.Admin.Role = string(models.UserRoleAdmin)
	admin, err := models.RegisterUser(ctx, &req.Admin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tenant": tenant, "admin": admin})
}

func getTenantHandler(c *gin.Context) {
	tenant, err := models.GetCurrentTenant(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func updateTenantHandler(c *gin.Context) {
	var input models.NewTenant
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	tenant, err := models.UpdateTenant(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}
