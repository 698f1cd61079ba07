package handlers

import (
	"net/http"

	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers handles tenant-related HTTP requests
type TenantHandlers struct {
	tenantService services.TenantService
}

// NewTenantHandlers creates a new tenant handlers instance
func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

// GetMine godoc
// @Summary   The caller's tenant
// @Tags      tenants
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  models.TenantView
// @Failure   401  {object}  common.ErrorResponse
// @Router    /tenants/me [get]
func (h *TenantHandlers) GetMine(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}

	tenant, err := h.tenantService.GetMine(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// Upgrade godoc
// @Summary   Upgrade the caller's tenant to the pro plan
// @Tags      tenants
// @Produce   json
// @Security  BearerAuth
// @Param     slug  path      string  true  "Tenant slug"
// @Success   200   {object}  services.UpgradeResponse
// @Failure   401   {object}  common.ErrorResponse
// @Failure   403   {object}  common.ErrorResponse
// @Failure   404   {object}  common.ErrorResponse
// @Router    /tenants/{slug}/upgrade [post]
func (h *TenantHandlers) Upgrade(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}

	resp, err := h.tenantService.Upgrade(c.Request().Context(), identity, c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
