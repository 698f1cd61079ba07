package handlers

import (
	"net/http"

	"notesaas/internal/models"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
)

type BillingHandlers struct {
	billingService services.BillingService
}

func NewBillingHandlers(billingService services.BillingService) *BillingHandlers {
	return &BillingHandlers{billingService: billingService}
}

type CheckoutRequest struct {
	Plan       models.Plan `json:"plan"`
	TenantSlug string      `json:"tenantSlug"`
}

// StripeConfig godoc
// @Summary  Payment integration settings
// @Tags     billing
// @Produce  json
// @Success  200  {object}  models.BillingConfig
// @Router   /stripe/config [get]
func (h *BillingHandlers) StripeConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, h.billingService.GetConfig(c.Request().Context()))
}

// Checkout godoc
// @Summary      Start a hosted checkout
// @Description  Returns a null url when payments are not configured; the admin upgrade endpoint completes the upgrade in that case.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        body  body      CheckoutRequest  true  "Plan and tenant"
// @Success      200   {object}  models.CheckoutResult
// @Failure      404   {object}  common.ErrorResponse
// @Failure      500   {object}  common.ErrorResponse
// @Router       /billing/checkout [post]
func (h *BillingHandlers) Checkout(c echo.Context) error {
	var req CheckoutRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	baseURL := c.Scheme() + "://" + c.Request().Host
	result, err := h.billingService.CreateCheckout(c.Request().Context(), req.Plan, req.TenantSlug, baseURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
