package handlers

import (
	"net/http"

	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Login godoc
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      services.LoginRequest  true  "Credentials"
// @Success      200   {object}  services.AuthResponse
// @Failure      401   {object}  common.ErrorResponse
// @Failure      429   {object}  common.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Signup godoc
// @Summary      Create a member account in an existing tenant
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      services.SignupRequest  true  "New account"
// @Success      201   {object}  services.AuthResponse
// @Failure      400   {object}  common.ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req services.SignupRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Signup(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Invite godoc
// @Summary      Invite a user into the caller's tenant
// @Description  The slug in the path is not consulted; the user always joins the caller's own tenant.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug  path      string                   true  "Tenant slug"
// @Param        body  body      services.InviteRequest  true  "Invitee"
// @Success      201   {object}  services.InviteResponse
// @Failure      400   {object}  common.ErrorResponse
// @Failure      401   {object}  common.ErrorResponse
// @Failure      403   {object}  common.ErrorResponse
// @Router       /tenants/{slug}/invite [post]
func (h *AuthHandlers) Invite(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return err
	}

	var req services.InviteRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Invite(c.Request().Context(), identity, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}
