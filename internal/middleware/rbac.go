package middleware

import (
	"notesaas/internal/common"
	"notesaas/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole admits callers whose role ranks at least as high as role.
// It must run after JWTMiddleware.
func RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := common.GetIdentityFromContext(c.Request().Context())
			if !ok {
				return common.ErrMissingAuth
			}
			if !identity.Role.Satisfies(role) {
				return common.ErrForbidden
			}
			return next(c)
		}
	}
}
