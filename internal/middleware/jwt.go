package middleware

import (
	"errors"
	"strings"

	"notesaas/internal/common"
	"notesaas/internal/services"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const identityContextKey = "identity"

// JWTConfig builds the bearer-token middleware config. Token parsing is
// delegated to the auth service; the resulting identity is attached to the
// request context for the handlers.
func JWTConfig(authSvc services.AuthService) echojwt.Config {
	return echojwt.Config{
		ContextKey:  identityContextKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			identity, err := authSvc.VerifyToken(c.Request().Context(), auth)
			if err != nil {
				return nil, err
			}
			c.SetRequest(c.Request().WithContext(common.WithIdentity(c.Request().Context(), identity)))
			return identity, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return common.ErrMissingAuth
			}
			// Nothing after the scheme is a malformed header, not a bad token.
			if _, token, _ := strings.Cut(header, " "); token == "" {
				return common.ErrInvalidAuthHeader
			}
			var appErr *common.AppError
			if errors.As(err, &appErr) {
				return appErr
			}
			return common.ErrInvalidToken
		},
	}
}

func JWTMiddleware(authSvc services.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(JWTConfig(authSvc))
}
