package handlers

import (
	"encoding/json"
	"io"

	"notesaas/internal/common"
	"notesaas/internal/models"

	"github.com/labstack/echo/v4"
)

const maxBodyBytes = 1 << 20

// identityFrom returns the identity attached by the JWT middleware.
func identityFrom(c echo.Context) (models.Identity, error) {
	identity, ok := common.GetIdentityFromContext(c.Request().Context())
	if !ok {
		return models.Identity{}, common.ErrMissingAuth
	}
	return identity, nil
}

func bindJSON(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return common.NewValidationError("Invalid request body")
	}
	return nil
}

// decodeStringFields reads a JSON object body and returns the named fields
// that hold strings. Missing fields, nulls and fields of any other type are left out.
// An empty body or a JSON value that is not an object yields no fields.
func decodeStringFields(c echo.Context, names ...string) (map[string]string, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return nil, common.NewValidationError("Invalid request body")
	}

	fields := make(map[string]string, len(names))
	if len(body) == 0 {
		return fields, nil
	}
	if !json.Valid(body) {
		return nil, common.NewValidationError("Invalid request body")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return fields, nil
	}
	for _, name := range names {
		msg, ok := raw[name]
		if !ok {
			continue
		}
		var s *string
		if err := json.Unmarshal(msg, &s); err == nil && s != nil {
			fields[name] = *s
		}
	}
	return fields, nil
}

func optional(fields map[string]string, name string) *string {
	v, ok := fields[name]
	if !ok {
		return nil
	}
	return &v
}
