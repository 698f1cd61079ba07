package models

import "github.com/google/uuid"

// Identity is the authenticated caller derived from a verified token.
// It scopes every data access made on behalf of a request.
type Identity struct {
	UserID   uuid.UUID `json:"userId"`
	TenantID uuid.UUID `json:"tenantId"`
	Role     Role      `json:"role"`
}
