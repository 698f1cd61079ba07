package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultNoteTitle = "Untitled"
	// FreePlanMemberNoteLimit is the number of notes a tenant on the free plan
	// may hold before members are blocked from creating more.
	FreePlanMemberNoteLimit = 3
)

type Note struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenantId"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NotePatch carries the fields of a partial update. Nil fields are left untouched.
type NotePatch struct {
	Title   *string
	Content *string
}
