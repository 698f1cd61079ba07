package models

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// roleRank orders roles from least to most privileged.
var roleRank = map[Role]int{
	RoleMember: 1,
	RoleAdmin:  2,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether r grants at least the privileges of required.
// Unknown roles on either side never satisfy.
func (r Role) Satisfies(required Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	need, ok := roleRank[required]
	if !ok {
		return false
	}
	return have >= need
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize in JSON
	Role         Role      `json:"role"`
	TenantID     uuid.UUID `json:"tenantId"`
}

// UserView is the public representation returned to clients.
type UserView struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

func (u *User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, Role: u.Role}
}
