package models

import (
	"github.com/google/uuid"
)

// Plan is a tenant subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

type Tenant struct {
	ID   uuid.UUID `json:"id"`
	Slug string    `json:"slug"`
	Name string    `json:"name"`
	Plan Plan      `json:"plan"`
}

// TenantView is the public representation returned to clients.
type TenantView struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	Plan Plan   `json:"plan"`
}

func (t *Tenant) View() TenantView {
	return TenantView{Slug: t.Slug, Name: t.Name, Plan: t.Plan}
}

// IsFreePlanLimited reports whether the tenant is subject to the member note quota.
func (t *Tenant) IsFreePlanLimited() bool {
	return t.Plan == PlanFree
}
