package repositories

import (
	"context"
	"fmt"

	"notesaas/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "password"

type seedUser struct {
	email  string
	role   models.Role
	tenant string
}

var seedTenants = []models.Tenant{
	{Slug: "acme", Name: "Acme", Plan: models.PlanFree},
	{Slug: "globex", Name: "Globex", Plan: models.PlanFree},
}

var seedUsers = []seedUser{
	{email: "admin@acme.test", role: models.RoleAdmin, tenant: "acme"},
	{email: "user@acme.test", role: models.RoleMember, tenant: "acme"},
	{email: "admin@globex.test", role: models.RoleAdmin, tenant: "globex"},
	{email: "user@globex.test", role: models.RoleMember, tenant: "globex"},
}

// SeedIfEmpty installs the demo tenants and users when the DB holds no tenants.
// It reports whether anything was written.
func SeedIfEmpty(ctx context.Context, db *DB, bcryptCost int) (bool, error) {
	if !db.IsEmpty() {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcryptCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash seed password: %w", err)
	}

	tenantRepo := NewTenantRepo(db)
	userRepo := NewUserRepo(db)

	ids := make(map[string]uuid.UUID, len(seedTenants))
	for _, t := range seedTenants {
		tenant := t
		tenant.ID = uuid.New()
		if err := tenantRepo.Create(ctx, &tenant); err != nil {
			return false, fmt.Errorf("failed to seed tenant %s: %w", tenant.Slug, err)
		}
		ids[tenant.Slug] = tenant.ID
	}

	for _, su := range seedUsers {
		user := &models.User{
			ID:           uuid.New(),
			Email:        su.email,
			PasswordHash: string(hash),
			Role:         su.role,
			TenantID:     ids[su.tenant],
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return false, fmt.Errorf("failed to seed user %s: %w", su.email, err)
		}
	}

	return true, nil
}
