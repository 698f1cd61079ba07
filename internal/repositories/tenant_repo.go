package repositories

import (
	"context"
	"strings"

	"notesaas/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	UpgradeToPro(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db *DB
}

func NewTenantRepo(db *DB) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.findBySlugLocked(tenant.Slug) != nil {
		return ErrDuplicateSlug
	}
	t := *tenant
	r.db.tenants = append(r.db.tenants, &t)
	return nil
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t := r.findByIDLocked(id)
	if t == nil {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// GetBySlug matches the slug case-insensitively and returns the first hit.
func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t := r.findBySlugLocked(slug)
	if t == nil {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// UpgradeToPro moves the tenant to the pro plan. Upgrading a pro tenant is a no-op.
func (r *tenantRepo) UpgradeToPro(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t := r.findByIDLocked(id)
	if t == nil {
		return nil, ErrNotFound
	}
	t.Plan = models.PlanPro
	cp := *t
	return &cp, nil
}

func (r *tenantRepo) List(ctx context.Context) ([]*models.Tenant, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	tenants := make([]*models.Tenant, 0, len(r.db.tenants))
	for _, t := range r.db.tenants {
		cp := *t
		tenants = append(tenants, &cp)
	}
	return tenants, nil
}

func (r *tenantRepo) findByIDLocked(id uuid.UUID) *models.Tenant {
	for _, t := range r.db.tenants {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (r *tenantRepo) findBySlugLocked(slug string) *models.Tenant {
	for _, t := range r.db.tenants {
		if strings.EqualFold(t.Slug, slug) {
			return t
		}
	}
	return nil
}
