package services

import (
	"context"
	"errors"

	"notesaas/internal/common"
	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"go.uber.org/zap"
)

type TenantService interface {
	GetMine(ctx context.Context, identity models.Identity) (*models.TenantView, error)
	Upgrade(ctx context.Context, identity models.Identity, slug string) (*UpgradeResponse, error)
}

type UpgradeResponse struct {
	Message string      `json:"message"`
	Plan    models.Plan `json:"plan"`
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	billing    BillingService
	log        *zap.Logger
}

func NewTenantService(tenantRepo repositories.TenantRepository, billing BillingService, log *zap.Logger) TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		billing:    billing,
		log:        log,
	}
}

func (s *tenantService) GetMine(ctx context.Context, identity models.Identity) (*models.TenantView, error) {
	tenant, err := s.callerTenant(ctx, identity)
	if err != nil {
		return nil, err
	}
	view := tenant.View()
	return &view, nil
}

// Upgrade moves the caller's own tenant to the pro plan. A failure to record
// the payment with the provider is logged and does not block the upgrade.
func (s *tenantService) Upgrade(ctx context.Context, identity models.Identity, slug string) (*UpgradeResponse, error) {
	target, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.ErrTenantNotFound
		}
		return nil, err
	}

	if _, err := s.callerTenant(ctx, identity); err != nil {
		return nil, err
	}
	if target.ID != identity.TenantID {
		return nil, common.ErrCrossTenant
	}

	if err := s.billing.RecordUpgradeIntent(ctx, target); err != nil {
		s.log.Warn("payment intent failed, upgrading anyway",
			zap.String("tenant", target.Slug),
			zap.Error(err),
		)
	}

	upgraded, err := s.tenantRepo.UpgradeToPro(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("tenant upgraded",
		zap.String("tenant", upgraded.Slug),
		zap.String("user_id", identity.UserID.String()),
	)
	return &UpgradeResponse{Message: "Upgraded to Pro", Plan: upgraded.Plan}, nil
}

// callerTenant resolves the identity's tenant; a stale identity yields ErrSessionExpired.
func (s *tenantService) callerTenant(ctx context.Context, identity models.Identity) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, identity.TenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.ErrSessionExpired
		}
		return nil, err
	}
	return tenant, nil
}
