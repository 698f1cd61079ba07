package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"notesaas/internal/common"
	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"go.uber.org/zap"
)

type BillingService interface {
	GetConfig(ctx context.Context) models.BillingConfig
	CreateCheckout(ctx context.Context, plan models.Plan, tenantSlug, baseURL string) (*models.CheckoutResult, error)
	RecordUpgradeIntent(ctx context.Context, tenant *models.Tenant) error
}

// BillingConfig holds the client-facing payment settings.
type BillingConfig struct {
	PublishableKey   string
	PaymentLinkBasic string
	PaymentLinkPro   string
}

type billingService struct {
	tenantRepo repositories.TenantRepository
	gateway    PaymentGateway
	cfg        BillingConfig
	log        *zap.Logger
}

func NewBillingService(tenantRepo repositories.TenantRepository, gateway PaymentGateway, cfg BillingConfig, log *zap.Logger) BillingService {
	return &billingService{
		tenantRepo: tenantRepo,
		gateway:    gateway,
		cfg:        cfg,
		log:        log,
	}
}

func (s *billingService) GetConfig(ctx context.Context) models.BillingConfig {
	return models.BillingConfig{
		PublishableKey:   common.StringPtr(s.cfg.PublishableKey),
		Enabled:          s.gateway.Enabled(),
		PaymentLinkBasic: common.StringPtr(s.cfg.PaymentLinkBasic),
		PaymentLinkPro:   common.StringPtr(s.cfg.PaymentLinkPro),
	}
}

// CreateCheckout starts a hosted checkout for plan. A nil URL in the result
// tells the caller to finish the upgrade through the admin upgrade endpoint.
func (s *billingService) CreateCheckout(ctx context.Context, plan models.Plan, tenantSlug, baseURL string) (*models.CheckoutResult, error) {
	tenant, err := s.tenantRepo.GetBySlug(ctx, tenantSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.ErrTenantNotFound
		}
		return nil, err
	}

	if !s.gateway.Enabled() {
		return &models.CheckoutResult{Message: "Stripe not configured"}, nil
	}

	price, ok := models.PriceFor(plan)
	if !ok {
		return &models.CheckoutResult{Message: "No payment needed"}, nil
	}

	base := strings.TrimRight(baseURL, "/")
	resp, err := s.gateway.CreateCheckoutSession(ctx, &CheckoutSessionRequest{
		ProductName: fmt.Sprintf("Notes %s Plan", strings.ToUpper(string(price.Plan))),
		AmountCents: price.AmountCents,
		Currency:    price.Currency,
		SuccessURL:  base + "/app?checkout=success",
		CancelURL:   base + "/app?checkout=cancel",
	})
	if err != nil {
		s.log.Error("checkout session failed",
			zap.String("gateway", s.gateway.Name()),
			zap.String("tenant", tenant.Slug),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", common.ErrPaymentProvider, err)
	}

	s.log.Info("checkout session created",
		zap.String("tenant", tenant.Slug),
		zap.String("plan", string(plan)),
		zap.String("session_id", resp.SessionID),
	)
	return &models.CheckoutResult{URL: &resp.URL}, nil
}

// RecordUpgradeIntent registers an unconfirmed payment for a pro upgrade. It
// does nothing when no gateway is configured.
func (s *billingService) RecordUpgradeIntent(ctx context.Context, tenant *models.Tenant) error {
	if !s.gateway.Enabled() {
		return nil
	}

	price, _ := models.PriceFor(models.PlanPro)
	resp, err := s.gateway.CreatePaymentIntent(ctx, &PaymentIntentRequest{
		AmountCents: price.AmountCents,
		Currency:    price.Currency,
		Description: fmt.Sprintf("Upgrade %s to Pro", tenant.Slug),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPaymentProvider, err)
	}

	s.log.Debug("upgrade payment intent created",
		zap.String("tenant", tenant.Slug),
		zap.String("payment_intent_id", resp.PaymentIntentID),
	)
	return nil
}
