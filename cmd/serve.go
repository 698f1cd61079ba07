package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"notesaas/internal/caching"
	"notesaas/internal/config"
	"notesaas/internal/handlers"
	"notesaas/internal/jobs/background"
	"notesaas/internal/logger"
	"notesaas/internal/repositories"
	"notesaas/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API and background jobs.

Examples:
  notesaas serve
  notesaas serve --config config.yaml
  NOTESAAS_SERVER_PORT=9000 notesaas serve`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	version := Version
	if version == "dev" && cfg.App.Version != "" {
		version = cfg.App.Version
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Development: cfg.Log.Development,
	})
	defer func() { _ = log.Sync() }()

	if cfg.JWT.SecretGenerated {
		log.Warn("no JWT secret configured, using a generated one; tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	db := repositories.NewDB()
	if cfg.Seed.Enabled {
		seeded, err := repositories.SeedIfEmpty(ctx, db, cfg.Auth.BcryptCost)
		if err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}
		if seeded {
			log.Info("seeded demo tenants and users")
		}
	}

	tenantRepo := repositories.NewTenantRepo(db)
	userRepo := repositories.NewUserRepo(db)
	noteRepo := repositories.NewNoteRepo(db)

	// Cache
	var (
		cacheSvc caching.CacheService
		sweeper  background.Sweeper
	)
	if cfg.Redis.Addr != "" {
		cacheSvc = caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		log.Info("using redis cache", zap.String("addr", cfg.Redis.Addr))
	} else {
		memory := caching.NewMemoryCacheService()
		cacheSvc = memory
		sweeper = memory
		log.Info("using in-memory cache")
	}
	defer func() {
		if err := cacheSvc.Close(); err != nil {
			log.Warn("failed to close cache", zap.Error(err))
		}
	}()

	// Services
	gateway := services.NewStripeGateway(cfg.Stripe.SecretKey)
	if !cfg.StripeEnabled() {
		log.Info("stripe not configured, upgrades go through the admin endpoint only")
	}
	billingSvc := services.NewBillingService(tenantRepo, gateway, services.BillingConfig{
		PublishableKey:   cfg.Stripe.PublishableKey,
		PaymentLinkBasic: cfg.Stripe.LinkBasic,
		PaymentLinkPro:   cfg.Stripe.LinkPro,
	}, log)
	authSvc := services.NewAuthService(userRepo, tenantRepo, cacheSvc, services.AuthConfig{
		JWTSecret:             cfg.JWT.Secret,
		Issuer:                cfg.JWT.Issuer,
		TokenTTL:              cfg.JWT.TTL,
		BcryptCost:            cfg.Auth.BcryptCost,
		DefaultInvitePassword: cfg.Auth.DefaultInvitePassword,
		MaxLoginAttempts:      cfg.Auth.MaxLoginAttempts,
		LoginWindow:           cfg.Auth.LoginWindow,
	}, log)

	e := handlers.NewEcho(handlers.Server{
		AuthService:    authSvc,
		TenantService:  services.NewTenantService(tenantRepo, billingSvc, log),
		NoteService:    services.NewNoteService(noteRepo, tenantRepo),
		BillingService: billingSvc,
		Health:         handlers.NewHealthHandlers(cacheSvc, cfg.App.PingMessage, version),
		Log:            log,
		Version:        version,
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	// Background jobs
	scheduler, err := background.NewJobScheduler(background.Config{
		CacheSweepInterval: cfg.Jobs.CacheSweepInterval,
		StatsInterval:      cfg.Jobs.StatsInterval,
	}, sweeper, db, tenantRepo, noteRepo, log)
	if err != nil {
		return fmt.Errorf("failed to create job scheduler: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Warn("failed to stop job scheduler", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("version", version),
			zap.String("environment", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
