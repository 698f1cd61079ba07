package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notesaas/internal/caching"
	"notesaas/internal/common"
	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles credentials, account creation and session tokens
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Invite(ctx context.Context, identity models.Identity, req *InviteRequest) (*InviteResponse, error)

	// VerifyToken turns a bearer token into the caller's identity.
	VerifyToken(ctx context.Context, token string) (models.Identity, error)
}

type AuthConfig struct {
	JWTSecret             string
	Issuer                string
	TokenTTL              time.Duration
	BcryptCost            int
	DefaultInvitePassword string
	MaxLoginAttempts      int // zero disables throttling
	LoginWindow           time.Duration
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	TenantSlug string `json:"tenantSlug,omitempty"`
}

type SignupRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	TenantSlug string `json:"tenantSlug"`
}

type InviteRequest struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role,omitempty"`
}

type AuthResponse struct {
	Token  string            `json:"token"`
	User   models.UserView   `json:"user"`
	Tenant models.TenantView `json:"tenant"`
}

type InviteResponse struct {
	Message string          `json:"message"`
	User    models.UserView `json:"user"`
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID   string      `json:"userId"`
	TenantID string      `json:"tenantId"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo   repositories.UserRepository
	tenantRepo repositories.TenantRepository
	cacheSvc   caching.CacheService
	cfg        AuthConfig
	jwtSecret  []byte
	log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tenantRepo repositories.TenantRepository,
	cacheSvc caching.CacheService,
	cfg AuthConfig,
	log *zap.Logger,
) AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		cacheSvc:   cacheSvc,
		cfg:        cfg,
		jwtSecret:  []byte(cfg.JWTSecret),
		log:        log,
		now:        time.Now,
	}
}

// Login checks the credentials against the global user list. The tenant slug
// in the request is ignored; the user's own tenant is returned.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	throttleKey := "login:" + strings.ToLower(strings.TrimSpace(req.Email))
	if s.throttled(ctx, throttleKey) {
		return nil, common.ErrTooManyAttempts
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.recordFailure(ctx, throttleKey)
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailure(ctx, throttleKey)
		return nil, common.ErrInvalidCredentials
	}

	tenant, err := s.tenantRepo.GetByID(ctx, user.TenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.ErrInvalidTenant
		}
		return nil, err
	}

	return s.authResponse(user, tenant)
}

// Signup creates a member in an existing tenant and signs them in.
func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if err := common.ValidateRequiredString(email, "email"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Password, "password"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.TenantSlug, "tenantSlug"); err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.GetBySlug(ctx, strings.TrimSpace(req.TenantSlug))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.ErrInvalidTenant
		}
		return nil, err
	}

	user, err := s.createUser(ctx, email, req.Password, models.RoleMember, tenant.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("user signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant", tenant.Slug),
	)
	return s.authResponse(user, tenant)
}

// Invite adds a user to the caller's tenant with the default invite password.
func (s *authService) Invite(ctx context.Context, identity models.Identity, req *InviteRequest) (*InviteResponse, error) {
	email := strings.TrimSpace(req.Email)
	if err := common.ValidateRequiredString(email, "email"); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, common.NewValidationError("role must be admin or member")
	}

	user, err := s.createUser(ctx, email, s.cfg.DefaultInvitePassword, role, identity.TenantID)
	if err != nil {
		return nil, err
	}

	s.log.Info("user invited",
		zap.String("user_id", user.ID.String()),
		zap.String("invited_by", identity.UserID.String()),
		zap.String("role", string(role)),
	)
	return &InviteResponse{Message: "User invited", User: user.View()}, nil
}

func (s *authService) VerifyToken(ctx context.Context, token string) (models.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return models.Identity{}, common.ErrMissingAuth
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return models.Identity{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: bad userId claim", common.ErrInvalidToken)
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: bad tenantId claim", common.ErrInvalidToken)
	}
	if !claims.Role.Valid() {
		return models.Identity{}, fmt.Errorf("%w: bad role claim", common.ErrInvalidToken)
	}

	return models.Identity{UserID: userID, TenantID: tenantID, Role: claims.Role}, nil
}

func (s *authService) createUser(ctx context.Context, email, password string, role models.Role, tenantID uuid.UUID) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.NewValidationError("password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		TenantID:     tenantID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, common.ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) authResponse(user *models.User, tenant *models.Tenant) (*AuthResponse, error) {
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user.View(), Tenant: tenant.View()}, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := s.now()
	claims := TokenClaims{
		UserID:   user.ID.String(),
		TenantID: user.TenantID.String(),
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// throttled reports false whenever the cache cannot answer.
func (s *authService) throttled(ctx context.Context, key string) bool {
	if s.cfg.MaxLoginAttempts <= 0 || s.cacheSvc == nil {
		return false
	}
	limited, err := s.cacheSvc.IsRateLimited(ctx, key, s.cfg.MaxLoginAttempts)
	if err != nil {
		s.log.Warn("login throttle check failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return limited
}

func (s *authService) recordFailure(ctx context.Context, key string) {
	if s.cfg.MaxLoginAttempts <= 0 || s.cacheSvc == nil {
		return
	}
	if _, err := s.cacheSvc.IncrementRateLimit(ctx, key, s.cfg.LoginWindow); err != nil {
		s.log.Warn("failed to record login failure", zap.String("key", key), zap.Error(err))
	}
}
