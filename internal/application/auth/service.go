package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glucotrack/api/internal/domain"
	jwtinfra "github.com/glucotrack/api/internal/infrastructure/jwt"
	"github.com/glucotrack/api/internal/infrastructure/smtp"
	"github.com/glucotrack/api/internal/pkg/id"
	"github.com/glucotrack/api/internal/pkg/password"
	"github.com/glucotrack/api/internal/ratelimit"
)

// Per-email login throttle, checked before credentials are even looked at.
const (
	loginKeyPrefix     = "login:"
	loginAttemptLimit  = 5
	loginWindowSeconds = 300
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type MFAVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// TokenPair is an access/refresh token set plus the account it belongs to.
type TokenPair struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// LoginResult is a TokenPair or, when MFA applies, a pending challenge with
// no tokens at all.
type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	MFARequired  bool
}

// Service is the auth orchestrator: it composes credential checks, token
// issuance, the OTP challenge, rate limiting and audit into the register /
// login / MFA / refresh flows.
type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest, clientIP string) (*TokenPair, error)
	Login(ctx context.Context, req LoginRequest, clientIP string) (*LoginResult, error)
	VerifyMFA(ctx context.Context, req MFAVerifyRequest, clientIP string) (*TokenPair, error)
	SetupMFA(ctx context.Context, userID string) error
	ConfirmMFA(ctx context.Context, userID, otp, clientIP string) error
	Refresh(ctx context.Context, refreshToken string) (access, refresh string, err error)
}

// Narrow store interfaces, declared here so tests can swap in fakes.

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type auditRecorder interface {
	Record(ctx context.Context, userID, action, clientIP string, metadata map[string]string) error
}

type tokenIssuer interface {
	IssuePair(userID string) (access, refresh string, err error)
	Verify(token string, kind jwtinfra.Kind) (string, error)
}

type service struct {
	users   userStore
	tokens  tokenIssuer
	otp     *OTPChallenge
	limiter *ratelimit.Limiter
	mailer  smtp.Mailer
	audit   auditRecorder
}

type ServiceDeps struct {
	Users   userStore
	Tokens  tokenIssuer
	OTP     *OTPChallenge
	Limiter *ratelimit.Limiter
	Mailer  smtp.Mailer
	Audit   auditRecorder
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:   deps.Users,
		tokens:  deps.Tokens,
		otp:     deps.OTP,
		limiter: deps.Limiter,
		mailer:  deps.Mailer,
		audit:   deps.Audit,
	}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest, clientIP string) (*TokenPair, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if req.DiabetesType != nil && !domain.ValidDiabetesType(*req.DiabetesType) {
		return nil, fmt.Errorf("unknown diabetes type: %w", domain.ErrBadRequest)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		Age:          req.Age,
		DiabetesType: req.DiabetesType,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}

	access, refresh, err := s.tokens.IssuePair(u.UserID)
	if err != nil {
		return nil, err
	}

	subject, html, text := smtp.WelcomeEmail(u.Name)
	if err := s.mailer.SendEmail(u.Email, subject, html, text); err != nil {
		slog.Warn("failed to send welcome email", "email", u.Email, "err", err)
	}
	s.recordAudit(ctx, u.UserID, domain.AuditRegister, clientIP)

	return &TokenPair{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest, clientIP string) (*LoginResult, error) {
	email := normalizeEmail(req.Email)

	// Throttle per email before touching credentials, so an attacker cannot
	// burn attempts against the password check.
	res := s.limiter.Allow(ctx, loginKeyPrefix+email, loginAttemptLimit, loginWindowSeconds)
	if !res.Allowed {
		return nil, &domain.RateLimitError{Limit: res.Limit, RetryAfter: res.ResetAfter}
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Same message as a wrong password, to avoid account enumeration.
		return nil, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if !password.Verify(req.Password, u.PasswordHash) {
		return nil, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account is disabled: %w", domain.ErrForbidden)
	}

	if u.MFAEnabled {
		if err := s.otp.Issue(ctx, u.Email, u.Name); err != nil {
			return nil, err
		}
		return &LoginResult{User: u, MFARequired: true}, nil
	}

	access, refresh, err := s.tokens.IssuePair(u.UserID)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, u.UserID, domain.AuditLogin, clientIP)

	return &LoginResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) VerifyMFA(ctx context.Context, req MFAVerifyRequest, clientIP string) (*TokenPair, error) {
	email := normalizeEmail(req.Email)
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired verification code: %w", domain.ErrUnauthorized)
	}
	if !s.otp.Verify(ctx, u.Email, req.OTP) {
		return nil, fmt.Errorf("invalid or expired verification code: %w", domain.ErrUnauthorized)
	}

	access, refresh, err := s.tokens.IssuePair(u.UserID)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, u.UserID, domain.AuditMFAVerify, clientIP)

	return &TokenPair{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

// SetupMFA issues a challenge without touching account state. The flag only
// flips once ConfirmMFA proves the user can receive codes.
func (s *service) SetupMFA(ctx context.Context, userID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.MFAEnabled {
		return fmt.Errorf("MFA is already enabled: %w", domain.ErrBadRequest)
	}
	return s.otp.Issue(ctx, u.Email, u.Name)
}

func (s *service) ConfirmMFA(ctx context.Context, userID, otp, clientIP string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !s.otp.Verify(ctx, u.Email, otp) {
		return fmt.Errorf("invalid verification code: %w", domain.ErrBadRequest)
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"mfa_enabled": true}); err != nil {
		return err
	}
	s.recordAudit(ctx, u.UserID, domain.AuditMFAEnabled, clientIP)
	return nil
}

// Refresh trades a valid refresh token for a brand-new pair. The old refresh
// token is not revoked and stays usable until its natural expiry.
func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	userID, err := s.tokens.Verify(refreshToken, jwtinfra.KindRefresh)
	if err != nil {
		return "", "", err
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("account no longer exists: %w", domain.ErrUnauthorized)
	}
	if !u.IsActive {
		return "", "", fmt.Errorf("account is disabled: %w", domain.ErrUnauthorized)
	}
	return s.tokens.IssuePair(u.UserID)
}

func (s *service) recordAudit(ctx context.Context, userID, action, clientIP string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, userID, action, clientIP, nil); err != nil {
		slog.Warn("failed to record audit event", "action", action, "err", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
