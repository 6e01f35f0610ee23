package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glucotrack/api/internal/domain"
	"github.com/glucotrack/api/internal/infrastructure/keyval"
	"github.com/glucotrack/api/internal/infrastructure/smtp"
	"github.com/glucotrack/api/internal/pkg/password"
	pkgtoken "github.com/glucotrack/api/internal/pkg/token"
)

const (
	resetTokenTTL  = time.Hour
	resetKeyPrefix = "password_reset:"
)

// PasswordResetFlow manages single-use reset tokens. Tokens map to the
// account email in the ephemeral store and are consumed on first successful
// reset.
type PasswordResetFlow struct {
	store    keyval.Store
	users    userStore
	mailer   smtp.Mailer
	audit    auditRecorder
	linkBase string
}

func NewPasswordResetFlow(store keyval.Store, users userStore, mailer smtp.Mailer, audit auditRecorder, linkBase string) *PasswordResetFlow {
	return &PasswordResetFlow{store: store, users: users, mailer: mailer, audit: audit, linkBase: linkBase}
}

// Request starts a reset for email. It never reveals whether the account
// exists: unknown addresses and delivery problems alike resolve to nil so
// the endpoint can always answer with the same generic message.
func (f *PasswordResetFlow) Request(ctx context.Context, email, clientIP string) error {
	u, err := f.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil
	}

	token, err := pkgtoken.NewResetToken()
	if err != nil {
		return err
	}
	if err := f.store.Set(ctx, resetKeyPrefix+token, u.Email, resetTokenTTL); err != nil {
		slog.Warn("failed to store reset token", "err", err)
		return nil
	}

	link := fmt.Sprintf("%s?token=%s", f.linkBase, token)
	subject, html, text := smtp.PasswordResetEmail(u.Name, link)
	if err := f.mailer.SendEmail(u.Email, subject, html, text); err != nil {
		slog.Warn("failed to send reset email", "email", u.Email, "err", err)
	}

	f.recordAudit(ctx, u.UserID, domain.AuditPasswordResetRequested, clientIP)
	return nil
}

// Confirm consumes token and replaces the account password. An absent or
// expired token — including an unreachable store — fails closed.
func (f *PasswordResetFlow) Confirm(ctx context.Context, token, newPassword, clientIP string) error {
	email, err := f.store.Get(ctx, resetKeyPrefix+token)
	if err != nil {
		return fmt.Errorf("invalid or expired reset token: %w", domain.ErrBadRequest)
	}
	u, err := f.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("invalid or expired reset token: %w", domain.ErrBadRequest)
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := f.users.Update(ctx, u.UserID, map[string]interface{}{"password_hash": hash}); err != nil {
		return err
	}

	if err := f.store.Delete(ctx, resetKeyPrefix+token); err != nil {
		slog.Warn("failed to delete consumed reset token", "err", err)
	}

	f.recordAudit(ctx, u.UserID, domain.AuditPasswordResetCompleted, clientIP)
	return nil
}

// ChangePassword is the authenticated variant: the caller proves knowledge
// of the current password instead of holding a token.
func (f *PasswordResetFlow) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, clientIP string) error {
	u, err := f.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !password.Verify(currentPassword, u.PasswordHash) {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrBadRequest)
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := f.users.Update(ctx, u.UserID, map[string]interface{}{"password_hash": hash}); err != nil {
		return err
	}

	f.recordAudit(ctx, u.UserID, domain.AuditPasswordChanged, clientIP)
	return nil
}

func (f *PasswordResetFlow) recordAudit(ctx context.Context, userID, action, clientIP string) {
	if f.audit == nil {
		return
	}
	if err := f.audit.Record(ctx, userID, action, clientIP, nil); err != nil {
		slog.Warn("failed to record audit event", "action", action, "err", err)
	}
}
