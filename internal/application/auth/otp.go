package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/glucotrack/api/internal/infrastructure/keyval"
	"github.com/glucotrack/api/internal/infrastructure/smtp"
)

const (
	otpTTL       = 5 * time.Minute
	otpKeyPrefix = "otp:"
)

// OTPChallenge issues and verifies 6-digit one-time codes for MFA.
// A challenge exists exactly as long as its key lives in the ephemeral
// store; there is no server-side "pending" state beyond that.
type OTPChallenge struct {
	store  keyval.Store
	mailer smtp.Mailer
}

func NewOTPChallenge(store keyval.Store, mailer smtp.Mailer) *OTPChallenge {
	return &OTPChallenge{store: store, mailer: mailer}
}

// Issue generates a fresh code for email, stores it with a 5-minute TTL and
// emails it. Delivery is best-effort: a failed send is logged but the
// challenge still stands. Issuing again overwrites any previous code.
func (c *OTPChallenge) Issue(ctx context.Context, email, name string) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, otpKeyPrefix+email, code, otpTTL); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	subject, html, text := smtp.OTPEmail(name, code)
	if err := c.mailer.SendEmail(email, subject, html, text); err != nil {
		slog.Warn("failed to send otp email", "email", email, "err", err)
	}
	return nil
}

// Verify checks the supplied code against the stored one and consumes it on
// match. Absent, expired or mismatched codes — and an unreachable store —
// all verify as false: no backing data means "cannot verify", not "allow".
func (c *OTPChallenge) Verify(ctx context.Context, email, supplied string) bool {
	stored, err := c.store.Get(ctx, otpKeyPrefix+email)
	if err != nil {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
		return false
	}
	if err := c.store.Delete(ctx, otpKeyPrefix+email); err != nil {
		slog.Warn("failed to delete consumed otp", "email", email, "err", err)
	}
	return true
}

// generateOTP draws 6 ASCII digits from a cryptographically secure source.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
