package http

import (
	"context"

	"github.com/glucotrack/api/internal/domain"
	jwtinfra "github.com/glucotrack/api/internal/infrastructure/jwt"
	"github.com/glucotrack/api/internal/infrastructure/keyval"
	"github.com/glucotrack/api/internal/infrastructure/smtp"
)

// UserRepository is the minimal interface the router requires from the
// account store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// AuditRecorder is the append-only audit sink consumed by the auth flows.
type AuditRecorder interface {
	Record(ctx context.Context, userID, action, clientIP string, metadata map[string]string) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	AuditRepo   AuditRecorder
	KV          keyval.Store
	Mailer      smtp.Mailer
	JWTProvider *jwtinfra.Provider
}
