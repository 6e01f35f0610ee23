package domain

import "time"

// Audit actions recorded by the auth flows.
const (
	AuditRegister               = "REGISTER"
	AuditLogin                  = "LOGIN"
	AuditMFAVerify              = "MFA_VERIFY"
	AuditMFAEnabled             = "MFA_ENABLED"
	AuditPasswordResetRequested = "PASSWORD_RESET_REQUESTED"
	AuditPasswordResetCompleted = "PASSWORD_RESET_COMPLETED"
	AuditPasswordChanged        = "PASSWORD_CHANGED"
)

// AuditEvent is an append-only record of a security-relevant action.
// Events are never updated or deleted.
type AuditEvent struct {
	EventID   string            `json:"id" dynamodbav:"event_id"`
	UserID    string            `json:"user_id" dynamodbav:"user_id"`
	Action    string            `json:"action" dynamodbav:"action"`
	IPAddress string            `json:"ip_address,omitempty" dynamodbav:"ip_address"`
	Metadata  map[string]string `json:"metadata,omitempty" dynamodbav:"metadata"`
	CreatedAt time.Time         `json:"created_at" dynamodbav:"created_at"`
}
