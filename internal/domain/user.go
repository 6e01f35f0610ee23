package domain

import "time"

// Account roles. Privileged access is decided by the Role field,
// never by a hardcoded email list.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DiabetesType is the diagnosed diabetes category on a user profile.
type DiabetesType string

const (
	DiabetesT1          DiabetesType = "T1"
	DiabetesT2          DiabetesType = "T2"
	DiabetesPrediabetes DiabetesType = "PREDIABETES"
	DiabetesGestational DiabetesType = "GESTATIONAL"
)

// ValidDiabetesType reports whether t is one of the known categories.
func ValidDiabetesType(t DiabetesType) bool {
	switch t {
	case DiabetesT1, DiabetesT2, DiabetesPrediabetes, DiabetesGestational:
		return true
	}
	return false
}

type User struct {
	UserID       string        `json:"id" dynamodbav:"user_id"`
	Email        string        `json:"email" dynamodbav:"email"`
	PasswordHash string        `json:"-" dynamodbav:"password_hash"`
	Name         string        `json:"name" dynamodbav:"name"`
	Age          *int          `json:"age,omitempty" dynamodbav:"age"`
	DiabetesType *DiabetesType `json:"diabetes_type,omitempty" dynamodbav:"diabetes_type"`
	Role         string        `json:"role" dynamodbav:"role"`
	ConsentGiven bool          `json:"consent_given" dynamodbav:"consent_given"`
	MFAEnabled   bool          `json:"mfa_enabled" dynamodbav:"mfa_enabled"`
	IsActive     bool          `json:"is_active" dynamodbav:"is_active"`
	IsVerified   bool          `json:"is_verified" dynamodbav:"is_verified"`
	CreatedAt    time.Time     `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Email        string        `json:"email" validate:"required,email"`
	Password     string        `json:"password" validate:"required,min=8,max=72"`
	Name         string        `json:"name" validate:"required,min=2,max=100"`
	Age          *int          `json:"age" validate:"omitempty,gte=1,lte=120"`
	DiabetesType *DiabetesType `json:"diabetes_type"`
}

type UpdateUserRequest struct {
	Name         *string       `json:"name" validate:"omitempty,min=2,max=100"`
	Age          *int          `json:"age" validate:"omitempty,gte=1,lte=120"`
	DiabetesType *DiabetesType `json:"diabetes_type"`
	ConsentGiven *bool         `json:"consent_given"`
}
