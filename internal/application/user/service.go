package user

import (
	"context"
	"fmt"

	"github.com/glucotrack/api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName         = "name"
	fieldAge          = "age"
	fieldDiabetesType = "diabetes_type"
	fieldConsentGiven = "consent_given"
)

// Service exposes profile reads and updates for the authenticated account.
type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	repo userStore
}

func NewService(repo userStore) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Age != nil {
		updates[fieldAge] = *req.Age
	}
	if req.DiabetesType != nil {
		if !domain.ValidDiabetesType(*req.DiabetesType) {
			return nil, fmt.Errorf("unknown diabetes type: %w", domain.ErrBadRequest)
		}
		updates[fieldDiabetesType] = *req.DiabetesType
	}
	if req.ConsentGiven != nil {
		updates[fieldConsentGiven] = *req.ConsentGiven
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}
