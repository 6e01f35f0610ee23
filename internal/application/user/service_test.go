package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/glucotrack/api/internal/domain"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

func TestGet_PassesThrough(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Name: "Ada"}, nil)

	u, err := NewService(repo).Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
}

func TestUpdate_OnlyChangedFieldsReachTheStore(t *testing.T) {
	repo := &mockUserStore{}
	age := 42
	repo.On("Update", mock.Anything, "u1", map[string]interface{}{
		fieldName: "Grace",
		fieldAge:  42,
	}).Return(nil)
	repo.On("Get", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", Name: "Grace", Age: &age}, nil)

	name := "Grace"
	u, err := NewService(repo).Update(context.Background(), "u1", domain.UpdateUserRequest{
		Name: &name,
		Age:  &age,
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", u.Name)
	repo.AssertExpectations(t)
}

func TestUpdate_EmptyRequest_IsARead(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	_, err := NewService(repo).Update(context.Background(), "u1", domain.UpdateUserRequest{})
	require.NoError(t, err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_UnknownDiabetesType_ReturnsBadRequest(t *testing.T) {
	repo := &mockUserStore{}
	bogus := domain.DiabetesType("T9")

	_, err := NewService(repo).Update(context.Background(), "u1", domain.UpdateUserRequest{
		DiabetesType: &bogus,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_ConsentCanBeRevoked(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("Update", mock.Anything, "u1", map[string]interface{}{
		fieldConsentGiven: false,
	}).Return(nil)
	repo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	consent := false
	_, err := NewService(repo).Update(context.Background(), "u1", domain.UpdateUserRequest{
		ConsentGiven: &consent,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
