package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/glucotrack/api/internal/application/auth"
	"github.com/glucotrack/api/internal/domain"
	"github.com/glucotrack/api/internal/infrastructure/keyval"
)

// --- mocks ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Register(ctx context.Context, req domain.CreateUserRequest, clientIP string) (*auth.TokenPair, error) {
	args := m.Called(ctx, req, clientIP)
	if p, _ := args.Get(0).(*auth.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) Login(ctx context.Context, req auth.LoginRequest, clientIP string) (*auth.LoginResult, error) {
	args := m.Called(ctx, req, clientIP)
	if r, _ := args.Get(0).(*auth.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) VerifyMFA(ctx context.Context, req auth.MFAVerifyRequest, clientIP string) (*auth.TokenPair, error) {
	args := m.Called(ctx, req, clientIP)
	if p, _ := args.Get(0).(*auth.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) SetupMFA(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockAuthSvc) ConfirmMFA(ctx context.Context, userID, otp, clientIP string) error {
	return m.Called(ctx, userID, otp, clientIP).Error(0)
}
func (m *mockAuthSvc) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

// fakeUserStore backs the reset flow in handler tests with a fixed account.
type fakeUserStore struct {
	user *domain.User
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, domain.ErrNotFound
}
func (f *fakeUserStore) Get(_ context.Context, userID string) (*domain.User, error) {
	if f.user != nil && f.user.UserID == userID {
		return f.user, nil
	}
	return nil, domain.ErrNotFound
}
func (f *fakeUserStore) Put(_ context.Context, _ *domain.User) error { return nil }
func (f *fakeUserStore) Update(_ context.Context, _ string, _ map[string]interface{}) error {
	return nil
}

type fakeMailer struct{ sent int }

func (f *fakeMailer) SendEmail(_, _, _, _ string) error {
	f.sent++
	return nil
}

func newResetFlow(t *testing.T, store *fakeUserStore, ml *fakeMailer) *auth.PasswordResetFlow {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewPasswordResetFlow(keyval.NewRedisStore(client), store, ml, nil, "https://app.example.com/reset")
}

func postJSON(h http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	rr := httptest.NewRecorder()
	h(rr, r)
	return rr
}

// --- Register ---

func TestRegister_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, nil)
	r := httptest.NewRequest(http.MethodPost, "/v1/auth/register", bytes.NewBufferString("not-json"))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, nil)
	// password shorter than 8 characters
	rr := postJSON(h.Register, "/v1/auth/register", domain.CreateUserRequest{
		Email: "ada@example.com", Password: "short", Name: "Ada",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(h.Register, "/v1/auth/register", domain.CreateUserRequest{
		Email: "ada@example.com", Password: "supersecret1", Name: "Ada",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertExpectations(t)
}

func TestRegister_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(&auth.TokenPair{
		User:         &domain.User{UserID: "u1", Email: "ada@example.com"},
		AccessToken:  "atok",
		RefreshToken: "rtok",
	}, nil)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(h.Register, "/v1/auth/register", domain.CreateUserRequest{
		Email: "ada@example.com", Password: "supersecret1", Name: "Ada",
	})
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp TokenEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "atok", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

// --- Login ---

func TestLogin_BadCredentials(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrUnauthorized)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(h.Login, "/v1/auth/login", auth.LoginRequest{
		Email: "ada@example.com", Password: "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogin_RateLimited_SetsRetryAfter(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &domain.RateLimitError{Limit: 5, RetryAfter: 120})
	h := NewAuthHandler(svc, nil)

	rr := postJSON(h.Login, "/v1/auth/login", auth.LoginRequest{
		Email: "ada@example.com", Password: "whatever123",
	})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "120", rr.Header().Get("Retry-After"))
}

func TestLogin_MFARequired_ReturnsNoTokens(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(&auth.LoginResult{
		User:        &domain.User{UserID: "u1"},
		MFARequired: true,
	}, nil)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(h.Login, "/v1/auth/login", auth.LoginRequest{
		Email: "ada@example.com", Password: "supersecret1",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, true, resp["mfa_required"])
	_, hasAccess := resp["access_token"]
	assert.False(t, hasAccess, "pending MFA login must not leak tokens")
}

func TestLogin_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(&auth.LoginResult{
		User:         &domain.User{UserID: "u1"},
		AccessToken:  "atok",
		RefreshToken: "rtok",
	}, nil)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(h.Login, "/v1/auth/login", auth.LoginRequest{
		Email: "ada@example.com", Password: "supersecret1",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp TokenEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "atok", resp.AccessToken)
	assert.Equal(t, "rtok", resp.RefreshToken)
}

// --- VerifyMFA ---

func TestVerifyMFA_MalformedCode_FailsValidation(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, nil)

	rr := postJSON(h.VerifyMFA, "/v1/auth/mfa/verify", auth.MFAVerifyRequest{
		Email: "ada@example.com", OTP: "12ab56",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestVerifyMFA_WrongCode(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyMFA", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrUnauthorized)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(h.VerifyMFA, "/v1/auth/mfa/verify", auth.MFAVerifyRequest{
		Email: "ada@example.com", OTP: "123456",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// --- Refresh ---

func TestRefresh_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, nil)
	rr := postJSON(h.Refresh, "/v1/auth/refresh", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRefresh_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Refresh", mock.Anything, "rtok").Return("atok2", "rtok2", nil)
	h := NewAuthHandler(svc, nil)

	rr := postJSON(h.Refresh, "/v1/auth/refresh", map[string]string{"refresh_token": "rtok"})
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp TokenEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "atok2", resp.AccessToken)
}

// --- ForgotPassword ---

func TestForgotPassword_SameResponseForKnownAndUnknownEmail(t *testing.T) {
	store := &fakeUserStore{user: &domain.User{UserID: "u1", Email: "ada@example.com", Name: "Ada"}}
	ml := &fakeMailer{}
	h := NewAuthHandler(&mockAuthSvc{}, newResetFlow(t, store, ml))

	known := postJSON(h.ForgotPassword, "/v1/auth/password/forgot", map[string]string{"email": "ada@example.com"})
	unknown := postJSON(h.ForgotPassword, "/v1/auth/password/forgot", map[string]string{"email": "ghost@example.com"})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	// Only the real account got an email.
	assert.Equal(t, 1, ml.sent)
}

// --- ResetPassword ---

func TestResetPassword_InvalidToken(t *testing.T) {
	store := &fakeUserStore{}
	h := NewAuthHandler(&mockAuthSvc{}, newResetFlow(t, store, &fakeMailer{}))

	rr := postJSON(h.ResetPassword, "/v1/auth/password/reset", map[string]string{
		"token":        "nosuchtoken",
		"new_password": "brandnewpass1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResetPassword_WeakPassword_FailsValidation(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, newResetFlow(t, &fakeUserStore{}, &fakeMailer{}))

	rr := postJSON(h.ResetPassword, "/v1/auth/password/reset", map[string]string{
		"token":        "sometoken",
		"new_password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
