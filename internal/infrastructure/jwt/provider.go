package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/glucotrack/api/internal/config"
	"github.com/glucotrack/api/internal/domain"
)

// Kind discriminates access tokens from refresh tokens. A token is only
// valid at a checkpoint expecting its own kind.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims holds the JWT payload fields.
type Claims struct {
	TokenType Kind `json:"type"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a shared secret.
type Provider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is not configured")
	}
	return &Provider{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  time.Duration(cfg.AccessTokenExpiryMinutes) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTokenExpiryDays) * 24 * time.Hour,
	}, nil
}

// IssuePair signs a fresh access/refresh token pair for userID.
// Both tokens share the same issue instant; only the TTLs differ.
func (p *Provider) IssuePair(userID string) (access, refresh string, err error) {
	now := time.Now()
	access, err = p.sign(userID, KindAccess, now, p.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = p.sign(userID, KindRefresh, now, p.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (p *Provider) sign(userID string, kind Kind, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Verify checks signature, expiry and token kind, returning the subject
// user ID. Every failure collapses to domain.ErrUnauthorized so callers
// cannot distinguish a forged token from an expired or mistyped one.
func (p *Provider) Verify(tokenStr string, expected Kind) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}
	if claims.TokenType != expected {
		return "", fmt.Errorf("wrong token type: %w", domain.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject: %w", domain.ErrUnauthorized)
	}
	return claims.Subject, nil
}

// AccessTTL is the configured access-token lifetime.
func (p *Provider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL is the configured refresh-token lifetime.
func (p *Provider) RefreshTTL() time.Duration { return p.refreshTTL }
