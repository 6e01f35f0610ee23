package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TokenEnvelope wraps responses that carry a token pair.
type TokenEnvelope struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// MFAEnvelope signals that a login needs a second factor. No tokens are
// issued until the code is verified.
type MFAEnvelope struct {
	Message     string `json:"message"`
	MFARequired bool   `json:"mfa_required"`
	OTPSent     bool   `json:"otp_sent"`
}

func newTokenEnvelope(access, refresh string) TokenEnvelope {
	return TokenEnvelope{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
