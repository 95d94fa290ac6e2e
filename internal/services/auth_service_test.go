package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/config"
	chat_errors "pairchat/pkg/errors"
)

func newTestAuthService() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:     "test-secret",
		WebhookSecret: "hook-secret",
	})
}

func signToken(t *testing.T, secret string, claims IdentityClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseAccessToken(t *testing.T) {
	svc := newTestAuthService()
	token := signToken(t, "test-secret", IdentityClaims{
		Email:    "alice@example.com",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ext-alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ext-alice", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestParseAccessTokenRejectsBadSecret(t *testing.T) {
	svc := newTestAuthService()
	token := signToken(t, "wrong-secret", IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ext-alice"},
	})

	_, err := svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	svc := newTestAuthService()
	token := signToken(t, "test-secret", IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ext-alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
}

func TestParseAccessTokenRequiresSubject(t *testing.T) {
	svc := newTestAuthService()
	token := signToken(t, "test-secret", IdentityClaims{Email: "nobody@example.com"})

	_, err := svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
}

func TestParseAccessTokenRejectsEmpty(t *testing.T) {
	svc := newTestAuthService()
	_, err := svc.ParseAccessToken("")
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
}

func TestVerifyWebhookSignature(t *testing.T) {
	svc := newTestAuthService()
	body := []byte(`{"type":"user.created"}`)

	mac := hmac.New(sha256.New, []byte("hook-secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.NoError(t, svc.VerifyWebhookSignature(body, signature))
	assert.ErrorIs(t, svc.VerifyWebhookSignature(body, "deadbeef"), chat_errors.ErrUnauthorized)
	assert.ErrorIs(t, svc.VerifyWebhookSignature(body, ""), chat_errors.ErrUnauthorized)
	assert.ErrorIs(t, svc.VerifyWebhookSignature([]byte("tampered"), signature), chat_errors.ErrUnauthorized)
}
