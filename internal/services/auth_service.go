package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"pairchat/config"
	chat_errors "pairchat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService validates tokens minted by the external identity provider.
// There is no local credential store; the provider is the authority and
// users are synced from its claims.
type AuthService struct {
	jwtSecret     []byte
	webhookSecret []byte
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		jwtSecret:     []byte(cfg.JWTSecret),
		webhookSecret: []byte(cfg.WebhookSecret),
	}
}

// IdentityClaims are the provider claims we care about. Subject is the
// provider's stable user id.
type IdentityClaims struct {
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"given_name,omitempty"`
	LastName  string `json:"family_name,omitempty"`
	AvatarURL string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

func (s *AuthService) ParseAccessToken(token string) (IdentityClaims, error) {
	if token == "" {
		return IdentityClaims{}, chat_errors.ErrUnauthorized
	}
	claims := IdentityClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, chat_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return IdentityClaims{}, chat_errors.ErrUnauthorized
	}
	return claims, nil
}

// VerifyWebhookSignature checks the hex-encoded HMAC-SHA256 signature the
// identity provider attaches to webhook deliveries.
func (s *AuthService) VerifyWebhookSignature(body []byte, signature string) error {
	if len(s.webhookSecret) == 0 || signature == "" {
		return chat_errors.ErrUnauthorized
	}
	mac := hmac.New(sha256.New, s.webhookSecret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return chat_errors.ErrUnauthorized
	}
	return nil
}
