package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"model-catalog-service/pkg/config"
)

// ErrInvalidToken is returned for any token that fails verification,
// regardless of the underlying reason (bad signature, expired, malformed).
var ErrInvalidToken = errors.New("invalid or expired token")

// Principal is an authenticated caller as reported by the identity provider.
type Principal struct {
	ID    string
	Email string
	Name  string
}

// Claims represents the token claims issued by the identity provider
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens and extracts the caller identity.
type Verifier struct {
	signingKey []byte
}

// NewVerifier creates a Verifier from the auth configuration
func NewVerifier(cfg *config.AuthConfig) *Verifier {
	return &Verifier{signingKey: []byte(cfg.SigningKey)}
}

// Verify validates and parses the token string and returns the principal.
// It must be called once per request needing identity; results are never
// cached across requests.
func (v *Verifier) Verify(tokenString string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
	}

	return &Principal{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  name,
	}, nil
}
