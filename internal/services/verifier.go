package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenVerifier turns an opaque bearer token into a stable user identifier.
// The trust decision belongs to the identity provider that minted the token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// IdentityProvider extends verification with account administration.
type IdentityProvider interface {
	TokenVerifier
	DeleteAccount(ctx context.Context, userID string) error
}

type identityService struct {
	jwtSecret []byte
	adminURL  string
	client    *http.Client
}

// NewIdentityService verifies provider-issued HS256 tokens locally and talks
// to the provider's admin endpoint for account deletion. The admin call gets
// its own timeout so a slow provider never ties up a store transaction longer
// than configured.
func NewIdentityService(jwtSecret, adminURL string, timeout time.Duration) IdentityProvider {
	return &identityService{
		jwtSecret: []byte(jwtSecret),
		adminURL:  adminURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (s *identityService) Verify(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func (s *identityService) DeleteAccount(ctx context.Context, userID string) error {
	if s.adminURL == "" {
		// No provider admin endpoint configured; local deletion stands alone.
		return nil
	}

	endpoint := fmt.Sprintf("%s/accounts/%s", s.adminURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build account deletion request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider account deletion failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("identity provider account deletion failed: status %d", resp.StatusCode)
	}
	return nil
}
