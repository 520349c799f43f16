// Package jwt issues and validates delegate bearer tokens.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "summit/pkg/domain"
	dErrors "summit/pkg/domain-errors"
)

// Claims carried by delegate access tokens. The subject is the delegate id.
// Roles stays empty for delegates; staff access uses the admin token, not JWT.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	gojwt.RegisteredClaims
}

// Service signs and verifies HS256 tokens with a single shared key.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewService(signingKey, issuer string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// Issue signs a token for an approved delegate.
func (s *Service) Issue(delegateID id.DelegateID, email string) (string, error) {
	now := time.Now()
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, Claims{
		Email: email,
		Roles: []string{},
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   delegateID.String(),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  gojwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token string. Expiry gets its own
// message; every other failure collapses to a generic invalid token error.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := gojwt.ParseWithClaims(tokenString, &Claims{}, func(token *gojwt.Token) (any, error) {
		if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, gojwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}
