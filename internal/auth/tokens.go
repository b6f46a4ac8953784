// Package auth issues and verifies staff access tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"restaurant-ops/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify a staff member within one establishment.
type Claims struct {
	EstablishmentID string `json:"est"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	jwt.RegisteredClaims
}

func (c Claims) StaffID() string {
	return c.Subject
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs an HS256 token for s.
func (t *Tokens) Issue(s domain.Staff) (string, error) {
	now := t.now()
	claims := Claims{
		EstablishmentID: s.EstablishmentID,
		Email:           s.Email,
		Role:            s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) Parse(raw string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.EstablishmentID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
