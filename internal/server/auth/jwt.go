// Package auth mints and verifies the downstream access tokens handed to
// the portal after a successful CCXP login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims: стандартные утверждения плюс поля профиля студента.
type Claims struct {
	jwt.RegisteredClaims
	NameZH     string `json:"name_zh,omitempty"`
	NameEN     string `json:"name_en,omitempty"`
	Department string `json:"department,omitempty"`
	Grade      string `json:"grade,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Profile rebuilds the profile carried by c.
func (c *Claims) Profile() models.Profile {
	return models.Profile{
		StudentID:  c.Subject,
		NameZH:     c.NameZH,
		NameEN:     c.NameEN,
		Department: c.Department,
		Grade:      c.Grade,
		Email:      c.Email,
	}
}

// JWTMinter signs HS256 tokens whose subject is the student id.
type JWTMinter struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTMinter(secret []byte, issuer string, ttl time.Duration) *JWTMinter {
	return &JWTMinter{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// Mint implements the token minter used by the login pipeline.
func (m *JWTMinter) Mint(_ context.Context, p models.Profile) (string, error) {
	if p.StudentID == "" {
		return "", fmt.Errorf("mint: empty subject")
	}
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.StudentID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		NameZH:     p.NameZH,
		NameEN:     p.NameEN,
		Department: p.Department,
		Grade:      p.Grade,
		Email:      p.Email,
	})

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies tokenString against secret and returns its claims.
// Any failure, including expiry, is reported as common.ErrInvalidToken.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", common.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
