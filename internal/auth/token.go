package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chama-ledger/internal/domain/member"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	GroupID string      `json:"grp"`
	Role    member.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for actor, valid for ttl from now.
func IssueToken(secret []byte, a Actor, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty jwt secret")
	}
	claims := Claims{
		GroupID: a.GroupID,
		Role:    a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.MemberID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies the signature and expiry and returns the actor.
func ParseToken(secret []byte, raw string) (Actor, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Subject == "" || claims.GroupID == "" || !claims.Role.Valid() {
		return Actor{}, ErrInvalidToken
	}
	return Actor{MemberID: claims.Subject, GroupID: claims.GroupID, Role: claims.Role}, nil
}
