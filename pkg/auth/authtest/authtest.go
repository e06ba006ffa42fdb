// Package authtest signs user tokens for handler tests.
package authtest

import (
	"testing"
	"time"

	"github.com/fjod/tradecart/pkg/auth"
	"github.com/golang-jwt/jwt/v5"
)

const Secret = "test-access-secret"

// Token returns a signed user token valid for an hour.
func Token(t testing.TB, userID, role string) string {
	t.Helper()
	return sign(t, userID, role, time.Now().Add(time.Hour))
}

func ExpiredToken(t testing.TB, userID string) string {
	t.Helper()
	return sign(t, userID, "", time.Now().Add(-time.Minute))
}

// Header returns the Authorization header value for userID.
func Header(t testing.TB, userID string) string {
	t.Helper()
	return "Bearer " + Token(t, userID, "")
}

func sign(t testing.TB, userID, role string, exp time.Time) string {
	t.Helper()
	claims := auth.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		ID:   userID,
		Role: role,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
