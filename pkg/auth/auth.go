// Package auth verifies user access tokens and issues the narrowly scoped
// capability tokens services use to talk to each other.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/httpx"
	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

var (
	ErrMissingToken = apperr.New(apperr.Unauthorized, "missing authorization header")
	ErrBadScheme    = apperr.New(apperr.Unauthorized, "invalid authorization header format")
	ErrInvalidToken = apperr.New(apperr.Unauthorized, "invalid token")
	ErrNotAdmin     = apperr.New(apperr.Forbidden, "admin role required")
)

// UserClaims are issued by the user service; the user id lives in "id".
type UserClaims struct {
	jwt.RegisteredClaims
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Role   string
	// Authorization is the raw header, forwarded to collaborators that
	// authenticate the same user.
	Authorization string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Verifier checks HMAC-signed user access tokens.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(token string) (*UserClaims, error) {
	claims := &UserClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthorized, err, ErrInvalidToken.Message)
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", ErrBadScheme
	}
	return strings.TrimSpace(token), nil
}

// Middleware rejects requests without a valid user token and stores the
// caller's Identity on the context.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, err := BearerToken(header)
			if err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			claims, err := v.Verify(token)
			if err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			ctx := WithIdentity(r.Context(), Identity{
				UserID:        claims.ID,
				Role:          claims.Role,
				Authorization: header,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, r, ErrMissingToken)
			return
		}
		if !id.IsAdmin() {
			httpx.WriteError(w, r, ErrNotAdmin)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func signHS256(claims jwt.Claims, secret []byte) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

func isExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
