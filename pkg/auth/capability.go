package auth

import (
	"time"

	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/golang-jwt/jwt/v5"
)

const (
	PaymentStatusAudience = "payment-status"
	DefaultCapabilityTTL  = 5 * time.Minute
	capabilityIssuer      = "payment-service"
)

var (
	ErrCapabilityExpired = apperr.New(apperr.Unauthorized, "payment status token expired")
	ErrCapabilityInvalid = apperr.New(apperr.Unauthorized, "invalid payment status token")
)

// CapabilityClaims authorize exactly one order's transition to paid.
type CapabilityClaims struct {
	jwt.RegisteredClaims
	OrderID string `json:"order_id"`
}

// CapabilitySigner issues and checks payment-status capability tokens. Its
// secret must differ from the user token secret.
type CapabilitySigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCapabilitySigner(secret string, ttl time.Duration) *CapabilitySigner {
	if ttl <= 0 {
		ttl = DefaultCapabilityTTL
	}
	return &CapabilitySigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *CapabilitySigner) Issue(orderID string) (string, error) {
	now := s.now()
	return signHS256(CapabilityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    capabilityIssuer,
			Audience:  jwt.ClaimStrings{PaymentStatusAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		OrderID: orderID,
	}, s.secret)
}

// Verify returns the order id the token grants.
func (s *CapabilitySigner) Verify(token string) (string, error) {
	claims := &CapabilityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(PaymentStatusAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if isExpired(err) {
			return "", apperr.Wrap(apperr.Unauthorized, err, ErrCapabilityExpired.Message)
		}
		return "", apperr.Wrap(apperr.Unauthorized, err, ErrCapabilityInvalid.Message)
	}
	if !parsed.Valid || claims.OrderID == "" {
		return "", ErrCapabilityInvalid
	}
	return claims.OrderID, nil
}
