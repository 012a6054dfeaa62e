package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingVendor = errors.New("token carries no vendor id")
)

var (
	secretMu sync.RWMutex
	secret   = []byte("change-me")
)

// Claims are the vendor claims issued by the E-Souk auth service
type Claims struct {
	VendorID string `json:"vendor_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SetSecret replaces the HMAC key used to verify tokens
func SetSecret(key string) {
	secretMu.Lock()
	defer secretMu.Unlock()
	secret = []byte(key)
}

func signingKey() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	return secret
}

// GenerateToken issues an HS256 token; the storefront auth service owns issuance,
// this exists for local tooling and tests.
func GenerateToken(vendorID, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		VendorID: vendorID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   vendorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey())
}

// ValidateToken parses and verifies a token, returning its claims
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return signingKey(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.VendorID == "" {
		claims.VendorID = claims.Subject
	}
	if claims.VendorID == "" {
		return nil, ErrMissingVendor
	}
	return claims, nil
}
