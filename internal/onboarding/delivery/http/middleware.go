package http

import (
	"net/http"

	"github.com/esouk/onboarding/pkg/auth"
)

// AuthMiddleware validates the vendor JWT and keeps the raw token in the
// request context so backend calls can forward it.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authorization header required"})
			return
		}

		token, ok := auth.BearerToken(authHeader)
		if !ok {
			respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Invalid authorization header format"})
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Invalid token"})
			return
		}

		ctx := auth.WithToken(r.Context(), token)
		ctx = auth.WithClaims(ctx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// vendorID returns the vendor of an authenticated request
func vendorID(r *http.Request) string {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.VendorID
}
