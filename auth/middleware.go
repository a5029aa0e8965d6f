package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Middleware resolves the calling user from a bearer token.
//
// Requests without a token fall back to DevUserID when it is set, which keeps
// single-user local setups working without a token issuer. With neither a
// token nor a dev user the request is rejected.
type Middleware struct {
	Secret    []byte
	DevUserID string
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, devUserID string) *Middleware {
	return &Middleware{Secret: secret, DevUserID: devUserID}
}

// Wrap applies authentication to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			if m.DevUserID == "" {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), m.DevUserID)))
			return
		}

		claims, err := ParseJWT(token, m.Secret)
		if err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.Subject)))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

func extractBearer(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
