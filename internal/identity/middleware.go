package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Verifier is what the middleware needs from the provider client.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (Principal, error)
}

// RequireAuth verifies the bearer credential and attaches the resulting
// principal to the request context. No downstream handler runs on failure.
func RequireAuth(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w, "Not authorized, no token")
				return
			}

			principal, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				writeUnauthorized(w, "Not authorized, token failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
