package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/boba-pos/api/internal/auth"
	"github.com/boba-pos/api/internal/enum"
	"github.com/google/uuid"
)

type contextKey string

const claimsKey contextKey = "claims"

// roleRank orders shop roles. A manager can do everything a cashier can.
var roleRank = map[string]int{
	enum.EmployeeRoleCashier: 1,
	enum.EmployeeRoleManager: 2,
}

// Authenticate requires a bearer token issued by /auth/login or
// /auth/pin-login and puts its claims on the request context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			switch {
			case scheme == "":
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
				return
			case !found || !strings.EqualFold(scheme, "bearer") || token == "":
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}
			if _, ok := roleRank[claims.Role]; !ok {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "unknown employee role"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole admits employees whose role is at least minRole, so cashier
// routes also admit managers covering the till. Mount after Authenticate.
func RequireRole(minRole string) func(http.Handler) http.Handler {
	need := roleRank[minRole]
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
				return
			}
			if rank, ok := roleRank[claims.Role]; !ok || rank < need {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": strings.ToLower(minRole) + " role required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// EmployeeID returns the signed-in employee, or uuid.Nil on public routes.
func EmployeeID(ctx context.Context) uuid.UUID {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.EmployeeID
	}
	return uuid.Nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
