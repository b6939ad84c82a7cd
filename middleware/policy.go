// ABOUTME: Declarative per-operation access policy evaluated before handlers run
// ABOUTME: Role checks happen here; ownership checks live inside handler bodies

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
)

// Policy describes who may invoke an operation. The zero value means "any
// authenticated caller". Role failures yield a generic 403 with no detail
// about which role was missing; ownership predicates are deliberately NOT
// part of the policy — handlers evaluate them after locating the target
// entity and surface failures as 404.
type Policy struct {
	// Public skips all checks (health, auth endpoints).
	Public bool
	// Roles lists the roles that satisfy the check; any one suffices.
	// Empty means authentication alone is enough.
	Roles []string
	// SelfParam names a path parameter that may match the caller's account
	// id as an alternative to holding one of Roles (self-or-admin listings).
	SelfParam string
}

// Require returns middleware enforcing the given policy.
func Require(p Policy) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if p.Public {
				next(w, r)
				return
			}

			claims := GetUserClaims(r)
			if claims == nil {
				writeJSONError(w, "unauthorized", "Authentication required", http.StatusUnauthorized)
				return
			}

			if len(p.Roles) == 0 {
				next(w, r)
				return
			}

			for _, role := range p.Roles {
				if claims.HasRole(role) {
					next(w, r)
					return
				}
			}

			if p.SelfParam != "" && claims.AccountID != 0 {
				if id, err := strconv.ParseInt(r.PathValue(p.SelfParam), 10, 64); err == nil && id == claims.AccountID {
					next(w, r)
					return
				}
			}

			slog.Warn("Authorization denied",
				"path", r.URL.Path,
				"method", r.Method,
				"email", claims.Email,
				"roles", claims.Roles,
			)
			writeJSONError(w, "forbidden", "Insufficient permissions", http.StatusForbidden)
		}
	}
}
