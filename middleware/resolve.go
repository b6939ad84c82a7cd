// ABOUTME: Per-request role resolution from persisted account flags
// ABOUTME: Replaces capability roles with a fresh set on every request; never caches

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campus-tools/lettertrack/backend/models"
	"github.com/campus-tools/lettertrack/backend/store"
)

// AccountLookup is the slice of the account store the resolver needs.
type AccountLookup interface {
	ByEmail(ctx context.Context, email string) (*models.Account, error)
}

// ResolveRoles returns middleware that recomputes the caller's capability
// roles from the account's current flags. It runs once per request, after
// Auth and before any policy check.
//
// Resolution is skipped (the request passes through with whatever roles the
// inbound claims carry) when:
//   - there are no claims (anonymous request)
//   - the claims are not identity-provider-backed
//   - the claims carry no email
//   - no account exists for the email (authenticated, not yet provisioned)
//
// A fresh claims value is installed each time; the inbound one is never
// mutated, so stale role grants cannot leak across requests. Flags are read
// from the store on every request — a flag change takes effect on the very
// next call.
func ResolveRoles(accounts AccountLookup) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserClaims(r)
			if claims == nil || claims.Source != SourceIdentityProvider || claims.Email == "" {
				next(w, r)
				return
			}

			account, err := accounts.ByEmail(r.Context(), claims.Email)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					// Degrade to no extra roles rather than failing the request
					slog.Warn("Role resolution lookup failed", "email", claims.Email, "error", err)
				}
				next(w, r)
				return
			}

			resolved := &UserClaims{
				Email:     claims.Email,
				Name:      claims.Name,
				Source:    claims.Source,
				AccountID: account.ID,
				Roles:     rolesForAccount(account, claims.Roles),
			}

			slog.Debug("Roles resolved", "email", resolved.Email, "account_id", resolved.AccountID, "roles", resolved.Roles)
			next(w, r.WithContext(WithUserClaims(r.Context(), resolved)))
		}
	}
}

// rolesForAccount computes the role set implied by the account's flags.
// A base RoleUser granted at login is preserved; the three capability roles
// are discarded and re-derived, so the result is exactly the flags' image.
func rolesForAccount(account *models.Account, inbound []string) []string {
	roles := make([]string, 0, 4)
	for _, r := range inbound {
		if r == RoleUser {
			roles = append(roles, RoleUser)
			break
		}
	}
	if account.IsAdmin {
		roles = append(roles, RoleAdmin)
	}
	if account.IsProfessor {
		roles = append(roles, RoleProfessor)
	}
	if account.IsStudent {
		roles = append(roles, RoleStudent)
	}
	return roles
}
