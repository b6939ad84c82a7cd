// ABOUTME: Authentication middleware for IdP bearer tokens and BFF session cookies
// ABOUTME: Installs an immutable claims value in the request context for downstream checks

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campus-tools/lettertrack/backend/services"
)

// Capability roles. RoleUser is the baseline every authenticated principal
// holds; the other three mirror account flags and are recomputed per request
// by ResolveRoles.
const (
	RoleUser      = "ROLE_USER"
	RoleStudent   = "ROLE_STUDENT"
	RoleProfessor = "ROLE_PROFESSOR"
	RoleAdmin     = "ROLE_ADMIN"
)

// Claim sources. Only identity-provider-backed principals are subject to
// role resolution.
const (
	SourceIdentityProvider = "idp"
)

// AuthMode defines how authentication is enforced
type AuthMode string

const (
	// AuthModeDisabled skips all authentication
	AuthModeDisabled AuthMode = "disabled"
	// AuthModeOptional validates credentials if present, allows anonymous
	AuthModeOptional AuthMode = "optional"
	// AuthModeRequired rejects requests without valid credentials
	AuthModeRequired AuthMode = "required"
)

// ValidateAuthMode validates an auth mode string and returns the corresponding AuthMode.
// Empty string defaults to AuthModeOptional.
func ValidateAuthMode(mode string) (AuthMode, error) {
	switch mode {
	case "", "optional":
		return AuthModeOptional, nil
	case "disabled":
		return AuthModeDisabled, nil
	case "required":
		return AuthModeRequired, nil
	default:
		return "", fmt.Errorf("invalid auth mode: %q (must be disabled, optional, or required)", mode)
	}
}

// UserClaims is the per-request authorization context. It is immutable once
// installed: ResolveRoles builds a replacement value rather than mutating
// this one, so no handler ever observes a half-updated claim set.
type UserClaims struct {
	Email     string
	Name      string
	Source    string
	AccountID int64    // 0 until ResolveRoles matches a local account
	Roles     []string // capability roles, recomputed per request
}

// HasRole reports whether the claims carry the given role.
func (c *UserClaims) HasRole(role string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// SessionValidatorFunc validates a session ID and returns user claims if valid
type SessionValidatorFunc func(sessionID string) *UserClaims

// AuthConfig holds authentication middleware settings
type AuthConfig struct {
	Mode             AuthMode
	SessionValidator SessionValidatorFunc // Optional: validates session cookies
	JWKSClient       *services.JWKSClient // Optional: validates Bearer token signatures
}

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const userClaimsKey contextKey = "userClaims"

// Auth returns middleware that validates bearer tokens and/or session cookies.
// The middleware behavior depends on the configured mode:
//   - disabled: passes all requests through
//   - optional: validates auth if present, allows anonymous
//   - required: rejects requests without valid auth
//
// Authentication methods (checked in order):
//  1. Bearer token in Authorization header (takes precedence)
//  2. Session cookie (if SessionValidator is configured)
func Auth(cfg AuthConfig) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if cfg.Mode == AuthModeDisabled {
				next(w, r)
				return
			}

			// Check Bearer token first (takes precedence)
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				if !strings.HasPrefix(authHeader, "Bearer ") {
					slog.Debug("Auth rejected: invalid format", "path", r.URL.Path)
					writeJSONError(w, "unauthorized", "Invalid authorization format", http.StatusUnauthorized)
					return
				}

				token := strings.TrimPrefix(authHeader, "Bearer ")

				if cfg.JWKSClient == nil {
					slog.Debug("Auth rejected: JWKSClient not configured", "path", r.URL.Path)
					writeJSONError(w, "unauthorized", "Bearer authentication unavailable, please use web UI login", http.StatusUnauthorized)
					return
				}

				tokenClaims, err := cfg.JWKSClient.VerifyAndParse(token)
				if err != nil {
					slog.Debug("Auth rejected: invalid token", "path", r.URL.Path, "error", err.Error())
					writeJSONError(w, "unauthorized", "Invalid token", http.StatusUnauthorized)
					return
				}

				claims := &UserClaims{
					Email:  tokenClaims.Email,
					Name:   tokenClaims.Name,
					Source: SourceIdentityProvider,
					Roles:  []string{RoleUser},
				}

				slog.Debug("Auth: valid bearer token", "path", r.URL.Path, "email", claims.Email)
				next(w, r.WithContext(WithUserClaims(r.Context(), claims)))
				return
			}

			// Check session cookie second (if validator configured)
			if cfg.SessionValidator != nil {
				cookie, err := r.Cookie(SessionCookieName)
				if err == nil && cookie.Value != "" {
					claims := cfg.SessionValidator(cookie.Value)
					if claims != nil {
						slog.Debug("Auth: valid session cookie", "path", r.URL.Path, "email", claims.Email)
						next(w, r.WithContext(WithUserClaims(r.Context(), claims)))
						return
					}
					slog.Debug("Auth rejected: invalid session", "path", r.URL.Path)
					writeJSONError(w, "unauthorized", "Invalid session", http.StatusUnauthorized)
					return
				}
			}

			// No auth provided
			if cfg.Mode == AuthModeRequired {
				slog.Debug("Auth rejected: no auth provided", "path", r.URL.Path, "mode", cfg.Mode)
				writeJSONError(w, "unauthorized", "Authentication required", http.StatusUnauthorized)
				return
			}

			slog.Debug("Auth: anonymous request allowed", "path", r.URL.Path, "mode", cfg.Mode)
			next(w, r)
		}
	}
}

// WithUserClaims returns a context carrying the given claims, replacing any
// previously attached value.
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// GetUserClaims extracts user claims from request context.
// Returns nil if no claims are present.
func GetUserClaims(r *http.Request) *UserClaims {
	claims, ok := r.Context().Value(userClaimsKey).(*UserClaims)
	if !ok {
		return nil
	}
	return claims
}
