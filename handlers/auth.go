// ABOUTME: Auth handlers implementing BFF OAuth pattern
// ABOUTME: Handles login, logout, session management with httpOnly cookies

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/campus-tools/lettertrack/backend/middleware"
	"github.com/campus-tools/lettertrack/backend/models"
)

// Login authenticates with the identity provider and creates a server-side
// session. The account is provisioned (upsert by email) on first login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		h.writeError(w, models.ErrKindBadRequest, "Username and password are required", http.StatusBadRequest)
		return
	}

	tokenResp, err := h.idp.PasswordGrant(req.Username, req.Password)
	if err != nil {
		slog.Warn("Authentication failed", "username", req.Username, "error", err)
		h.writeJSON(w, http.StatusUnauthorized, models.LoginResponse{
			Success: false,
			Error:   "Invalid credentials",
		})
		return
	}

	// Verify the token we just received; its claims carry the identity
	claims, err := h.jwks.VerifyAndParse(tokenResp.AccessToken)
	if err != nil {
		slog.Error("IdP issued an unverifiable token", "error", err)
		h.writeError(w, models.ErrKindInternal, "Identity provider error", http.StatusInternalServerError)
		return
	}
	if claims.Email == "" {
		slog.Error("IdP token missing email claim", "subject", claims.Subject)
		h.writeError(w, models.ErrKindInternal, "Identity provider error", http.StatusInternalServerError)
		return
	}

	// Provision the local account at first login (upsert keyed by email).
	// Flags start false; an admin grants capabilities later.
	if _, err := h.accounts.Upsert(r.Context(), claims.Email, claims.Name); err != nil {
		slog.Error("Failed to provision account", "email", claims.Email, "error", err)
		h.writeError(w, models.ErrKindInternal, "Failed to provision account", http.StatusInternalServerError)
		return
	}

	expiry := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	sessionID, err := h.sessions.Create(claims.Email, claims.Name, tokenResp.AccessToken, tokenResp.RefreshToken, expiry)
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		h.writeError(w, models.ErrKindInternal, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.setSessionCookies(w, sessionID)

	// Success response carries no tokens
	h.writeJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Email:   claims.Email,
		Name:    claims.Name,
	})
}

// Me returns the current user's authentication state, including the roles
// resolved for this request.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r)
	if claims == nil {
		h.writeJSON(w, http.StatusOK, models.UserInfoResponse{
			Authenticated: false,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, models.UserInfoResponse{
		Authenticated: true,
		Email:         claims.Email,
		Name:          claims.Name,
		AccountID:     claims.AccountID,
		Roles:         claims.Roles,
	})
}

// Logout clears the session and cookies
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if h.sessions != nil {
			h.sessions.Delete(cookie.Value)
		}
	}

	h.clearSessionCookies(w)

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Refresh refreshes the session token if needed
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		h.writeError(w, models.ErrKindUnauthorized, "Not authenticated", http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Get(cookie.Value)
	if err != nil {
		h.writeError(w, models.ErrKindUnauthorized, "Not authenticated", http.StatusUnauthorized)
		return
	}

	if !h.sessions.NeedsRefresh(session) {
		h.writeJSON(w, http.StatusOK, map[string]bool{"refreshed": false})
		return
	}

	tokenResp, err := h.idp.RefreshGrant(session.RefreshToken)
	if err != nil {
		slog.Warn("Token refresh failed", "error", err)
		h.writeError(w, models.ErrKindUnauthorized, "Token refresh failed", http.StatusUnauthorized)
		return
	}

	expiry := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	if err := h.sessions.UpdateTokens(cookie.Value, tokenResp.AccessToken, tokenResp.RefreshToken, expiry); err != nil {
		slog.Error("Failed to update session tokens", "error", err)
		h.writeError(w, models.ErrKindInternal, "Failed to update session", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"refreshed": true})
}

// ValidateSession is the SessionValidatorFunc wired into the auth middleware.
// It returns provider-backed claims with only the base role; the role
// resolver fills in capability roles from the account's current flags.
func (h *Handler) ValidateSession(sessionID string) *middleware.UserClaims {
	if h.sessions == nil {
		return nil
	}

	session, err := h.sessions.Get(sessionID)
	if err != nil {
		return nil
	}

	return &middleware.UserClaims{
		Email:  session.Email,
		Name:   session.Name,
		Source: middleware.SourceIdentityProvider,
		Roles:  []string{middleware.RoleUser},
	}
}

// setSessionCookies sets the httpOnly session cookie and the JS-readable
// CSRF cookie for the double-submit check.
func (h *Handler) setSessionCookies(w http.ResponseWriter, sessionID string) {
	secure := true
	if h.cfg != nil {
		secure = h.cfg.CookieSecure
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   3600, // 1 hour
	})

	if session, err := h.sessions.Get(sessionID); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.CSRFCookieName,
			Value:    session.CSRFToken,
			HttpOnly: false, // front end echoes it in X-CSRF-Token
			Secure:   secure,
			SameSite: http.SameSiteStrictMode,
			Path:     "/",
			MaxAge:   3600,
		})
	}
}

// clearSessionCookies removes both auth cookies
func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	secure := true
	if h.cfg != nil {
		secure = h.cfg.CookieSecure
	}

	for _, name := range []string{middleware.SessionCookieName, middleware.CSRFCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			HttpOnly: name == middleware.SessionCookieName,
			Secure:   secure,
			SameSite: http.SameSiteStrictMode,
			Path:     "/",
			MaxAge:   -1, // Delete cookie
		})
	}
}
