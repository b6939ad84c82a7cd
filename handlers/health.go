// ABOUTME: Health endpoint reporting collaborator status
// ABOUTME: Checks database and identity provider reachability

package handlers

import (
	"net/http"
)

// Health returns API health status including database and IdP state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":   "ok",
		"database": "not_configured",
		"idp":      "not_configured",
	}

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "error"
		} else {
			resp["database"] = "ok"
		}
	}

	if h.jwks != nil {
		if err := h.jwks.CheckReachable(); err != nil {
			resp["status"] = "degraded"
			resp["idp"] = "error"
		} else {
			resp["idp"] = "ok"
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}
