// ABOUTME: HTTP handlers for account administration
// ABOUTME: Capability flags change only through the admin toggle endpoint

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/campus-tools/lettertrack/backend/models"
)

// ListAccounts returns all accounts. Admin only.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		h.respondStoreError(w, err, "no accounts found")
		return
	}
	if accounts == nil {
		accounts = []*models.Account{}
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

// GetAccount returns a single account. The route policy admits the account
// owner or an admin.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid account id", http.StatusBadRequest)
		return
	}

	account, err := h.accounts.ByID(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, "account not found")
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// UpdateAccountFlags replaces the capability flags on an account. Admin only;
// there is no self-service role elevation. Takes effect on the target's very
// next request because roles are resolved per request.
func (h *Handler) UpdateAccountFlags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid account id", http.StatusBadRequest)
		return
	}

	var flags models.AccountFlags
	if err := json.NewDecoder(r.Body).Decode(&flags); err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid JSON", http.StatusBadRequest)
		return
	}

	account, err := h.accounts.SetFlags(r.Context(), id, flags)
	if err != nil {
		h.respondStoreError(w, err, "account not found")
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}
