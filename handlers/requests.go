// ABOUTME: HTTP handlers for the recommendation request lifecycle
// ABOUTME: Ownership predicates are checked here and surface as 404, never 403

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/campus-tools/lettertrack/backend/middleware"
	"github.com/campus-tools/lettertrack/backend/models"
	"github.com/campus-tools/lettertrack/backend/store"
)

// requestNotFoundMsg is the single message used for both a missing request
// and a request the caller does not own. A non-owner cannot tell the two
// apart, which keeps request ids unenumerable.
func requestNotFoundMsg(id int64) string {
	return fmt.Sprintf("recommendation request %d not found", id)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// ListRequests returns every request. Admin only (enforced by the route policy).
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requests.List(r.Context())
	if err != nil {
		h.respondStoreError(w, err, "no requests found")
		return
	}
	if requests == nil {
		requests = []*models.RecommendationRequest{}
	}
	h.writeJSON(w, http.StatusOK, requests)
}

// ListRequestsByRequester returns the requests owned by the requester in the
// path. The route policy admits only that requester or an admin.
func (h *Handler) ListRequestsByRequester(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid account id", http.StatusBadRequest)
		return
	}

	requests, err := h.requests.ByRequester(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, "no requests found")
		return
	}
	if requests == nil {
		requests = []*models.RecommendationRequest{}
	}
	h.writeJSON(w, http.StatusOK, requests)
}

// ListRequestsByProfessor returns the requests targeting the professor in the
// path. The route policy admits only that professor or an admin.
func (h *Handler) ListRequestsByProfessor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid account id", http.StatusBadRequest)
		return
	}

	requests, err := h.requests.ByProfessor(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, "no requests found")
		return
	}
	if requests == nil {
		requests = []*models.RecommendationRequest{}
	}
	h.writeJSON(w, http.StatusOK, requests)
}

// GetRequest returns a single request. Reads are unrestricted for
// authenticated callers.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid request id", http.StatusBadRequest)
		return
	}

	req, err := h.requests.ByID(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, requestNotFoundMsg(id))
		return
	}
	h.writeJSON(w, http.StatusOK, req)
}

// CreateRequest creates a Pending request owned by the caller. The professor
// is resolved from the supplied email and must be flagged professor; a
// missing or non-professor account yields the same not-found outcome.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r)

	var input models.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if input.ProfessorEmail == "" || input.RequestType == "" {
		h.writeError(w, models.ErrKindBadRequest, "professor_email and request_type are required", http.StatusBadRequest)
		return
	}

	professor, err := h.accounts.ByEmail(r.Context(), input.ProfessorEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, models.ErrKindNotFound, "professor not found", http.StatusNotFound)
			return
		}
		h.respondStoreError(w, err, "professor not found")
		return
	}
	if !professor.IsProfessor {
		h.writeError(w, models.ErrKindNotFound, "professor not found", http.StatusNotFound)
		return
	}

	// SubmissionDate and Pending status are system-set; caller input is ignored
	created, err := h.requests.Create(r.Context(), &models.RecommendationRequest{
		RequesterID:  claims.AccountID,
		ProfessorID:  professor.ID,
		RequestType:  input.RequestType,
		Details:      input.Details,
		NeededByDate: input.NeededByDate,
	})
	if err != nil {
		h.respondStoreError(w, err, "request could not be created")
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

// UpdateRequest replaces the non-status fields of a request. Permitted for
// the owning requester in any state, or an admin unconditionally.
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r)

	id, err := pathID(r)
	if err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid request id", http.StatusBadRequest)
		return
	}

	var input models.UpdateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid JSON", http.StatusBadRequest)
		return
	}

	req, err := h.requests.ByID(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, requestNotFoundMsg(id))
		return
	}

	if !claims.HasRole(middleware.RoleAdmin) && req.RequesterID != claims.AccountID {
		h.writeError(w, models.ErrKindNotFound, requestNotFoundMsg(id), http.StatusNotFound)
		return
	}

	if input.RequestType == "" {
		h.writeError(w, models.ErrKindBadRequest, "request_type is required", http.StatusBadRequest)
		return
	}

	req.RequestType = input.RequestType
	req.Details = input.Details
	req.NeededByDate = input.NeededByDate

	updated, err := h.requests.Update(r.Context(), req)
	if err != nil {
		h.respondStoreError(w, err, requestNotFoundMsg(id))
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

// UpdateRequestStatus drives a lifecycle transition. The route policy already
// requires the professor or admin role; ownership is checked here. The status
// is an open string: any non-Pending value is terminal and sets the
// completion date in the same write, resetting to Pending clears it.
func (h *Handler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r)

	id, err := pathID(r)
	if err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid request id", http.StatusBadRequest)
		return
	}

	var input models.UpdateStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if input.Status == "" {
		h.writeError(w, models.ErrKindBadRequest, "status is required", http.StatusBadRequest)
		return
	}

	req, err := h.requests.ByID(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, requestNotFoundMsg(id))
		return
	}

	if !claims.HasRole(middleware.RoleAdmin) && req.ProfessorID != claims.AccountID {
		h.writeError(w, models.ErrKindNotFound, requestNotFoundMsg(id), http.StatusNotFound)
		return
	}

	req.Status = input.Status
	if input.Status == models.StatusPending {
		req.CompletionDate = nil
	} else {
		now := time.Now()
		req.CompletionDate = &now
	}
	if input.Details != nil {
		req.Details = *input.Details
	}

	updated, err := h.requests.Update(r.Context(), req)
	if err != nil {
		h.respondStoreError(w, err, requestNotFoundMsg(id))
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

// DeleteRequest removes a request. Permitted for the owning requester or an
// admin.
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r)

	id, err := pathID(r)
	if err != nil {
		h.writeError(w, models.ErrKindBadRequest, "Invalid request id", http.StatusBadRequest)
		return
	}

	req, err := h.requests.ByID(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, requestNotFoundMsg(id))
		return
	}

	if !claims.HasRole(middleware.RoleAdmin) && req.RequesterID != claims.AccountID {
		h.writeError(w, models.ErrKindNotFound, requestNotFoundMsg(id), http.StatusNotFound)
		return
	}

	if err := h.requests.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, err, requestNotFoundMsg(id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
