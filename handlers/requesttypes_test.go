// ABOUTME: Unit tests for the request-type catalog handlers
// ABOUTME: Covers caching, duplicate conflicts, and cache invalidation on writes

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/campus-tools/lettertrack/backend/models"
)

func TestListRequestTypes_ReturnsCatalog(t *testing.T) {
	types := newFakeRequestTypeStore("Graduate School", "Scholarship", "Job Application")
	h := newTestHandler(t, Deps{RequestTypes: types})

	w := doRequest(t, h.ListRequestTypes, http.MethodGet, studentClaims(10), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var got []*models.RequestType
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Expected 3 types, got %d", len(got))
	}
}

func TestListRequestTypes_ServedFromCache(t *testing.T) {
	types := newFakeRequestTypeStore("Graduate School")
	h := newTestHandler(t, Deps{RequestTypes: types})

	// Warm the cache, then break the store: the second read must still work.
	w := doRequest(t, h.ListRequestTypes, http.MethodGet, studentClaims(10), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Warmup read failed: %d", w.Code)
	}

	types.err = errors.New("store down")
	w = doRequest(t, h.ListRequestTypes, http.MethodGet, studentClaims(10), nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Cached read should not hit the store, got %d", w.Code)
	}
}

func TestCreateRequestType_DuplicateLabel_Returns409(t *testing.T) {
	types := newFakeRequestTypeStore("Graduate School")
	h := newTestHandler(t, Deps{RequestTypes: types})

	w := doRequest(t, h.CreateRequestType, http.MethodPost, adminClaims(1), requestTypeInput{
		Label: "Graduate School",
	}, "")

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d", w.Code)
	}
	if body := decodeError(t, w); body.Type != models.ErrKindConflict {
		t.Errorf("Expected conflict, got %q", body.Type)
	}
}

func TestCreateRequestType_InvalidatesCache(t *testing.T) {
	types := newFakeRequestTypeStore("Graduate School")
	h := newTestHandler(t, Deps{RequestTypes: types})

	// Warm the cache with one entry
	doRequest(t, h.ListRequestTypes, http.MethodGet, studentClaims(10), nil, "")

	w := doRequest(t, h.CreateRequestType, http.MethodPost, adminClaims(1), requestTypeInput{
		Label: "Scholarship",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}

	// The next read must see the new entry, not the cached single-item list
	w = doRequest(t, h.ListRequestTypes, http.MethodGet, studentClaims(10), nil, "")
	var got []*models.RequestType
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Write should invalidate the catalog cache, got %d entries", len(got))
	}
}

func TestCreateRequestType_EmptyLabel(t *testing.T) {
	h := newTestHandler(t, Deps{RequestTypes: newFakeRequestTypeStore()})

	w := doRequest(t, h.CreateRequestType, http.MethodPost, adminClaims(1), requestTypeInput{}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestUpdateRequestType_Rename(t *testing.T) {
	types := newFakeRequestTypeStore("Graduate School")
	h := newTestHandler(t, Deps{RequestTypes: types})

	w := doRequest(t, h.UpdateRequestType, http.MethodPut, adminClaims(1), requestTypeInput{
		Label: "Graduate Program",
	}, "1")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var got models.RequestType
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if got.Label != "Graduate Program" {
		t.Errorf("Expected renamed label, got %q", got.Label)
	}
}

func TestUpdateRequestType_NotFound(t *testing.T) {
	h := newTestHandler(t, Deps{RequestTypes: newFakeRequestTypeStore()})

	w := doRequest(t, h.UpdateRequestType, http.MethodPut, adminClaims(1), requestTypeInput{
		Label: "Anything",
	}, "99")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestDeleteRequestType(t *testing.T) {
	types := newFakeRequestTypeStore("Graduate School")
	h := newTestHandler(t, Deps{RequestTypes: types})

	w := doRequest(t, h.DeleteRequestType, http.MethodDelete, adminClaims(1), nil, "1")
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", w.Code)
	}
	if len(types.types) != 0 {
		t.Error("Entry should be gone from the store")
	}
}
