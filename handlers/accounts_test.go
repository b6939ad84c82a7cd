// ABOUTME: Unit tests for account administration handlers
// ABOUTME: Covers listings, lookups, and the admin flag toggle

package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/campus-tools/lettertrack/backend/models"
)

func TestListAccounts(t *testing.T) {
	accounts := newFakeAccountStore(
		&models.Account{ID: 1, Email: "admin@test.edu", IsAdmin: true},
		&models.Account{ID: 2, Email: "prof@test.edu", IsProfessor: true},
	)
	h := newTestHandler(t, Deps{Accounts: accounts})

	w := doRequest(t, h.ListAccounts, http.MethodGet, adminClaims(1), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var got []*models.Account
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 accounts, got %d", len(got))
	}
}

func TestGetAccount_Found(t *testing.T) {
	accounts := newFakeAccountStore(
		&models.Account{ID: 2, Email: "prof@test.edu", IsProfessor: true},
	)
	h := newTestHandler(t, Deps{Accounts: accounts})

	w := doRequest(t, h.GetAccount, http.MethodGet, adminClaims(1), nil, "2")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var got models.Account
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if got.Email != "prof@test.edu" {
		t.Errorf("Expected prof@test.edu, got %q", got.Email)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	h := newTestHandler(t, Deps{Accounts: newFakeAccountStore()})

	w := doRequest(t, h.GetAccount, http.MethodGet, adminClaims(1), nil, "42")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestUpdateAccountFlags_ReplacesFlags(t *testing.T) {
	accounts := newFakeAccountStore(
		&models.Account{ID: 2, Email: "prof@test.edu", IsProfessor: true, IsStudent: true},
	)
	h := newTestHandler(t, Deps{Accounts: accounts})

	// Full replace: the omitted student flag goes false
	w := doRequest(t, h.UpdateAccountFlags, http.MethodPut, adminClaims(1), models.AccountFlags{
		IsProfessor: true,
	}, "2")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var got models.Account
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if !got.IsProfessor {
		t.Error("Professor flag should be set")
	}
	if got.IsStudent {
		t.Error("Flags are replaced, not merged; student flag should be cleared")
	}
	if got.IsAdmin {
		t.Error("Admin flag should remain false")
	}
}

func TestUpdateAccountFlags_NotFound(t *testing.T) {
	h := newTestHandler(t, Deps{Accounts: newFakeAccountStore()})

	w := doRequest(t, h.UpdateAccountFlags, http.MethodPut, adminClaims(1), models.AccountFlags{}, "42")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestUpdateAccountFlags_InvalidID(t *testing.T) {
	h := newTestHandler(t, Deps{Accounts: newFakeAccountStore()})

	w := doRequest(t, h.UpdateAccountFlags, http.MethodPut, adminClaims(1), models.AccountFlags{}, "abc")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}
