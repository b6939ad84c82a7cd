// ABOUTME: In-memory store fakes and request helpers for handler tests
// ABOUTME: Fakes emulate the Postgres defaults the real store relies on

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/campus-tools/lettertrack/backend/cache"
	"github.com/campus-tools/lettertrack/backend/config"
	"github.com/campus-tools/lettertrack/backend/middleware"
	"github.com/campus-tools/lettertrack/backend/models"
	"github.com/campus-tools/lettertrack/backend/store"
)

// --- account store fake ---

type fakeAccountStore struct {
	nextID   int64
	accounts map[int64]*models.Account
	err      error // forced error for all calls when set
}

func newFakeAccountStore(accounts ...*models.Account) *fakeAccountStore {
	f := &fakeAccountStore{accounts: make(map[int64]*models.Account)}
	for _, a := range accounts {
		if a.ID > f.nextID {
			f.nextID = a.ID
		}
		f.accounts[a.ID] = a
	}
	return f
}

func (f *fakeAccountStore) Upsert(_ context.Context, email, name string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.accounts {
		if a.Email == email {
			a.Name = name
			return a, nil
		}
	}
	f.nextID++
	a := &models.Account{ID: f.nextID, Email: email, Name: name, CreatedAt: time.Now()}
	f.accounts[a.ID] = a
	return a, nil
}

func (f *fakeAccountStore) ByEmail(_ context.Context, email string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeAccountStore) ByID(_ context.Context, id int64) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccountStore) List(_ context.Context) ([]*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAccountStore) SetFlags(_ context.Context, id int64, flags models.AccountFlags) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a.IsAdmin = flags.IsAdmin
	a.IsProfessor = flags.IsProfessor
	a.IsStudent = flags.IsStudent
	return a, nil
}

// --- request store fake ---

type fakeRequestStore struct {
	nextID   int64
	requests map[int64]*models.RecommendationRequest
	err      error
}

func newFakeRequestStore(requests ...*models.RecommendationRequest) *fakeRequestStore {
	f := &fakeRequestStore{requests: make(map[int64]*models.RecommendationRequest)}
	for _, req := range requests {
		if req.ID > f.nextID {
			f.nextID = req.ID
		}
		f.requests[req.ID] = req
	}
	return f
}

// Create emulates the database defaults: id assignment, submission date, and
// the Pending status.
func (f *fakeRequestStore) Create(_ context.Context, req *models.RecommendationRequest) (*models.RecommendationRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	stored := *req
	stored.ID = f.nextID
	stored.SubmissionDate = time.Now()
	stored.Status = models.StatusPending
	stored.CompletionDate = nil
	f.requests[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeRequestStore) ByID(_ context.Context, id int64) (*models.RecommendationRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	req, ok := f.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRequestStore) List(_ context.Context) ([]*models.RecommendationRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.RecommendationRequest, 0, len(f.requests))
	for _, req := range f.requests {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRequestStore) ByRequester(_ context.Context, requesterID int64) ([]*models.RecommendationRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.RecommendationRequest
	for _, req := range f.requests {
		if req.RequesterID == requesterID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) ByProfessor(_ context.Context, professorID int64) ([]*models.RecommendationRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.RecommendationRequest
	for _, req := range f.requests {
		if req.ProfessorID == professorID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) Update(_ context.Context, req *models.RecommendationRequest) (*models.RecommendationRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.requests[req.ID]; !ok {
		return nil, store.ErrNotFound
	}
	stored := *req
	f.requests[req.ID] = &stored
	return &stored, nil
}

func (f *fakeRequestStore) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.requests[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.requests, id)
	return nil
}

// --- request type store fake ---

type fakeRequestTypeStore struct {
	nextID int64
	types  map[int64]*models.RequestType
	err    error
}

func newFakeRequestTypeStore(labels ...string) *fakeRequestTypeStore {
	f := &fakeRequestTypeStore{types: make(map[int64]*models.RequestType)}
	for _, label := range labels {
		f.nextID++
		f.types[f.nextID] = &models.RequestType{ID: f.nextID, Label: label}
	}
	return f
}

func (f *fakeRequestTypeStore) List(_ context.Context) ([]*models.RequestType, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.RequestType, 0, len(f.types))
	for _, rt := range f.types {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRequestTypeStore) ByID(_ context.Context, id int64) (*models.RequestType, error) {
	if f.err != nil {
		return nil, f.err
	}
	rt, ok := f.types[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rt, nil
}

func (f *fakeRequestTypeStore) Create(_ context.Context, label string) (*models.RequestType, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, rt := range f.types {
		if rt.Label == label {
			return nil, store.ErrConflict
		}
	}
	f.nextID++
	rt := &models.RequestType{ID: f.nextID, Label: label}
	f.types[rt.ID] = rt
	return rt, nil
}

func (f *fakeRequestTypeStore) Update(_ context.Context, id int64, label string) (*models.RequestType, error) {
	if f.err != nil {
		return nil, f.err
	}
	rt, ok := f.types[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for _, other := range f.types {
		if other.ID != id && other.Label == label {
			return nil, store.ErrConflict
		}
	}
	rt.Label = label
	return rt, nil
}

func (f *fakeRequestTypeStore) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.types[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.types, id)
	return nil
}

// --- handler/request helpers ---

func newTestHandler(t *testing.T, deps Deps) *Handler {
	t.Helper()
	cfg := &config.Config{CatalogTTL: 60, CookieSecure: false}
	return NewHandler(cfg, cache.New(time.Minute), deps)
}

// doRequest invokes a handler directly with optional claims, a JSON body, and
// an "id" path value, mirroring what the middleware chain and mux would set up.
func doRequest(t *testing.T, handler http.HandlerFunc, method string, claims *middleware.UserClaims, body any, id string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	r := httptest.NewRequest(method, "/api/v1/test", reqBody)
	if claims != nil {
		r = r.WithContext(middleware.WithUserClaims(r.Context(), claims))
	}
	if id != "" {
		r.SetPathValue("id", id)
	}

	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func decodeRequest(t *testing.T, w *httptest.ResponseRecorder) *models.RecommendationRequest {
	t.Helper()
	var req models.RecommendationRequest
	if err := json.NewDecoder(w.Body).Decode(&req); err != nil {
		t.Fatalf("Failed to decode request body: %v", err)
	}
	return &req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return &resp
}

func studentClaims(accountID int64) *middleware.UserClaims {
	return &middleware.UserClaims{
		Email:     "student@test.edu",
		Source:    middleware.SourceIdentityProvider,
		AccountID: accountID,
		Roles:     []string{middleware.RoleUser, middleware.RoleStudent},
	}
}

func professorClaims(accountID int64) *middleware.UserClaims {
	return &middleware.UserClaims{
		Email:     "prof@test.edu",
		Source:    middleware.SourceIdentityProvider,
		AccountID: accountID,
		Roles:     []string{middleware.RoleUser, middleware.RoleProfessor},
	}
}

func adminClaims(accountID int64) *middleware.UserClaims {
	return &middleware.UserClaims{
		Email:     "admin@test.edu",
		Source:    middleware.SourceIdentityProvider,
		AccountID: accountID,
		Roles:     []string{middleware.RoleUser, middleware.RoleAdmin},
	}
}
