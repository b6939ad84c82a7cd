// ABOUTME: HTTP handler wiring and shared response helpers
// ABOUTME: Declares the store interfaces the handlers consume

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campus-tools/lettertrack/backend/cache"
	"github.com/campus-tools/lettertrack/backend/config"
	"github.com/campus-tools/lettertrack/backend/models"
	"github.com/campus-tools/lettertrack/backend/services"
	"github.com/campus-tools/lettertrack/backend/store"
)

// AccountStore is the account persistence surface the handlers need.
type AccountStore interface {
	Upsert(ctx context.Context, email, name string) (*models.Account, error)
	ByEmail(ctx context.Context, email string) (*models.Account, error)
	ByID(ctx context.Context, id int64) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	SetFlags(ctx context.Context, id int64, flags models.AccountFlags) (*models.Account, error)
}

// RequestStore is the recommendation-request persistence surface.
type RequestStore interface {
	Create(ctx context.Context, req *models.RecommendationRequest) (*models.RecommendationRequest, error)
	ByID(ctx context.Context, id int64) (*models.RecommendationRequest, error)
	List(ctx context.Context) ([]*models.RecommendationRequest, error)
	ByRequester(ctx context.Context, requesterID int64) ([]*models.RecommendationRequest, error)
	ByProfessor(ctx context.Context, professorID int64) ([]*models.RecommendationRequest, error)
	Update(ctx context.Context, req *models.RecommendationRequest) (*models.RecommendationRequest, error)
	Delete(ctx context.Context, id int64) error
}

// RequestTypeStore is the catalog persistence surface.
type RequestTypeStore interface {
	List(ctx context.Context) ([]*models.RequestType, error)
	ByID(ctx context.Context, id int64) (*models.RequestType, error)
	Create(ctx context.Context, label string) (*models.RequestType, error)
	Update(ctx context.Context, id int64, label string) (*models.RequestType, error)
	Delete(ctx context.Context, id int64) error
}

// IdPAuthenticator obtains tokens from the identity provider.
type IdPAuthenticator interface {
	PasswordGrant(username, password string) (*services.TokenResponse, error)
	RefreshGrant(refreshToken string) (*services.TokenResponse, error)
}

// Pinger reports database liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles the collaborators a Handler needs. Any field may be nil in
// tests that do not exercise it.
type Deps struct {
	Accounts     AccountStore
	Requests     RequestStore
	RequestTypes RequestTypeStore
	Sessions     *services.SessionService
	JWKS         *services.JWKSClient
	IdP          IdPAuthenticator
	DB           Pinger
}

type Handler struct {
	cfg          *config.Config
	cache        *cache.Cache
	accounts     AccountStore
	requests     RequestStore
	requestTypes RequestTypeStore
	sessions     *services.SessionService
	jwks         *services.JWKSClient
	idp          IdPAuthenticator
	db           Pinger
}

func NewHandler(cfg *config.Config, c *cache.Cache, deps Deps) *Handler {
	return &Handler{
		cfg:          cfg,
		cache:        c,
		accounts:     deps.Accounts,
		requests:     deps.Requests,
		requestTypes: deps.RequestTypes,
		sessions:     deps.Sessions,
		jwks:         deps.JWKS,
		idp:          deps.IdP,
		db:           deps.DB,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, kind, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{
		Type:    kind,
		Message: message,
	})
}

// respondStoreError translates store errors to API errors. notFoundMessage is
// used for ErrNotFound so ownership failures and missing rows read the same.
func (h *Handler) respondStoreError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, models.ErrKindNotFound, notFoundMessage, http.StatusNotFound)
	case errors.Is(err, store.ErrConflict):
		h.writeError(w, models.ErrKindConflict, "Duplicate entry", http.StatusConflict)
	default:
		slog.Error("Store operation failed", "error", err)
		h.writeError(w, models.ErrKindInternal, "Internal error", http.StatusInternalServerError)
	}
}
