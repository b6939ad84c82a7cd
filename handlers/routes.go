// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Each route carries its access policy alongside method and handler

package handlers

import (
	"net/http"

	"github.com/campus-tools/lettertrack/backend/middleware"
)

// Route defines an API endpoint with its HTTP method, handler, and the
// access policy evaluated before the handler runs.
type Route struct {
	Method  string            // HTTP method (GET, POST, etc.)
	Path    string            // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc  // Handler function
	Policy  middleware.Policy // Role/self policy; ownership checks live in the handler
	Write   bool              // Uses the write-tier rate limit
}

// Routes returns all API routes for registration. Ownership predicates are
// not expressed here on purpose: the policy gates roles at the boundary and
// the handler resolves ownership against the loaded entity.
func (h *Handler) Routes() []Route {
	admin := middleware.Policy{Roles: []string{middleware.RoleAdmin}}
	authenticated := middleware.Policy{}
	public := middleware.Policy{Public: true}
	selfOrAdmin := middleware.Policy{Roles: []string{middleware.RoleAdmin}, SelfParam: "id"}

	return []Route{
		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health, Policy: public},

		// Auth (BFF session endpoints)
		{Method: http.MethodPost, Path: "/api/v1/auth/login", Handler: h.Login, Policy: public},
		{Method: http.MethodPost, Path: "/api/v1/auth/logout", Handler: h.Logout, Policy: public},
		{Method: http.MethodPost, Path: "/api/v1/auth/refresh", Handler: h.Refresh, Policy: public},
		{Method: http.MethodGet, Path: "/api/v1/auth/me", Handler: h.Me, Policy: public},

		// Recommendation requests
		{Method: http.MethodGet, Path: "/api/v1/requests", Handler: h.ListRequests, Policy: admin},
		{Method: http.MethodGet, Path: "/api/v1/requests/by-requester/{id}", Handler: h.ListRequestsByRequester, Policy: selfOrAdmin},
		{Method: http.MethodGet, Path: "/api/v1/requests/by-professor/{id}", Handler: h.ListRequestsByProfessor, Policy: selfOrAdmin},
		{Method: http.MethodGet, Path: "/api/v1/requests/{id}", Handler: h.GetRequest, Policy: authenticated},
		{Method: http.MethodPost, Path: "/api/v1/requests", Handler: h.CreateRequest, Policy: middleware.Policy{Roles: []string{middleware.RoleStudent}}, Write: true},
		{Method: http.MethodPut, Path: "/api/v1/requests/{id}", Handler: h.UpdateRequest, Policy: authenticated, Write: true},
		{Method: http.MethodPut, Path: "/api/v1/requests/{id}/status", Handler: h.UpdateRequestStatus, Policy: middleware.Policy{Roles: []string{middleware.RoleProfessor, middleware.RoleAdmin}}, Write: true},
		{Method: http.MethodDelete, Path: "/api/v1/requests/{id}", Handler: h.DeleteRequest, Policy: authenticated, Write: true},

		// Request type catalog
		{Method: http.MethodGet, Path: "/api/v1/request-types", Handler: h.ListRequestTypes, Policy: authenticated},
		{Method: http.MethodPost, Path: "/api/v1/request-types", Handler: h.CreateRequestType, Policy: admin, Write: true},
		{Method: http.MethodPut, Path: "/api/v1/request-types/{id}", Handler: h.UpdateRequestType, Policy: admin, Write: true},
		{Method: http.MethodDelete, Path: "/api/v1/request-types/{id}", Handler: h.DeleteRequestType, Policy: admin, Write: true},

		// Accounts
		{Method: http.MethodGet, Path: "/api/v1/accounts", Handler: h.ListAccounts, Policy: admin},
		{Method: http.MethodGet, Path: "/api/v1/accounts/{id}", Handler: h.GetAccount, Policy: selfOrAdmin},
		{Method: http.MethodPut, Path: "/api/v1/accounts/{id}/flags", Handler: h.UpdateAccountFlags, Policy: admin, Write: true},
	}
}
