// ABOUTME: Tests for the route table and its access policies
// ABOUTME: Guards against route drift loosening the authorization surface

package handlers

import (
	"net/http"
	"testing"

	"github.com/campus-tools/lettertrack/backend/middleware"
)

func routeByKey(t *testing.T, routes []Route, method, path string) Route {
	t.Helper()
	for _, r := range routes {
		if r.Method == method && r.Path == path {
			return r
		}
	}
	t.Fatalf("Route %s %s not registered", method, path)
	return Route{}
}

func hasRole(p middleware.Policy, role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func TestRoutes_NoDuplicates(t *testing.T) {
	h := &Handler{}
	seen := make(map[string]bool)
	for _, r := range h.Routes() {
		key := r.Method + " " + r.Path
		if seen[key] {
			t.Errorf("Duplicate route %s", key)
		}
		seen[key] = true
	}
}

func TestRoutes_AllHandlersSet(t *testing.T) {
	h := &Handler{}
	for _, r := range h.Routes() {
		if r.Handler == nil {
			t.Errorf("Route %s %s has no handler", r.Method, r.Path)
		}
	}
}

func TestRoutes_PublicSurfaceIsOnlyHealthAndAuth(t *testing.T) {
	h := &Handler{}
	for _, r := range h.Routes() {
		if !r.Policy.Public {
			continue
		}
		if r.Path != "/api/v1/health" &&
			r.Path != "/api/v1/auth/login" &&
			r.Path != "/api/v1/auth/logout" &&
			r.Path != "/api/v1/auth/refresh" &&
			r.Path != "/api/v1/auth/me" {
			t.Errorf("Unexpected public route %s %s", r.Method, r.Path)
		}
	}
}

func TestRoutes_CreateRequiresStudentRole(t *testing.T) {
	h := &Handler{}
	r := routeByKey(t, h.Routes(), http.MethodPost, "/api/v1/requests")

	if !hasRole(r.Policy, middleware.RoleStudent) {
		t.Errorf("Create must require the student role, got %v", r.Policy.Roles)
	}
	// No admin shortcut on creation: a request is always owned by a student
	if hasRole(r.Policy, middleware.RoleAdmin) {
		t.Errorf("Create must not admit admins without the student role, got %v", r.Policy.Roles)
	}
}

func TestRoutes_StatusTransitionRequiresProfessorOrAdmin(t *testing.T) {
	h := &Handler{}
	r := routeByKey(t, h.Routes(), http.MethodPut, "/api/v1/requests/{id}/status")

	if !hasRole(r.Policy, middleware.RoleProfessor) || !hasRole(r.Policy, middleware.RoleAdmin) {
		t.Errorf("Status transition must admit professor or admin, got %v", r.Policy.Roles)
	}
}

func TestRoutes_GlobalListingIsAdminOnly(t *testing.T) {
	h := &Handler{}
	for _, path := range []string{"/api/v1/requests", "/api/v1/accounts"} {
		r := routeByKey(t, h.Routes(), http.MethodGet, path)
		if r.Policy.Public || len(r.Policy.Roles) != 1 || r.Policy.Roles[0] != middleware.RoleAdmin {
			t.Errorf("GET %s must be admin only, got %+v", path, r.Policy)
		}
	}
}

func TestRoutes_ScopedListingsAreSelfOrAdmin(t *testing.T) {
	h := &Handler{}
	for _, path := range []string{
		"/api/v1/requests/by-requester/{id}",
		"/api/v1/requests/by-professor/{id}",
		"/api/v1/accounts/{id}",
	} {
		r := routeByKey(t, h.Routes(), http.MethodGet, path)
		if r.Policy.SelfParam != "id" || !hasRole(r.Policy, middleware.RoleAdmin) {
			t.Errorf("GET %s must be self-or-admin, got %+v", path, r.Policy)
		}
	}
}

func TestRoutes_CatalogWritesAreAdminOnly(t *testing.T) {
	h := &Handler{}
	routes := h.Routes()
	for _, rt := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/request-types"},
		{http.MethodPut, "/api/v1/request-types/{id}"},
		{http.MethodDelete, "/api/v1/request-types/{id}"},
		{http.MethodPut, "/api/v1/accounts/{id}/flags"},
	} {
		r := routeByKey(t, routes, rt.method, rt.path)
		if !hasRole(r.Policy, middleware.RoleAdmin) || len(r.Policy.Roles) != 1 {
			t.Errorf("%s %s must be admin only, got %+v", rt.method, rt.path, r.Policy)
		}
	}
}

func TestRoutes_WritesUseWriteTier(t *testing.T) {
	h := &Handler{}
	for _, r := range h.Routes() {
		isWrite := r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete
		isAuthEndpoint := r.Path == "/api/v1/auth/login" || r.Path == "/api/v1/auth/logout" || r.Path == "/api/v1/auth/refresh"
		if isWrite && !isAuthEndpoint && !r.Write {
			t.Errorf("%s %s should use the write rate-limit tier", r.Method, r.Path)
		}
	}
}
