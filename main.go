// ABOUTME: Entry point for the recommendation letter tracker backend service
// ABOUTME: Wires config, Postgres, IdP clients, and the per-request auth pipeline

package main

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-tools/lettertrack/backend/cache"
	"github.com/campus-tools/lettertrack/backend/config"
	"github.com/campus-tools/lettertrack/backend/handlers"
	"github.com/campus-tools/lettertrack/backend/logger"
	"github.com/campus-tools/lettertrack/backend/middleware"
	"github.com/campus-tools/lettertrack/backend/services"
	"github.com/campus-tools/lettertrack/backend/store"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	authMode, err := middleware.ValidateAuthMode(cfg.AuthMode)
	if err != nil {
		slog.Error("Invalid AUTH_MODE", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting recommendation letter tracker backend")
	slog.Info("IdP configured", "url", cfg.IdPURL)
	if cfg.DBAllProxy != "" {
		slog.Info("Database access via SSH+SOCKS5 tunnel")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := store.Connect(ctx, cfg.DBDSN, cfg.DBAllProxy)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := store.Migrate(ctx, pool); err != nil {
		slog.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready")

	accounts := store.NewAccounts(pool)
	requests := store.NewRequests(pool)
	requestTypes := store.NewRequestTypes(pool)

	// Cache (sessions + catalog reads; account flags are never cached)
	c := cache.New(time.Duration(cfg.CacheTTL) * time.Second)

	// Identity provider clients
	var idpHTTP *http.Client
	if cfg.IdPSkipVerify {
		slog.Warn("IdP TLS certificate verification disabled")
		idpHTTP = insecureHTTPClient()
	}
	jwksClient, err := services.NewJWKSClient(cfg.IdPURL, idpHTTP)
	if err != nil {
		slog.Error("Failed to initialize JWKS client", "error", err)
		os.Exit(1)
	}
	idpClient := services.NewIdPClient(cfg.IdPURL, cfg.OAuthClientID, cfg.OAuthClientSecret, idpHTTP)
	sessions := services.NewSessionService(c)

	h := handlers.NewHandler(cfg, c, handlers.Deps{
		Accounts:     accounts,
		Requests:     requests,
		RequestTypes: requestTypes,
		Sessions:     sessions,
		JWKS:         jwksClient,
		IdP:          idpClient,
		DB:           pool,
	})

	authCfg := middleware.AuthConfig{
		Mode:             authMode,
		SessionValidator: h.ValidateSession,
		JWKSClient:       jwksClient,
	}

	mux := newMux(cfg, h, accounts, authCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}

// newMux registers every route with its middleware chain, plus an OPTIONS
// handler per path so cross-origin preflights reach the CORS middleware
// instead of getting a 405 from the method-qualified patterns.
func newMux(cfg *config.Config, h *handlers.Handler, accounts middleware.AccountLookup, authCfg middleware.AuthConfig) *http.ServeMux {
	// Rate limiters: auth endpoints keyed by IP, everything else by session
	var authLimiter, refreshLimiter, writeLimiter, defaultLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		authLimiter = middleware.NewRateLimiter(cfg.RateLimitAuth, time.Minute)
		refreshLimiter = middleware.NewRateLimiter(cfg.RateLimitRefresh, time.Minute)
		writeLimiter = middleware.NewRateLimiter(cfg.RateLimitWrite, time.Minute)
		defaultLimiter = middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
	}

	limiterFor := func(route handlers.Route) (*middleware.RateLimiter, func(*http.Request) string) {
		switch {
		case route.Path == "/api/v1/auth/login":
			return authLimiter, middleware.ClientIP
		case route.Path == "/api/v1/auth/refresh":
			return refreshLimiter, middleware.ClientIP
		case route.Write:
			return writeLimiter, middleware.SessionKey
		default:
			return defaultLimiter, middleware.SessionKey
		}
	}

	corsMW := middleware.CORS(cfg.CORSAllowedOrigins)
	preflight := middleware.Chain(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
		middleware.LogRequest,
		corsMW,
	)

	mux := http.NewServeMux()
	seenPaths := make(map[string]bool)
	for _, route := range h.Routes() {
		limiter, keyFunc := limiterFor(route)

		// Public routes (health, auth) must admit anonymous callers even in
		// required mode; Require still rejects them on protected routes.
		routeAuthCfg := authCfg
		if route.Policy.Public {
			routeAuthCfg.Mode = middleware.AuthModeOptional
		}

		mux.HandleFunc(route.Method+" "+route.Path, middleware.Chain(
			route.Handler,
			middleware.LogRequest,
			corsMW,
			middleware.RateLimit(limiter, keyFunc),
			middleware.CSRF(),
			middleware.Auth(routeAuthCfg),
			middleware.ResolveRoles(accounts),
			middleware.Require(route.Policy),
		))

		if !seenPaths[route.Path] {
			seenPaths[route.Path] = true
			mux.HandleFunc("OPTIONS "+route.Path, preflight)
		}
	}

	return mux
}

// insecureHTTPClient skips TLS certificate verification, for identity
// providers running on self-signed certificates in development.
func insecureHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
}
