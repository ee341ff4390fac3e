package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Static files (served from embedded filesystem)
	r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))

	// Analysis page
	r.Get("/", h.handleIndex)

	// WebSocket
	r.Get("/ws", h.Hub.ServeWs)

	// Analysis API (public)
	r.Get("/api/countries", h.handleGetCountries)
	r.Get("/api/stats", h.handleGetStats)
	r.Get("/api/compare", h.handleGetComparison)
	r.Get("/api/top-candidates", h.handleGetTopCandidates)

	// Sharing (public)
	r.Get("/api/share", h.handleGetShareLink)
	r.Get("/share/qr", h.handleGetShareQR)

	// Auth routes (public)
	r.Get("/admin/login", h.handleLoginPage)
	r.Post("/admin/login", h.handleLogin)
	r.Post("/admin/logout", h.handleLogout)

	// Admin pages (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)
		r.Get("/admin", h.handleAdminSettings)
		r.Get("/admin/settings", h.handleAdminSettings)
	})

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Settings
		r.Get("/api/admin/settings", h.handleGetSettings)
		r.Post("/api/admin/settings", h.handleUpdateSettings)
		r.Put("/api/admin/settings", h.handleUpdateSettings)

		// Statistics service
		r.Post("/api/admin/reload-catalog", h.handleReloadCatalog)
		r.Post("/api/admin/test-api", h.handleTestStatsAPI)

		// Query history
		r.Get("/api/admin/history", h.handleGetHistory)
		r.Get("/api/admin/usage", h.handleGetUsage)

		// Database Management
		r.Post("/api/admin/reset", h.handleResetDatabase)
	})

	return r
}
