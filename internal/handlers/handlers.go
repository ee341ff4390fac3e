package handlers

import (
	"context"
	"io"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/electionview/internal/auth"
	"github.com/abrezinsky/electionview/internal/logger"
	"github.com/abrezinsky/electionview/internal/services"
	"github.com/abrezinsky/electionview/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// PageRenderer renders full HTML pages
type PageRenderer interface {
	Page(w io.Writer, name string, data any) error
}

// AdminPageData holds the data passed to admin templates
type AdminPageData struct {
	Title     string
	PageTitle string
	ActiveNav string
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Views        services.ViewServicer
	Settings     services.SettingsServicer
	History      services.HistoryServicer
	Share        services.ShareServicer
	Auth         *auth.Auth
	Hub          *websocket.Hub
	Log          logger.Logger
	renderer     PageRenderer
	staticServer http.Handler
}

// New creates a new Handlers instance with all dependencies
func New(
	views services.ViewServicer,
	settings services.SettingsServicer,
	history services.HistoryServicer,
	share services.ShareServicer,
	renderer PageRenderer,
	staticServer http.Handler,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Views:        views,
		Settings:     settings,
		History:      history,
		Share:        share,
		Auth:         adminAuth,
		Hub:          hub,
		Log:          log,
		renderer:     renderer,
		staticServer: staticServer,
	}
}

// renderPage writes page name, logging template failures
func (h *Handlers) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Page(w, name, data); err != nil {
		h.Log.Error("Failed to render page", "page", name, "error", err)
	}
}

// defaultCandidateCount returns the configured default, or the built-in one on error
func (h *Handlers) defaultCandidateCount(ctx context.Context) int {
	n, err := h.Settings.DefaultCandidateCount(ctx)
	if err != nil {
		h.Log.Warn("Failed to read default candidate count", "error", err)
		return services.DefaultCandidateCount
	}
	return n
}
