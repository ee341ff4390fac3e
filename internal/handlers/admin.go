package handlers

import (
	"net/http"

	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/render"
	"github.com/abrezinsky/electionview/internal/services"
)

// AdminSettingsPageData holds the data of the admin settings page
type AdminSettingsPageData struct {
	AdminPageData
	Settings      map[string]interface{}
	CatalogLoaded bool
	Countries     []string
	Usage         map[string]interface{}
	Recent        []models.QueryLogEntry
}

// ==================== Admin Pages ====================

func (h *Handlers) handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	catalog := h.Views.Catalog()

	data := AdminSettingsPageData{
		AdminPageData: AdminPageData{
			Title:     "Election Data Analysis",
			PageTitle: "Admin Settings",
			ActiveNav: "settings",
		},
		CatalogLoaded: catalog.Loaded(),
		Countries:     catalog.Countries(),
	}

	var err error
	if data.Settings, err = h.Settings.AllSettings(ctx); err != nil {
		respondError(w, err)
		return
	}
	if data.Usage, err = h.History.GetStats(ctx); err != nil {
		h.Log.Warn("Failed to load usage stats", "error", err)
	}
	if data.Recent, err = h.History.Recent(ctx, services.DefaultHistoryLimit); err != nil {
		h.Log.Warn("Failed to load query history", "error", err)
	}

	h.renderPage(w, render.PageAdminSettings, data)
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	settings := services.Settings{
		StatsAPIURL:           req.StatsAPIURL,
		BaseURL:               req.BaseURL,
		DefaultCandidateCount: req.DefaultCandidateCount,
	}
	if err := h.Settings.UpdateSettings(r.Context(), settings); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, "Settings updated")
}

// ==================== Statistics Service ====================

func (h *Handlers) handleReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.Settings.ReloadCatalog(r.Context()); err != nil {
		apiErr := ToAPIError(err)
		if apiErr.Code == ErrCodeUpstream {
			apiErr.Message = services.MsgCatalogUnavailable
		}
		respondError(w, apiErr)
		return
	}

	respondOK(w, CatalogResponse{
		Status:    "success",
		Countries: len(h.Views.Catalog().Countries()),
	})
}

func (h *Handlers) handleTestStatsAPI(w http.ResponseWriter, r *http.Request) {
	var req TestAPIRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if req.URL == "" {
		respondError(w, BadRequest("url is required"))
		return
	}

	count, err := h.Settings.TestStatsAPI(r.Context(), req.URL)
	if err != nil {
		if _, ok := err.(*services.ServiceError); ok {
			respondError(w, err)
			return
		}
		respondError(w, BadRequest("Failed to connect to statistics service: "+errorMessage(err)))
		return
	}

	respondOK(w, CatalogResponse{Status: "success", Countries: count})
}

// ==================== Query History ====================

func (h *Handlers) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit")
	if err != nil {
		respondError(w, err)
		return
	}
	if limit <= 0 {
		limit = services.DefaultHistoryLimit
	}

	entries, err := h.History.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}

	// Ensure we return an empty array, not null
	if entries == nil {
		entries = []models.QueryLogEntry{}
	}
	respondOK(w, HistoryResponse{Entries: entries})
}

func (h *Handlers) handleGetUsage(w http.ResponseWriter, r *http.Request) {
	stats, err := h.History.GetStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, stats)
}

// ==================== Database Management ====================

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, result.Message)
}
