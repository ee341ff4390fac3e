package handlers

import (
	"net/http"

	"github.com/abrezinsky/electionview/internal/formatter"
	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/services"
)

// ==================== Catalog ====================

func (h *Handlers) handleGetCountries(w http.ResponseWriter, r *http.Request) {
	catalog := h.Views.Catalog()
	if !catalog.Loaded() {
		// Retry the startup load once a browser asks for it
		if err := h.Views.LoadCatalog(r.Context()); err != nil {
			respondError(w, ErrCatalogUnavailable)
			return
		}
	}

	respondOK(w, CountriesResponse{Countries: catalog.Snapshot()})
}

// ==================== Analyses ====================

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	year, err := parseIntQuery(r, "year")
	if err != nil {
		respondError(w, err)
		return
	}

	view, err := h.Views.Stats(r.Context(), services.StatsQuery{
		Country: r.URL.Query().Get("country"),
		Year:    year,
	})
	if err != nil {
		respondViewError(w, models.TabStats, err)
		return
	}

	respondOK(w, view)
}

func (h *Handlers) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	year1, err := parseIntQuery(r, "year1")
	if err != nil {
		respondError(w, err)
		return
	}
	year2, err := parseIntQuery(r, "year2")
	if err != nil {
		respondError(w, err)
		return
	}

	view, err := h.Views.Compare(r.Context(), services.CompareQuery{
		Country: r.URL.Query().Get("country"),
		Year1:   year1,
		Year2:   year2,
	})
	if err != nil {
		respondViewError(w, models.TabCompare, err)
		return
	}

	respondOK(w, view)
}

func (h *Handlers) handleGetTopCandidates(w http.ResponseWriter, r *http.Request) {
	year, err := parseIntQuery(r, "year")
	if err != nil {
		respondError(w, err)
		return
	}
	n, err := parseIntQuery(r, "n")
	if err != nil {
		respondError(w, err)
		return
	}

	views, err := h.Views.TopCandidates(r.Context(), services.CandidatesQuery{
		Country: r.URL.Query().Get("country"),
		Year:    year,
		N:       n,
	})
	if err != nil {
		respondViewError(w, models.TabCandidates, err)
		return
	}

	// Ensure we return an empty array, not null
	if views == nil {
		views = []formatter.CandidateView{}
	}
	respondOK(w, CandidatesResponse{Candidates: views})
}

// ==================== Sharing ====================

func parseShareRequest(r *http.Request) (services.ShareRequest, error) {
	req := services.ShareRequest{
		Tab:     models.Tab(r.URL.Query().Get("tab")),
		Country: r.URL.Query().Get("country"),
	}
	if req.Tab == "" {
		req.Tab = models.TabStats
	}
	if !req.Tab.Valid() {
		return req, BadRequest("Invalid tab parameter")
	}

	var err error
	if req.Year, err = parseIntQuery(r, "year"); err != nil {
		return req, err
	}
	if req.Year2, err = parseIntQuery(r, "year2"); err != nil {
		return req, err
	}
	return req, nil
}

func (h *Handlers) handleGetShareLink(w http.ResponseWriter, r *http.Request) {
	req, err := parseShareRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	link, err := h.Share.Permalink(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, ShareResponse{URL: link})
}

func (h *Handlers) handleGetShareQR(w http.ResponseWriter, r *http.Request) {
	req, err := parseShareRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Share.QRCode(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
