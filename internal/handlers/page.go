package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/abrezinsky/electionview/internal/errors"
	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/render"
	"github.com/abrezinsky/electionview/internal/selection"
	"github.com/abrezinsky/electionview/internal/services"
)

// ==================== Public Pages ====================

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	catalog := h.Views.Catalog()

	sess := services.NewSession(h.Views)
	notice := h.applySharedSelection(ctx, sess, r.URL.Query())

	data := render.NewIndexData(sess, catalog.Countries(), h.defaultCandidateCount(ctx))
	data.Notice = notice
	if !catalog.Loaded() {
		data.CatalogError = services.MsgCatalogUnavailable
	}

	h.renderPage(w, render.PageIndex, data)
}

// applySharedSelection selects what a permalink names and, when the selection
// is complete, runs its analysis. It returns the notice to show on failure.
func (h *Handlers) applySharedSelection(ctx context.Context, sess *services.Session, q url.Values) string {
	tab := models.Tab(q.Get("tab"))
	if tab == "" {
		tab = models.TabStats
	}
	if sess.Activate(tab) != nil {
		return ""
	}

	country := q.Get("country")
	if country == selection.NoCountry {
		return ""
	}
	sess.SelectCountry(tab, country)

	years := []string{q.Get("year"), q.Get("year2")}
	for slot := 0; slot < tab.YearSlots(); slot++ {
		if year, err := strconv.Atoi(years[slot]); err == nil {
			sess.SelectYear(tab, slot, year)
		}
	}

	if sess.Selector(tab).State() != selection.StateParentAndChildChosen {
		return ""
	}
	if _, err := sess.Analyze(ctx, tab); err != nil {
		if errors.Is(err, errors.ErrValidation) {
			return errorMessage(err)
		}
		return services.FailureMessage(tab)
	}
	return ""
}
