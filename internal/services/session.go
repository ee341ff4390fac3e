package services

import (
	"context"

	"github.com/abrezinsky/electionview/internal/errors"
	"github.com/abrezinsky/electionview/internal/formatter"
	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/selection"
)

// Panel is the last successfully displayed result of one tab
type Panel struct {
	Tab        models.Tab                `json:"tab"`
	Country    string                    `json:"country"`
	Years      []int                     `json:"years"`
	N          int                       `json:"n,omitempty"`
	Stats      *formatter.StatsView      `json:"stats,omitempty"`
	Comparison *formatter.ComparisonView `json:"comparison,omitempty"`
	Candidates []formatter.CandidateView `json:"candidates,omitempty"`
}

// Session is the selection and display state of one browser connection.
// It is not safe for concurrent use; the connection's read loop owns it.
type Session struct {
	views     ViewServicer
	selectors map[models.Tab]*selection.Selector
	count     int
	active    models.Tab
	panels    map[models.Tab]*Panel
}

// NewSession creates a session with every tab in the empty state
func NewSession(views ViewServicer) *Session {
	s := &Session{
		views:  views,
		active: models.TabStats,
		panels: make(map[models.Tab]*Panel),
	}
	s.resetSelectors()
	return s
}

func (s *Session) resetSelectors() {
	s.selectors = make(map[models.Tab]*selection.Selector, len(models.Tabs))
	for _, tab := range models.Tabs {
		s.selectors[tab] = selection.NewSelector(s.views.Catalog(), tab.YearSlots())
	}
}

// Reset clears every selection and panel, used after the catalog is replaced
func (s *Session) Reset() {
	s.resetSelectors()
	s.panels = make(map[models.Tab]*Panel)
}

// Selector returns the select group of tab, or nil for an unknown tab
func (s *Session) Selector(tab models.Tab) *selection.Selector {
	return s.selectors[tab]
}

// SelectCountry changes the country of tab and clears its years
func (s *Session) SelectCountry(tab models.Tab, country string) error {
	sel, ok := s.selectors[tab]
	if !ok {
		return ErrUnknownTab
	}
	sel.SelectParent(country)
	return nil
}

// SelectYear sets year slot of tab. It reports false when the selection was ignored.
func (s *Session) SelectYear(tab models.Tab, slot, year int) (bool, error) {
	sel, ok := s.selectors[tab]
	if !ok {
		return false, ErrUnknownTab
	}
	return sel.SelectChild(slot, year), nil
}

// SetCount sets the number of candidates to request. 0 means the configured default.
// An out-of-range value is kept and reported, so the next analysis of the
// candidates tab fails validation instead of using an earlier count.
func (s *Session) SetCount(n int) error {
	s.count = n
	if n != 0 && (n < MinCandidateCount || n > MaxCandidateCount) {
		return errors.Validationf("Number of candidates must be between %d and %d", MinCandidateCount, MaxCandidateCount)
	}
	return nil
}

// Count returns the requested number of candidates
func (s *Session) Count() int {
	return s.count
}

// Activate makes tab the visible one. Selections and panels of the other tabs are kept.
func (s *Session) Activate(tab models.Tab) error {
	if !tab.Valid() {
		return ErrUnknownTab
	}
	s.active = tab
	return nil
}

// ActiveTab returns the visible tab
func (s *Session) ActiveTab() models.Tab {
	return s.active
}

// Panel returns the last displayed result of tab, or nil
func (s *Session) Panel(tab models.Tab) *Panel {
	return s.panels[tab]
}

// Analyze runs the analysis of tab with its current selection. The tab's panel
// is replaced only on success; on failure the previous panel stays.
func (s *Session) Analyze(ctx context.Context, tab models.Tab) (*Panel, error) {
	sel, ok := s.selectors[tab]
	if !ok {
		return nil, ErrUnknownTab
	}

	country := sel.Parent()
	var panel *Panel
	switch tab {
	case models.TabStats:
		view, err := s.views.Stats(ctx, StatsQuery{Country: country, Year: sel.Child(0)})
		if err != nil {
			return nil, err
		}
		panel = &Panel{Tab: tab, Country: country, Years: []int{sel.Child(0)}, Stats: view}
	case models.TabCompare:
		view, err := s.views.Compare(ctx, CompareQuery{Country: country, Year1: sel.Child(0), Year2: sel.Child(1)})
		if err != nil {
			return nil, err
		}
		panel = &Panel{Tab: tab, Country: country, Years: []int{sel.Child(0), sel.Child(1)}, Comparison: view}
	case models.TabCandidates:
		views, err := s.views.TopCandidates(ctx, CandidatesQuery{Country: country, Year: sel.Child(0), N: s.count})
		if err != nil {
			return nil, err
		}
		n, err := s.views.CandidateCount(ctx, s.count)
		if err != nil {
			return nil, err
		}
		panel = &Panel{Tab: tab, Country: country, Years: []int{sel.Child(0)}, N: n, Candidates: views}
	}

	s.panels[tab] = panel
	return panel, nil
}
