package services

import (
	"context"

	"github.com/abrezinsky/electionview/internal/errors"
	"github.com/abrezinsky/electionview/internal/formatter"
	"github.com/abrezinsky/electionview/internal/logger"
	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/selection"
	"github.com/abrezinsky/electionview/pkg/statsapi"
)

// User-facing messages
const (
	MsgSelectCountryAndYear  = "Please select both country and year"
	MsgSelectCountryAndYears = "Please select country and both years"
	MsgSelectDifferentYears  = "Please select two different years"
	MsgCatalogUnavailable    = "Failed to load countries. Make sure the server is running."
	MsgAnalyzeFailed         = "Failed to analyze election data"
	MsgCompareFailed         = "Failed to compare elections"
	MsgCandidatesFailed      = "Failed to load top candidates"
)

// Candidate count bounds
const (
	MinCandidateCount     = 1
	MaxCandidateCount     = 100
	DefaultCandidateCount = 10
)

// StatsQuery selects one election
type StatsQuery struct {
	Country string
	Year    int
}

// CompareQuery selects two elections of one country
type CompareQuery struct {
	Country string
	Year1   int
	Year2   int
}

// CandidatesQuery selects one election and how many candidates to list.
// N == 0 means the configured default.
type CandidatesQuery struct {
	Country string
	Year    int
	N       int
}

// CandidateDefaults supplies the configured default candidate count
type CandidateDefaults interface {
	DefaultCandidateCount(ctx context.Context) (int, error)
}

// QueryRecorder records analysis requests
type QueryRecorder interface {
	Record(ctx context.Context, entry models.QueryLogEntry)
}

// ViewService validates selections, issues exactly one statistics request per
// action and formats the response
type ViewService struct {
	log      logger.Logger
	client   statsapi.Client
	store    *selection.Store
	defaults CandidateDefaults
	recorder QueryRecorder
}

// NewViewService creates a new ViewService
func NewViewService(log logger.Logger, client statsapi.Client, store *selection.Store, defaults CandidateDefaults) *ViewService {
	return &ViewService{log: log, client: client, store: store, defaults: defaults}
}

// SetRecorder sets the recorder for analysis requests
func (s *ViewService) SetRecorder(r QueryRecorder) {
	s.recorder = r
}

// Catalog returns the shared country catalog
func (s *ViewService) Catalog() *selection.Store {
	return s.store
}

// LoadCatalog fetches the country list and replaces the catalog.
// On failure the previous catalog is kept.
func (s *ViewService) LoadCatalog(ctx context.Context) error {
	countries, err := s.client.FetchCountries(ctx)
	if err != nil {
		s.log.Error("Failed to load countries", "url", s.client.BaseURL(), "error", err)
		return err
	}

	catalog := make([]models.Country, 0, len(countries))
	for _, c := range countries {
		catalog = append(catalog, models.Country{Name: c.Name, Years: c.Years})
	}
	if err := s.store.Load(catalog); err != nil {
		s.log.Error("Rejected country catalog", "kind", errors.KindOf(err).String(), "error", err)
		return err
	}

	s.log.Info("Country catalog loaded", "countries", len(catalog))
	return nil
}

// Stats returns the statistics view of one election
func (s *ViewService) Stats(ctx context.Context, q StatsQuery) (*formatter.StatsView, error) {
	entry := models.QueryLogEntry{Tab: models.TabStats, Country: q.Country, Year1: q.Year}
	if q.Country == selection.NoCountry || q.Year == selection.NoYear {
		s.record(ctx, entry, models.OutcomeValidation)
		return nil, errors.Validation(MsgSelectCountryAndYear)
	}

	stats, err := s.client.FetchStats(ctx, q.Country, q.Year)
	if err == nil {
		var view *formatter.StatsView
		if view, err = formatter.FormatStats(stats); err == nil {
			s.record(ctx, entry, models.OutcomeOK)
			return view, nil
		}
	}

	s.log.Error("Error analyzing", "country", q.Country, "year", q.Year, "kind", errors.KindOf(err).String(), "error", err)
	s.record(ctx, entry, models.OutcomeFailed)
	return nil, err
}

// Compare returns the comparison view of two elections of one country
func (s *ViewService) Compare(ctx context.Context, q CompareQuery) (*formatter.ComparisonView, error) {
	entry := models.QueryLogEntry{Tab: models.TabCompare, Country: q.Country, Year1: q.Year1, Year2: q.Year2}
	if q.Country == selection.NoCountry || q.Year1 == selection.NoYear || q.Year2 == selection.NoYear {
		s.record(ctx, entry, models.OutcomeValidation)
		return nil, errors.Validation(MsgSelectCountryAndYears)
	}
	if q.Year1 == q.Year2 {
		s.record(ctx, entry, models.OutcomeValidation)
		return nil, errors.Validation(MsgSelectDifferentYears)
	}

	result, err := s.client.FetchComparison(ctx, q.Country, q.Year1, q.Year2)
	if err == nil {
		var view *formatter.ComparisonView
		if view, err = formatter.FormatComparison(result); err == nil {
			s.record(ctx, entry, models.OutcomeOK)
			return view, nil
		}
	}

	s.log.Error("Error comparing", "country", q.Country, "year1", q.Year1, "year2", q.Year2, "kind", errors.KindOf(err).String(), "error", err)
	s.record(ctx, entry, models.OutcomeFailed)
	return nil, err
}

// TopCandidates returns the ranked candidates of one election
func (s *ViewService) TopCandidates(ctx context.Context, q CandidatesQuery) ([]formatter.CandidateView, error) {
	entry := models.QueryLogEntry{Tab: models.TabCandidates, Country: q.Country, Year1: q.Year, N: q.N}
	if q.Country == selection.NoCountry || q.Year == selection.NoYear {
		s.record(ctx, entry, models.OutcomeValidation)
		return nil, errors.Validation(MsgSelectCountryAndYear)
	}

	n, err := s.CandidateCount(ctx, q.N)
	if err != nil {
		s.record(ctx, entry, models.OutcomeValidation)
		return nil, err
	}
	entry.N = n

	rows, err := s.client.FetchTopCandidates(ctx, q.Country, q.Year, n)
	if err == nil {
		var views []formatter.CandidateView
		if views, err = formatter.FormatCandidates(rows); err == nil {
			s.record(ctx, entry, models.OutcomeOK)
			return views, nil
		}
	}

	s.log.Error("Error getting candidates", "country", q.Country, "year", q.Year, "n", n, "kind", errors.KindOf(err).String(), "error", err)
	s.record(ctx, entry, models.OutcomeFailed)
	return nil, err
}

// CandidateCount resolves a requested candidate count. 0 resolves to the
// configured default; other values must be within range.
func (s *ViewService) CandidateCount(ctx context.Context, n int) (int, error) {
	if n == 0 {
		if s.defaults == nil {
			return DefaultCandidateCount, nil
		}
		def, err := s.defaults.DefaultCandidateCount(ctx)
		if err != nil {
			s.log.Warn("Using built-in candidate count", "error", err)
			return DefaultCandidateCount, nil
		}
		return def, nil
	}
	if n < MinCandidateCount || n > MaxCandidateCount {
		return 0, errors.Validationf("Number of candidates must be between %d and %d", MinCandidateCount, MaxCandidateCount)
	}
	return n, nil
}

func (s *ViewService) record(ctx context.Context, entry models.QueryLogEntry, outcome string) {
	if s.recorder == nil {
		return
	}
	entry.Outcome = outcome
	s.recorder.Record(ctx, entry)
}

// FailureMessage returns the notice shown when an analysis of tab fails
func FailureMessage(tab models.Tab) string {
	switch tab {
	case models.TabCompare:
		return MsgCompareFailed
	case models.TabCandidates:
		return MsgCandidatesFailed
	default:
		return MsgAnalyzeFailed
	}
}
