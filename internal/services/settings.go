package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/abrezinsky/electionview/internal/logger"
	"github.com/abrezinsky/electionview/internal/repository"
	"github.com/abrezinsky/electionview/pkg/statsapi"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastCatalogChanged()
}

// CatalogLoader reloads the country catalog
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) error
}

// SettingsServiceRepository defines the repository methods needed by SettingsService
type SettingsServiceRepository interface {
	repository.SettingsRepository
	ClearTable(ctx context.Context, table string) error
}

// SettingsService handles settings-related business logic
type SettingsService struct {
	log         logger.Logger
	repo        SettingsServiceRepository
	client      statsapi.Client
	loader      CatalogLoader
	broadcaster Broadcaster
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo SettingsServiceRepository, client statsapi.Client) *SettingsService {
	return &SettingsService{log: log, repo: repo, client: client}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SettingsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetCatalogLoader sets the loader used when the catalog must be refreshed
func (s *SettingsService) SetCatalogLoader(l CatalogLoader) {
	s.loader = l
}

// GetStatsAPIURL returns the configured statistics API URL
func (s *SettingsService) GetStatsAPIURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, repository.SettingStatsAPIURL)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // not yet configured
		}
		return "", err
	}
	return value, nil
}

// SetStatsAPIURL saves the statistics API URL, retargets the client, reloads
// the catalog and tells connected browsers to refresh
func (s *SettingsService) SetStatsAPIURL(ctx context.Context, apiURL string) error {
	if !validHTTPURL(apiURL) {
		return ErrInvalidStatsURL
	}
	apiURL = strings.TrimSuffix(apiURL, "/")

	if err := s.repo.SetSetting(ctx, repository.SettingStatsAPIURL, apiURL); err != nil {
		return err
	}
	s.client.SetBaseURL(apiURL)
	s.log.Info("Statistics API URL changed", "url", apiURL)

	// The new URL is kept even when the service is not reachable yet
	if err := s.ReloadCatalog(ctx); err != nil {
		s.log.Warn("Catalog reload after URL change failed", "error", err)
	}
	return nil
}

// SeedStatsAPIURL stores apiURL only when no URL is configured yet and points
// the client at the effective URL
func (s *SettingsService) SeedStatsAPIURL(ctx context.Context, apiURL string) (string, error) {
	current, err := s.GetStatsAPIURL(ctx)
	if err != nil {
		return "", err
	}
	if current == "" {
		current = strings.TrimSuffix(apiURL, "/")
		if err := s.repo.SetSetting(ctx, repository.SettingStatsAPIURL, current); err != nil {
			return "", err
		}
	}
	s.client.SetBaseURL(current)
	return current, nil
}

// ReloadCatalog reloads the country catalog and broadcasts the change.
// Browsers are told to refresh only when the reload succeeded.
func (s *SettingsService) ReloadCatalog(ctx context.Context) error {
	if s.loader == nil {
		return nil
	}
	if err := s.loader.LoadCatalog(ctx); err != nil {
		return err
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastCatalogChanged()
	}
	return nil
}

// TestStatsAPI fetches the country list from apiURL without changing any setting
// and returns the number of countries offered
func (s *SettingsService) TestStatsAPI(ctx context.Context, apiURL string) (int, error) {
	if !validHTTPURL(apiURL) {
		return 0, ErrInvalidStatsURL
	}
	probe := statsapi.NewHTTPClient(apiURL, s.log)
	countries, err := probe.FetchCountries(ctx)
	if err != nil {
		return 0, err
	}
	return len(countries), nil
}

// GetBaseURL returns the application base URL
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, repository.SettingBaseURL)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // No default - setting not yet configured
		}
		return "", err // Propagate database errors
	}
	return value, nil
}

// SetBaseURL saves the application base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, baseURL string) error {
	if !validHTTPURL(baseURL) {
		return ErrInvalidBaseURL
	}
	return s.repo.SetSetting(ctx, repository.SettingBaseURL, strings.TrimSuffix(baseURL, "/"))
}

// DefaultCandidateCount returns the number of candidates listed when the user
// does not pick one. Missing or invalid values fall back to 10.
func (s *SettingsService) DefaultCandidateCount(ctx context.Context) (int, error) {
	value, err := s.repo.GetSetting(ctx, repository.SettingDefaultCandidateCount)
	if err != nil {
		if err == repository.ErrNotFound {
			return DefaultCandidateCount, nil
		}
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < MinCandidateCount || n > MaxCandidateCount {
		return DefaultCandidateCount, nil // Invalid value, treat as unset
	}
	return n, nil
}

// SetDefaultCandidateCount saves the default number of candidates
func (s *SettingsService) SetDefaultCandidateCount(ctx context.Context, n int) error {
	if n < MinCandidateCount || n > MaxCandidateCount {
		return ErrInvalidCandidateCount
	}
	return s.repo.SetSetting(ctx, repository.SettingDefaultCandidateCount, strconv.Itoa(n))
}

// AllSettings returns commonly used settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	apiURL, err := s.GetStatsAPIURL(ctx)
	if err != nil {
		return nil, err
	}
	if apiURL == "" {
		apiURL = s.client.BaseURL()
	}
	settings[repository.SettingStatsAPIURL] = apiURL

	baseURL, _ := s.GetBaseURL(ctx)
	settings[repository.SettingBaseURL] = baseURL

	count, _ := s.DefaultCandidateCount(ctx)
	settings[repository.SettingDefaultCandidateCount] = count

	return settings, nil
}

// Settings represents application settings for update operations.
// Empty or nil fields are left unchanged.
type Settings struct {
	StatsAPIURL           string
	BaseURL               string
	DefaultCandidateCount *int
}

// UpdateSettings updates multiple settings at once
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.DefaultCandidateCount != nil {
		if err := s.SetDefaultCandidateCount(ctx, *settings.DefaultCandidateCount); err != nil {
			return err
		}
	}
	if settings.BaseURL != "" {
		if err := s.SetBaseURL(ctx, settings.BaseURL); err != nil {
			return err
		}
	}
	if settings.StatsAPIURL != "" {
		current, err := s.GetStatsAPIURL(ctx)
		if err != nil {
			return err
		}
		if strings.TrimSuffix(settings.StatsAPIURL, "/") != current {
			if err := s.SetStatsAPIURL(ctx, settings.StatsAPIURL); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResetTablesResult contains the result of a database reset
type ResetTablesResult struct {
	Tables  []string
	Message string
}

// ValidTables defines which tables can be reset
var ValidTables = map[string]bool{
	"query_log": true, "settings": true,
}

// ResetTables validates and resets the specified database tables
func (s *SettingsService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}

	for _, table := range tables {
		if !ValidTables[table] {
			return nil, &InvalidTableError{Table: table}
		}
	}

	for _, table := range tables {
		if err := s.repo.ClearTable(ctx, table); err != nil {
			return nil, err
		}
	}

	// Keep the client's current target after settings are wiped
	if containsTable(tables, "settings") {
		if err := s.repo.SetSetting(ctx, repository.SettingStatsAPIURL, s.client.BaseURL()); err != nil {
			return nil, err
		}
	}

	return &ResetTablesResult{
		Tables:  tables,
		Message: "Successfully deleted data from tables",
	}, nil
}

func containsTable(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
