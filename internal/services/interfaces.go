package services

import (
	"context"

	"github.com/abrezinsky/electionview/internal/formatter"
	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/selection"
)

// ViewServicer defines the interface for analysis operations
type ViewServicer interface {
	Catalog() *selection.Store
	LoadCatalog(ctx context.Context) error
	Stats(ctx context.Context, q StatsQuery) (*formatter.StatsView, error)
	Compare(ctx context.Context, q CompareQuery) (*formatter.ComparisonView, error)
	TopCandidates(ctx context.Context, q CandidatesQuery) ([]formatter.CandidateView, error)
	CandidateCount(ctx context.Context, n int) (int, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetStatsAPIURL(ctx context.Context) (string, error)
	SetStatsAPIURL(ctx context.Context, apiURL string) error
	SeedStatsAPIURL(ctx context.Context, apiURL string) (string, error)
	ReloadCatalog(ctx context.Context) error
	TestStatsAPI(ctx context.Context, apiURL string) (int, error)
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, baseURL string) error
	DefaultCandidateCount(ctx context.Context) (int, error)
	SetDefaultCandidateCount(ctx context.Context, n int) error
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
	SetBroadcaster(b Broadcaster)
	SetCatalogLoader(l CatalogLoader)
}

// HistoryServicer defines the interface for query log operations
type HistoryServicer interface {
	Record(ctx context.Context, entry models.QueryLogEntry)
	Recent(ctx context.Context, limit int) ([]models.QueryLogEntry, error)
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// ShareServicer defines the interface for share link operations
type ShareServicer interface {
	Permalink(ctx context.Context, req ShareRequest) (string, error)
	QRCode(ctx context.Context, req ShareRequest) ([]byte, error)
}

// Ensure concrete types implement interfaces
var (
	_ ViewServicer     = (*ViewService)(nil)
	_ SettingsServicer = (*SettingsService)(nil)
	_ HistoryServicer  = (*HistoryService)(nil)
	_ ShareServicer    = (*ShareService)(nil)
	_ CatalogLoader    = (*ViewService)(nil)
	_ QueryRecorder    = (*HistoryService)(nil)
)
