package repository

import (
	"context"

	"github.com/abrezinsky/electionview/internal/models"
)

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) (map[string]string, error)
}

// QueryLogRepository defines query log operations
type QueryLogRepository interface {
	RecordQuery(ctx context.Context, entry models.QueryLogEntry) error
	RecentQueries(ctx context.Context, limit int) ([]models.QueryLogEntry, error)
	GetUsageStats(ctx context.Context) (map[string]interface{}, error)
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	SettingsRepository
	QueryLogRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
