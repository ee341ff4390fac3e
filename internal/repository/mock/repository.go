package mock

import (
	"context"

	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.SetSettingError = errors.New("database error")
//	svc := services.NewSettingsService(log, mockRepo, client)
//	err := svc.UpdateSettings(ctx, services.Settings{StatsAPIURL: "http://stats.local/api"})
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Settings Errors =====
	GetSettingError   error
	SetSettingError   error
	ListSettingsError error

	// ===== Query Log Errors =====
	RecordQueryError   error
	RecentQueriesError error
	GetUsageStatsError error
	ClearTableError    error
}

// NewRepository creates a new mock repository wrapping the given repository
func NewRepository(repo repository.FullRepository) *Repository {
	return &Repository{FullRepository: repo}
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) ListSettings(ctx context.Context) (map[string]string, error) {
	if m.ListSettingsError != nil {
		return nil, m.ListSettingsError
	}
	return m.FullRepository.ListSettings(ctx)
}

// ===== Query Log Methods =====

func (m *Repository) RecordQuery(ctx context.Context, entry models.QueryLogEntry) error {
	if m.RecordQueryError != nil {
		return m.RecordQueryError
	}
	return m.FullRepository.RecordQuery(ctx, entry)
}

func (m *Repository) RecentQueries(ctx context.Context, limit int) ([]models.QueryLogEntry, error) {
	if m.RecentQueriesError != nil {
		return nil, m.RecentQueriesError
	}
	return m.FullRepository.RecentQueries(ctx, limit)
}

func (m *Repository) GetUsageStats(ctx context.Context) (map[string]interface{}, error) {
	if m.GetUsageStatsError != nil {
		return nil, m.GetUsageStatsError
	}
	return m.FullRepository.GetUsageStats(ctx)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}

// Ensure Repository implements FullRepository
var _ repository.FullRepository = (*Repository)(nil)
