package services

import (
	"context"

	"github.com/abrezinsky/electionview/internal/logger"
	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/repository"
)

// DefaultHistoryLimit is the number of entries shown on the admin page
const DefaultHistoryLimit = 25

// HistoryService records analysis requests and reports usage
type HistoryService struct {
	log  logger.Logger
	repo repository.QueryLogRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(log logger.Logger, repo repository.QueryLogRepository) *HistoryService {
	return &HistoryService{log: log, repo: repo}
}

// Record appends entry to the query log. Failures are logged and otherwise ignored
// so that a broken log never fails an analysis.
func (s *HistoryService) Record(ctx context.Context, entry models.QueryLogEntry) {
	if err := s.repo.RecordQuery(ctx, entry); err != nil {
		s.log.Warn("Failed to record query", "tab", entry.Tab, "country", entry.Country, "error", err)
	}
}

// Recent returns the newest entries of the query log
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]models.QueryLogEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.repo.RecentQueries(ctx, limit)
}

// GetStats returns usage statistics of the query log
func (s *HistoryService) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return s.repo.GetUsageStats(ctx)
}
