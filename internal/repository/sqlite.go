package repository

import (
	"context"
	"database/sql"

	"github.com/abrezinsky/electionview/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Setting keys
const (
	SettingStatsAPIURL           = "stats_api_url"
	SettingBaseURL               = "base_url"
	SettingDefaultCandidateCount = "default_candidate_count"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS query_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tab TEXT NOT NULL,
			country TEXT NOT NULL,
			year1 INTEGER NOT NULL DEFAULT 0,
			year2 INTEGER NOT NULL DEFAULT 0,
			n INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_query_log_created ON query_log(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// Insert default settings if not exists
	// Note: stats_api_url and base_url are seeded by app.go from the
	// configuration on startup
	defaultSettings := [][2]string{
		{SettingDefaultCandidateCount, "10"},
	}

	for _, kv := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, kv[0], kv[1])
		if err != nil {
			return err
		}
	}

	return nil
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ListSettings returns every stored setting
func (r *Repository) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// ==================== Query Log Methods ====================

// RecordQuery appends an analysis request to the query log
func (r *Repository) RecordQuery(ctx context.Context, entry models.QueryLogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO query_log (tab, country, year1, year2, n, outcome)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(entry.Tab), entry.Country, entry.Year1, entry.Year2, entry.N, entry.Outcome)
	return err
}

// RecentQueries returns the newest limit entries of the query log, newest first
func (r *Repository) RecentQueries(ctx context.Context, limit int) ([]models.QueryLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tab, country, year1, year2, n, outcome, created_at
		FROM query_log
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.QueryLogEntry
	for rows.Next() {
		var e models.QueryLogEntry
		var tab string
		var createdAt sql.NullTime
		if err := rows.Scan(&e.ID, &tab, &e.Country, &e.Year1, &e.Year2, &e.N, &e.Outcome, &createdAt); err != nil {
			return nil, err
		}
		e.Tab = models.Tab(tab)
		if createdAt.Valid {
			e.CreatedAt = createdAt.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ==================== Stats Methods ====================

// GetUsageStats returns overall query log statistics
func (r *Repository) GetUsageStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalQueries int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_log`).Scan(&totalQueries); err != nil {
		return nil, err
	}
	stats["total_queries"] = totalQueries

	var failedQueries int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_log WHERE outcome = ?`, models.OutcomeFailed).Scan(&failedQueries); err != nil {
		return nil, err
	}
	stats["failed_queries"] = failedQueries

	var distinctCountries int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT country) FROM query_log`).Scan(&distinctCountries); err != nil {
		return nil, err
	}
	stats["distinct_countries"] = distinctCountries

	return stats, nil
}

// ==================== Database Management Methods ====================

// validTables defines which tables can be safely cleared
var validTables = map[string]bool{
	"query_log": true, "settings": true,
}

// ClearTable clears all data from a table
// Only allows clearing whitelisted tables to prevent SQL injection
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	if !validTables[table] {
		return ErrInvalidTable
	}

	// Safe to use string concatenation now that we've validated the table name
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}
