package handlers

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	StatsAPIURL           string `json:"stats_api_url"`
	BaseURL               string `json:"base_url"`
	DefaultCandidateCount *int   `json:"default_candidate_count"`
}

// TestAPIRequest represents a request to probe a statistics service URL
type TestAPIRequest struct {
	URL string `json:"url"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}
