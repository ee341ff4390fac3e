package models

import "time"

// Country is one entry of the catalog: a country and the election years the
// statistics service holds for it, in the order the service returned them.
type Country struct {
	Name  string `json:"name"`
	Years []int  `json:"years"`
}

// Tab identifies one of the three analysis panels
type Tab string

const (
	TabStats      Tab = "stats"
	TabCompare    Tab = "compare"
	TabCandidates Tab = "candidates"
)

// Tabs lists the panels in display order
var Tabs = []Tab{TabStats, TabCompare, TabCandidates}

// Valid reports whether t names a known panel
func (t Tab) Valid() bool {
	switch t {
	case TabStats, TabCompare, TabCandidates:
		return true
	}
	return false
}

// YearSlots is the number of year selects bound to the tab's country select
func (t Tab) YearSlots() int {
	if t == TabCompare {
		return 2
	}
	return 1
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket message types
const (
	// client -> server
	MsgSelectCountry = "select_country"
	MsgSelectYear    = "select_year"
	MsgSetCount      = "set_count"
	MsgActivateTab   = "activate_tab"
	MsgAnalyze       = "analyze"

	// server -> client
	MsgCatalog        = "catalog"
	MsgRender         = "render"
	MsgValidation     = "validation"
	MsgError          = "error"
	MsgCatalogChanged = "catalog_changed"
)

// Query outcomes recorded in the query log
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeFailed     = "failed"
)

// QueryLogEntry is one analysis request recorded for the admin page
type QueryLogEntry struct {
	ID        int64     `json:"id"`
	Tab       Tab       `json:"tab"`
	Country   string    `json:"country"`
	Year1     int       `json:"year1"`
	Year2     int       `json:"year2,omitempty"`
	N         int       `json:"n,omitempty"`
	Outcome   string    `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}
