package handlers

import (
	"github.com/abrezinsky/electionview/internal/formatter"
	"github.com/abrezinsky/electionview/internal/models"
)

// CountriesResponse is the response for the country catalog
type CountriesResponse struct {
	Countries []models.Country `json:"countries"`
}

// CandidatesResponse is the response for the top candidates endpoint
type CandidatesResponse struct {
	Candidates []formatter.CandidateView `json:"candidates"`
}

// ShareResponse is the response for a share link
type ShareResponse struct {
	URL string `json:"url"`
}

// CatalogResponse is the response for catalog reloads and API probes
type CatalogResponse struct {
	Status    string `json:"status"`
	Countries int    `json:"countries"`
}

// HistoryResponse is the response for the query log
type HistoryResponse struct {
	Entries []models.QueryLogEntry `json:"entries"`
}
