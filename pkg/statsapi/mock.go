package statsapi

import (
	"context"
	"sync"
)

// MockClient is a mock statistics service client for testing
type MockClient struct {
	mu            sync.Mutex
	baseURL       string
	countries     []Country
	stats         *ElectionStats
	comparison    *ComparisonResult
	candidates    []CandidateRow
	countriesErr  error
	statsErr      error
	comparisonErr error
	candidatesErr error
	calls         []Call
}

// Call records one request made against the mock
type Call struct {
	Endpoint string
	Country  string
	Years    []int
	N        int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithCountries sets the catalog to return
func WithCountries(countries []Country) MockOption {
	return func(m *MockClient) {
		m.countries = countries
	}
}

// WithCountriesError sets an error to return from FetchCountries
func WithCountriesError(err error) MockOption {
	return func(m *MockClient) {
		m.countriesErr = err
	}
}

// WithStats sets the statistics payload to return
func WithStats(stats *ElectionStats) MockOption {
	return func(m *MockClient) {
		m.stats = stats
	}
}

// WithStatsError sets an error to return from FetchStats
func WithStatsError(err error) MockOption {
	return func(m *MockClient) {
		m.statsErr = err
	}
}

// WithComparison sets the comparison payload to return
func WithComparison(result *ComparisonResult) MockOption {
	return func(m *MockClient) {
		m.comparison = result
	}
}

// WithComparisonError sets an error to return from FetchComparison
func WithComparisonError(err error) MockOption {
	return func(m *MockClient) {
		m.comparisonErr = err
	}
}

// WithCandidates sets the candidate rows to return
func WithCandidates(rows []CandidateRow) MockOption {
	return func(m *MockClient) {
		m.candidates = rows
	}
}

// WithCandidatesError sets an error to return from FetchTopCandidates
func WithCandidatesError(err error) MockOption {
	return func(m *MockClient) {
		m.candidatesErr = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock statistics client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:    "http://mock-stats.local/api",
		countries:  DefaultMockCountries(),
		stats:      DefaultMockStats(),
		comparison: DefaultMockComparison(),
		candidates: DefaultMockCandidates(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseURL = url
}

func (m *MockClient) record(call Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the requests made so far (for testing)
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many requests were made to endpoint
func (m *MockClient) CallCount(endpoint string) int {
	count := 0
	for _, c := range m.Calls() {
		if c.Endpoint == endpoint {
			count++
		}
	}
	return count
}

// FetchCountries returns the configured catalog or error
func (m *MockClient) FetchCountries(ctx context.Context) ([]Country, error) {
	m.record(Call{Endpoint: "/countries"})
	if m.countriesErr != nil {
		return nil, m.countriesErr
	}
	return m.countries, nil
}

// FetchStats returns the configured statistics or error
func (m *MockClient) FetchStats(ctx context.Context, country string, year int) (*ElectionStats, error) {
	m.record(Call{Endpoint: "/stats", Country: country, Years: []int{year}})
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

// FetchComparison returns the configured comparison or error
func (m *MockClient) FetchComparison(ctx context.Context, country string, year1, year2 int) (*ComparisonResult, error) {
	m.record(Call{Endpoint: "/compare", Country: country, Years: []int{year1, year2}})
	if m.comparisonErr != nil {
		return nil, m.comparisonErr
	}
	return m.comparison, nil
}

// FetchTopCandidates returns the configured candidates or error
func (m *MockClient) FetchTopCandidates(ctx context.Context, country string, year, n int) ([]CandidateRow, error) {
	m.record(Call{Endpoint: "/top-candidates", Country: country, Years: []int{year}, N: n})
	if m.candidatesErr != nil {
		return nil, m.candidatesErr
	}
	return m.candidates, nil
}

// DefaultMockCountries returns a small catalog for development and tests
func DefaultMockCountries() []Country {
	return []Country{
		{Name: "Testland", Years: []int{2010, 2015, 2020}},
		{Name: "Jordan", Years: []int{2016, 2020}},
		{Name: "Vanuatu", Years: []int{2016, 2020, 2022}},
	}
}

// DefaultMockStats returns a well-formed statistics payload
func DefaultMockStats() *ElectionStats {
	return &ElectionStats{
		Country:         "Testland",
		Year:            2015,
		TotalVotes:      Int(125000),
		TotalSeats:      Int(12),
		TotalCandidates: Int(40),
		Constituencies:  Int(12),
		Parties: []PartyStat{
			{Party: "Green Alliance", TotalVotes: Int(62500), VoteShare: Float(50), SeatsWon: Int(7), CandidatesCount: Int(12)},
			{Party: "Harbour Party", TotalVotes: Int(37500), VoteShare: Float(30), SeatsWon: Int(4), CandidatesCount: Int(14)},
			{Party: "Independent", TotalVotes: Int(25000), VoteShare: Float(20), SeatsWon: Int(1), CandidatesCount: Int(14)},
		},
	}
}

// DefaultMockComparison returns a well-formed comparison payload
func DefaultMockComparison() *ComparisonResult {
	return &ComparisonResult{
		Country:           "Testland",
		Year1:             2010,
		Year2:             2015,
		VoteChange:        Int(-4200),
		VoteChangePercent: Float(-3.25),
		PartyChanges: []PartyChange{
			{Party: "A", VoteChange: Int(10), SeatChange: Int(0)},
			{Party: "B", VoteChange: Int(-30), SeatChange: Int(-1)},
		},
	}
}

// DefaultMockCandidates returns well-formed candidate rows
func DefaultMockCandidates() []CandidateRow {
	return []CandidateRow{
		{Candidate: "Ada Stone", Party: "Green Alliance", Constituency: "North", Votes: Int(9100), Elected: Bool(true)},
		{Candidate: "Ben Ortiz", Party: "Harbour Party", Constituency: "South", Votes: Int(8800), Elected: Bool(true)},
		{Candidate: "Cy Nakamura", Party: "Independent", Constituency: "North", Votes: Int(7000), Elected: Bool(false)},
	}
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
