package statsapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/abrezinsky/electionview/internal/errors"
	"github.com/abrezinsky/electionview/internal/logger"
)

// noopLogger implements logger.Logger but discards all output
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}
func (n noopLogger) SetLevel(level slog.Level)   {}
func (n noopLogger) GetLevel() slog.Level        { return slog.LevelInfo }
func (n noopLogger) EnableHTTPLogging()          {}
func (n noopLogger) DisableHTTPLogging()         {}
func (n noopLogger) IsHTTPLoggingEnabled() bool  { return false }

var _ logger.Logger = noopLogger{}

func TestHTTPClient_FetchCountries_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/countries" {
			t.Errorf("expected path /api/countries, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"countries":[{"name":"Testland","years":[2010,2015,2020]},{"name":"Jordan","years":[2016]}]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/api/", noopLogger{})
	countries, err := client.FetchCountries(context.Background())
	if err != nil {
		t.Fatalf("FetchCountries failed: %v", err)
	}

	if len(countries) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(countries))
	}
	if countries[0].Name != "Testland" || len(countries[0].Years) != 3 {
		t.Errorf("unexpected first country: %+v", countries[0])
	}
}

func TestHTTPClient_FetchCountries_MissingKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	_, err := client.FetchCountries(context.Background())
	if !apperrors.Is(err, apperrors.ErrMalformedResponse) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}

func TestHTTPClient_FetchCountries_EmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"countries":[]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	countries, err := client.FetchCountries(context.Background())
	if err != nil {
		t.Fatalf("expected empty list to decode, got %v", err)
	}
	if len(countries) != 0 {
		t.Errorf("expected 0 countries, got %d", len(countries))
	}
}

func TestHTTPClient_FetchStats_EscapesCountry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats" {
			t.Errorf("expected path /stats, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("country"); got != "Saint Kitts & Nevis" {
			t.Errorf("expected country to round-trip, got %q", got)
		}
		if got := r.URL.Query().Get("year"); got != "2015" {
			t.Errorf("expected year=2015, got %q", got)
		}
		json.NewEncoder(w).Encode(DefaultMockStats())
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	stats, err := client.FetchStats(context.Background(), "Saint Kitts & Nevis", 2015)
	if err != nil {
		t.Fatalf("FetchStats failed: %v", err)
	}
	if stats.TotalVotes == nil || *stats.TotalVotes != 125000 {
		t.Errorf("unexpected totalVotes: %v", stats.TotalVotes)
	}
	if len(stats.Parties) != 3 {
		t.Errorf("expected 3 parties, got %d", len(stats.Parties))
	}
}

func TestHTTPClient_FetchStats_MissingFieldIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalSeats":3,"totalCandidates":5,"constituencies":2,"parties":[]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	stats, err := client.FetchStats(context.Background(), "Testland", 2015)
	if err != nil {
		t.Fatalf("FetchStats failed: %v", err)
	}
	if stats.TotalVotes != nil {
		t.Errorf("expected missing totalVotes to stay nil, got %d", *stats.TotalVotes)
	}
}

func TestHTTPClient_FetchStats_NonNumericField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalVotes":"lots","totalSeats":3,"totalCandidates":5,"constituencies":2,"parties":[]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	_, err := client.FetchStats(context.Background(), "Testland", 2015)

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if appErr.Kind != apperrors.ErrMalformedResponse {
		t.Errorf("expected malformed response kind, got %v", appErr.Kind)
	}
	if appErr.Field != "totalVotes" {
		t.Errorf("expected field totalVotes, got %q", appErr.Field)
	}
}

func TestHTTPClient_FetchStats_NonIntegerPartyField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalVotes":10,"totalSeats":3,"totalCandidates":5,"constituencies":2,"parties":[` +
			`{"party":"A","totalVotes":4,"voteShare":40,"seatsWon":1,"candidatesCount":2},` +
			`{"party":"B","totalVotes":1.5,"voteShare":60,"seatsWon":2,"candidatesCount":3}]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	_, err := client.FetchStats(context.Background(), "Testland", 2015)

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.ErrMalformedResponse {
		t.Fatalf("expected malformed response error, got %v", err)
	}
	if appErr.Field != "parties[1].totalVotes" {
		t.Errorf("expected field parties[1].totalVotes, got %q", appErr.Field)
	}
}

func TestFieldAt(t *testing.T) {
	body := []byte(`{"a":1,"list":[{"x":"s"},{"x":{"deep":true}}],"b":[1,2,3]}`)
	tests := []struct {
		name   string
		offset int64
		want   string
	}{
		{"top-level scalar", int64(len(`{"a":1`)), "a"},
		{"nested string", int64(len(`{"a":1,"list":[{"x":"s"`)), "list[0].x"},
		{"object in place of scalar", int64(len(`{"a":1,"list":[{"x":"s"},{"x":{`)), "list[1].x"},
		{"array element", int64(len(`{"a":1,"list":[{"x":"s"},{"x":{"deep":true}}],"b":[1,2`)), "b[1]"},
		{"past the end", int64(len(body) + 10), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fieldAt(body, tt.offset); got != tt.want {
				t.Errorf("fieldAt(%d) = %q, want %q", tt.offset, got, tt.want)
			}
		})
	}
}

func TestHTTPClient_FetchComparison_Params(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/compare" || q.Get("year1") != "2010" || q.Get("year2") != "2020" || q.Get("country") != "Testland" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		json.NewEncoder(w).Encode(DefaultMockComparison())
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	result, err := client.FetchComparison(context.Background(), "Testland", 2010, 2020)
	if err != nil {
		t.Fatalf("FetchComparison failed: %v", err)
	}
	if len(result.PartyChanges) != 2 {
		t.Errorf("expected 2 party changes, got %d", len(result.PartyChanges))
	}
}

func TestHTTPClient_FetchTopCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("n") != "5" {
			t.Errorf("expected n=5, got %q", r.URL.Query().Get("n"))
		}
		json.NewEncoder(w).Encode(CandidateListResponse{Candidates: DefaultMockCandidates()})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	rows, err := client.FetchTopCandidates(context.Background(), "Testland", 2015, 5)
	if err != nil {
		t.Fatalf("FetchTopCandidates failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Elected == nil || !*rows[0].Elected {
		t.Error("expected first candidate to be elected")
	}
}

func TestHTTPClient_FetchTopCandidates_MissingList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":null}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	_, err := client.FetchTopCandidates(context.Background(), "Testland", 2015, 5)
	if !apperrors.Is(err, apperrors.ErrMalformedResponse) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}

func TestHTTPClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	_, err := client.FetchStats(context.Background(), "Testland", 2015)
	if !apperrors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("expected transport error for server error response, got %v", err)
	}
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	_, err := client.FetchComparison(context.Background(), "Testland", 2010, 2015)
	if !apperrors.Is(err, apperrors.ErrMalformedResponse) {
		t.Fatalf("expected malformed error for invalid JSON, got %v", err)
	}
}

func TestHTTPClient_ConnectionError(t *testing.T) {
	client := NewHTTPClient("http://localhost:99999", noopLogger{})
	_, err := client.FetchCountries(context.Background())
	if !apperrors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("expected transport error for connection failure, got %v", err)
	}
}

func TestHTTPClient_CustomHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(`{"countries":[]}`))
	}))
	defer server.Close()

	client := NewHTTPClientWithHTTPClient(server.URL, &http.Client{Timeout: 5 * time.Millisecond}, noopLogger{})
	_, err := client.FetchCountries(context.Background())
	if !apperrors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("expected transport error on timeout, got %v", err)
	}
}

func TestHTTPClient_BaseURL(t *testing.T) {
	client := NewHTTPClient("http://example.com/api/", noopLogger{})
	if client.BaseURL() != "http://example.com/api" {
		t.Errorf("expected trailing slash trimmed, got %q", client.BaseURL())
	}

	client.SetBaseURL("http://other.example.com/")
	if client.BaseURL() != "http://other.example.com" {
		t.Errorf("expected updated base URL, got %q", client.BaseURL())
	}
}

func TestMockClient_Defaults(t *testing.T) {
	client := NewMockClient()
	countries, err := client.FetchCountries(context.Background())
	if err != nil {
		t.Fatalf("FetchCountries failed: %v", err)
	}
	if len(countries) != 3 {
		t.Errorf("expected 3 default countries, got %d", len(countries))
	}
	if client.CallCount("/countries") != 1 {
		t.Errorf("expected 1 recorded call, got %d", client.CallCount("/countries"))
	}
}

func TestMockClient_Errors(t *testing.T) {
	boom := errors.New("boom")
	client := NewMockClient(
		WithStatsError(boom),
		WithComparisonError(boom),
		WithCandidatesError(boom),
		WithCountriesError(boom),
	)
	ctx := context.Background()

	if _, err := client.FetchCountries(ctx); err != boom {
		t.Errorf("expected countries error, got %v", err)
	}
	if _, err := client.FetchStats(ctx, "X", 1); err != boom {
		t.Errorf("expected stats error, got %v", err)
	}
	if _, err := client.FetchComparison(ctx, "X", 1, 2); err != boom {
		t.Errorf("expected comparison error, got %v", err)
	}
	if _, err := client.FetchTopCandidates(ctx, "X", 1, 3); err != boom {
		t.Errorf("expected candidates error, got %v", err)
	}

	calls := client.Calls()
	if len(calls) != 4 {
		t.Fatalf("expected 4 calls, got %d", len(calls))
	}
	if calls[3].N != 3 {
		t.Errorf("expected n=3 recorded, got %d", calls[3].N)
	}
}
