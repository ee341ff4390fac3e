package handlers_test

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abrezinsky/electionview/internal/errors"
	"github.com/abrezinsky/electionview/internal/handlers"
	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/repository"
	"github.com/abrezinsky/electionview/internal/services"
	"github.com/abrezinsky/electionview/pkg/statsapi"
)

// ==================== Access ====================

func TestAdmin_RequiresLogin(t *testing.T) {
	setup := newTestSetup(t)

	page := setup.do(t, http.MethodGet, "/admin", nil, false)
	if page.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", page.Code)
	}
	if loc := page.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("expected redirect to login, got %q", loc)
	}

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/settings"},
		{http.MethodPut, "/api/admin/settings"},
		{http.MethodPost, "/api/admin/reload-catalog"},
		{http.MethodPost, "/api/admin/test-api"},
		{http.MethodGet, "/api/admin/history"},
		{http.MethodGet, "/api/admin/usage"},
		{http.MethodPost, "/api/admin/reset"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := setup.do(t, p.method, p.path, nil, false)
			expectAPIError(t, rec, http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
		})
	}
}

func TestAdminSettingsPage(t *testing.T) {
	setup := newTestSetup(t)
	setup.do(t, http.MethodGet, "/api/stats?country=Testland&year=2015", nil, false)

	rec := setup.do(t, http.MethodGet, "/admin/settings", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	for _, want := range []string{`id="settings-form"`, "3 countries loaded", `id="history-table"`, "Testland", "outcome-ok"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

// ==================== Settings ====================

func TestGetSettings(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/admin/settings", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var settings map[string]interface{}
	decodeBody(t, rec, &settings)
	if settings[repository.SettingStatsAPIURL] != "http://mock-stats.local/api" {
		t.Errorf("expected the client URL, got %v", settings[repository.SettingStatsAPIURL])
	}
	if settings[repository.SettingBaseURL] != "" {
		t.Errorf("expected empty base URL, got %v", settings[repository.SettingBaseURL])
	}
	if settings[repository.SettingDefaultCandidateCount] != float64(10) {
		t.Errorf("expected default count 10, got %v", settings[repository.SettingDefaultCandidateCount])
	}
}

func TestUpdateSettings(t *testing.T) {
	setup := newTestSetup(t)
	ctx := context.Background()

	count := 5
	rec := setup.do(t, http.MethodPut, "/api/admin/settings", handlers.SettingsUpdateRequest{
		StatsAPIURL:           "http://stats.example.com/api/",
		BaseURL:               "http://192.168.1.20:8080/",
		DefaultCandidateCount: &count,
	}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if got := setup.client.BaseURL(); got != "http://stats.example.com/api" {
		t.Errorf("expected client retargeted, got %q", got)
	}
	if got, _ := setup.repo.GetSetting(ctx, repository.SettingBaseURL); got != "http://192.168.1.20:8080" {
		t.Errorf("expected trimmed base URL, got %q", got)
	}
	if got, _ := setup.settings.DefaultCandidateCount(ctx); got != 5 {
		t.Errorf("expected count 5, got %d", got)
	}

	// The URL change reloads the catalog
	if got := setup.client.CallCount("/countries"); got != 2 {
		t.Errorf("expected a catalog reload, got %d requests", got)
	}
}

func TestUpdateSettings_Invalid(t *testing.T) {
	setup := newTestSetup(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"relative stats url", map[string]interface{}{"stats_api_url": "stats/api"}},
		{"ftp base url", map[string]interface{}{"base_url": "ftp://example.com"}},
		{"count too large", map[string]interface{}{"default_candidate_count": 101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := setup.do(t, http.MethodPut, "/api/admin/settings", tt.body, true)
			expectAPIError(t, rec, http.StatusBadRequest, handlers.ErrCodeValidation)
		})
	}
}

func TestUpdateSettings_MalformedBody(t *testing.T) {
	setup := newTestSetup(t)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/settings", strings.NewReader("{"))
	req.AddCookie(setup.authCookie)
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// ==================== Statistics Service ====================

func TestReloadCatalog(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/reload-catalog", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp handlers.CatalogResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "success" || resp.Countries != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReloadCatalog_Unavailable(t *testing.T) {
	setup := newTestSetup(t, statsapi.WithCountriesError(errors.Transport(stderrors.New("refused"), "failed to connect")))

	rec := setup.do(t, http.MethodPost, "/api/admin/reload-catalog", nil, true)
	body := expectAPIError(t, rec, http.StatusBadGateway, handlers.ErrCodeUpstream)
	if body["error"] != services.MsgCatalogUnavailable {
		t.Errorf("unexpected message: %q", body["error"])
	}
}

func TestTestStatsAPI(t *testing.T) {
	setup := newTestSetup(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/countries" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"countries":[{"name":"Jordan","years":[2016,2020]}]}`))
	}))
	defer server.Close()

	rec := setup.do(t, http.MethodPost, "/api/admin/test-api", handlers.TestAPIRequest{URL: server.URL + "/api"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp handlers.CatalogResponse
	decodeBody(t, rec, &resp)
	if resp.Countries != 1 {
		t.Errorf("expected 1 country, got %d", resp.Countries)
	}

	// Probing leaves the configured service alone
	if setup.client.BaseURL() != "http://mock-stats.local/api" {
		t.Errorf("expected client URL unchanged, got %q", setup.client.BaseURL())
	}
}

func TestTestStatsAPI_Errors(t *testing.T) {
	setup := newTestSetup(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	rec := setup.do(t, http.MethodPost, "/api/admin/test-api", handlers.TestAPIRequest{}, true)
	body := expectAPIError(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)
	if body["error"] != "url is required" {
		t.Errorf("unexpected message: %q", body["error"])
	}

	rec = setup.do(t, http.MethodPost, "/api/admin/test-api", handlers.TestAPIRequest{URL: "not a url"}, true)
	expectAPIError(t, rec, http.StatusBadRequest, handlers.ErrCodeValidation)

	rec = setup.do(t, http.MethodPost, "/api/admin/test-api", handlers.TestAPIRequest{URL: server.URL}, true)
	body = expectAPIError(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)
	if !strings.HasPrefix(body["error"], "Failed to connect to statistics service: ") {
		t.Errorf("unexpected message: %q", body["error"])
	}
}

// ==================== Query History ====================

func TestGetHistory(t *testing.T) {
	setup := newTestSetup(t)
	setup.do(t, http.MethodGet, "/api/stats?country=Testland&year=2015", nil, false)
	setup.do(t, http.MethodGet, "/api/compare?country=Testland&year1=2010&year2=2010", nil, false)

	rec := setup.do(t, http.MethodGet, "/api/admin/history?limit=10", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp handlers.HistoryResponse
	decodeBody(t, rec, &resp)
	if len(resp.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.Entries))
	}

	outcomes := map[models.Tab]string{}
	for _, e := range resp.Entries {
		outcomes[e.Tab] = e.Outcome
	}
	if outcomes[models.TabStats] != models.OutcomeOK {
		t.Errorf("expected stats ok, got %q", outcomes[models.TabStats])
	}
	if outcomes[models.TabCompare] != models.OutcomeValidation {
		t.Errorf("expected compare validation, got %q", outcomes[models.TabCompare])
	}
}

func TestGetHistory_Empty(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/admin/history", nil, true)
	if !strings.Contains(rec.Body.String(), `"entries":[]`) {
		t.Errorf("expected an empty array, got %s", rec.Body.String())
	}
}

func TestGetUsage(t *testing.T) {
	setup := newTestSetup(t, statsapi.WithStatsError(errors.Transportf("statistics service returned status %d", 500)))
	setup.do(t, http.MethodGet, "/api/stats?country=Testland&year=2015", nil, false)
	setup.do(t, http.MethodGet, "/api/stats?country=Jordan&year=2016", nil, false)

	rec := setup.do(t, http.MethodGet, "/api/admin/usage", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var usage map[string]float64
	decodeBody(t, rec, &usage)
	if usage["total_queries"] != 2 || usage["failed_queries"] != 2 || usage["distinct_countries"] != 2 {
		t.Errorf("unexpected usage: %v", usage)
	}
}

// ==================== Database Management ====================

func TestResetDatabase(t *testing.T) {
	setup := newTestSetup(t)
	setup.do(t, http.MethodGet, "/api/stats?country=Testland&year=2015", nil, false)

	rec := setup.do(t, http.MethodPost, "/api/admin/reset", handlers.DatabaseResetRequest{Tables: []string{"query_log"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	entries, err := setup.history.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected history cleared, got %d entries", len(entries))
	}
}

func TestResetDatabase_Invalid(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/reset", handlers.DatabaseResetRequest{Tables: []string{"users"}}, true)
	body := expectAPIError(t, rec, http.StatusBadRequest, handlers.ErrCodeValidation)
	if body["error"] != "invalid table name: users" {
		t.Errorf("unexpected message: %q", body["error"])
	}

	rec = setup.do(t, http.MethodPost, "/api/admin/reset", handlers.DatabaseResetRequest{}, true)
	expectAPIError(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)
}
