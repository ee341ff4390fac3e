package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"

	"github.com/abrezinsky/electionview/internal/auth"
	"github.com/abrezinsky/electionview/internal/handlers"
	"github.com/abrezinsky/electionview/internal/logger"
	"github.com/abrezinsky/electionview/internal/render"
	"github.com/abrezinsky/electionview/internal/repository"
	"github.com/abrezinsky/electionview/internal/selection"
	"github.com/abrezinsky/electionview/internal/services"
	"github.com/abrezinsky/electionview/internal/testutil"
	"github.com/abrezinsky/electionview/internal/websocket"
	"github.com/abrezinsky/electionview/pkg/statsapi"
	"github.com/abrezinsky/electionview/web"
)

type testSetup struct {
	router     http.Handler
	client     *statsapi.MockClient
	repo       *repository.Repository
	views      *services.ViewService
	settings   *services.SettingsService
	history    *services.HistoryService
	hub        *websocket.Hub
	authCookie *http.Cookie
}

// newTestSetup wires the real services against a mock statistics service
// and an in-memory database. The catalog is loaded when the mock allows it.
func newTestSetup(t *testing.T, opts ...statsapi.MockOption) *testSetup {
	t.Helper()

	log := logger.Discard()
	repo := testutil.NewTestRepository(t)
	client := statsapi.NewMockClient(opts...)

	settings := services.NewSettingsService(log, repo, client)
	history := services.NewHistoryService(log, repo)
	views := services.NewViewService(log, client, selection.NewStore(), settings)
	views.SetRecorder(history)
	views.LoadCatalog(context.Background())
	settings.SetCatalogLoader(views)

	renderer, err := render.New(web.GetTemplatesFS(), language.English)
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}
	hub := websocket.New(log, views, renderer)
	hub.Start()
	settings.SetBroadcaster(hub)

	adminAuth := auth.New("test-password")
	token, _ := adminAuth.Login("test-password")

	h := handlers.New(
		views,
		settings,
		history,
		services.NewShareService(log, settings),
		renderer,
		handlers.NewStaticServer(web.GetStaticFS()),
		adminAuth,
		hub,
		log,
	)

	return &testSetup{
		router:     h.Router(),
		client:     client,
		repo:       repo,
		views:      views,
		settings:   settings,
		history:    history,
		hub:        hub,
		authCookie: &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

// do sends a request through the router. body is JSON-encoded when not nil.
func (s *testSetup) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.AddCookie(s.authCookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func expectAPIError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) map[string]string {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["code"] != code {
		t.Errorf("expected code %q, got %q", code, body["code"])
	}
	return body
}
