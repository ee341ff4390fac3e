package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/abrezinsky/electionview/internal/logger"
)

type fakeLauncher struct {
	analysis int
	admin    int
	err      error
}

func (f *fakeLauncher) OpenAnalysis(query url.Values) error {
	f.analysis++
	return f.err
}

func (f *fakeLauncher) OpenAdmin() error {
	f.admin++
	return f.err
}

type fakeCatalog struct {
	calls int
	count int
	err   error
}

func (f *fakeCatalog) ReloadCatalog(ctx context.Context) (int, error) {
	f.calls++
	return f.count, f.err
}

func newShortcuts() (*shortcuts, *bytes.Buffer, *fakeLauncher, *fakeCatalog) {
	var out bytes.Buffer
	launcher := &fakeLauncher{}
	catalog := &fakeCatalog{count: 3}
	return &shortcuts{
		out:      &out,
		log:      logger.Discard(),
		launcher: launcher,
		catalog:  catalog,
	}, &out, launcher, catalog
}

func TestShortcuts_OpenPages(t *testing.T) {
	s, _, launcher, _ := newShortcuts()
	ctx := context.Background()

	if !s.handle(ctx, 'o') || !s.handle(ctx, 'A') {
		t.Fatal("expected the server to keep running")
	}
	if launcher.analysis != 1 || launcher.admin != 1 {
		t.Errorf("expected one launch each, got analysis=%d admin=%d", launcher.analysis, launcher.admin)
	}
}

func TestShortcuts_OpenError(t *testing.T) {
	s, out, launcher, _ := newShortcuts()
	launcher.err = stderrors.New("no browser")

	s.handle(context.Background(), 'a')

	if !strings.Contains(out.String(), "Error opening browser: no browser") {
		t.Errorf("expected the error to be shown, got %q", out.String())
	}
}

func TestShortcuts_ReloadCatalog(t *testing.T) {
	s, out, _, catalog := newShortcuts()

	s.handle(context.Background(), 'r')
	if catalog.calls != 1 {
		t.Fatalf("expected one reload, got %d", catalog.calls)
	}
	if !strings.Contains(out.String(), "Country list reloaded: 3 countries") {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	catalog.err = stderrors.New("refused")
	s.handle(context.Background(), 'r')
	if !strings.Contains(out.String(), "Country list reload failed: refused") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestShortcuts_ToggleHTTPLogging(t *testing.T) {
	s, _, _, _ := newShortcuts()

	s.handle(context.Background(), 'h')
	if !s.log.IsHTTPLoggingEnabled() {
		t.Fatal("expected HTTP logging enabled")
	}
	s.handle(context.Background(), 'h')
	if s.log.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging disabled")
	}
}

func TestShortcuts_CycleLogLevel(t *testing.T) {
	s, out, _, _ := newShortcuts()
	s.log = logger.NewWithWriter(&bytes.Buffer{}, slog.LevelInfo)

	s.handle(context.Background(), 'l')

	if s.log.GetLevel() != slog.LevelWarn {
		t.Errorf("expected warn, got %v", s.log.GetLevel())
	}
	if !strings.Contains(out.String(), "warn") {
		t.Errorf("expected the new level to be shown, got %q", out.String())
	}
}

func TestShortcuts_Quit(t *testing.T) {
	s, _, _, _ := newShortcuts()

	for _, key := range []byte{'q', 'Q', 0x03} {
		if s.handle(context.Background(), key) {
			t.Errorf("expected key %q to stop the server", key)
		}
	}
}

func TestShortcuts_HelpAndUnknownKeys(t *testing.T) {
	s, out, launcher, catalog := newShortcuts()

	if !s.handle(context.Background(), '?') {
		t.Fatal("expected help to keep the server running")
	}
	if !strings.Contains(out.String(), "Keyboard Shortcuts:") {
		t.Errorf("expected help text, got %q", out.String())
	}

	out.Reset()
	if !s.handle(context.Background(), 'z') {
		t.Fatal("expected unknown key to be ignored")
	}
	if out.Len() != 0 || launcher.admin != 0 || catalog.calls != 0 {
		t.Error("expected no action for an unknown key")
	}
}

func TestShortcuts_Listen(t *testing.T) {
	s, _, launcher, _ := newShortcuts()

	quit := 0
	s.listen(context.Background(), strings.NewReader("oaq-never-read"), func() { quit++ })

	if quit != 1 {
		t.Errorf("expected quit once, got %d", quit)
	}
	if launcher.analysis != 1 || launcher.admin != 1 {
		t.Errorf("expected keys before q to run, got analysis=%d admin=%d", launcher.analysis, launcher.admin)
	}
}

func TestShortcuts_ListenEndOfInput(t *testing.T) {
	s, _, _, _ := newShortcuts()

	quit := 0
	s.listen(context.Background(), strings.NewReader("o"), func() { quit++ })

	if quit != 0 {
		t.Error("expected end of input to stop listening without quitting")
	}
}
