package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/abrezinsky/electionview/internal/logger"
)

// pageLauncher opens server pages in the browser
type pageLauncher interface {
	OpenAnalysis(query url.Values) error
	OpenAdmin() error
}

// catalogReloader refetches the country catalog
type catalogReloader interface {
	ReloadCatalog(ctx context.Context) (int, error)
}

// shortcuts maps single key presses to server actions
type shortcuts struct {
	out      io.Writer
	log      logger.Logger
	launcher pageLauncher
	catalog  catalogReloader
}

// listen reads keys from in until quit is pressed or ctx ends
func (s *shortcuts) listen(ctx context.Context, in io.Reader, quit func()) {
	buf := make([]byte, 1)
	for ctx.Err() == nil {
		n, err := in.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if !s.handle(ctx, buf[0]) {
			quit()
			return
		}
	}
}

// handle performs the action bound to key. It returns false when the
// server should stop.
func (s *shortcuts) handle(ctx context.Context, key byte) bool {
	switch strings.ToLower(string(key)) {
	case "o":
		fmt.Fprintf(s.out, "%sOpening analysis page in browser...%s\n", cyan, reset)
		if err := s.launcher.OpenAnalysis(nil); err != nil {
			fmt.Fprintf(s.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "a":
		fmt.Fprintf(s.out, "%sOpening admin page in browser...%s\n", cyan, reset)
		if err := s.launcher.OpenAdmin(); err != nil {
			fmt.Fprintf(s.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "r":
		reloadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		n, err := s.catalog.ReloadCatalog(reloadCtx)
		if err != nil {
			fmt.Fprintf(s.out, "%sCountry list reload failed: %v%s\n", red, err, reset)
		} else {
			fmt.Fprintf(s.out, "%sCountry list reloaded: %d countries%s\n", green, n, reset)
		}
	case "h":
		if s.log.IsHTTPLoggingEnabled() {
			s.log.DisableHTTPLogging()
			fmt.Fprintf(s.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			s.log.EnableHTTPLogging()
			fmt.Fprintf(s.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		next := logger.NextLevel(s.log.GetLevel())
		s.log.SetLevel(next)
		fmt.Fprintf(s.out, "%sLog level: %s%s%s\n", green, yellow, strings.ToLower(next.String()), reset)
	case "q", "\x03": // Ctrl+C arrives as a byte in raw mode
		return false
	case "?":
		printKeyboardHelp(s.out)
	}
	return true
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp(w io.Writer) {
	fmt.Fprintf(w, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(w, "    %so%s      - Open analysis page in browser\n", cyan, reset)
	fmt.Fprintf(w, "    %sa%s      - Open admin page in browser\n", cyan, reset)
	fmt.Fprintf(w, "    %sr%s      - Reload the country list\n", cyan, reset)
	fmt.Fprintf(w, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(w, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(w, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(w, "    %s?%s      - Show this help\n\n", cyan, reset)
}
