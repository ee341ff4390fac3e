package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abrezinsky/electionview/internal/app"
	"github.com/abrezinsky/electionview/internal/auth"
	"github.com/abrezinsky/electionview/internal/browser"
	"github.com/abrezinsky/electionview/internal/config"
	"github.com/abrezinsky/electionview/internal/logger"
	"github.com/abrezinsky/electionview/pkg/statsapi"
	"github.com/abrezinsky/electionview/web"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

// showBanner prints the ElectionView logo above a small sample bar chart
func showBanner() {
	width := 62
	border := strings.Repeat("═", width)

	logo := []string{
		"   _____ _           _   _           __     ___               ",
		"  | ____| | ___  ___| |_(_) ___  _ __\\ \\   / (_) _____      __",
		"  |  _| | |/ _ \\/ __| __| |/ _ \\| '_ \\\\ \\ / /| |/ _ \\ \\ /\\ / /",
		"  | |___| |  __/ (__| |_| | (_) | | | |\\ V / | |  __/\\ V  V / ",
		"  |_____|_|\\___|\\___|\\__|_|\\___/|_| |_| \\_/  |_|\\___| \\_/\\_/  ",
	}
	bars := []struct {
		share int
		color string
	}{
		{50, green},
		{30, cyan},
		{20, yellow},
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Printf("  %s║%s%-62s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Printf("  %s╠%s╣%s\n", cyan, border, reset)
	for _, b := range bars {
		bar := strings.Repeat("█", b.share)
		label := fmt.Sprintf(" %3d%%", b.share)
		fmt.Printf("  %s║%s %s%s%s%s║%s\n", cyan, b.color, bar, reset, label, strings.Repeat(" ", width-len(label)-b.share-1), reset)
	}
	fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags override the environment
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.StatsAPIURL, "api", cfg.StatsAPIURL, "Statistics service base URL")
	flag.StringVar(&cfg.AdminPassword, "adminpw", cfg.AdminPassword, "Admin password (auto-generated if not set)")
	flag.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale used to format numbers")
	flag.BoolVar(&cfg.NoBanner, "nobanner", cfg.NoBanner, "Skip the startup banner")
	flag.BoolVar(&cfg.NoKeyboard, "nokeyboard", cfg.NoKeyboard, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `ElectionView - Election Data Analysis

Usage:
  electionview [options]

Options:
  -port int       HTTP server port (default 8081)
  -db string      SQLite database path (default "electionview.db")
  -api string     Statistics service base URL (default "http://localhost:8080/api")
  -adminpw str    Admin password (auto-generated if not set)
  -loglevel str   Log level: debug, info, warn, error (default "info")
  -locale str     Locale used to format numbers (default "en")
  -nobanner       Skip the startup banner
  -nokeyboard     Disable keyboard shortcuts
  -version        Show version and exit
  -help           Show this help message

Every option can also be set through the environment: ELECTIONVIEW_PORT,
ELECTIONVIEW_DB, ELECTIONVIEW_STATS_API_URL, ELECTIONVIEW_ADMIN_PASSWORD,
ELECTIONVIEW_LOG_LEVEL, ELECTIONVIEW_LOCALE, ELECTIONVIEW_NO_BANNER and
ELECTIONVIEW_NO_KEYBOARD. Flags win over the environment. Once saved in the
admin settings, the statistics service URL stored in the database is used.

Keyboard Shortcuts (when enabled):
  o              Open analysis page in browser
  a              Open admin page in browser
  r              Reload the country list
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help

Examples:
  electionview                                  # Run on port 8081
  electionview -api http://10.0.0.5:8080/api    # Use another statistics service
  electionview -locale de                       # Group digits as 1.234.567
  electionview -nokeyboard                      # Disable keyboard shortcuts

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("electionview %s\n", version)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if !cfg.NoBanner {
		showBanner()
	}

	// Setup admin authentication
	password := cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	// Create logger with specified level
	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	// The stored setting, when present, replaces this URL in app.New
	client := statsapi.NewHTTPClient(cfg.StatsAPIURL, appLog)

	a, err := app.New(appLog, cfg, client, web.GetTemplatesFS(), web.GetStaticFS(), adminAuth)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	appLog.Info("Admin password", "password", password)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(cfg.Addr())
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	if !cfg.NoKeyboard {
		restore, err := rawInput(int(os.Stdin.Fd()))
		if err != nil {
			appLog.Warn("Keyboard shortcuts unavailable", "error", err)
		} else {
			defer restore()

			keys := &shortcuts{
				out:      os.Stdout,
				log:      appLog,
				launcher: browser.NewLauncher(fmt.Sprintf("http://localhost:%d", cfg.Port)),
				catalog:  a,
			}
			printKeyboardHelp(os.Stdout)
			go keys.listen(ctx, os.Stdin, stop)
		}
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	// Wait for server error or shutdown request
	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		fmt.Printf("%sShutting down server...%s\n", yellow, reset)
		a.Close()
		return <-serverErr
	}
}
