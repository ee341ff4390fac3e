package app

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/electionview/internal/auth"
	"github.com/abrezinsky/electionview/internal/config"
	"github.com/abrezinsky/electionview/internal/handlers"
	"github.com/abrezinsky/electionview/internal/logger"
	"github.com/abrezinsky/electionview/internal/render"
	"github.com/abrezinsky/electionview/internal/repository"
	"github.com/abrezinsky/electionview/internal/selection"
	"github.com/abrezinsky/electionview/internal/services"
	"github.com/abrezinsky/electionview/internal/websocket"
	"github.com/abrezinsky/electionview/pkg/statsapi"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	repo     *repository.Repository
	views    *services.ViewService
	settings *services.SettingsService

	mu     sync.Mutex
	server *http.Server
}

// New creates and initializes a new application instance. A statistics
// service that cannot be reached yet is logged, not fatal: the page shows
// the catalog failure notice until an admin reloads the catalog.
func New(log logger.Logger, cfg config.Config, client statsapi.Client, templatesFS, staticFS fs.FS, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	// Initialize services
	settingsService := services.NewSettingsService(log, repo, client)
	apiURL, err := settingsService.SeedStatsAPIURL(ctx, cfg.StatsAPIURL)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to configure statistics API URL: %w", err)
	}
	historyService := services.NewHistoryService(log, repo)
	viewService := services.NewViewService(log, client, selection.NewStore(), settingsService)
	viewService.SetRecorder(historyService)
	settingsService.SetCatalogLoader(viewService)
	shareService := services.NewShareService(log, settingsService)

	log.Info("Statistics service", "url", apiURL)
	if err := viewService.LoadCatalog(ctx); err != nil {
		log.Warn("Country catalog not loaded at startup", "error", err)
	}

	renderer, err := render.New(templatesFS, cfg.Language())
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize templates: %w", err)
	}

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, viewService, renderer)
	hub.Start()
	settingsService.SetBroadcaster(hub)

	// Create static file server
	staticServer := handlers.NewStaticServer(staticFS)

	h := handlers.New(
		viewService,
		settingsService,
		historyService,
		shareService,
		renderer,
		staticServer,
		adminAuth,
		hub,
		log,
	)

	return &App{
		log:      log,
		handlers: h,
		repo:     repo,
		views:    viewService,
		settings: settingsService,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// ReloadCatalog refetches the country catalog and tells connected
// browsers to refresh. It returns the number of countries loaded.
func (a *App) ReloadCatalog(ctx context.Context) (int, error) {
	if err := a.settings.ReloadCatalog(ctx); err != nil {
		return 0, err
	}
	return len(a.views.Catalog().Countries()), nil
}

// Close stops the HTTP server if it is running
func (a *App) Close() {
	a.mu.Lock()
	server := a.server
	a.server = nil
	a.mu.Unlock()

	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		a.log.Warn("Server shutdown failed", "error", err)
	}
}

// Run starts the HTTP server and blocks until it stops
func (a *App) Run(addr string) error {
	// Set default base URL if not configured, using detected LAN IP
	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, addr)
	a.setDefaultBaseURL(baseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Admin URL", "url", baseURL+"/admin")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost, which other devices cannot open
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.repo.GetSetting(ctx, repository.SettingBaseURL)

	// Set default if empty or if current value uses localhost
	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.repo.SetSetting(ctx, repository.SettingBaseURL, baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
