// Package browser opens pages of the running server in the desktop browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/abrezinsky/electionview/internal/errors"
)

// Page paths served by the application
const (
	PathAnalysis = "/"
	PathAdmin    = "/admin"
)

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Launcher opens pages below a server base URL
type Launcher struct {
	baseURL   string
	commander Commander
	goos      string
}

// NewLauncher creates a launcher for the server at baseURL
func NewLauncher(baseURL string) *Launcher {
	return NewLauncherWithCommander(baseURL, RealCommander{}, runtime.GOOS)
}

// NewLauncherWithCommander creates a launcher with the given commander and OS (for testing)
func NewLauncherWithCommander(baseURL string, commander Commander, goos string) *Launcher {
	return &Launcher{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		commander: commander,
		goos:      goos,
	}
}

// PageURL returns the absolute URL of path with query attached
func (l *Launcher) PageURL(path string, query url.Values) string {
	link := l.baseURL + path
	if len(query) > 0 {
		link += "?" + query.Encode()
	}
	return link
}

// OpenAnalysis opens the analysis page, preselecting query when given
func (l *Launcher) OpenAnalysis(query url.Values) error {
	return l.open(l.PageURL(PathAnalysis, query))
}

// OpenAdmin opens the admin settings page
func (l *Launcher) OpenAdmin() error {
	return l.open(l.PageURL(PathAdmin, nil))
}

func (l *Launcher) open(link string) error {
	return OpenWithCommander(link, l.commander, l.goos)
}

// OpenWithCommander opens the URL using the specified commander and OS.
// Only absolute http and https URLs are handed to the system.
func OpenWithCommander(link string, commander Commander, goos string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Validationf("not an http URL: %q", link)
	}

	var name string
	var args []string

	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		name = "xdg-open"
		args = []string{link}
	case "darwin": // macOS
		name = "open"
		args = []string{link}
	case "windows":
		name = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", link}
	default:
		return fmt.Errorf("unsupported platform: %s", goos)
	}

	if err := commander.Start(name, args...); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return nil
}
