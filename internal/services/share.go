package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/electionview/internal/logger"
	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/selection"
)

// BaseURLProvider supplies the public base URL of the application
type BaseURLProvider interface {
	GetBaseURL(ctx context.Context) (string, error)
}

// ShareRequest is the selection a permalink reopens
type ShareRequest struct {
	Tab     models.Tab
	Country string
	Year    int
	Year2   int
}

// Query encodes the request as page query parameters. Blank values are omitted.
func (r ShareRequest) Query() url.Values {
	q := url.Values{}
	if r.Tab.Valid() {
		q.Set("tab", string(r.Tab))
	}
	if r.Country != selection.NoCountry {
		q.Set("country", r.Country)
	}
	if r.Year != selection.NoYear {
		q.Set("year", strconv.Itoa(r.Year))
	}
	if r.Tab == models.TabCompare && r.Year2 != selection.NoYear {
		q.Set("year2", strconv.Itoa(r.Year2))
	}
	return q
}

// ShareService builds permalinks and QR codes for a selection
type ShareService struct {
	log      logger.Logger
	settings BaseURLProvider
}

// NewShareService creates a new ShareService
func NewShareService(log logger.Logger, settings BaseURLProvider) *ShareService {
	return &ShareService{log: log, settings: settings}
}

// Permalink returns the absolute URL reopening the page with req selected
func (s *ShareService) Permalink(ctx context.Context, req ShareRequest) (string, error) {
	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil {
		return "", err
	}
	if baseURL == "" {
		return "", ErrBaseURLNotConfigured
	}

	link := strings.TrimSuffix(baseURL, "/") + "/"
	if q := req.Query(); len(q) > 0 {
		link += "?" + q.Encode()
	}
	return link, nil
}

// QRCode returns a PNG QR code of the permalink for req
func (s *ShareService) QRCode(ctx context.Context, req ShareRequest) ([]byte, error) {
	link, err := s.Permalink(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Generating share QR code", "url", link)
	return qrcode.Encode(link, qrcode.Medium, 256)
}
