// Package statsapi provides a client for the remote election statistics service.
//
// The service computes every aggregate (vote totals, seat counts, vote shares,
// comparisons, candidate rankings); this package only transports and decodes
// them. Required numeric fields decode into pointers so callers can tell a
// missing value from a zero.
package statsapi

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abrezinsky/electionview/internal/errors"
	"github.com/abrezinsky/electionview/internal/logger"
)

// Country is a catalog entry as returned by GET /countries
type Country struct {
	Name  string `json:"name"`
	Years []int  `json:"years"`
}

// CountryListResponse is the response from GET /countries
type CountryListResponse struct {
	Countries []Country `json:"countries"`
}

// PartyStat is one party row of an election's statistics
type PartyStat struct {
	Party           string   `json:"party"`
	TotalVotes      *int     `json:"totalVotes"`
	VoteShare       *float64 `json:"voteShare"`
	SeatsWon        *int     `json:"seatsWon"`
	CandidatesCount *int     `json:"candidatesCount"`
}

// ElectionStats is the response from GET /stats
type ElectionStats struct {
	Country         string      `json:"country,omitempty"`
	Year            int         `json:"year,omitempty"`
	TotalVotes      *int        `json:"totalVotes"`
	TotalSeats      *int        `json:"totalSeats"`
	TotalCandidates *int        `json:"totalCandidates"`
	Constituencies  *int        `json:"constituencies"`
	Parties         []PartyStat `json:"parties"`
}

// PartyChange is the change of one party between two elections
type PartyChange struct {
	Party      string `json:"party"`
	VoteChange *int   `json:"voteChange"`
	SeatChange *int   `json:"seatChange"`
}

// ComparisonResult is the response from GET /compare
type ComparisonResult struct {
	Country           string        `json:"country,omitempty"`
	Year1             int           `json:"year1,omitempty"`
	Year2             int           `json:"year2,omitempty"`
	VoteChange        *int          `json:"voteChange"`
	VoteChangePercent *float64      `json:"voteChangePercent"`
	PartyChanges      []PartyChange `json:"partyChanges"`
}

// CandidateRow is one entry of GET /top-candidates
type CandidateRow struct {
	Candidate    string `json:"candidate"`
	Party        string `json:"party"`
	Constituency string `json:"constituency"`
	Votes        *int   `json:"votes"`
	Elected      *bool  `json:"elected"`
}

// CandidateListResponse is the response from GET /top-candidates
type CandidateListResponse struct {
	Candidates []CandidateRow `json:"candidates"`
}

// Int returns a pointer to v
func Int(v int) *int { return &v }

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// Client defines the interface for statistics service operations
type Client interface {
	// FetchCountries retrieves the catalog of countries and their election years
	FetchCountries(ctx context.Context) ([]Country, error)
	// FetchStats retrieves the statistics of one election
	FetchStats(ctx context.Context, country string, year int) (*ElectionStats, error)
	// FetchComparison retrieves the comparison of two elections of a country
	FetchComparison(ctx context.Context, country string, year1, year2 int) (*ComparisonResult, error)
	// FetchTopCandidates retrieves the n best-voted candidates of one election
	FetchTopCandidates(ctx context.Context, country string, year, n int) ([]CandidateRow, error)
	// BaseURL returns the configured service base URL
	BaseURL() string
	// SetBaseURL updates the service base URL
	SetBaseURL(url string)
}

// HTTPClient is a real HTTP client for the statistics service
type HTTPClient struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new statistics service client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a new client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured service base URL
func (c *HTTPClient) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL updates the service base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.mu.Lock()
	c.baseURL = strings.TrimSuffix(url, "/")
	c.mu.Unlock()
}

// doGet issues a GET to endpoint with params and decodes the JSON body into response.
// Network and status failures become transport errors; undecodable bodies become
// malformed-response errors naming the field the decoder tripped on, indexed
// the same way the formatter names fields (parties[1].totalVotes).
func (c *HTTPClient) doGet(ctx context.Context, endpoint string, params url.Values, response interface{}) error {
	reqURL := c.BaseURL() + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	c.log.Debug("Stats API request", "method", "GET", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.Transport(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Transport(err, "failed to connect to statistics service")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Transport(err, "failed to read response")
	}

	c.log.Debug("Stats API response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode != http.StatusOK {
		return errors.Transportf("statistics service returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, response); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) {
			if field := fieldAt(body, typeErr.Offset); field != "" {
				return errors.MalformedWrap(err, field)
			}
			if typeErr.Field != "" {
				return errors.MalformedWrap(err, typeErr.Field)
			}
		}
		return errors.MalformedWrap(err, "body")
	}

	return nil
}

type pathFrame struct {
	array     bool
	index     int
	key       string
	expectKey bool
}

// fieldAt returns the path of the JSON value that ends at offset, or "" when
// the body cannot be walked that far.
func fieldAt(body []byte, offset int64) string {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var stack []*pathFrame

	advance := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if top.array {
			top.index++
		} else {
			top.expectKey = true
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '{', '[':
				if dec.InputOffset() >= offset {
					return framePath(stack)
				}
				stack = append(stack, &pathFrame{array: delim == '[', expectKey: delim == '{'})
			default:
				if len(stack) == 0 {
					return ""
				}
				stack = stack[:len(stack)-1]
				advance()
			}
			continue
		}
		if n := len(stack); n > 0 && stack[n-1].expectKey {
			stack[n-1].key, _ = tok.(string)
			stack[n-1].expectKey = false
			continue
		}
		if dec.InputOffset() >= offset {
			return framePath(stack)
		}
		advance()
	}
}

func framePath(stack []*pathFrame) string {
	var b strings.Builder
	for _, f := range stack {
		if f.array {
			fmt.Fprintf(&b, "[%d]", f.index)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(f.key)
	}
	return b.String()
}

// FetchCountries retrieves the catalog of countries and their election years
func (c *HTTPClient) FetchCountries(ctx context.Context) ([]Country, error) {
	var response CountryListResponse
	if err := c.doGet(ctx, "/countries", nil, &response); err != nil {
		return nil, err
	}
	if response.Countries == nil {
		return nil, errors.Malformed("countries")
	}
	return response.Countries, nil
}

// FetchStats retrieves the statistics of one election
func (c *HTTPClient) FetchStats(ctx context.Context, country string, year int) (*ElectionStats, error) {
	params := url.Values{}
	params.Set("country", country)
	params.Set("year", strconv.Itoa(year))

	var response ElectionStats
	if err := c.doGet(ctx, "/stats", params, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// FetchComparison retrieves the comparison of two elections of a country
func (c *HTTPClient) FetchComparison(ctx context.Context, country string, year1, year2 int) (*ComparisonResult, error) {
	params := url.Values{}
	params.Set("country", country)
	params.Set("year1", strconv.Itoa(year1))
	params.Set("year2", strconv.Itoa(year2))

	var response ComparisonResult
	if err := c.doGet(ctx, "/compare", params, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// FetchTopCandidates retrieves the n best-voted candidates of one election
func (c *HTTPClient) FetchTopCandidates(ctx context.Context, country string, year, n int) ([]CandidateRow, error) {
	params := url.Values{}
	params.Set("country", country)
	params.Set("year", strconv.Itoa(year))
	params.Set("n", strconv.Itoa(n))

	var response CandidateListResponse
	if err := c.doGet(ctx, "/top-candidates", params, &response); err != nil {
		return nil, err
	}
	if response.Candidates == nil {
		return nil, errors.Malformed("candidates")
	}
	c.log.Debug("Top candidates fetched", "country", country, "year", year, "requested", n, "returned", len(response.Candidates))
	return response.Candidates, nil
}

// String describes the client for logs
func (c *HTTPClient) String() string {
	return fmt.Sprintf("statsapi.HTTPClient(%s)", c.BaseURL())
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
