// Package selection holds the country catalog and the cascading country -> year
// select state kept for each browser session.
package selection

import (
	"fmt"
	"sync"

	"github.com/abrezinsky/electionview/internal/errors"
	"github.com/abrezinsky/electionview/internal/models"
)

// Blank selections
const (
	NoCountry = ""
	NoYear    = 0
)

// Catalog is the read side of the country catalog used by selectors
type Catalog interface {
	Countries() []string
	Has(name string) bool
	YearsFor(name string) []int
}

// Store is the country catalog. It is replaced wholesale by Load and is safe
// for concurrent readers.
type Store struct {
	mu     sync.RWMutex
	names  []string
	years  map[string][]int
	loaded bool
}

// NewStore creates an empty catalog
func NewStore() *Store {
	return &Store{years: make(map[string][]int)}
}

// Load replaces the catalog. On error the previous catalog is kept.
func (s *Store) Load(countries []models.Country) error {
	if len(countries) == 0 {
		return errors.EmptyCatalog()
	}

	names := make([]string, 0, len(countries))
	years := make(map[string][]int, len(countries))
	for i, c := range countries {
		if c.Name == NoCountry {
			return errors.Malformed(fmt.Sprintf("countries[%d].name", i))
		}
		if _, dup := years[c.Name]; dup {
			return errors.Malformed(fmt.Sprintf("countries[%d].name", i))
		}
		if len(c.Years) == 0 {
			return errors.Malformed(fmt.Sprintf("countries[%d].years", i))
		}
		seen := make(map[int]bool, len(c.Years))
		for _, y := range c.Years {
			if y == NoYear || seen[y] {
				return errors.Malformed(fmt.Sprintf("countries[%d].years", i))
			}
			seen[y] = true
		}
		names = append(names, c.Name)
		years[c.Name] = append([]int(nil), c.Years...)
	}

	s.mu.Lock()
	s.names = names
	s.years = years
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// YearsFor returns the election years of name in catalog order.
// Unknown or blank names yield an empty slice.
func (s *Store) YearsFor(name string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ys := s.years[name]
	out := make([]int, len(ys))
	copy(out, ys)
	return out
}

// Countries returns the country names in catalog order
func (s *Store) Countries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Has reports whether name is in the catalog
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.years[name]
	return ok
}

// Snapshot returns the catalog as country entries in catalog order
func (s *Store) Snapshot() []models.Country {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Country, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, models.Country{Name: n, Years: append([]int(nil), s.years[n]...)})
	}
	return out
}

// Loaded reports whether a catalog has been loaded successfully
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

var _ Catalog = (*Store)(nil)
