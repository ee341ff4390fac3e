package testutil

import (
	"testing"

	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/repository"
	"github.com/abrezinsky/electionview/internal/selection"
	"github.com/abrezinsky/electionview/pkg/statsapi"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// NewLoadedStore returns a catalog loaded with the mock statistics service's countries
func NewLoadedStore(t *testing.T) *selection.Store {
	t.Helper()

	store := selection.NewStore()
	if err := store.Load(CatalogFromAPI(statsapi.DefaultMockCountries())); err != nil {
		t.Fatalf("failed to load test catalog: %v", err)
	}
	return store
}

// CatalogFromAPI converts wire catalog entries to model countries
func CatalogFromAPI(countries []statsapi.Country) []models.Country {
	out := make([]models.Country, 0, len(countries))
	for _, c := range countries {
		out = append(out, models.Country{Name: c.Name, Years: c.Years})
	}
	return out
}
