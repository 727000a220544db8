package selection

import (
	"sync"

	"github.com/brandradar/visibility-dashboard/internal/models"
)

// Store holds the current brand, model and time-range selection.
// Every write is a single assignment; the last write wins.
type Store struct {
	mu        sync.RWMutex
	selection models.FilterSelection
	version   uint64
}

// NewStore creates a store starting from initial
func NewStore(initial models.FilterSelection) *Store {
	return &Store{selection: initial}
}

// Snapshot returns the current selection and its version
func (s *Store) Snapshot() (models.FilterSelection, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection, s.version
}

// Version increments on every write
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) update(apply func(*models.FilterSelection)) models.FilterSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(&s.selection)
	s.version++
	return s.selection
}

// SetBrand selects one entity; an empty id selects all brands
func (s *Store) SetBrand(brandID string) models.FilterSelection {
	return s.update(func(f *models.FilterSelection) { f.BrandID = brandID })
}

// SetModel selects one model; an empty id selects all models
func (s *Store) SetModel(modelID string) models.FilterSelection {
	return s.update(func(f *models.FilterSelection) { f.ModelID = modelID })
}

// SetTimeRange replaces the time range
func (s *Store) SetTimeRange(r models.TimeRange) models.FilterSelection {
	return s.update(func(f *models.FilterSelection) { f.Range = r })
}

// Set replaces the whole selection
func (s *Store) Set(sel models.FilterSelection) models.FilterSelection {
	return s.update(func(f *models.FilterSelection) { *f = sel })
}
