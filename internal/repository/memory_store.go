package repository

import (
	"sync"

	"PumpScan/internal/domain/models"
	domrepo "PumpScan/internal/domain/repository"
)

// MemoryStore keeps analyses in insertion order with a per-symbol index.
type MemoryStore struct {
	mu       sync.RWMutex
	all      []*models.Analysis
	bySymbol map[string][]*models.Analysis
	version  uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bySymbol: make(map[string][]*models.Analysis)}
}

func (s *MemoryStore) Put(a *models.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append(s.all, a)
	s.bySymbol[a.Record.Symbol] = append(s.bySymbol[a.Record.Symbol], a)
	s.version++
}

func (s *MemoryStore) All() []*models.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Analysis, len(s.all))
	copy(out, s.all)
	return out
}

func (s *MemoryStore) Suspicious() []*models.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Analysis, 0)
	for _, a := range s.all {
		if a.IsSuspicious() {
			out = append(out, a)
		}
	}
	return out
}

func (s *MemoryStore) Latest(symbol string) (*models.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.bySymbol[models.NormalizeSymbol(symbol)]
	if len(list) == 0 {
		return nil, models.ErrNotFound
	}
	return list[len(list)-1], nil
}

// History returns every analysis for symbol, oldest first.
func (s *MemoryStore) History(symbol string) ([]*models.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.bySymbol[models.NormalizeSymbol(symbol)]
	if len(list) == 0 {
		return nil, models.ErrNotFound
	}
	out := make([]*models.Analysis, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := models.Stats{
		Total:     len(s.all),
		Symbols:   len(s.bySymbol),
		ByPattern: make(map[models.Pattern]int),
	}
	for _, a := range s.all {
		switch a.Classification.RiskLevel {
		case models.RiskHigh:
			st.High++
		case models.RiskMedium:
			st.Medium++
		default:
			st.Low++
		}
		st.ByPattern[a.Classification.Pattern]++
	}
	return st
}

// Version increases on every Put.
func (s *MemoryStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

var _ domrepo.AnalysisStore = (*MemoryStore)(nil)
