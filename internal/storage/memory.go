package storage

import (
	"context"
	"sync"

	"acctune/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        []RunRecord
	rawRuns     map[string][]RawRun
	results     map[string]map[model.Point]model.Result
	outcomes    map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = nil
	s.rawRuns = make(map[string][]RawRun)
	s.results = make(map[string]map[model.Point]model.Result)
	s.outcomes = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.runs {
		if existing.RunID == run.RunID {
			s.runs[i] = run
			return nil
		}
	}
	s.runs = append(s.runs, run)
	return nil
}

func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first.
	listed := make([]RunRecord, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		listed = append(listed, s.runs[i])
		if limit > 0 && len(listed) == limit {
			break
		}
	}
	return listed, nil
}

func (s *MemoryStore) SaveRawRun(_ context.Context, runID string, raw RawRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rawRuns[runID] = append(s.rawRuns[runID], raw)
	return nil
}

func (s *MemoryStore) GetRawRuns(_ context.Context, runID string) ([]RawRun, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raws, ok := s.rawRuns[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]RawRun, len(raws))
	copy(copied, raws)
	return copied, true, nil
}

func (s *MemoryStore) SaveResult(_ context.Context, runID string, result model.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byPoint, ok := s.results[runID]
	if !ok {
		byPoint = make(map[model.Point]model.Result)
		s.results[runID] = byPoint
	}
	byPoint[result.Point] = result
	return nil
}

func (s *MemoryStore) GetResults(_ context.Context, runID string) ([]model.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byPoint, ok := s.results[runID]
	if !ok {
		return nil, false, nil
	}
	results := make([]model.Result, 0, len(byPoint))
	for _, r := range byPoint {
		results = append(results, r)
	}
	return results, true, nil
}

func (s *MemoryStore) SaveOutcome(_ context.Context, runID string, outcome model.Outcome, repetitions int) error {
	payload, err := EncodeOutcome(outcome, repetitions)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outcomes[runID] = payload
	return nil
}

func (s *MemoryStore) GetOutcome(_ context.Context, runID string) (model.Outcome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.outcomes[runID]
	if !ok {
		return model.Outcome{}, false, nil
	}
	outcome, _, err := DecodeOutcome(payload)
	if err != nil {
		return model.Outcome{}, false, err
	}
	return outcome, true, nil
}
