package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/outline/pkg/outline/internalerr"
	"github.com/cognicore/outline/pkg/outline/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	ids     *store.IDGenerator
	runs    map[string]store.Run
	results map[string][]store.FileResult
	now     func() time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:     store.NewIDGenerator(),
		runs:    make(map[string]store.Run),
		results: make(map[string][]store.FileResult),
		now:     time.Now,
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateRun starts a run.
func (s *Store) CreateRun(ctx context.Context, kind, root string) (store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	run := store.Run{
		ID:        s.ids.New(now),
		Kind:      kind,
		Root:      root,
		StartedAt: now,
	}
	s.runs[run.ID] = run
	return run, nil
}

// FinishRun stamps the run as finished.
func (s *Store) FinishRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	run.FinishedAt = s.now().UTC()
	s.runs[id] = run
	return run, nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if run, ok := s.runs[id]; ok {
		return run, nil
	}
	return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
}

// ListRuns returns runs newest first. A non-positive limit returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]store.Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].ID > runs[j].ID
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// RecordResult appends a file result and updates the run counters.
func (s *Store) RecordResult(ctx context.Context, runID string, r store.FileResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	run.Files++
	if !r.Success {
		run.Failed++
	}
	s.runs[runID] = run
	s.results[runID] = append(s.results[runID], copyResult(r))
	return nil
}

// Results returns the file results of a run in recording order.
func (s *Store) Results(ctx context.Context, runID string) ([]store.FileResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.runs[runID]; !ok {
		return nil, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	stored := s.results[runID]
	out := make([]store.FileResult, len(stored))
	for i, r := range stored {
		out[i] = copyResult(r)
	}
	return out, nil
}

func copyResult(r store.FileResult) store.FileResult {
	copySlice := func(in []string) []string {
		out := make([]string, len(in))
		copy(out, in)
		return out
	}

	r.Errors = copySlice(r.Errors)
	r.Warnings = copySlice(r.Warnings)
	return r
}
