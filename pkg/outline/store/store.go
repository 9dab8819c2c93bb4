package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store persists the history of conversion and validation runs
type Store interface {
	Close() error

	// Runs
	CreateRun(ctx context.Context, kind, root string) (Run, error)
	FinishRun(ctx context.Context, id string) (Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Per-file results
	RecordResult(ctx context.Context, runID string, r FileResult) error
	Results(ctx context.Context, runID string) ([]FileResult, error)
}

// Run kinds
const (
	KindConvert  = "convert"
	KindValidate = "validate"
)

// Run is one directory-wide conversion or validation pass
type Run struct {
	ID         string
	Kind       string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Files      int
	Failed     int
}

// Finished reports whether FinishRun has been called
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// FileResult is the outcome recorded for a single document
type FileResult struct {
	Path     string
	Output   string
	Success  bool
	Error    string
	Errors   []string
	Warnings []string
}

// IDGenerator produces lexically sortable run IDs
type IDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDGenerator creates a generator with monotonic entropy
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// New returns a fresh ID. IDs from one generator sort in creation order.
func (g *IDGenerator) New(at time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), g.entropy).String()
}
