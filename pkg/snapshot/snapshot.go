// Package snapshot holds the one listing snapshot a view session renders from.
//
// A Store performs a single fetch against its source and then serves the
// immutable result for the rest of the session. The load is modeled as
// three observable states instead of ad-hoc flags: pending until the fetch
// resolves, then loaded or failed. A failed fetch is logged and leaves an
// empty record set, so the view shows zero entries rather than an error.
package snapshot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/nimbusview/pkg/source"
)

// State is the observable load state of a snapshot.
type State string

const (
	// StatePending means the fetch has not resolved yet.
	StatePending State = "pending"

	// StateLoaded means the fetch succeeded and records are available.
	StateLoaded State = "loaded"

	// StateFailed means the single fetch attempt failed; the record set is empty.
	StateFailed State = "failed"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Store owns one immutable snapshot per session.
//
// Safe for concurrent use: one goroutine loads, any number read.
type Store struct {
	src    source.Source
	logger *zap.Logger

	once sync.Once

	mu       sync.RWMutex
	state    State
	records  []source.Object
	bytes    int64
	err      error
	loadedAt time.Time
}

// NewStore creates a pending store over the given source.
// A nil logger disables load logging.
func NewStore(src source.Source, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		src:    src,
		logger: logger,
		state:  StatePending,
	}
}

// Load performs the single fetch attempt for this session.
//
// The first call fetches; every later call is a no-op that returns the
// first outcome. There is no retry: a failed fetch is logged and the
// store stays failed with zero records for the rest of the session.
func (s *Store) Load(ctx context.Context) error {
	s.once.Do(func() { s.load(ctx) })
	return s.Err()
}

// LoadAsync runs Load on its own goroutine. The server path uses this so
// startup is not blocked; the view renders the pending state meanwhile.
func (s *Store) LoadAsync(ctx context.Context) {
	go func() { _ = s.Load(ctx) }()
}

func (s *Store) load(ctx context.Context) {
	start := time.Now()
	records, err := s.src.List(ctx)
	elapsed := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateFailed
		s.err = err
		s.records = nil
		s.logger.Error("listing fetch failed",
			zap.String("source", s.src.String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return
	}

	s.state = StateLoaded
	s.records = records
	for i := range records {
		s.bytes += records[i].Size
	}
	s.loadedAt = time.Now()
	s.logger.Info("listing fetched",
		zap.String("source", s.src.String()),
		zap.Int("objects", len(records)),
		zap.Int64("bytes", s.bytes),
		zap.Duration("elapsed", elapsed))
}

// State returns the current load state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Records returns the fetched flat listing in source order.
// Nil until loaded and after a failed fetch; callers treat nil as empty.
func (s *Store) Records() []source.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Err returns the fetch error after a failed load, else nil.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// LoadedAt returns when the fetch resolved successfully.
// Zero unless the state is loaded.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Len returns the number of records in the snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Bytes returns the total size of all records in the snapshot.
func (s *Store) Bytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bytes
}

// Source returns the URI-form description of the backing source.
func (s *Store) Source() string {
	return s.src.String()
}
