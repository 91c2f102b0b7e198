package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"dinehalal/internal/registry/ingest"
	"dinehalal/pkg/platform/sentinel"
)

// Store holds the parsed registry in memory. Ingestion runs at most once at a
// time (concurrent callers share the in-flight result), and the record slice
// is swapped wholesale so readers never observe a partial parse. A failed
// ingestion degrades to an empty registry rather than an error: verification
// then defers to community voting.
type Store struct {
	source    Source
	extractor *ingest.Extractor
	snapshots SnapshotStore
	logger    *slog.Logger

	group singleflight.Group

	mu             sync.RWMutex
	establishments []Establishment
	loaded         bool
	onReload       []func()

	loadedCh  chan struct{}
	closeOnce sync.Once
}

// NewStore builds a registry store. snapshots may be nil when snapshot
// persistence is disabled.
func NewStore(source Source, extractor *ingest.Extractor, snapshots SnapshotStore, logger *slog.Logger) *Store {
	return &Store{
		source:    source,
		extractor: extractor,
		snapshots: snapshots,
		logger:    logger,
		loadedCh:  make(chan struct{}),
	}
}

// Load ingests the registry document once. Repeat calls after a completed
// load are no-ops; concurrent calls during a load await the same attempt.
func (s *Store) Load(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}
	_, err, _ := s.group.Do("load", func() (any, error) {
		if s.Loaded() {
			return nil, nil
		}
		s.ingest(ctx)
		return nil, nil
	})
	return err
}

// Reload forces a fresh ingestion, replacing the cached records wholesale.
func (s *Store) Reload(ctx context.Context) error {
	_, err, _ := s.group.Do("load", func() (any, error) {
		s.ingest(ctx)
		return nil, nil
	})
	return err
}

// ingest runs one ingestion attempt and publishes its outcome. Every attempt
// completes the store: failure means an empty registry, not an error.
func (s *Store) ingest(ctx context.Context) {
	parsedAt := time.Now()

	records := s.extract(ctx)
	establishments := make([]Establishment, 0, len(records))
	for _, r := range records {
		establishments = append(establishments, fromRaw(r, parsedAt))
	}

	if len(establishments) > 0 {
		s.saveSnapshot(ctx, establishments)
	} else {
		establishments = s.restoreSnapshot(ctx)
	}

	s.mu.Lock()
	s.establishments = establishments
	s.loaded = true
	callbacks := make([]func(), len(s.onReload))
	copy(callbacks, s.onReload)
	s.mu.Unlock()

	s.closeOnce.Do(func() { close(s.loadedCh) })

	if s.logger != nil {
		s.logger.InfoContext(ctx, "registry load complete", "establishments", len(establishments))
	}
	for _, fn := range callbacks {
		fn()
	}
}

func (s *Store) extract(ctx context.Context) []ingest.RawRecord {
	text, err := s.source.FetchDocument(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "registry document unavailable, degrading", "error", err)
		}
		return nil
	}
	records, _ := s.extractor.Extract(text)
	if len(records) == 0 && s.logger != nil {
		s.logger.WarnContext(ctx, "no records extracted from registry document")
	}
	return records
}

func (s *Store) saveSnapshot(ctx context.Context, establishments []Establishment) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, establishments); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "registry snapshot save failed", "error", err)
	}
}

func (s *Store) restoreSnapshot(ctx context.Context) []Establishment {
	if s.snapshots == nil {
		return nil
	}
	establishments, err := s.snapshots.Load(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "registry snapshot restore failed", "error", err)
		}
		return nil
	}
	if len(establishments) > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "serving registry from snapshot", "establishments", len(establishments))
	}
	return establishments
}

// Loaded reports whether at least one ingestion attempt has completed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// All returns the current records. The slice is replaced wholesale on reload
// and must not be modified by callers.
func (s *Store) All() []Establishment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.establishments
}

// Len returns the number of cached records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.establishments)
}

// WaitLoaded blocks until the first load attempt completes or ctx is done.
// It does not trigger a load by itself. A wait that expires first reports
// sentinel.ErrNotLoaded.
func (s *Store) WaitLoaded(ctx context.Context) error {
	select {
	case <-s.loadedCh:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", sentinel.ErrNotLoaded, ctx.Err())
	}
}

// OnReload registers a callback invoked after every completed ingestion,
// including the first. The verification engine uses this to drop cached
// results computed against stale data.
func (s *Store) OnReload(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}
