// Package verification decides whether a restaurant is halal-verified. The
// official registry is consulted first; community votes act as a fallback
// behind a quorum threshold. Verdicts are derived state: cached for reuse,
// invalidated on vote changes and registry reloads, and recomputable at any
// time.
package verification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"dinehalal/internal/match"
	"dinehalal/internal/registry"
	"dinehalal/internal/restaurants"
	"dinehalal/internal/verification/metrics"
	"dinehalal/internal/votes"
)

const (
	tracerName       = "dinehalal/verification"
	batchConcurrency = 8
)

// Engine orchestrates verification across the registry, the matcher and the
// vote ledger.
type Engine struct {
	registry    *registry.Store
	ledger      *votes.Ledger
	publisher   StatusPublisher
	verified    VerifiedIDStore
	metrics     *metrics.Metrics
	logger      *slog.Logger
	tracer      trace.Tracer
	loadTimeout time.Duration

	mu       sync.RWMutex
	cache    map[string]VerificationResult
	gen      uint64
	listings map[string]restaurants.Restaurant
}

// NewEngine constructs the engine. A nil publisher or verified-ID store is
// replaced with an in-process default so callers can wire only what they run.
func NewEngine(
	reg *registry.Store,
	ledger *votes.Ledger,
	publisher StatusPublisher,
	verified VerifiedIDStore,
	m *metrics.Metrics,
	logger *slog.Logger,
	loadTimeout time.Duration,
) *Engine {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if verified == nil {
		verified = NewMemoryVerifiedIDs()
	}

	e := &Engine{
		registry:    reg,
		ledger:      ledger,
		publisher:   publisher,
		verified:    verified,
		metrics:     m,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
		loadTimeout: loadTimeout,
		cache:       make(map[string]VerificationResult),
		listings:    make(map[string]restaurants.Restaurant),
	}

	// A reload swaps the registry wholesale, so every cached verdict is
	// potentially stale.
	reg.OnReload(func() {
		e.invalidateAll()
		e.metrics.SetRegistrySize(reg.Len())
	})

	return e
}

// Verify computes the verification verdict for one restaurant. When the
// registry has not finished loading it triggers the load in the background
// and answers from community data immediately.
func (e *Engine) Verify(ctx context.Context, r restaurants.Restaurant) VerificationResult {
	ctx, span := e.tracer.Start(ctx, "verification.Verify",
		trace.WithAttributes(attribute.String("place_id", r.PlaceID)))
	defer span.End()

	start := time.Now()
	defer func() {
		e.metrics.ObserveVerifyLatency(time.Since(start))
	}()

	e.rememberListing(r)

	if result, ok := e.cachedResult(r.PlaceID); ok {
		return result
	}

	gen := e.generation()
	result := e.compute(ctx, r)
	e.storeResult(result, gen)
	e.metrics.IncrementOutcome(string(result.Source))
	e.publishStatus(ctx, result)
	return result
}

// VerifyAll verifies a batch. It waits a bounded time for the registry load
// so a batch arriving during startup is not answered from an empty registry,
// then runs the per-item algorithm concurrently.
func (e *Engine) VerifyAll(ctx context.Context, rs []restaurants.Restaurant) map[string]VerificationResult {
	ctx, span := e.tracer.Start(ctx, "verification.VerifyAll",
		trace.WithAttributes(attribute.Int("batch_size", len(rs))))
	defer span.End()

	if !e.registry.Loaded() {
		e.triggerLoad(ctx)
		waitCtx, cancel := context.WithTimeout(ctx, e.loadTimeout)
		if err := e.registry.WaitLoaded(waitCtx); err != nil {
			if e.logger != nil {
				e.logger.WarnContext(ctx, "registry load wait expired, answering from community data",
					"batch_size", len(rs),
					"error", err,
				)
			}
		}
		cancel()
	}

	results := make(map[string]VerificationResult, len(rs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, r := range rs {
		g.Go(func() error {
			result := e.Verify(gctx, r)
			mu.Lock()
			results[r.PlaceID] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Upvote records a positive community vote and returns the recomputed
// verdict.
func (e *Engine) Upvote(ctx context.Context, placeID string) (VerificationResult, error) {
	return e.vote(ctx, placeID, true)
}

// Downvote records a negative community vote and returns the recomputed
// verdict. A downvote that drops the tally below the threshold revokes a
// community verification.
func (e *Engine) Downvote(ctx context.Context, placeID string) (VerificationResult, error) {
	return e.vote(ctx, placeID, false)
}

func (e *Engine) vote(ctx context.Context, placeID string, up bool) (VerificationResult, error) {
	ctx, span := e.tracer.Start(ctx, "verification.Vote",
		trace.WithAttributes(attribute.String("place_id", placeID), attribute.Bool("up", up)))
	defer span.End()

	var (
		tally votes.VoteData
		err   error
	)
	if up {
		tally, err = e.ledger.Upvote(ctx, placeID)
	} else {
		tally, err = e.ledger.Downvote(ctx, placeID)
	}
	if err != nil {
		return VerificationResult{}, err
	}

	e.invalidate(placeID)

	r, known := e.listing(placeID)
	if !known {
		// No listing on record to run the matcher with, so the registry
		// side of the verdict is unknown. Report the tally verdict but do
		// not publish it or touch the verified-ID view: a raw tally must
		// never override a possible official registration.
		return e.resultFromTally(placeID, tally), nil
	}

	gen := e.generation()
	result := e.compute(ctx, r)
	if result.Source == SourceOfficialRegistry {
		result.Votes = &tally
	}
	e.storeResult(result, gen)
	e.publishStatus(ctx, result)
	return result, nil
}

// Votes returns the raw tally without recomputing the verdict.
func (e *Engine) Votes(ctx context.Context, placeID string) (votes.VoteData, error) {
	return e.ledger.Get(ctx, placeID)
}

// Reconcile rebuilds the verified-ID view from authoritative sources: the
// vote ledger plus any cached official verdicts.
func (e *Engine) Reconcile(ctx context.Context) error {
	tallies, err := e.ledger.All(ctx)
	if err != nil {
		return fmt.Errorf("list vote tallies: %w", err)
	}

	seen := make(map[string]bool, len(tallies))
	var ids []string
	for id, tally := range tallies {
		if e.ledger.Approved(tally) {
			ids = append(ids, id)
			seen[id] = true
		}
	}

	e.mu.RLock()
	for id, result := range e.cache {
		if result.IsVerified && !seen[id] {
			ids = append(ids, id)
		}
	}
	e.mu.RUnlock()

	if err := e.verified.Replace(ctx, ids); err != nil {
		return fmt.Errorf("replace verified ids: %w", err)
	}

	if e.logger != nil {
		e.logger.InfoContext(ctx, "verified id view reconciled", "count", len(ids))
	}
	return nil
}

func (e *Engine) compute(ctx context.Context, r restaurants.Restaurant) VerificationResult {
	if !e.registry.Loaded() {
		e.triggerLoad(ctx)
	} else if est, pass := match.FindMatch(r, e.registry.All()); est != nil {
		e.metrics.IncrementMatchPass(string(pass))
		return VerificationResult{
			PlaceID:       r.PlaceID,
			IsVerified:    true,
			Source:        SourceOfficialRegistry,
			Establishment: est,
		}
	}

	tally, err := e.ledger.Get(ctx, r.PlaceID)
	if err != nil {
		if e.logger != nil {
			e.logger.WarnContext(ctx, "vote lookup failed, treating as zero tally",
				"place_id", r.PlaceID,
				"error", err,
			)
		}
		tally = votes.VoteData{}
	}
	return e.resultFromTally(r.PlaceID, tally)
}

func (e *Engine) resultFromTally(placeID string, tally votes.VoteData) VerificationResult {
	if e.ledger.Approved(tally) {
		return VerificationResult{
			PlaceID:    placeID,
			IsVerified: true,
			Source:     SourceCommunity,
			Votes:      &tally,
		}
	}
	return VerificationResult{
		PlaceID: placeID,
		Source:  SourceNone,
		Votes:   &tally,
	}
}

// triggerLoad starts the registry load without blocking the caller. The load
// itself dedupes concurrent triggers.
func (e *Engine) triggerLoad(ctx context.Context) {
	go func() {
		loadCtx, cancel := context.WithTimeout(context.Background(), e.loadTimeout)
		defer cancel()
		if err := e.registry.Load(loadCtx); err != nil {
			if e.logger != nil {
				e.logger.WarnContext(ctx, "background registry load failed", "error", err)
			}
		}
	}()
}

// publishStatus emits the status event and maintains the verified-ID view.
// Both are best-effort: failures are logged and never fail the verification.
func (e *Engine) publishStatus(ctx context.Context, result VerificationResult) {
	event := StatusEvent{
		PlaceID:  result.PlaceID,
		Verified: result.IsVerified,
		Source:   result.Source,
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.metrics.IncrementPublishFailure()
		if e.logger != nil {
			e.logger.WarnContext(ctx, "status publish failed",
				"place_id", result.PlaceID,
				"source", result.Source,
				"error", err,
			)
		}
	}

	var err error
	if result.IsVerified {
		err = e.verified.Add(ctx, result.PlaceID)
	} else {
		err = e.verified.Remove(ctx, result.PlaceID)
	}
	if err != nil && e.logger != nil {
		e.logger.WarnContext(ctx, "verified id view update failed",
			"place_id", result.PlaceID,
			"error", err,
		)
	}
}

func (e *Engine) cachedResult(placeID string) (VerificationResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result, ok := e.cache[placeID]
	return result, ok
}

// generation returns the current cache generation. A verdict computed at one
// generation must not be stored into a later one: the registry it was derived
// from is gone.
func (e *Engine) generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gen
}

func (e *Engine) storeResult(result VerificationResult, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return
	}
	e.cache[result.PlaceID] = result
}

func (e *Engine) invalidate(placeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cache, placeID)
}

func (e *Engine) invalidateAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.cache = make(map[string]VerificationResult)
}

// rememberListing keeps the last-seen restaurant record per place ID so the
// vote path can re-run the full algorithm. Listings survive cache
// invalidation; they are inputs, not verdicts.
func (e *Engine) rememberListing(r restaurants.Restaurant) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listings[r.PlaceID] = r
}

func (e *Engine) listing(placeID string) (restaurants.Restaurant, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.listings[placeID]
	return r, ok
}
