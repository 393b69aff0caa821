// Package temporal determines which previously valid facts are superseded by
// newer, contradictory facts, producing a versioned timeline per subject.
//
// Only DYNAMIC events are ever invalidated. Candidate secondaries are bounded
// by a cheap embedding-similarity and date filter before the expensive oracle
// judgment; among confirmed contradictions the earliest one in time wins, as
// the authoritative boundary of the primary's validity.
package temporal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph/pkg/types"
	"github.com/soundprediction/chronograph/pkg/utils"
)

// DefaultSimilarityThreshold is the minimum cosine similarity between two
// event embeddings for the pair to be considered topically related.
const DefaultSimilarityThreshold = 0.5

// Config holds tunable parameters for the invalidation engine.
type Config struct {
	// SimilarityThreshold is the cosine similarity above which a FACT event
	// becomes an invalidation candidate. Must be in [-1, 1].
	SimilarityThreshold float64

	// MaxConcurrency bounds the number of primary events whose oracle
	// consultations run in parallel. Zero selects the default worker limit.
	MaxConcurrency int

	// OracleTimeout is the per-call timeout for oracle consultations. A
	// timed-out call is equivalent to a negative answer. Zero disables the
	// per-call timeout.
	OracleTimeout time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: DefaultSimilarityThreshold,
		OracleTimeout:       30 * time.Second,
	}
}

// Validate rejects out-of-range thresholds. Configuration faults are fatal
// at startup, before any batch is processed.
func (c Config) Validate() error {
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [-1, 1], got %v", c.SimilarityThreshold)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max concurrency must not be negative, got %d", c.MaxConcurrency)
	}
	return nil
}

// Update records one invalidation applied by the engine.
type Update struct {
	EventID       uuid.UUID
	InvalidAt     time.Time
	InvalidatedBy uuid.UUID
}

// Result summarizes one invalidation pass.
type Result struct {
	// Updates lists the invalidations applied, in event order.
	Updates []Update
	// Candidates is the number of (primary, secondary) pairs that survived
	// the similarity and date filters.
	Candidates int
	// OracleCalls is the number of oracle consultations made.
	OracleCalls int
	// OracleFailures counts oracle errors and timeouts, each treated as a
	// negative answer.
	OracleFailures int
}

// Engine finds superseding facts and marks superseded events invalid.
type Engine struct {
	oracle Oracle
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates an Engine, rejecting invalid configuration.
func NewEngine(oracle Oracle, cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid invalidation config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{oracle: oracle, cfg: cfg, logger: logger}, nil
}

// primaryJob carries one primary event and its filtered candidate set
// through the worker pool. Work is partitioned by primary event, so each
// event's invalidation fields have a single writer.
type primaryJob struct {
	primary    *types.TemporalEvent
	candidates []*types.TemporalEvent
}

// primaryOutcome is the per-primary result collected from a worker.
type primaryOutcome struct {
	update   *Update
	calls    int
	failures int
}

// Invalidate runs one invalidation pass over the batch, mutating matched
// events in place via their write-once invalidation setter and returning the
// applied updates. Oracle consultations for different primaries run
// concurrently up to the configured bound; all candidates for one primary
// are judged before its winner is committed.
func (e *Engine) Invalidate(ctx context.Context, events []*types.TemporalEvent) (*Result, error) {
	result := &Result{}
	if len(events) == 0 {
		return result, nil
	}

	jobs := e.collectJobs(events)
	for _, job := range jobs {
		result.Candidates += len(job.candidates)
	}
	if len(jobs) == 0 {
		return result, nil
	}

	pool := utils.NewWorkerPool(e.cfg.MaxConcurrency, func(ctx context.Context, job primaryJob) (primaryOutcome, error) {
		return e.judgePrimary(ctx, job), nil
	})
	outcomes, errs := pool.ProcessItems(ctx, jobs)
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("invalidation pass failed: %w", err)
		}
	}

	// Apply winners after every primary's candidates have been judged, so a
	// cancelled pass never leaves an event partially invalid.
	for i, outcome := range outcomes {
		result.OracleCalls += outcome.calls
		result.OracleFailures += outcome.failures
		if outcome.update == nil {
			continue
		}

		primary := jobs[i].primary
		if err := primary.ApplyInvalidation(outcome.update.InvalidatedBy, outcome.update.InvalidAt); err != nil {
			return nil, fmt.Errorf("failed to invalidate event %s: %w", primary.ID, err)
		}
		result.Updates = append(result.Updates, *outcome.update)
	}

	e.logger.Info("invalidation pass complete",
		"events", len(events),
		"primaries", len(jobs),
		"candidates", result.Candidates,
		"invalidated", len(result.Updates),
		"oracle_failures", result.OracleFailures)

	return result, nil
}

// collectJobs builds the candidate set for every eligible primary. A primary
// must be DYNAMIC and not yet invalidated; a candidate must be a FACT with a
// start at or after the primary's own, and topically related by embedding
// similarity. The filter never invalidates anything itself, it only bounds
// the oracle calls.
func (e *Engine) collectJobs(events []*types.TemporalEvent) []primaryJob {
	var jobs []primaryJob

	for i, primary := range events {
		if primary.TemporalType != types.TemporalDynamic || primary.InvalidAt != nil {
			continue
		}
		if primary.ValidAt == nil {
			continue
		}

		var candidates []*types.TemporalEvent
		for j, candidate := range events {
			if j == i {
				continue
			}
			if candidate.StatementType != types.StatementFact || candidate.ValidAt == nil {
				continue
			}
			if candidate.ValidAt.Before(*primary.ValidAt) {
				continue
			}
			if utils.CosineSimilarity(primary.Embedding, candidate.Embedding) <= e.cfg.SimilarityThreshold {
				continue
			}
			candidates = append(candidates, candidate)
		}

		if len(candidates) > 0 {
			jobs = append(jobs, primaryJob{primary: primary, candidates: candidates})
		}
	}
	return jobs
}

// judgePrimary consults the oracle for every candidate of one primary and
// selects the earliest confirmed contradiction, ties broken by first-seen
// order. Oracle errors and timeouts count as "no" for that pair.
func (e *Engine) judgePrimary(ctx context.Context, job primaryJob) primaryOutcome {
	outcome := primaryOutcome{}
	var winner *types.TemporalEvent

	for _, candidate := range job.candidates {
		confirmed, err := e.consult(ctx, job.primary, candidate)
		outcome.calls++
		if err != nil {
			outcome.failures++
			e.logger.Warn("oracle consultation failed, treating as not invalidated",
				"primary", job.primary.ID,
				"candidate", candidate.ID,
				"error", err)
			continue
		}
		if !confirmed {
			continue
		}
		if winner == nil || candidate.ValidAt.Before(*winner.ValidAt) {
			winner = candidate
		}
	}

	if winner != nil {
		outcome.update = &Update{
			EventID:       job.primary.ID,
			InvalidAt:     *winner.ValidAt,
			InvalidatedBy: winner.ID,
		}
	}
	return outcome
}

func (e *Engine) consult(ctx context.Context, primary, secondary *types.TemporalEvent) (bool, error) {
	if e.cfg.OracleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.OracleTimeout)
		defer cancel()
	}
	return e.oracle.Invalidates(ctx, primary, secondary)
}
