package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/chronograph/pkg/temporal"
	"github.com/soundprediction/chronograph/pkg/types"
)

// BreakerConfig holds configuration for circuit breaking around the oracle.
type BreakerConfig struct {
	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32
	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// ReadyToTripRatio is the failure ratio that opens the breaker.
	ReadyToTripRatio float64
}

// DefaultBreakerConfig returns the default breaker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      2,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		ReadyToTripRatio: 0.6,
	}
}

// BreakerOracle wraps an Oracle with circuit breaking so a flapping judge
// degrades to fast negative answers instead of stalling ingestion. The
// invalidation engine already treats oracle errors as "no", so a tripped
// breaker costs nothing beyond missed invalidations.
type BreakerOracle struct {
	inner temporal.Oracle
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerOracle wraps the given oracle with a circuit breaker.
func NewBreakerOracle(inner temporal.Oracle, cfg BreakerConfig, logger *slog.Logger) *BreakerOracle {
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        "invalidation-oracle",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("oracle circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerOracle{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(st),
	}
}

// Invalidates implements temporal.Oracle.
func (b *BreakerOracle) Invalidates(ctx context.Context, primary, secondary *types.TemporalEvent) (bool, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Invalidates(ctx, primary, secondary)
	})
	if err != nil {
		return false, fmt.Errorf("oracle call rejected: %w", err)
	}
	return result.(bool), nil
}
