package temporal

import (
	"context"

	"github.com/soundprediction/chronograph/pkg/types"
)

// Oracle judges whether a secondary fact directly contradicts and supersedes
// a primary event. It is an opaque external capability: implementations may
// be slow or unavailable, and the engine treats any error as a negative
// answer for that candidate pair.
type Oracle interface {
	Invalidates(ctx context.Context, primary, secondary *types.TemporalEvent) (bool, error)
}

// OracleFunc adapts a plain function to the Oracle interface. Used for
// scripted deterministic oracles in tests.
type OracleFunc func(ctx context.Context, primary, secondary *types.TemporalEvent) (bool, error)

// Invalidates implements Oracle.
func (f OracleFunc) Invalidates(ctx context.Context, primary, secondary *types.TemporalEvent) (bool, error) {
	return f(ctx, primary, secondary)
}
