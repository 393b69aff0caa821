// Package oracle provides implementations of the external capability that
// judges whether one fact contradicts and supersedes another.
package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soundprediction/chronograph/pkg/llm"
	"github.com/soundprediction/chronograph/pkg/types"
)

// invalidationPrompt asks the model to act as a referee between two events.
// It must answer with only "True" or "False".
const invalidationPrompt = `Task: Analyze the primary event against the secondary event and determine if the primary event is invalidated by the secondary event.
Return "True" if the primary event is invalidated, otherwise return "False".

Invalidation Guidelines:
1. An event can only be invalidated if it is DYNAMIC and its validity end is currently unknown.
2. A STATIC event (e.g., "X was hired on date Y") can invalidate a DYNAMIC event (e.g., "Z is the current employee").
3. Invalidation must be a direct contradiction. For example, "Lisa Su is CEO" is contradicted by "Someone else is CEO".
4. The invalidating event (secondary) must occur at or after the start of the primary event.

---
Primary Event (the one that might be invalidated):
- Statement: %s
- Type: %s
- Valid From: %s
- Valid To: %s

Secondary Event (the new fact that might cause invalidation):
- Statement: %s
- Type: %s
- Valid From: %s
---

Is the primary event invalidated by the secondary event? Answer with only "True" or "False".`

// LLMOracle judges contradictions with a language model.
type LLMOracle struct {
	client llm.Client
	logger *slog.Logger
}

// NewLLMOracle creates an LLM-backed oracle.
func NewLLMOracle(client llm.Client, logger *slog.Logger) *LLMOracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMOracle{client: client, logger: logger}
}

// Invalidates asks the model whether secondary directly contradicts and
// supersedes primary. Anything other than a clean "True" answer is a no.
func (o *LLMOracle) Invalidates(ctx context.Context, primary, secondary *types.TemporalEvent) (bool, error) {
	prompt := fmt.Sprintf(invalidationPrompt,
		primary.Statement, primary.TemporalType,
		formatTime(primary.ValidAt), formatTime(primary.InvalidAt),
		secondary.Statement, secondary.TemporalType,
		formatTime(secondary.ValidAt))

	resp, err := o.client.Chat(ctx, []llm.Message{llm.NewUserMessage(prompt)})
	if err != nil {
		return false, fmt.Errorf("invalidation judgment failed: %w", err)
	}

	answer := strings.TrimSpace(resp)
	return strings.EqualFold(answer, "true"), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format(time.RFC3339)
}
