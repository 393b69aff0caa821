// Package resolver clusters raw entity mentions into canonical identities.
//
// Resolution is batch-local: mentions are partitioned by type, clustered by
// fuzzy name similarity, and each cluster is collapsed onto its medoid. The
// medoid's name is then matched against the persisted canonical set so that
// identities stay stable across ingestion runs.
package resolver

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph/pkg/types"
	"github.com/soundprediction/chronograph/pkg/utils"
)

// DefaultClusterThreshold is the partial-ratio score (0-100) at or above
// which two same-type mentions are placed in the same cluster.
const DefaultClusterThreshold = 80.0

// Config holds tunable parameters for entity resolution.
type Config struct {
	// ClusterThreshold is the minimum partial-ratio score for clustering.
	// Must be in [0, 100].
	ClusterThreshold float64
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() Config {
	return Config{ClusterThreshold: DefaultClusterThreshold}
}

// Validate rejects out-of-range thresholds. Configuration faults are fatal
// at startup, before any batch is processed.
func (c Config) Validate() error {
	if c.ClusterThreshold < 0 || c.ClusterThreshold > 100 {
		return fmt.Errorf("cluster threshold must be in [0, 100], got %v", c.ClusterThreshold)
	}
	return nil
}

// Result is the output of resolving one batch of mentions.
type Result struct {
	// MentionToCanonical maps every input mention's LocalIndex to the
	// canonical entity it resolved to.
	MentionToCanonical map[int]uuid.UUID

	// NewCanonicals are the canonical entities minted by this batch, in
	// minting order, for persistence into the canonical store.
	NewCanonicals []types.CanonicalEntity
}

// Resolver clusters near-duplicate entity mentions into canonical identities.
type Resolver struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Resolver, rejecting invalid configuration.
func New(cfg Config, logger *slog.Logger) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid resolver config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cfg: cfg, logger: logger}, nil
}

// Resolve clusters the mentions of one ingestion batch and merges the result
// with the persisted canonical set. Every input mention maps to exactly one
// canonical id; mentions of different types never share a cluster.
//
// Canonical identity is keyed by name alone, matching the name-unique
// canonical store: when clusters of different types collapse onto the same
// medoid name, they share one canonical id, and the first cluster to mint
// the name fixes the canonical's type.
//
// Clustering is single-pass and order-dependent: the first unclustered
// mention seeds each cluster, so results are deterministic for a fixed input
// order but not invariant under permutation. This matches the behavior the
// persisted canonical names were produced under, so it is preserved rather
// than fixed.
func (r *Resolver) Resolve(mentions []types.RawEntityMention, existing map[string]types.CanonicalEntity) (*Result, error) {
	result := &Result{
		MentionToCanonical: make(map[int]uuid.UUID, len(mentions)),
	}
	if len(mentions) == 0 {
		return result, nil
	}

	newByName := make(map[string]types.CanonicalEntity)

	for _, group := range partitionByType(mentions) {
		for _, cluster := range r.clusterGroup(group) {
			medoid := selectMedoid(cluster)

			var canonicalID uuid.UUID
			switch {
			case hasName(existing, medoid.Name):
				canonicalID = existing[medoid.Name].ID
			case hasName(newByName, medoid.Name):
				canonicalID = newByName[medoid.Name].ID
			default:
				canonical := types.CanonicalEntity{
					ID:          uuid.New(),
					Name:        medoid.Name,
					Type:        medoid.Type,
					Description: medoid.Description,
				}
				canonicalID = canonical.ID
				newByName[medoid.Name] = canonical
				result.NewCanonicals = append(result.NewCanonicals, canonical)
			}

			for _, m := range cluster {
				result.MentionToCanonical[m.LocalIndex] = canonicalID
			}
		}
	}

	r.logger.Debug("resolved entity mentions",
		"mentions", len(mentions),
		"existing_canonicals", len(existing),
		"new_canonicals", len(result.NewCanonicals))

	return result, nil
}

// partitionByType splits mentions into per-type groups, preserving input
// order both across groups (by first appearance) and within each group.
func partitionByType(mentions []types.RawEntityMention) [][]types.RawEntityMention {
	byType := make(map[string][]types.RawEntityMention)
	var order []string
	for _, m := range mentions {
		if _, seen := byType[m.Type]; !seen {
			order = append(order, m.Type)
		}
		byType[m.Type] = append(byType[m.Type], m)
	}

	groups := make([][]types.RawEntityMention, 0, len(order))
	for _, t := range order {
		groups = append(groups, byType[t])
	}
	return groups
}

// clusterGroup performs single-link clustering within one type partition.
// Each cluster is seeded by the first unclustered mention; every later
// unclustered mention whose partial-ratio score against the seed meets the
// threshold joins it.
func (r *Resolver) clusterGroup(group []types.RawEntityMention) [][]types.RawEntityMention {
	var clusters [][]types.RawEntityMention
	clustered := make([]bool, len(group))

	for i := range group {
		if clustered[i] {
			continue
		}
		cluster := []types.RawEntityMention{group[i]}
		clustered[i] = true

		for j := i + 1; j < len(group); j++ {
			if clustered[j] {
				continue
			}
			score := utils.PartialRatio(strings.ToLower(group[i].Name), strings.ToLower(group[j].Name))
			if score >= r.cfg.ClusterThreshold {
				cluster = append(cluster, group[j])
				clustered[j] = true
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// selectMedoid picks the cluster member whose summed symmetric similarity
// against all other members is maximal, breaking ties by earliest LocalIndex.
// The medoid's name becomes the cluster's canonical name.
func selectMedoid(cluster []types.RawEntityMention) types.RawEntityMention {
	best := cluster[0]
	bestScore := -1.0

	for _, candidate := range cluster {
		score := 0.0
		for _, other := range cluster {
			if other.LocalIndex == candidate.LocalIndex {
				continue
			}
			score += utils.Ratio(strings.ToLower(candidate.Name), strings.ToLower(other.Name))
		}
		if score > bestScore || (score == bestScore && candidate.LocalIndex < best.LocalIndex) {
			best = candidate
			bestScore = score
		}
	}
	return best
}

func hasName(m map[string]types.CanonicalEntity, name string) bool {
	_, ok := m[name]
	return ok
}
