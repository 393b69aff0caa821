// Package graph materializes canonical entities and temporally-scoped
// relationships into a directed multigraph with deterministic edge identity.
//
// The Graph is a plain value built in one pass by Assemble: nodes keyed by
// canonical entity id, edges keyed by (source, target, predicate). Edges are
// append-only logs of attestations, so the same relationship can carry many
// claims as facts evolve over time, and point-in-time queries stay cheap.
package graph

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph/pkg/types"
	"github.com/soundprediction/chronograph/pkg/utils"
)

// Node is a canonical entity projected into the graph.
type Node struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
}

// EdgeKey identifies a directed edge. Multiple attestations share one key
// when facts about the same relationship evolve over time.
type EdgeKey struct {
	Source    uuid.UUID       `json:"source"`
	Target    uuid.UUID       `json:"target"`
	Predicate types.Predicate `json:"predicate"`
}

// Attestation is a single timestamped claim backing an edge.
type Attestation struct {
	Statement     string              `json:"statement"`
	StatementType types.StatementType `json:"statement_type"`
	ValidAt       *time.Time          `json:"valid_at,omitempty"`
	InvalidAt     *time.Time          `json:"invalid_at,omitempty"`
	Value         string              `json:"value,omitempty"`
}

// ActiveAt reports whether the attestation's [ValidAt, InvalidAt) interval
// covers t. A nil ValidAt never bounds the start (ATEMPORAL facts); a nil
// InvalidAt means the claim is still believed.
func (a Attestation) ActiveAt(t time.Time) bool {
	if a.ValidAt != nil && a.ValidAt.After(t) {
		return false
	}
	if a.InvalidAt != nil && !a.InvalidAt.After(t) {
		return false
	}
	return true
}

// Edge is a directed edge carrying the append-only attestation log.
type Edge struct {
	Key          EdgeKey       `json:"key"`
	Attestations []Attestation `json:"attestations"`
}

// Warning records an inconsistency found during assembly. Partial graphs are
// valid outputs; warnings are the accompanying list of skipped items.
type Warning struct {
	TripletID uuid.UUID `json:"triplet_id"`
	Reason    string    `json:"reason"`
}

// Graph is a read-optimized projection of the canonical store and event log.
// It owns no entity beyond the lifetime of a build.
type Graph struct {
	Nodes    map[uuid.UUID]Node
	Edges    map[EdgeKey]*Edge
	Warnings []Warning
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[uuid.UUID]Node),
		Edges: make(map[EdgeKey]*Edge),
	}
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of distinct edge keys.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// AttestationCount returns the total number of attestations across all edges.
func (g *Graph) AttestationCount() int {
	total := 0
	for _, e := range g.Edges {
		total += len(e.Attestations)
	}
	return total
}

// OutEdges returns the edges originating at the given node, ordered by
// target id then predicate for deterministic iteration.
func (g *Graph) OutEdges(id uuid.UUID) []*Edge {
	var out []*Edge
	for key, e := range g.Edges {
		if key.Source == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.Target != b.Target {
			return a.Target.String() < b.Target.String()
		}
		return a.Predicate < b.Predicate
	})
	return out
}

// FindNodeByName returns the first node whose name matches, ignoring case.
func (g *Graph) FindNodeByName(name string) (Node, bool) {
	for _, node := range g.Nodes {
		if strings.EqualFold(node.Name, name) {
			return node, true
		}
	}
	return Node{}, false
}

// Degree returns the number of edge keys touching each node.
func (g *Graph) Degree() map[uuid.UUID]int {
	degrees := make(map[uuid.UUID]int, len(g.Nodes))
	for id := range g.Nodes {
		degrees[id] = 0
	}
	for key := range g.Edges {
		degrees[key.Source]++
		degrees[key.Target]++
	}
	return degrees
}

// TopByDegree returns the k most connected nodes, most connected first.
func (g *Graph) TopByDegree(k int) []Node {
	degrees := g.Degree()
	items := make([]utils.ScoredItem[uuid.UUID], 0, len(degrees))
	for id, degree := range degrees {
		items = append(items, utils.ScoredItem[uuid.UUID]{Item: id, Score: float64(degree)})
	}

	top := utils.TopKByScore(items, k)
	nodes := make([]Node, 0, len(top))
	for _, item := range top {
		nodes = append(nodes, g.Nodes[item.Item])
	}
	return nodes
}

// ActiveAt returns the projection of the graph as believed true at time t:
// every node, plus the edges having at least one attestation whose validity
// interval covers t, carrying only those attestations.
func (g *Graph) ActiveAt(t time.Time) *Graph {
	snapshot := NewGraph()
	for id, node := range g.Nodes {
		snapshot.Nodes[id] = node
	}

	for key, edge := range g.Edges {
		var active []Attestation
		for _, a := range edge.Attestations {
			if a.ActiveAt(t) {
				active = append(active, a)
			}
		}
		if len(active) > 0 {
			snapshot.Edges[key] = &Edge{Key: key, Attestations: active}
		}
	}
	return snapshot
}
