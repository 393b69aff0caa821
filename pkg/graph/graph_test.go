package graph_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph/pkg/graph"
	"github.com/soundprediction/chronograph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegreeAndTopByDegree(t *testing.T) {
	g := graph.NewGraph()

	hub := graph.Node{ID: uuid.New(), Name: "AMD", Type: "Organization"}
	a := graph.Node{ID: uuid.New(), Name: "Lisa Su", Type: "Person"}
	b := graph.Node{ID: uuid.New(), Name: "Ryzen", Type: "Product"}
	for _, n := range []graph.Node{hub, a, b} {
		g.Nodes[n.ID] = n
	}

	addEdge := func(src, dst uuid.UUID, pred types.Predicate) {
		key := graph.EdgeKey{Source: src, Target: dst, Predicate: pred}
		g.Edges[key] = &graph.Edge{Key: key, Attestations: []graph.Attestation{{Statement: "x"}}}
	}
	addEdge(a.ID, hub.ID, types.PredicateHoldsRole)
	addEdge(hub.ID, b.ID, types.PredicateProduces)

	degrees := g.Degree()
	assert.Equal(t, 2, degrees[hub.ID])
	assert.Equal(t, 1, degrees[a.ID])
	assert.Equal(t, 1, degrees[b.ID])

	top := g.TopByDegree(1)
	require.Len(t, top, 1)
	assert.Equal(t, hub.ID, top[0].ID)
}

func TestFindNodeByNameIsCaseInsensitive(t *testing.T) {
	g := graph.NewGraph()
	node := graph.Node{ID: uuid.New(), Name: "Lisa Su", Type: "Person"}
	g.Nodes[node.ID] = node

	found, ok := g.FindNodeByName("LISA SU")
	require.True(t, ok)
	assert.Equal(t, node.ID, found.ID)

	_, ok = g.FindNodeByName("Jensen Huang")
	assert.False(t, ok)
}
