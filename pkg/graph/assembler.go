package graph

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph/pkg/types"
)

// Assemble folds canonical entities, reindexed triplets, and invalidation
// results into a graph. It is a pure function of its inputs: re-running it on
// the same entities, triplets, and events produces an isomorphic graph.
//
// Entities unreferenced by any triplet are still added as isolated nodes;
// they may gain edges in a future batch. Triplets with no owning event or
// with endpoints missing from the node set are skipped with a warning, never
// a hard error.
func Assemble(entities []types.CanonicalEntity, triplets []types.Triplet, events []*types.TemporalEvent) *Graph {
	g := NewGraph()

	for _, entity := range entities {
		g.Nodes[entity.ID] = Node{
			ID:          entity.ID,
			Name:        entity.Name,
			Type:        entity.Type,
			Description: entity.Description,
		}
	}

	eventForTriplet := make(map[uuid.UUID]*types.TemporalEvent)
	for _, event := range events {
		for _, tripletID := range event.TripletIDs {
			eventForTriplet[tripletID] = event
		}
	}

	for _, triplet := range triplets {
		owner, ok := eventForTriplet[triplet.ID]
		if !ok {
			g.Warnings = append(g.Warnings, Warning{
				TripletID: triplet.ID,
				Reason:    "no owning event",
			})
			continue
		}

		if _, ok := g.Nodes[triplet.SubjectID]; !ok {
			g.Warnings = append(g.Warnings, Warning{
				TripletID: triplet.ID,
				Reason:    fmt.Sprintf("subject %s not in node set", triplet.SubjectID),
			})
			continue
		}
		if _, ok := g.Nodes[triplet.ObjectID]; !ok {
			g.Warnings = append(g.Warnings, Warning{
				TripletID: triplet.ID,
				Reason:    fmt.Sprintf("object %s not in node set", triplet.ObjectID),
			})
			continue
		}

		key := EdgeKey{
			Source:    triplet.SubjectID,
			Target:    triplet.ObjectID,
			Predicate: triplet.Predicate,
		}
		attestation := Attestation{
			Statement:     owner.Statement,
			StatementType: owner.StatementType,
			ValidAt:       owner.ValidAt,
			InvalidAt:     owner.InvalidAt,
			Value:         triplet.Value,
		}

		// Same key twice means the relationship evolved: append, never
		// overwrite.
		if edge, ok := g.Edges[key]; ok {
			edge.Attestations = append(edge.Attestations, attestation)
		} else {
			g.Edges[key] = &Edge{Key: key, Attestations: []Attestation{attestation}}
		}
	}

	return g
}
