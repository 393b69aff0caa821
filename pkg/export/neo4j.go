// Package export persists assembled graphs to external graph databases.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/soundprediction/chronograph/pkg/graph"
)

// Neo4jExporter writes an assembled graph into a Neo4j database. Nodes merge
// on their canonical uuid, so repeated exports of overlapping graphs are
// idempotent.
type Neo4jExporter struct {
	client   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jExporter creates a new exporter connected to the given instance.
func NewNeo4jExporter(uri, username, password, database string, logger *slog.Logger) (*Neo4jExporter, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Neo4jExporter{
		client:   driver,
		database: database,
		logger:   logger,
	}, nil
}

// Export writes all nodes and attestations of g. Each attestation becomes its
// own relationship typed by its predicate, keyed by (source, target,
// statement) so re-export does not duplicate claims.
func (e *Neo4jExporter) Export(ctx context.Context, g *graph.Graph) error {
	session := e.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: e.database})
	defer session.Close(ctx)

	start := time.Now()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, node := range g.Nodes {
			query := `
				MERGE (n:Entity {uuid: $uuid})
				SET n.name = $name,
				    n.entity_type = $entity_type,
				    n.description = $description
			`
			_, err := tx.Run(ctx, query, map[string]any{
				"uuid":        node.ID.String(),
				"name":        node.Name,
				"entity_type": node.Type,
				"description": node.Description,
			})
			if err != nil {
				return nil, fmt.Errorf("merging node %s: %w", node.ID, err)
			}
		}

		for key, edge := range g.Edges {
			for _, att := range edge.Attestations {
				// Predicates come from a closed set, so interpolating the
				// relationship type is safe.
				query := fmt.Sprintf(`
					MATCH (s:Entity {uuid: $source})
					MATCH (t:Entity {uuid: $target})
					MERGE (s)-[r:%s {statement: $statement}]->(t)
					SET r.statement_type = $statement_type,
					    r.value = $value,
					    r.valid_at = $valid_at,
					    r.invalid_at = $invalid_at
				`, key.Predicate)

				params := map[string]any{
					"source":         key.Source.String(),
					"target":         key.Target.String(),
					"statement":      att.Statement,
					"statement_type": string(att.StatementType),
					"value":          att.Value,
					"valid_at":       nil,
					"invalid_at":     nil,
				}
				if att.ValidAt != nil {
					params["valid_at"] = att.ValidAt.UTC()
				}
				if att.InvalidAt != nil {
					params["invalid_at"] = att.InvalidAt.UTC()
				}

				if _, err := tx.Run(ctx, query, params); err != nil {
					return nil, fmt.Errorf("merging edge %s-[%s]->%s: %w", key.Source, key.Predicate, key.Target, err)
				}
			}
		}

		return nil, nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("graph exported to neo4j",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"attestations", g.AttestationCount(),
		"duration", time.Since(start))
	return nil
}

// Close releases the underlying driver.
func (e *Neo4jExporter) Close(ctx context.Context) error {
	return e.client.Close(ctx)
}
