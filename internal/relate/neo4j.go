package relate

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Neo4jGraph pushes terms and relationships into a Neo4j instance.
// Terms become (:Term {text, language, class}) nodes, relationships
// become typed edges between them. All writes are MERGE-based so
// replays are safe.
type Neo4jGraph struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jGraph connects to the configured Neo4j instance and verifies
// connectivity before returning.
func NewNeo4jGraph(ctx context.Context, cfg model.Neo4jConfig) (*Neo4jGraph, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	g := &Neo4jGraph{driver: driver}
	if err := g.ensureSchema(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return g, nil
}

func (g *Neo4jGraph) ensureSchema(ctx context.Context) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	res, err := session.Run(ctx, `CREATE CONSTRAINT term_key_unique IF NOT EXISTS FOR (t:Term) REQUIRE (t.text, t.language, t.class) IS UNIQUE`, nil)
	if err != nil {
		// Restricted users may not hold schema privileges; MERGE still
		// keeps writes idempotent without the constraint.
		return nil
	}
	_, _ = res.Consume(ctx)
	return nil
}

func (g *Neo4jGraph) MergeTerm(ctx context.Context, term *model.AggregatedTerm) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (t:Term {text: $text, language: $language, class: $class})
SET t.display_text = $display_text,
    t.frequency = $frequency,
    t.confidence = $confidence,
    t.synced_at = $synced_at
`, map[string]any{
			"text":         term.Key.Text,
			"language":     term.Key.Language,
			"class":        string(term.Key.Class),
			"display_text": term.DisplayText,
			"frequency":    term.Frequency,
			"confidence":   term.Confidence,
			"synced_at":    time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		return nil, consume(ctx, res)
	})
	if err != nil {
		return fmt.Errorf("merge term %s: %w", term.Key, err)
	}
	return nil
}

func (g *Neo4jGraph) MergeRelationship(ctx context.Context, rel model.Relationship) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	// The relationship type cannot be parameterized in Cypher; kinds
	// are a closed enum so formatting them in is safe.
	query := fmt.Sprintf(`
MATCH (a:Term {text: $from_text, language: $from_language, class: $from_class})
MATCH (b:Term {text: $to_text, language: $to_language, class: $to_class})
MERGE (a)-[e:%s]->(b)
SET e.strength = $strength,
    e.method = $method
`, rel.Kind)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"from_text":     rel.From.Text,
			"from_language": rel.From.Language,
			"from_class":    string(rel.From.Class),
			"to_text":       rel.To.Text,
			"to_language":   rel.To.Language,
			"to_class":      string(rel.To.Class),
			"strength":      rel.Strength,
			"method":        string(rel.Method),
		})
		if err != nil {
			return nil, err
		}
		return nil, consume(ctx, res)
	})
	if err != nil {
		return fmt.Errorf("merge relationship %s-[%s]->%s: %w", rel.From, rel.Kind, rel.To, err)
	}
	return nil
}

func (g *Neo4jGraph) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

func consume(ctx context.Context, res neo4j.ResultWithContext) error {
	_, err := res.Consume(ctx)
	return err
}
