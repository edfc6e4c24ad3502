package neo4jDB

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/findrightpeople/worker/internal/config"
	"github.com/findrightpeople/worker/internal/domain/graphModels"
	"github.com/findrightpeople/worker/internal/graphdb"
	"github.com/findrightpeople/worker/pkg/logger_i"
)

var logger *logger_i.Logger

// ClientHolder owns the driver handle. It is created once in main and closed
// on shutdown; no package-level connection state. The configured URI scheme
// is authoritative - there is no silent routing or TLS downgrade chain, an
// operator who needs self-signed certs sets a +ssc scheme explicitly.
type ClientHolder struct {
	driver neo4j.DriverWithContext
}

func NewClient(ctx context.Context) (*ClientHolder, error) {
	logger = logger_i.NewLogger("Neo4j")

	uri := config.Neo4jURI()
	user := config.Neo4jUser()
	password := config.Neo4jPassword()
	if uri == "" || user == "" || password == "" {
		return nil, errors.New("neo4j env incomplete: NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD are required")
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}

	verifyCtx, cancel := context.WithTimeout(ctx, config.Neo4jConnectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}

	logger.Info("Connected to Neo4j", "uri", uri)
	return &ClientHolder{driver: driver}, nil
}

func (db *ClientHolder) Close(ctx context.Context) error {
	logger.Info("Shutting down Neo4j driver")
	return db.driver.Close(ctx)
}

func (db *ClientHolder) run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, db.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(config.Neo4jDatabase))
}

// EnsureSchema installs the uniqueness constraints the merge-by-id semantics
// rely on. Safe to run on every startup.
func (db *ClientHolder) EnsureSchema(ctx context.Context) error {
	constraints := []string{
		"CREATE CONSTRAINT document_id IF NOT EXISTS FOR (d:Document) REQUIRE d.id IS UNIQUE",
		"CREATE CONSTRAINT chunk_id IF NOT EXISTS FOR (c:Chunk) REQUIRE c.id IS UNIQUE",
		"CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE",
	}
	for _, stmt := range constraints {
		if _, err := db.run(ctx, stmt, nil); err != nil {
			return err
		}
	}
	logger.Info("Graph schema constraints ensured")
	return nil
}

const upsertDocumentCypher = `
MERGE (d:Document {id: $docId})
  ON CREATE SET
    d.path = $path,
    d.mime = $mime,
    d.bytes = $bytes,
    d.createdAt = datetime(),
    d.status = coalesce($status, 'pending')
  ON MATCH SET
    d.path = coalesce($path, d.path),
    d.mime = coalesce($mime, d.mime),
    d.bytes = coalesce($bytes, d.bytes),
    d.updatedAt = datetime(),
    d.status = coalesce($status, d.status)
RETURN d.id AS id`

func (db *ClientHolder) UpsertDocument(ctx context.Context, doc graphModels.Document) error {
	params := map[string]any{
		"docId":  doc.Id,
		"path":   nullable(doc.Path),
		"mime":   nullable(doc.Mime),
		"bytes":  doc.Bytes,
		"status": nullable(doc.Status),
	}
	_, err := db.run(ctx, upsertDocumentCypher, params)
	return err
}

const upsertChunkCypher = `
MERGE (c:Chunk {id: $chunkId})
  ON CREATE SET
    c.text = $text,
    c.embedding = $embedding,
    c.` + "`order`" + ` = $order,
    c.tokens = $tokens,
    c.section = $section,
    c.page = $page,
    c.createdAt = datetime()
  ON MATCH SET
    c.text = $text,
    c.embedding = $embedding,
    c.` + "`order`" + ` = $order,
    c.tokens = $tokens,
    c.section = $section,
    c.page = $page,
    c.updatedAt = datetime()
WITH c
MATCH (d:Document {id: $docId})
MERGE (c)-[:CHUNK_OF]->(d)
RETURN c.id AS id`

// UpsertChunk fully overwrites mutable fields so re-ingestion with a
// different embedding model replaces vectors wholesale, and guarantees the
// CHUNK_OF edge without duplicating it.
func (db *ClientHolder) UpsertChunk(ctx context.Context, chunk graphModels.Chunk) error {
	embedding := make([]any, len(chunk.Embedding))
	for i, v := range chunk.Embedding {
		embedding[i] = float64(v)
	}

	var section any
	if chunk.Section != nil {
		section = *chunk.Section
	}
	var page any
	if chunk.Page != nil {
		page = *chunk.Page
	}

	params := map[string]any{
		"chunkId":   chunk.Id,
		"docId":     chunk.DocId,
		"text":      chunk.Text,
		"embedding": embedding,
		"order":     chunk.Order,
		"tokens":    chunk.Tokens,
		"section":   section,
		"page":      page,
	}
	_, err := db.run(ctx, upsertChunkCypher, params)
	return err
}

const upsertPersonsAndMentionsCypher = `
UNWIND $persons AS p
MERGE (person:Person {id: p.id})
  ON CREATE SET
    person.name = p.name,
    person.createdAt = datetime()
  ON MATCH SET
    person.name = coalesce(person.name, p.name),
    person.updatedAt = datetime()
WITH person
MATCH (c:Chunk {id: $chunkId})
MERGE (c)-[:MENTIONS]->(person)`

// UpsertPersonsAndMentions creates missing Person nodes (never overwriting an
// existing display name) and the MENTIONS edges from the chunk. No-op on an
// empty batch.
func (db *ClientHolder) UpsertPersonsAndMentions(ctx context.Context, chunkId string, persons []graphModels.Person) error {
	if len(persons) == 0 {
		return nil
	}
	batch := make([]map[string]any, 0, len(persons))
	for _, p := range persons {
		batch = append(batch, map[string]any{"id": p.Id, "name": p.Name})
	}
	_, err := db.run(ctx, upsertPersonsAndMentionsCypher, map[string]any{
		"chunkId": chunkId,
		"persons": batch,
	})
	return err
}

const chunkPageCypher = `
MATCH (c:Chunk)
RETURN c.id AS id, c.text AS text
SKIP $skip LIMIT $limit`

func (db *ClientHolder) ChunkPage(ctx context.Context, skip int, limit int) ([]graphdb.ChunkRecord, error) {
	res, err := db.run(ctx, chunkPageCypher, map[string]any{"skip": skip, "limit": limit})
	if err != nil {
		return nil, err
	}
	out := make([]graphdb.ChunkRecord, 0, len(res.Records))
	for _, rec := range res.Records {
		row := rec.AsMap()
		id, _ := row["id"].(string)
		text, _ := row["text"].(string)
		out = append(out, graphdb.ChunkRecord{Id: id, Text: text})
	}
	return out, nil
}

func (db *ClientHolder) CountPersons(ctx context.Context) (graphdb.PersonCounts, error) {
	var counts graphdb.PersonCounts

	res, err := db.run(ctx, "MATCH (p:Person) RETURN count(p) AS c", nil)
	if err != nil {
		return counts, err
	}
	if len(res.Records) > 0 {
		counts.Persons, _ = res.Records[0].AsMap()["c"].(int64)
	}

	res, err = db.run(ctx, "MATCH (:Chunk)-[r:MENTIONS]->(:Person) RETURN count(r) AS c", nil)
	if err != nil {
		return counts, err
	}
	if len(res.Records) > 0 {
		counts.Mentions, _ = res.Records[0].AsMap()["c"].(int64)
	}
	return counts, nil
}

const cleanupCypher = `
MATCH (p:Person)
WITH p, split(coalesce(p.name, " "), " ") AS parts, toLower(coalesce(p.name, "")) AS lname
WHERE p.name IS NULL
   OR size(parts) < 2 OR size(parts) > 4
   OR lname IN $banned
   OR parts[-1] IN $suffixes
   OR any(x IN parts WHERE size(x) > 20)
DETACH DELETE p
RETURN count(p) AS deleted`

var cleanupBannedTerms = []any{
	"computer science", "software engineering", "data structures",
	"advanced algorithms", "network security", "machine learning",
	"google cloud", "magna cum laude", "cum laude",
}

var cleanupBannedSuffixes = []any{
	"Science", "Engineering", "Algorithms", "Structures",
	"Security", "Cloud", "Learning", "Laude",
}

// CleanupNonPersons deletes Person nodes whose names fail the person-shape
// heuristics, detaching their mention edges. Returns how many were removed.
func (db *ClientHolder) CleanupNonPersons(ctx context.Context) (int64, error) {
	res, err := db.run(ctx, cleanupCypher, map[string]any{
		"banned":   cleanupBannedTerms,
		"suffixes": cleanupBannedSuffixes,
	})
	if err != nil {
		return 0, err
	}
	if len(res.Records) == 0 {
		return 0, nil
	}
	deleted, _ := res.Records[0].AsMap()["deleted"].(int64)
	return deleted, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
