package graphdb

import (
	"context"

	"github.com/findrightpeople/worker/internal/domain/graphModels"
)

// ChunkRecord is the projection used when paging stored chunks back out, for
// the mention backfill.
type ChunkRecord struct {
	Id   string
	Text string
}

// Counts of the person subgraph, reported around destructive maintenance.
type PersonCounts struct {
	Persons  int64
	Mentions int64
}

// Store is the idempotent upsert surface over the graph. Every operation is
// merge-by-id: calling it twice with identical input leaves the same node and
// edge set, refreshing only update timestamps.
type Store interface {
	EnsureSchema(ctx context.Context) error

	UpsertDocument(ctx context.Context, doc graphModels.Document) error
	UpsertChunk(ctx context.Context, chunk graphModels.Chunk) error
	UpsertPersonsAndMentions(ctx context.Context, chunkId string, persons []graphModels.Person) error

	ChunkPage(ctx context.Context, skip int, limit int) ([]ChunkRecord, error)
	CountPersons(ctx context.Context) (PersonCounts, error)
	CleanupNonPersons(ctx context.Context) (int64, error)

	Close(ctx context.Context) error
}
