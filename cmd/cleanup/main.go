package main

import (
	"context"
	"os"

	"github.com/findrightpeople/worker/internal/graphdb/neo4jDB"
	"github.com/findrightpeople/worker/pkg/logger_i"
)

// One-shot maintenance pass that deletes Person nodes the extraction
// heuristics should never have admitted, along with their mention edges.
func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("cleanup")

	ctx := context.Background()
	graphDB, err := neo4jDB.NewClient(ctx)
	if err != nil {
		logger.Error("Neo4j is unreachable. Shutting down.", "error", err)
		os.Exit(1)
	}
	defer graphDB.Close(ctx)

	before, err := graphDB.CountPersons(ctx)
	if err != nil {
		logger.Error("Could not count persons", "error", err)
		os.Exit(1)
	}
	logger.Info("Before cleanup", "persons", before.Persons, "mentions", before.Mentions)

	deleted, err := graphDB.CleanupNonPersons(ctx)
	if err != nil {
		logger.Error("Cleanup failed", "error", err)
		os.Exit(1)
	}

	after, err := graphDB.CountPersons(ctx)
	if err != nil {
		logger.Error("Could not count persons", "error", err)
		os.Exit(1)
	}
	logger.Info("Cleanup complete",
		"deleted", deleted,
		"persons", after.Persons,
		"mentions", after.Mentions)
}
