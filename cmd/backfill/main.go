package main

import (
	"context"
	"os"
	"strconv"

	"github.com/findrightpeople/worker/internal/config"
	"github.com/findrightpeople/worker/internal/domain/graphModels"
	"github.com/findrightpeople/worker/internal/extract"
	"github.com/findrightpeople/worker/internal/graphdb/neo4jDB"
	"github.com/findrightpeople/worker/pkg/logger_i"
)

// Re-runs person extraction over every stored chunk. Useful after the
// extraction rules change, since ingestion only extracts at write time.
func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("backfill")

	pageSize := config.BackfillPageSizeLimit
	if v := os.Getenv("BACKFILL_LIMIT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			logger.Error("BACKFILL_LIMIT must be a positive integer", "value", v)
			os.Exit(1)
		}
		pageSize = parsed
	}

	ctx := context.Background()
	graphDB, err := neo4jDB.NewClient(ctx)
	if err != nil {
		logger.Error("Neo4j is unreachable. Shutting down.", "error", err)
		os.Exit(1)
	}
	defer graphDB.Close(ctx)

	extractor := extract.NewNaivePersons()

	var (
		scanned   int
		mentioned int
		failed    int
	)

	for skip := 0; ; skip += pageSize {
		page, err := graphDB.ChunkPage(ctx, skip, pageSize)
		if err != nil {
			logger.Error("Chunk page read failed", "skip", skip, "error", err)
			os.Exit(1)
		}
		if len(page) == 0 {
			break
		}

		for _, chunk := range page {
			scanned++

			names := extractor.Extract(chunk.Text)
			persons := make([]graphModels.Person, 0, len(names))
			for _, name := range names {
				if id := extract.PersonId(name); id != "" {
					persons = append(persons, graphModels.Person{Id: id, Name: name})
				}
			}

			if len(persons) > 0 {
				if err := graphDB.UpsertPersonsAndMentions(ctx, chunk.Id, persons); err != nil {
					logger.Error("Mentions upsert failed", "chunkId", chunk.Id, "error", err)
					failed++
					continue
				}
				mentioned++
			}

			if scanned%100 == 0 {
				logger.Info("Backfill progress", "scanned", scanned, "withMentions", mentioned, "failed", failed)
			}
		}
	}

	counts, err := graphDB.CountPersons(ctx)
	if err != nil {
		logger.Error("Could not read final counts", "error", err)
		os.Exit(1)
	}
	logger.Info("Backfill complete",
		"scanned", scanned,
		"withMentions", mentioned,
		"failed", failed,
		"persons", counts.Persons,
		"mentions", counts.Mentions)
}
