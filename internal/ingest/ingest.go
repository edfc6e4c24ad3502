package ingest

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/findrightpeople/worker/internal/config"
	"github.com/findrightpeople/worker/internal/domain/graphModels"
	"github.com/findrightpeople/worker/internal/domain/jobModel"
	"github.com/findrightpeople/worker/internal/embedding"
	"github.com/findrightpeople/worker/internal/extract"
	"github.com/findrightpeople/worker/internal/graphdb"
	"github.com/findrightpeople/worker/internal/metrics"
	"github.com/findrightpeople/worker/pkg/logger_i"
)

// Service is the public contract the worker calls. The private struct below
// holds the collaborators (reader, extractor, embedder, graph) so the worker
// stays decoupled from them.
type Service interface {
	ProcessIngestJob(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	reader    ContentReader
	extractor extract.Extractor
	embedder  embedding.Embedder
	graph     graphdb.Store
	logger    *logger_i.Logger
}

func NewService(reader ContentReader, extractor extract.Extractor, embedder embedding.Embedder, graph graphdb.Store) Service {
	return &service{
		reader:    reader,
		extractor: extractor,
		embedder:  embedder,
		graph:     graph,
		logger:    logger_i.NewLogger("Ingestion"),
	}
}

// DocumentId is the SHA-256 hex of the extracted content bytes.
func DocumentId(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// ChunkId is the SHA-1 hex of "docId|order|text", stable across re-runs.
func ChunkId(docId string, order int, text string) string {
	h := sha1.New()
	h.Write([]byte(docId))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.Itoa(order)))
	h.Write([]byte("|"))
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// ProcessIngestJob runs one accepted job to completion. Every failure past
// acceptance is local: a bad file, a failed embedding batch, or a mention
// upsert error is logged and skipped, never aborting the job. Nothing
// already upserted is rolled back - idempotent re-submission is the recovery
// path.
func (s *service) ProcessIngestJob(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", job.Id)

	opts := applyDefaults(job.Options)
	log.Info("Processing ingest job", "fileCount", len(job.Files),
		"chunkTokens", opts.ChunkTokens, "overlapTokens", opts.OverlapTokens, "minTokens", opts.MinTokens)

	job.CurrentStep = jobModel.IngestFiles
	for _, f := range job.Files {
		s.processFile(ctx, log, &job, f.Path, opts)
	}

	job.CurrentStep = jobModel.IngestFinalized
	log.Info("Ingest job done",
		"documents", job.Summary.Documents,
		"chunks", job.Summary.Chunks,
		"skippedFiles", job.Summary.SkippedFiles,
		"failedBatches", job.Summary.FailedBatches)
	job.Status = jobModel.JobStatusComplete
	return job
}

func (s *service) processFile(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, relPath string, opts jobModel.ChunkOptions) {
	text, ok := s.reader.ReadText(relPath)
	if !ok || text == "" {
		log.Warn("Skipping unreadable or unsupported file", "path", relPath)
		metrics.CountSkippedFile()
		job.Summary.SkippedFiles++
		return
	}

	raw := []byte(text)
	doc := graphModels.Document{
		Id:     DocumentId(raw),
		Path:   relPath,
		Mime:   GuessMime(relPath),
		Bytes:  len(raw),
		Status: graphModels.DocStatusProcessing,
	}
	log.Debug("File text loaded", "path", relPath, "bytes", doc.Bytes, "docId", doc.Id)

	if err := s.graph.UpsertDocument(ctx, doc); err != nil {
		log.Error("Document upsert failed, skipping file", "path", relPath, "error", err)
		metrics.CountSkippedFile()
		job.Summary.SkippedFiles++
		return
	}

	chunks := Chunk(text, opts.ChunkTokens, opts.OverlapTokens, opts.MinTokens)
	if len(chunks) == 0 {
		// legitimately empty, e.g. below minimum size
		doc.Status = graphModels.DocStatusIngested
		if err := s.graph.UpsertDocument(ctx, doc); err != nil {
			log.Error("Document finalize failed", "path", relPath, "error", err)
		}
		job.Summary.Documents++
		return
	}

	job.CurrentStep = jobModel.IngestBatches
	for i := 0; i < len(chunks); i += config.EmbedBatchSize {
		end := i + config.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		s.processBatch(ctx, log, job, doc.Id, chunks[i:end])
	}

	doc.Status = graphModels.DocStatusIngested
	if err := s.graph.UpsertDocument(ctx, doc); err != nil {
		log.Error("Document finalize failed", "path", relPath, "error", err)
	}
	job.Summary.Documents++
	job.CurrentStep = jobModel.IngestFiles
}

// processBatch embeds one batch and upserts its chunks. The batch is the
// failure unit: a provider error or a count mismatch drops the whole batch
// and the job moves on to the next one.
func (s *service) processBatch(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, docId string, batch []TextChunk) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	start := time.Now()
	vectors, err := s.embedder.BatchEmbedding(ctx, texts)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))

	if err != nil || len(vectors) != len(batch) {
		log.Error("Embedding batch failed, dropping batch",
			"expected", len(batch), "got", len(vectors), "error", err)
		metrics.CountFailedBatch()
		job.Summary.FailedBatches++
		return
	}

	for i, c := range batch {
		chunk := graphModels.Chunk{
			Id:        ChunkId(docId, c.Order, c.Text),
			DocId:     docId,
			Text:      c.Text,
			Embedding: vectors[i],
			Order:     c.Order,
			Tokens:    c.Tokens,
		}
		upsertStart := time.Now()
		err := s.graph.UpsertChunk(ctx, chunk)
		metrics.CaptureExecutionMetrics("graph", time.Since(upsertStart))
		if err != nil {
			log.Error("Chunk upsert failed", "chunkId", chunk.Id, "error", err)
			continue
		}

		s.upsertMentions(ctx, log, chunk.Id, c.Text)
		job.Summary.Chunks++
	}
}

// upsertMentions never fails the chunk: extraction is best-effort and a
// mention write error is only logged.
func (s *service) upsertMentions(ctx context.Context, log *logger_i.Logger, chunkId string, text string) {
	names := s.extractor.Extract(text)
	if len(names) == 0 {
		return
	}

	persons := make([]graphModels.Person, 0, len(names))
	for _, name := range names {
		if id := extract.PersonId(name); id != "" {
			persons = append(persons, graphModels.Person{Id: id, Name: name})
		}
	}
	if len(persons) == 0 {
		return
	}

	if err := s.graph.UpsertPersonsAndMentions(ctx, chunkId, persons); err != nil {
		log.Error("Mentions upsert failed", "chunkId", chunkId, "error", err)
	}
}

func applyDefaults(opts jobModel.ChunkOptions) jobModel.ChunkOptions {
	if opts.ChunkTokens <= 0 {
		opts.ChunkTokens = config.DefaultChunkTokens
	}
	if opts.OverlapTokens <= 0 {
		opts.OverlapTokens = config.DefaultOverlapTokens
	}
	if opts.MinTokens <= 0 {
		opts.MinTokens = config.DefaultMinTokens
	}
	return opts
}
