package ingest_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/findrightpeople/worker/internal/config"
	"github.com/findrightpeople/worker/internal/domain/graphModels"
	"github.com/findrightpeople/worker/internal/domain/jobModel"
	"github.com/findrightpeople/worker/internal/ingest"
)

func testContext() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

// chunk window of 8 chars with forced advance, so fileOfChunks(n) yields
// exactly n chunks
var smallChunks = jobModel.ChunkOptions{ChunkTokens: 2, OverlapTokens: 2, MinTokens: 1}

func fileOfChunks(n int) string {
	return strings.Repeat("abcdefgh", n)
}

func TestProcessIngestJob_Success(t *testing.T) {
	reader := &MockReader{
		OnReadText: func(relPath string) (string, bool) { return fileOfChunks(3), true },
	}
	graph := &MockGraph{}

	s := ingest.NewService(reader, &MockExtractor{}, &MockEmbedder{}, graph)
	result := s.ProcessIngestJob(testContext(), jobModel.Job{
		Id:      "job-1",
		Files:   []jobModel.FileRef{{Path: "resume.txt"}},
		Options: smallChunks,
	})

	if result.Status != jobModel.JobStatusComplete {
		t.Errorf("Status got %v, want %v", result.Status, jobModel.JobStatusComplete)
	}
	if result.CurrentStep != jobModel.IngestFinalized {
		t.Errorf("Step got %v, want %v", result.CurrentStep, jobModel.IngestFinalized)
	}
	if result.Summary.Documents != 1 || result.Summary.Chunks != 3 {
		t.Errorf("Summary got %+v, want 1 document and 3 chunks", result.Summary)
	}
	if len(graph.Chunks) != 3 {
		t.Fatalf("Upserted chunks got %d, want 3", len(graph.Chunks))
	}

	// same doc id everywhere, orders gap-free, ids stable
	docId := ingest.DocumentId([]byte(fileOfChunks(3)))
	for i, c := range graph.Chunks {
		if c.DocId != docId {
			t.Errorf("Chunk %d docId got %s, want %s", i, c.DocId, docId)
		}
		if c.Order != i {
			t.Errorf("Chunk %d order got %d", i, c.Order)
		}
		if c.Id != ingest.ChunkId(docId, c.Order, c.Text) {
			t.Errorf("Chunk %d id is not derived from doc, order and text", i)
		}
	}

	// document transitions processing -> ingested
	last := graph.Documents[len(graph.Documents)-1]
	if last.Status != graphModels.DocStatusIngested {
		t.Errorf("Final document status got %s, want %s", last.Status, graphModels.DocStatusIngested)
	}
}

func TestProcessIngestJob_BatchFailureIsolation(t *testing.T) {
	// 130 chunks make three batches of 64, 64 and 2
	reader := &MockReader{
		OnReadText: func(relPath string) (string, bool) { return fileOfChunks(130), true },
	}

	var batchCalls int32
	embedder := &MockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			if atomic.AddInt32(&batchCalls, 1) == 2 {
				return nil, errors.New("provider overloaded")
			}
			return make([][]float32, len(chunks)), nil
		},
	}
	graph := &MockGraph{}

	s := ingest.NewService(reader, &MockExtractor{}, embedder, graph)
	result := s.ProcessIngestJob(testContext(), jobModel.Job{
		Id:      "job-batches",
		Files:   []jobModel.FileRef{{Path: "big.txt"}},
		Options: smallChunks,
	})

	if result.Status != jobModel.JobStatusComplete {
		t.Errorf("A failed batch must not fail the job, status got %v", result.Status)
	}
	if result.Summary.FailedBatches != 1 {
		t.Errorf("FailedBatches got %d, want 1", result.Summary.FailedBatches)
	}
	if result.Summary.Chunks != 66 {
		t.Errorf("Chunks got %d, want 66 (64 + 2 surviving batches)", result.Summary.Chunks)
	}
	if result.Summary.Documents != 1 {
		t.Errorf("Documents got %d, want 1, the document still finalizes", result.Summary.Documents)
	}
}

func TestProcessIngestJob_CountMismatchDropsBatch(t *testing.T) {
	reader := &MockReader{
		OnReadText: func(relPath string) (string, bool) { return fileOfChunks(3), true },
	}
	embedder := &MockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return make([][]float32, len(chunks)-1), nil
		},
	}
	graph := &MockGraph{}

	s := ingest.NewService(reader, &MockExtractor{}, embedder, graph)
	result := s.ProcessIngestJob(testContext(), jobModel.Job{
		Id:      "job-mismatch",
		Files:   []jobModel.FileRef{{Path: "f.txt"}},
		Options: smallChunks,
	})

	if result.Summary.FailedBatches != 1 || result.Summary.Chunks != 0 {
		t.Errorf("Summary got %+v, want the whole batch dropped", result.Summary)
	}
	if len(graph.Chunks) != 0 {
		t.Errorf("No chunks should be upserted on a count mismatch, got %d", len(graph.Chunks))
	}
}

func TestProcessIngestJob_SkipsUnreadableFile(t *testing.T) {
	reader := &MockReader{
		OnReadText: func(relPath string) (string, bool) {
			if relPath == "bad.bin" {
				return "", false
			}
			return fileOfChunks(2), true
		},
	}
	graph := &MockGraph{}

	s := ingest.NewService(reader, &MockExtractor{}, &MockEmbedder{}, graph)
	result := s.ProcessIngestJob(testContext(), jobModel.Job{
		Id:      "job-skip",
		Files:   []jobModel.FileRef{{Path: "bad.bin"}, {Path: "good.txt"}},
		Options: smallChunks,
	})

	if result.Summary.SkippedFiles != 1 {
		t.Errorf("SkippedFiles got %d, want 1", result.Summary.SkippedFiles)
	}
	if result.Summary.Documents != 1 || result.Summary.Chunks != 2 {
		t.Errorf("Summary got %+v, the readable file should still ingest", result.Summary)
	}
	if result.Status != jobModel.JobStatusComplete {
		t.Errorf("Status got %v, want %v", result.Status, jobModel.JobStatusComplete)
	}
}

func TestProcessIngestJob_ShortFileFinalizesWithZeroChunks(t *testing.T) {
	// default minimum is 80 tokens, "tiny" never qualifies
	reader := &MockReader{
		OnReadText: func(relPath string) (string, bool) { return "tiny", true },
	}
	graph := &MockGraph{}

	s := ingest.NewService(reader, &MockExtractor{}, &MockEmbedder{}, graph)
	result := s.ProcessIngestJob(testContext(), jobModel.Job{
		Id:    "job-tiny",
		Files: []jobModel.FileRef{{Path: "tiny.txt"}},
	})

	if result.Summary.Documents != 1 || result.Summary.Chunks != 0 {
		t.Errorf("Summary got %+v, want 1 document and 0 chunks", result.Summary)
	}
	last := graph.Documents[len(graph.Documents)-1]
	if last.Status != graphModels.DocStatusIngested {
		t.Errorf("Document must still finalize, status got %s", last.Status)
	}
}

func TestProcessIngestJob_DocumentUpsertFailureSkipsFile(t *testing.T) {
	reader := &MockReader{
		OnReadText: func(relPath string) (string, bool) { return fileOfChunks(2), true },
	}
	graph := &MockGraph{
		OnUpsertDocument: func(ctx context.Context, doc graphModels.Document) error {
			return errors.New("graph down")
		},
	}

	s := ingest.NewService(reader, &MockExtractor{}, &MockEmbedder{}, graph)
	result := s.ProcessIngestJob(testContext(), jobModel.Job{
		Id:      "job-graphdown",
		Files:   []jobModel.FileRef{{Path: "f.txt"}},
		Options: smallChunks,
	})

	if result.Summary.SkippedFiles != 1 || result.Summary.Documents != 0 {
		t.Errorf("Summary got %+v, want the file skipped", result.Summary)
	}
	if result.Status != jobModel.JobStatusComplete {
		t.Errorf("Status got %v, the job itself still completes", result.Status)
	}
}

func TestProcessIngestJob_MentionsWired(t *testing.T) {
	reader := &MockReader{
		OnReadText: func(relPath string) (string, bool) { return fileOfChunks(1), true },
	}
	extractor := &MockExtractor{
		OnExtract: func(text string) []string { return []string{"Jane Doe"} },
	}
	graph := &MockGraph{}

	s := ingest.NewService(reader, extractor, &MockEmbedder{}, graph)
	s.ProcessIngestJob(testContext(), jobModel.Job{
		Id:      "job-mentions",
		Files:   []jobModel.FileRef{{Path: "f.txt"}},
		Options: smallChunks,
	})

	if len(graph.Chunks) != 1 {
		t.Fatalf("Chunks got %d, want 1", len(graph.Chunks))
	}
	persons := graph.Mentions[graph.Chunks[0].Id]
	if len(persons) != 1 {
		t.Fatalf("Mentions got %d persons, want 1", len(persons))
	}
	if persons[0].Id != "jane-doe" || persons[0].Name != "Jane Doe" {
		t.Errorf("Person got %+v, want slug id jane-doe", persons[0])
	}
}

func TestProcessIngestJob_MentionFailureKeepsChunk(t *testing.T) {
	reader := &MockReader{
		OnReadText: func(relPath string) (string, bool) { return fileOfChunks(1), true },
	}
	extractor := &MockExtractor{
		OnExtract: func(text string) []string { return []string{"Jane Doe"} },
	}
	graph := &MockGraph{
		OnUpsertMentions: func(ctx context.Context, chunkId string, persons []graphModels.Person) error {
			return errors.New("edge write failed")
		},
	}

	s := ingest.NewService(reader, extractor, &MockEmbedder{}, graph)
	result := s.ProcessIngestJob(testContext(), jobModel.Job{
		Id:      "job-mention-fail",
		Files:   []jobModel.FileRef{{Path: "f.txt"}},
		Options: smallChunks,
	})

	if result.Summary.Chunks != 1 {
		t.Errorf("Chunks got %d, a mention failure must not drop the chunk", result.Summary.Chunks)
	}
	if result.Status != jobModel.JobStatusComplete {
		t.Errorf("Status got %v, want %v", result.Status, jobModel.JobStatusComplete)
	}
}

func TestIdentity_Stability(t *testing.T) {
	raw := []byte("identical content")
	if ingest.DocumentId(raw) != ingest.DocumentId([]byte("identical content")) {
		t.Error("DocumentId must be content-derived")
	}
	if len(ingest.DocumentId(raw)) != 64 {
		t.Error("DocumentId must be sha256 hex")
	}

	a := ingest.ChunkId("doc", 0, "text")
	if a != ingest.ChunkId("doc", 0, "text") {
		t.Error("ChunkId must be stable")
	}
	if a == ingest.ChunkId("doc", 1, "text") {
		t.Error("ChunkId must vary with order")
	}
	if len(a) != 40 {
		t.Error("ChunkId must be sha1 hex")
	}
}
