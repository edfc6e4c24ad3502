package ingest_test

import (
	"context"
	"sync"

	"github.com/findrightpeople/worker/internal/domain/graphModels"
	"github.com/findrightpeople/worker/internal/graphdb"
)

// MockReader implements ingest.ContentReader
type MockReader struct {
	OnReadText func(relPath string) (string, bool)
}

func (m *MockReader) ReadText(relPath string) (string, bool) {
	if m.OnReadText != nil {
		return m.OnReadText(relPath)
	}
	return "", false
}

func (m *MockReader) SupportedExtensions() []string {
	return []string{".txt", ".md", ".csv", ".pdf"}
}

// MockExtractor implements extract.Extractor
type MockExtractor struct {
	OnExtract func(text string) []string
}

func (m *MockExtractor) Extract(text string) []string {
	if m.OnExtract != nil {
		return m.OnExtract(text)
	}
	return nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{0.1}, nil
}

// MockGraph implements graphdb.Store and records what was written
type MockGraph struct {
	mu sync.Mutex

	OnUpsertDocument func(ctx context.Context, doc graphModels.Document) error
	OnUpsertChunk    func(ctx context.Context, chunk graphModels.Chunk) error
	OnUpsertMentions func(ctx context.Context, chunkId string, persons []graphModels.Person) error

	Documents []graphModels.Document
	Chunks    []graphModels.Chunk
	Mentions  map[string][]graphModels.Person
}

func (m *MockGraph) EnsureSchema(ctx context.Context) error { return nil }

func (m *MockGraph) UpsertDocument(ctx context.Context, doc graphModels.Document) error {
	if m.OnUpsertDocument != nil {
		if err := m.OnUpsertDocument(ctx, doc); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Documents = append(m.Documents, doc)
	return nil
}

func (m *MockGraph) UpsertChunk(ctx context.Context, chunk graphModels.Chunk) error {
	if m.OnUpsertChunk != nil {
		if err := m.OnUpsertChunk(ctx, chunk); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Chunks = append(m.Chunks, chunk)
	return nil
}

func (m *MockGraph) UpsertPersonsAndMentions(ctx context.Context, chunkId string, persons []graphModels.Person) error {
	if m.OnUpsertMentions != nil {
		if err := m.OnUpsertMentions(ctx, chunkId, persons); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Mentions == nil {
		m.Mentions = make(map[string][]graphModels.Person)
	}
	m.Mentions[chunkId] = append(m.Mentions[chunkId], persons...)
	return nil
}

func (m *MockGraph) ChunkPage(ctx context.Context, skip int, limit int) ([]graphdb.ChunkRecord, error) {
	return nil, nil
}

func (m *MockGraph) CountPersons(ctx context.Context) (graphdb.PersonCounts, error) {
	return graphdb.PersonCounts{}, nil
}

func (m *MockGraph) CleanupNonPersons(ctx context.Context) (int64, error) { return 0, nil }

func (m *MockGraph) Close(ctx context.Context) error { return nil }
