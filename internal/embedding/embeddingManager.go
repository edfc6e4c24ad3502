package embedding

import "context"

// Embedder turns a batch of texts into one vector per text. Implementations
// must either return exactly len(texts) vectors or an error - never a
// silently truncated list.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
