package embedding

import (
	"context"
	"fmt"

	"github.com/lumina-ai/lumina/provider"
)

// Embedder produces dense vectors through the configured LLM provider and
// sparse vectors through a BM25 encoder fitted once at construction.
type Embedder struct {
	provider   provider.Provider
	bm25       *BM25Encoder
	dimensions int
}

// New builds an embedder. The sparse encoder is fitted on the built-in
// reference corpus.
func New(p provider.Provider, dimensions int) (*Embedder, error) {
	if p == nil {
		return nil, fmt.Errorf("provider required")
	}
	bm25, err := NewBM25Encoder(referenceCorpus)
	if err != nil {
		return nil, fmt.Errorf("fit sparse encoder: %w", err)
	}
	return &Embedder{provider: p, bm25: bm25, dimensions: dimensions}, nil
}

// EmbedDense returns one dense vector per input text, in input order. A
// missing or empty vector in the provider's response fails the whole batch:
// callers must not proceed with partial embeddings.
func (e *Embedder) EmbedDense(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.provider.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding batch: expected %d vectors, got %d", len(texts), len(vecs))
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return nil, fmt.Errorf("embedding batch: empty vector at index %d", i)
		}
		if e.dimensions > 0 && len(v) != e.dimensions {
			return nil, fmt.Errorf("embedding batch: vector %d has %d dimensions, want %d", i, len(v), e.dimensions)
		}
	}
	return vecs, nil
}

// EmbedSparse returns BM25 document weights for text.
func (e *Embedder) EmbedSparse(text string) map[uint32]float32 {
	return e.bm25.EncodeDocument(text)
}

// EmbedSparseQuery returns BM25 query weights for text.
func (e *Embedder) EmbedSparseQuery(text string) map[uint32]float32 {
	return e.bm25.EncodeQuery(text)
}
