package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lumina-ai/lumina/internal/vectorstore"
)

// NoContextPlaceholder is injected into the prompt when retrieval yields
// nothing usable.
const NoContextPlaceholder = "No relevant context available"

// EmbedFailure marks a retrieval error that happened while embedding the
// query, before the store was consulted. Callers must fail the operation on
// it rather than degrade to an empty context.
type EmbedFailure struct {
	Err error
}

func (e *EmbedFailure) Error() string {
	return fmt.Sprintf("embedding query: %v", e.Err)
}

func (e *EmbedFailure) Unwrap() error { return e.Err }

// IsEmbedFailure reports whether err originated in query embedding.
func IsEmbedFailure(err error) bool {
	var f *EmbedFailure
	return errors.As(err, &f)
}

// Embedder is the slice of the embedding service retrieval needs.
type Embedder interface {
	EmbedDense(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSparseQuery(text string) map[uint32]float32
}

// Retriever runs hybrid similarity search over the tenant's knowledge base.
type Retriever struct {
	embedder Embedder
	vectors  vectorstore.Store
	topK     int
}

func New(embedder Embedder, vectors vectorstore.Store, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{embedder: embedder, vectors: vectors, topK: topK}
}

// Retrieve embeds message and queries the store restricted to clientID.
func (r *Retriever) Retrieve(ctx context.Context, message, clientID string) ([]vectorstore.Match, error) {
	dense, err := r.embedder.EmbedDense(ctx, []string{message})
	if err != nil {
		return nil, &EmbedFailure{Err: err}
	}
	matches, err := r.vectors.Query(ctx, vectorstore.Query{
		Dense:    dense[0],
		Sparse:   r.embedder.EmbedSparseQuery(message),
		Text:     message,
		TopK:     r.topK,
		ClientID: clientID,
	})
	if err != nil {
		return nil, fmt.Errorf("querying vector store: %w", err)
	}
	return matches, nil
}

// FormatContext renders matches as a bulleted source block for the system
// prompt, or the placeholder when there is nothing to cite.
func FormatContext(matches []vectorstore.Match) string {
	var lines []string
	for _, m := range matches {
		text := strings.TrimSpace(m.Metadata.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- [Source: %s] %s", m.Metadata.URL, text))
	}
	if len(lines) == 0 {
		return NoContextPlaceholder
	}
	return strings.Join(lines, "\n")
}
