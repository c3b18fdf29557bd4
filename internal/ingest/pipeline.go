package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lumina-ai/lumina/internal/chunker"
	"github.com/lumina-ai/lumina/internal/extract"
	"github.com/lumina-ai/lumina/internal/metrics"
	"github.com/lumina-ai/lumina/internal/vectorstore"
	"github.com/lumina-ai/lumina/tools/web_fetch"
)

// Embedder is the slice of the embedding service the pipeline needs.
type Embedder interface {
	EmbedDense(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSparse(text string) map[uint32]float32
}

// Result summarizes a completed ingestion.
type Result struct {
	Success     bool   `json:"success"`
	URL         string `json:"url"`
	ChunkCount  int    `json:"chunk_count"`
	StoredCount int    `json:"stored_count"`
}

// Pipeline turns a URL into tenant-tagged chunks in the hybrid store:
// fetch, extract, chunk, embed, upsert. Any stage failure aborts the whole
// run with nothing stored.
type Pipeline struct {
	fetcher  web_fetch.Fetcher
	splitter *chunker.Splitter
	embedder Embedder
	vectors  vectorstore.Store
	logger   *log.Logger
}

func NewPipeline(fetcher web_fetch.Fetcher, splitter *chunker.Splitter, embedder Embedder, vectors vectorstore.Store, logger *log.Logger) (*Pipeline, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher required")
	}
	if splitter == nil {
		return nil, errors.New("splitter required")
	}
	if embedder == nil {
		return nil, errors.New("embedder required")
	}
	if vectors == nil {
		return nil, errors.New("vector store required")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[INGEST] ", log.LstdFlags)
	}
	return &Pipeline{
		fetcher:  fetcher,
		splitter: splitter,
		embedder: embedder,
		vectors:  vectors,
		logger:   logger,
	}, nil
}

// IngestURL fetches, normalizes, chunks, embeds, and stores the page at url
// for the given tenant. Chunk ids derive from the URL and chunk index, so
// re-ingesting a URL overwrites prior entries instead of duplicating them.
func (p *Pipeline) IngestURL(ctx context.Context, url, clientID string) (Result, error) {
	if strings.TrimSpace(clientID) == "" {
		return Result{URL: url}, vectorstore.ErrClientIDRequired
	}

	res, err := p.ingest(ctx, url, clientID)
	if err != nil {
		metrics.IngestsTotal.WithLabelValues(string(ReasonOf(err))).Inc()
		return res, err
	}
	metrics.IngestsTotal.WithLabelValues("ok").Inc()
	metrics.ChunksStored.Add(float64(res.StoredCount))
	return res, nil
}

func (p *Pipeline) ingest(ctx context.Context, url, clientID string) (Result, error) {
	result := Result{URL: url}

	html, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return result, fail(ReasonFetch, err)
	}

	text := extract.Text(html, url)
	if text == "" {
		return result, fail(ReasonExtract, errors.New("no text extracted"))
	}

	chunks := p.splitter.Split(text)
	if len(chunks) == 0 {
		return result, fail(ReasonExtract, errors.New("no chunks produced"))
	}
	result.ChunkCount = len(chunks)
	p.logger.Printf("generated %d chunks for %s", len(chunks), url)

	dense, err := p.embedder.EmbedDense(ctx, chunks)
	if err != nil {
		return result, fail(ReasonEmbed, err)
	}

	vectors := make([]vectorstore.Vector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = vectorstore.Vector{
			ID:     ChunkID(url, i),
			Values: dense[i],
			Sparse: p.embedder.EmbedSparse(chunk),
			Metadata: vectorstore.Metadata{
				ClientID:   clientID,
				URL:        url,
				ChunkIndex: i,
				Text:       chunk,
			},
		}
	}

	stored, err := p.vectors.Upsert(ctx, vectors)
	if err != nil {
		return result, fail(ReasonStore, err)
	}
	result.StoredCount = stored
	result.Success = true
	return result, nil
}

// ChunkID is the stable identifier for chunk i of url.
func ChunkID(url string, i int) string {
	return fmt.Sprintf("%s_%d", url, i)
}
