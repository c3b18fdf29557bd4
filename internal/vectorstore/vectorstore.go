package vectorstore

import (
	"context"
	"errors"
)

// ErrClientIDRequired is returned when an operation is attempted without a
// tenant scope. Every read and write is scoped by client id.
var ErrClientIDRequired = errors.New("client id required")

// Metadata is attached to every stored vector. ClientID is the multi-tenant
// isolation boundary and must always be present.
type Metadata struct {
	ClientID   string `json:"client_id"`
	URL        string `json:"url"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

// Vector is a chunk's dense embedding plus optional sparse term weights.
type Vector struct {
	ID       string
	Values   []float32
	Sparse   map[uint32]float32
	Metadata Metadata
}

// Query is a hybrid top-k request scoped to one tenant. Sparse and Text are
// optional: a dense-only query degrades to dense ranking rather than failing.
// Text carries the raw query for lexical backends that index terms directly.
type Query struct {
	Dense    []float32
	Sparse   map[uint32]float32
	Text     string
	TopK     int
	ClientID string
}

// Match is one ranked query result.
type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// Stats describes the index contents.
type Stats struct {
	TotalVectors  int     `json:"total_vectors"`
	Dimension     int     `json:"dimension"`
	IndexFullness float64 `json:"index_fullness"`
}

// Store is the hybrid similarity index consumed by ingestion and retrieval.
// Upsert is idempotent on vector id. Query must enforce the client filter
// inside the backend, never as a client-side post-filter.
type Store interface {
	Upsert(ctx context.Context, vectors []Vector) (int, error)
	Query(ctx context.Context, q Query) ([]Match, error)
	Delete(ctx context.Context, ids []string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}
