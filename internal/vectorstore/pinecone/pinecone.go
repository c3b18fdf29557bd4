// Package pinecone is a minimal REST client for a Pinecone serverless index
// used as the hybrid vector store backend.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/lumina-ai/lumina/internal/vectorstore"
)

// Store talks to a single Pinecone index over its data-plane host.
type Store struct {
	host   string
	apiKey string
	client *http.Client
}

type Config struct {
	Host    string
	APIKey  string
	Timeout time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	host := strings.TrimRight(cfg.Host, "/")
	if !strings.HasPrefix(host, "http") {
		host = "https://" + host
	}
	return &Store{
		host:   host,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

type sparseValues struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

type wireVector struct {
	ID           string                 `json:"id"`
	Values       []float32              `json:"values"`
	SparseValues *sparseValues          `json:"sparseValues,omitempty"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// Upsert writes vectors, overwriting any existing entry with the same id.
func (s *Store) Upsert(ctx context.Context, vectors []vectorstore.Vector) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	wire := make([]wireVector, 0, len(vectors))
	for _, v := range vectors {
		if v.Metadata.ClientID == "" {
			return 0, vectorstore.ErrClientIDRequired
		}
		wire = append(wire, wireVector{
			ID:           v.ID,
			Values:       v.Values,
			SparseValues: toSparseValues(v.Sparse),
			Metadata: map[string]interface{}{
				"client_id":   v.Metadata.ClientID,
				"url":         v.Metadata.URL,
				"chunk_index": v.Metadata.ChunkIndex,
				"text":        v.Metadata.Text,
			},
		})
	}
	var resp struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	if err := s.postJSON(ctx, "/vectors/upsert", map[string]interface{}{"vectors": wire}, &resp); err != nil {
		return 0, err
	}
	if resp.UpsertedCount == 0 {
		// older index versions omit the count
		return len(wire), nil
	}
	return resp.UpsertedCount, nil
}

// Query runs a hybrid top-k search with a server-enforced equality filter on
// client_id. Sparse weights are optional.
func (s *Store) Query(ctx context.Context, q vectorstore.Query) ([]vectorstore.Match, error) {
	if q.ClientID == "" {
		return nil, vectorstore.ErrClientIDRequired
	}
	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}
	body := map[string]interface{}{
		"vector":          q.Dense,
		"topK":            topK,
		"includeMetadata": true,
		"filter":          map[string]interface{}{"client_id": map[string]interface{}{"$eq": q.ClientID}},
	}
	if sv := toSparseValues(q.Sparse); sv != nil {
		body["sparseVector"] = sv
	}

	var resp struct {
		Matches []struct {
			ID       string                 `json:"id"`
			Score    float64                `json:"score"`
			Metadata map[string]interface{} `json:"metadata"`
		} `json:"matches"`
	}
	if err := s.postJSON(ctx, "/query", body, &resp); err != nil {
		return nil, err
	}

	matches := make([]vectorstore.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, vectorstore.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: metadataFromMap(m.Metadata),
		})
	}
	return matches, nil
}

// Delete removes the given vector ids.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.postJSON(ctx, "/vectors/delete", map[string]interface{}{"ids": ids}, nil)
}

// Clear removes every vector in the index.
func (s *Store) Clear(ctx context.Context) error {
	return s.postJSON(ctx, "/vectors/delete", map[string]interface{}{"deleteAll": true}, nil)
}

// Stats returns index statistics.
func (s *Store) Stats(ctx context.Context) (vectorstore.Stats, error) {
	var resp struct {
		TotalVectorCount int     `json:"totalVectorCount"`
		Dimension        int     `json:"dimension"`
		IndexFullness    float64 `json:"indexFullness"`
	}
	if err := s.postJSON(ctx, "/describe_index_stats", map[string]interface{}{}, &resp); err != nil {
		return vectorstore.Stats{}, err
	}
	return vectorstore.Stats{
		TotalVectors:  resp.TotalVectorCount,
		Dimension:     resp.Dimension,
		IndexFullness: resp.IndexFullness,
	}, nil
}

func (s *Store) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pinecone POST %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// toSparseValues converts the index→weight map into the wire's parallel
// arrays, with indices sorted for deterministic payloads.
func toSparseValues(sparse map[uint32]float32) *sparseValues {
	if len(sparse) == 0 {
		return nil
	}
	indices := make([]uint32, 0, len(sparse))
	for idx := range sparse {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = sparse[idx]
	}
	return &sparseValues{Indices: indices, Values: values}
}

func metadataFromMap(m map[string]interface{}) vectorstore.Metadata {
	meta := vectorstore.Metadata{}
	if v, ok := m["client_id"].(string); ok {
		meta.ClientID = v
	}
	if v, ok := m["url"].(string); ok {
		meta.URL = v
	}
	if v, ok := m["chunk_index"].(float64); ok {
		meta.ChunkIndex = int(v)
	}
	if v, ok := m["text"].(string); ok {
		meta.Text = v
	}
	return meta
}
