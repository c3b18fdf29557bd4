package pinecone

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lumina-ai/lumina/internal/vectorstore"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewStore(Config{Host: srv.URL, APIKey: "test-key"})
}

func TestUpsertWireFormat(t *testing.T) {
	var captured map[string]interface{}
	_, st := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vectors/upsert" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Api-Key") != "test-key" {
			t.Error("api key header missing")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decoding upsert body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"upsertedCount": 1})
	})

	n, err := st.Upsert(context.Background(), []vectorstore.Vector{{
		ID:     "https://x.example/p_0",
		Values: []float32{0.1, 0.2},
		Sparse: map[uint32]float32{9: 0.5, 3: 0.25},
		Metadata: vectorstore.Metadata{
			ClientID:   "tenant_a",
			URL:        "https://x.example/p",
			ChunkIndex: 0,
			Text:       "chunk text",
		},
	}})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if n != 1 {
		t.Fatalf("upserted count: want 1 got %d", n)
	}

	vecs := captured["vectors"].([]interface{})
	v := vecs[0].(map[string]interface{})
	if v["id"] != "https://x.example/p_0" {
		t.Fatalf("wire id: %v", v["id"])
	}
	meta := v["metadata"].(map[string]interface{})
	if meta["client_id"] != "tenant_a" || meta["text"] != "chunk text" {
		t.Fatalf("wire metadata: %v", meta)
	}
	sv := v["sparseValues"].(map[string]interface{})
	indices := sv["indices"].([]interface{})
	if indices[0].(float64) != 3 || indices[1].(float64) != 9 {
		t.Fatalf("sparse indices not sorted: %v", indices)
	}
}

func TestUpsertRequiresClientID(t *testing.T) {
	_, st := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the index")
	})
	_, err := st.Upsert(context.Background(), []vectorstore.Vector{{ID: "a", Values: []float32{1}}})
	if err != vectorstore.ErrClientIDRequired {
		t.Fatalf("expected ErrClientIDRequired, got %v", err)
	}
}

func TestQuerySendsTenantFilter(t *testing.T) {
	var captured map[string]interface{}
	_, st := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"matches": []map[string]interface{}{{
				"id":    "m1",
				"score": 0.9,
				"metadata": map[string]interface{}{
					"client_id":   "tenant_a",
					"url":         "https://x.example/p",
					"chunk_index": float64(2),
					"text":        "match text",
				},
			}},
		})
	})

	matches, err := st.Query(context.Background(), vectorstore.Query{
		Dense:    []float32{1, 0},
		Sparse:   map[uint32]float32{5: 1},
		TopK:     3,
		ClientID: "tenant_a",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	filter := captured["filter"].(map[string]interface{})
	cid := filter["client_id"].(map[string]interface{})
	if cid["$eq"] != "tenant_a" {
		t.Fatalf("tenant filter missing: %v", captured["filter"])
	}
	if captured["topK"].(float64) != 3 {
		t.Fatalf("topK: %v", captured["topK"])
	}
	if _, ok := captured["sparseVector"]; !ok {
		t.Fatal("sparse vector not forwarded")
	}

	if len(matches) != 1 || matches[0].ID != "m1" {
		t.Fatalf("matches: %v", matches)
	}
	if matches[0].Metadata.ChunkIndex != 2 || matches[0].Metadata.Text != "match text" {
		t.Fatalf("metadata: %+v", matches[0].Metadata)
	}
}

func TestQueryRequiresClientID(t *testing.T) {
	_, st := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the index")
	})
	_, err := st.Query(context.Background(), vectorstore.Query{Dense: []float32{1}})
	if err != vectorstore.ErrClientIDRequired {
		t.Fatalf("expected ErrClientIDRequired, got %v", err)
	}
}

func TestErrorResponseSurfacesSnippet(t *testing.T) {
	_, st := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index quota exceeded", http.StatusTooManyRequests)
	})
	_, err := st.Stats(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "index quota exceeded"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error should carry response snippet, got %q", err.Error())
	}
}

func TestClearSendsDeleteAll(t *testing.T) {
	var captured map[string]interface{}
	_, st := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.WriteHeader(http.StatusOK)
	})
	if err := st.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if captured["deleteAll"] != true {
		t.Fatalf("deleteAll flag missing: %v", captured)
	}
}
