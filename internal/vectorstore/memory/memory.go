// Package memory is an in-process hybrid vector store used for development
// and tests. Lexical ranking runs on an in-memory bleve index, dense ranking
// on cosine similarity, and the two legs are fused with reciprocal-rank
// fusion.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"

	"github.com/lumina-ai/lumina/internal/vectorstore"
)

const rrfK = 60 // reciprocal-rank-fusion constant

type entry struct {
	vector vectorstore.Vector
}

type lexDoc struct {
	Text     string `json:"text"`
	ClientID string `json:"client_id"`
}

// Store keeps all vectors in process memory.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	index   bleve.Index
}

func NewStore() (*Store, error) {
	index, err := newIndex()
	if err != nil {
		return nil, err
	}
	return &Store{entries: make(map[string]entry), index: index}, nil
}

func newIndex() (bleve.Index, error) {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	doc.AddFieldMappingsAt("text", textField)
	cidField := bleve.NewTextFieldMapping()
	cidField.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("client_id", cidField)
	im.DefaultMapping = doc
	return bleve.NewMemOnly(im)
}

// Upsert stores vectors, replacing existing entries with the same id.
func (s *Store) Upsert(_ context.Context, vectors []vectorstore.Vector) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if v.Metadata.ClientID == "" {
			return 0, vectorstore.ErrClientIDRequired
		}
		s.entries[v.ID] = entry{vector: v}
		if err := s.index.Index(v.ID, lexDoc{Text: v.Metadata.Text, ClientID: v.Metadata.ClientID}); err != nil {
			return 0, err
		}
	}
	return len(vectors), nil
}

type scoredID struct {
	id    string
	score float64
	rank  int
}

// Query ranks the tenant's vectors. With query text (or sparse weights) a
// lexical leg joins the dense leg through RRF; otherwise ranking is
// dense-only. The tenant filter restricts candidate selection in both legs.
func (s *Store) Query(_ context.Context, q vectorstore.Query) ([]vectorstore.Match, error) {
	if q.ClientID == "" {
		return nil, vectorstore.ErrClientIDRequired
	}
	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dense := s.denseLeg(q, topK*3)

	var lexical []scoredID
	if q.Text != "" {
		hits, err := s.lexicalLeg(q, topK*3)
		if err != nil {
			return nil, err
		}
		lexical = hits
	} else if len(q.Sparse) > 0 {
		lexical = s.sparseLeg(q, topK*3)
	}

	var ranked []scoredID
	if len(lexical) == 0 {
		ranked = dense
	} else {
		ranked = fuseRRF(dense, lexical)
	}

	matches := make([]vectorstore.Match, 0, topK)
	for _, sc := range ranked {
		e, ok := s.entries[sc.id]
		if !ok {
			continue
		}
		matches = append(matches, vectorstore.Match{ID: sc.id, Score: sc.score, Metadata: e.vector.Metadata})
		if len(matches) >= topK {
			break
		}
	}
	return matches, nil
}

func (s *Store) denseLeg(q vectorstore.Query, k int) []scoredID {
	var scored []scoredID
	for id, e := range s.entries {
		if e.vector.Metadata.ClientID != q.ClientID {
			continue
		}
		scored = append(scored, scoredID{id: id, score: cosine(q.Dense, e.vector.Values)})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > k {
		scored = scored[:k]
	}
	for i := range scored {
		scored[i].rank = i + 1
	}
	return scored
}

func (s *Store) sparseLeg(q vectorstore.Query, k int) []scoredID {
	var scored []scoredID
	for id, e := range s.entries {
		if e.vector.Metadata.ClientID != q.ClientID {
			continue
		}
		score := sparseDot(q.Sparse, e.vector.Sparse)
		if score <= 0 {
			continue
		}
		scored = append(scored, scoredID{id: id, score: score})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > k {
		scored = scored[:k]
	}
	for i := range scored {
		scored[i].rank = i + 1
	}
	return scored
}

func (s *Store) lexicalLeg(q vectorstore.Query, k int) ([]scoredID, error) {
	tq := bleve.NewTermQuery(q.ClientID)
	tq.SetField("client_id")
	mq := bleve.NewMatchQuery(q.Text)
	mq.SetField("text")
	conj := bleve.NewConjunctionQuery(tq, mq)
	req := bleve.NewSearchRequestOptions(conj, k, 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, err
	}
	var out []scoredID
	for i, hit := range res.Hits {
		out = append(out, scoredID{id: hit.ID, score: hit.Score, rank: i + 1})
	}
	return out, nil
}

func fuseRRF(a, b []scoredID) []scoredID {
	fused := map[string]float64{}
	add := func(list []scoredID) {
		for _, sc := range list {
			fused[sc.id] += 1.0 / float64(rrfK+sc.rank)
		}
	}
	add(a)
	add(b)
	out := make([]scoredID, 0, len(fused))
	for id, score := range fused {
		out = append(out, scoredID{id: id, score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id
	})
	for i := range out {
		out[i].rank = i + 1
	}
	return out
}

// Delete removes the given ids.
func (s *Store) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entries, id)
		if err := s.index.Delete(id); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops everything.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := newIndex()
	if err != nil {
		return err
	}
	old := s.index
	s.entries = make(map[string]entry)
	s.index = index
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Stats reports the store contents.
func (s *Store) Stats(_ context.Context) (vectorstore.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dim := 0
	for _, e := range s.entries {
		dim = len(e.vector.Values)
		break
	}
	return vectorstore.Stats{TotalVectors: len(s.entries), Dimension: dim}, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func sparseDot(a, b map[uint32]float32) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for idx, av := range a {
		if bv, ok := b[idx]; ok {
			dot += float64(av) * float64(bv)
		}
	}
	return dot
}
