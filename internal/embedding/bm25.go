package embedding

import (
	"errors"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// BM25 term-weighting parameters, conventional defaults.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// BM25Encoder produces sparse term-weight vectors. It is fitted once on a
// reference corpus at startup; weights are therefore not corpus-adaptive per
// tenant, which trades some lexical precision for a single shared index.
type BM25Encoder struct {
	df           map[string]int
	docCount     int
	avgDocLen    float64
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewBM25Encoder fits an encoder on the given corpus.
func NewBM25Encoder(corpus []string) (*BM25Encoder, error) {
	if len(corpus) == 0 {
		return nil, errors.New("empty corpus for BM25 fit")
	}
	e := &BM25Encoder{
		df:           make(map[string]int),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}

	totalLen := 0
	for _, text := range corpus {
		tokens := e.tokenize(text)
		totalLen += len(tokens)
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			e.df[tok]++
		}
	}
	e.docCount = len(corpus)
	if totalLen == 0 {
		return nil, errors.New("no tokens found in corpus")
	}
	e.avgDocLen = float64(totalLen) / float64(e.docCount)
	return e, nil
}

// EncodeDocument returns BM25 term weights for a document, keyed by hashed
// term index. Empty input yields an empty map.
func (e *BM25Encoder) EncodeDocument(text string) map[uint32]float32 {
	tokens := e.tokenize(text)
	out := make(map[uint32]float32)
	if len(tokens) == 0 {
		return out
	}

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	docLen := float64(len(tokens))
	norm := bm25K1 * (1 - bm25B + bm25B*docLen/e.avgDocLen)
	for tok, count := range tf {
		c := float64(count)
		weight := e.idf(tok) * c * (bm25K1 + 1) / (c + norm)
		out[termIndex(tok)] = float32(weight)
	}
	return out
}

// EncodeQuery returns IDF weights for the distinct query terms, normalized
// to sum to one.
func (e *BM25Encoder) EncodeQuery(text string) map[uint32]float32 {
	tokens := e.tokenize(text)
	out := make(map[uint32]float32)
	if len(tokens) == 0 {
		return out
	}

	idfs := make(map[string]float64, len(tokens))
	sum := 0.0
	for _, tok := range tokens {
		if _, ok := idfs[tok]; ok {
			continue
		}
		v := e.idf(tok)
		idfs[tok] = v
		sum += v
	}
	if sum == 0 {
		return out
	}
	for tok, v := range idfs {
		out[termIndex(tok)] = float32(v / sum)
	}
	return out
}

func (e *BM25Encoder) idf(token string) float64 {
	df := float64(e.df[token])
	n := float64(e.docCount)
	return math.Log((n-df+0.5)/(df+0.5) + 1)
}

func (e *BM25Encoder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// termIndex maps a token into the sparse index space.
func termIndex(token string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return h.Sum32()
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further",
		"than", "so", "such", "into", "about", "between", "through",
		"during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "do", "does", "did",
		"not", "no", "nor", "me", "my", "we", "our", "you", "your", "he",
		"she", "they", "them", "his", "her", "their", "what", "which",
		"who", "whom", "i", "am", "have", "has", "had", "there", "here",
		"how", "when", "where", "why", "all", "any", "both", "each", "few",
		"more", "most", "other", "some", "only", "now", "should",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
