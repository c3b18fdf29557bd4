package embedding

import (
	"math"
	"testing"
)

func fitTestEncoder(t *testing.T) *BM25Encoder {
	t.Helper()
	enc, err := NewBM25Encoder([]string{
		"our platform automates invoice processing for finance teams",
		"pricing starts at a flat monthly rate per seat",
		"customers integrate the api within a single sprint",
		"enterprise plans include dedicated support and onboarding",
	})
	if err != nil {
		t.Fatalf("fitting encoder: %v", err)
	}
	return enc
}

func TestNewBM25EncoderEmptyCorpus(t *testing.T) {
	if _, err := NewBM25Encoder(nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestEncodeDocumentWeights(t *testing.T) {
	enc := fitTestEncoder(t)
	weights := enc.EncodeDocument("kubernetes kubernetes kubernetes details")
	if len(weights) == 0 {
		t.Fatal("expected non-empty weights")
	}
	for idx, w := range weights {
		if w <= 0 {
			t.Errorf("term %d has non-positive weight %f", idx, w)
		}
	}
	// equal document frequency, so the repeated term must outweigh the singleton
	if weights[termIndex("kubernetes")] <= weights[termIndex("details")] {
		t.Errorf("repeated term should dominate: kubernetes=%f details=%f",
			weights[termIndex("kubernetes")], weights[termIndex("details")])
	}
}

func TestEncodeDocumentEmptyInput(t *testing.T) {
	enc := fitTestEncoder(t)
	if got := enc.EncodeDocument(""); len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
	if got := enc.EncodeDocument("the and of"); len(got) != 0 {
		t.Fatalf("stopword-only input should encode empty, got %v", got)
	}
}

func TestEncodeQueryNormalized(t *testing.T) {
	enc := fitTestEncoder(t)
	weights := enc.EncodeQuery("pricing for enterprise onboarding")
	if len(weights) == 0 {
		t.Fatal("expected non-empty weights")
	}
	var sum float64
	for _, w := range weights {
		if w <= 0 {
			t.Fatalf("query weight must be positive, got %f", w)
		}
		sum += float64(w)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Fatalf("query weights should sum to 1, got %f", sum)
	}
}

func TestEncodeQueryRareTermsWeighMore(t *testing.T) {
	enc := fitTestEncoder(t)
	// "platform" appears in the corpus, "kubernetes" does not
	weights := enc.EncodeQuery("platform kubernetes")
	if weights[termIndex("kubernetes")] <= weights[termIndex("platform")] {
		t.Fatalf("unseen term should carry more weight: kubernetes=%f platform=%f",
			weights[termIndex("kubernetes")], weights[termIndex("platform")])
	}
}

func TestTokenizeLowercasesAndDropsStopwords(t *testing.T) {
	enc := fitTestEncoder(t)
	got := enc.tokenize("The Pricing PLAN for 2024")
	want := []string{"pricing", "plan", "2024"}
	if len(got) != len(want) {
		t.Fatalf("tokens: want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: want %q got %q", i, want[i], got[i])
		}
	}
}

func TestTermIndexStable(t *testing.T) {
	if termIndex("pricing") != termIndex("pricing") {
		t.Fatal("term index must be deterministic")
	}
	if termIndex("pricing") == termIndex("support") {
		t.Fatal("distinct terms should hash apart")
	}
}
