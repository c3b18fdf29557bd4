package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := New(500, 50)
	got := s.Split("a short paragraph")
	if len(got) != 1 || got[0] != "a short paragraph" {
		t.Fatalf("expected single chunk, got %v", got)
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := New(500, 50)
	if got := s.Split("   \n\n  "); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
}

func TestSplitRespectsMaxSize(t *testing.T) {
	texts := []string{
		strings.Repeat("word ", 300),
		strings.Repeat("Sentence one is here. ", 100),
		strings.Repeat("para\n\n", 200) + strings.Repeat("x", 700),
		strings.Repeat("y", 1200),
	}
	s := New(500, 50)
	for i, text := range texts {
		for j, chunk := range s.Split(text) {
			if len([]rune(chunk)) > 500 {
				t.Errorf("text %d chunk %d exceeds max size: %d", i, j, len(chunk))
			}
		}
	}
}

func TestSplitHardBoundaryChunkCount(t *testing.T) {
	// 1200 unbreakable characters with max 500 split into 500/500/200
	s := New(500, 0)
	got := s.Split(strings.Repeat("a", 1200))
	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(got))
	}
	if len(got[0]) != 500 || len(got[1]) != 500 || len(got[2]) != 200 {
		t.Fatalf("unexpected chunk sizes: %d %d %d", len(got[0]), len(got[1]), len(got[2]))
	}
}

func TestSplitMultiByteRuneSizing(t *testing.T) {
	// size limits count runes, not bytes, so multi-byte text packs the
	// same way single-byte text does
	s := New(500, 0)
	got := s.Split(strings.Repeat("日", 1200))
	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(got))
	}
	for i, want := range []int{500, 500, 200} {
		if n := utf8.RuneCountInString(got[i]); n != want {
			t.Fatalf("chunk %d: expected %d runes, got %d", i, want, n)
		}
	}

	mixed := strings.Repeat("日本語のテキスト ", 200)
	for i, chunk := range s.Split(mixed) {
		if n := utf8.RuneCountInString(chunk); n > 500 {
			t.Errorf("mixed chunk %d exceeds max size: %d runes", i, n)
		}
	}
}

func TestSplitReconstruction(t *testing.T) {
	// with zero overlap, concatenated chunks carry every word in order
	text := "First paragraph about the product.\n\nSecond paragraph mentions pricing plans. " +
		strings.Repeat("More detail on enterprise features and onboarding. ", 30)
	s := New(120, 0)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	wantWords := strings.Fields(text)
	gotWords := strings.Fields(strings.Join(chunks, " "))
	if len(wantWords) != len(gotWords) {
		t.Fatalf("word count mismatch: want %d got %d", len(wantWords), len(gotWords))
	}
	for i := range wantWords {
		if wantWords[i] != gotWords[i] {
			t.Fatalf("word %d mismatch: want %q got %q", i, wantWords[i], gotWords[i])
		}
	}
}

func TestSplitOverlapAtCharacterFloor(t *testing.T) {
	s := New(100, 20)
	text := strings.Repeat("abcdefghij", 25)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// each successive chunk begins with the tail of the previous one
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-20:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Fatalf("chunk %d does not overlap predecessor", i)
		}
	}
}

func TestSplitPrefersCoarseSeparators(t *testing.T) {
	para1 := strings.Repeat("alpha ", 40) // ~240 chars
	para2 := strings.Repeat("beta ", 40)
	chunks := New(300, 0).Split(para1 + "\n\n" + para2)
	if len(chunks) != 2 {
		t.Fatalf("expected paragraph-aligned chunks, got %d: %v", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[0], "alpha") || !strings.HasPrefix(chunks[1], "beta") {
		t.Fatalf("chunks not aligned to paragraphs: %v", chunks)
	}
}

func TestNewClampsInvalidArguments(t *testing.T) {
	s := New(-1, 600)
	if s.maxSize != 500 {
		t.Fatalf("expected default max size, got %d", s.maxSize)
	}
	if s.overlap != 0 {
		t.Fatalf("expected overlap clamped to 0, got %d", s.overlap)
	}
}
