package chunker

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators orders split points from coarsest to finest. The empty
// separator is the recursion floor: a hard character split that always
// terminates.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter segments text into bounded-size chunks by recursively splitting
// on progressively finer separators and greedily re-packing the pieces.
// Only the character-level floor is guaranteed to respect MaxSize exactly;
// outer levels may produce oversized chunks that the recursion then resolves.
type Splitter struct {
	maxSize    int
	overlap    int
	separators []string
}

// New returns a splitter producing chunks of at most maxSize characters.
// Overlap is applied only at the character-split floor, as a lookback window
// between consecutive hard-split chunks.
func New(maxSize, overlap int) *Splitter {
	if maxSize <= 0 {
		maxSize = 500
	}
	if overlap < 0 || overlap >= maxSize {
		overlap = 0
	}
	return &Splitter{maxSize: maxSize, overlap: overlap, separators: defaultSeparators}
}

// Split returns the ordered chunk texts for text. Concatenating the result
// in order reproduces the input up to separator normalization.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= s.maxSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	if len(separators) == 0 || separators[0] == "" {
		return s.hardSplit(text)
	}

	sep := separators[0]
	parts := strings.Split(text, sep)

	// Greedily pack consecutive parts, flushing whenever the next part
	// would push the buffer past maxSize.
	var packed []string
	cur := ""
	flush := func() {
		if c := strings.TrimSpace(cur); c != "" {
			packed = append(packed, c)
		}
		cur = ""
	}
	for _, part := range parts {
		switch {
		case cur == "":
			cur = part
		case utf8.RuneCountInString(cur)+utf8.RuneCountInString(sep)+utf8.RuneCountInString(part) > s.maxSize:
			flush()
			cur = part
		default:
			cur += sep + part
		}
	}
	flush()

	// Anything still oversized descends to the next, finer separator.
	var out []string
	for _, chunk := range packed {
		if utf8.RuneCountInString(chunk) > s.maxSize {
			out = append(out, s.split(chunk, separators[1:])...)
		} else {
			out = append(out, chunk)
		}
	}
	return out
}

// hardSplit is the recursion floor: a sliding character window of maxSize
// advancing by maxSize-overlap.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.maxSize - s.overlap
	if step <= 0 {
		step = s.maxSize
	}
	var out []string
	for i := 0; i < len(runes); i += step {
		end := i + s.maxSize
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[i:end])); chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
