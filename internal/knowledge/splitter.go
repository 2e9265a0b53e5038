package knowledge

import (
	"fmt"
	"strings"
)

// Splitter cuts document text into fixed-size chunks with overlap between
// consecutive chunks. Sizes are measured in whitespace-delimited words, a
// cheap stand-in for model tokens that tracks them closely enough for
// retrieval purposes.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter producing chunks of at most size words,
// where consecutive chunks share overlap words.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d)", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split returns the chunks of text. Whitespace runs collapse to single
// spaces; empty or whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := s.size - s.overlap
	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := min(start+s.size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
