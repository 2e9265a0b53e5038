package knowledge

// Document is one indexable chunk of text.
// Metadata must be map[string]string to comply with chromem-go requirements.
type Document struct {
	ID       string            // Unique identifier
	Content  string            // Chunk text content
	Metadata map[string]string // Optional metadata (source file, chunk ordinal, etc.)
}

// Result is a single search result with similarity score.
type Result struct {
	Document   Document
	Similarity float32 // Cosine similarity score (0-1)
}

// SearchOption configures search behavior using the functional options pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK int
}

// WithTopK sets the maximum number of results to return.
// Default is 3 if not specified.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{topK: 3}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
