package knowledge

import (
	"context"
	"fmt"
	"os"
	"runtime"

	chromem "github.com/philippgille/chromem-go"

	"github.com/zenoharsh/ragserve/internal/log"
)

// collectionName is the single chromem-go collection holding all chunks.
const collectionName = "documents"

// Store manages document chunks with vector similarity search, backed by a
// chromem-go database persisted under a single directory. The directory's
// internal layout is owned entirely by chromem-go; callers treat it as an
// opaque blob and only check for its existence.
//
// After provisioning completes the store is read-only and safe for concurrent
// searches without additional locking.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     log.Logger
}

// Exists reports whether persisted index state is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Open opens (or creates) a persistent store at path. If path already holds
// a database, its contents are loaded; otherwise an empty database is
// created and persisted there as documents are added.
func Open(path string, embed chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector database at %q: %w", path, err)
	}

	// Cosine distance matches the normalized embeddings produced by the
	// embedding models this service is deployed with.
	metadata := map[string]string{"hnsw:space": "cosine"}
	collection, err := db.GetOrCreateCollection(collectionName, metadata, embed)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", collectionName, err)
	}

	return &Store{
		db:         db,
		collection: collection,
		logger:     logger,
	}, nil
}

// Add embeds and stores the given documents. chromem-go persists each
// document to the storage directory as it is written.
func (s *Store) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	converted := make([]chromem.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Content == "" {
			return fmt.Errorf("document %q has empty content", doc.ID)
		}
		converted = append(converted, chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
	}

	if err := s.collection.AddDocuments(ctx, converted, runtime.NumCPU()); err != nil {
		return fmt.Errorf("adding %d documents: %w", len(docs), err)
	}

	s.logger.Debug("added documents", "count", len(docs))
	return nil
}

// Count returns the number of stored chunks.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Search returns the chunks most similar to query, ordered by descending
// cosine similarity.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	// chromem-go rejects nResults greater than the collection size.
	topK := min(cfg.topK, s.collection.Count())
	if topK == 0 {
		return nil, nil
	}

	found, err := s.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	results := make([]Result, 0, len(found))
	for _, r := range found {
		results = append(results, Result{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: r.Metadata,
			},
			Similarity: r.Similarity,
		})
	}
	return results, nil
}
