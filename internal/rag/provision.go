// Package rag provisions the persistent vector index the chat service
// retrieves from.
//
// Provisioning is a one-time, blocking startup step: if persisted index
// state already exists it is loaded as-is, otherwise the document corpus is
// read, chunked, embedded, and persisted. After provisioning the index is
// immutable for the life of the process; rebuilding means deleting the
// storage directory and starting over.
package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/zenoharsh/ragserve/internal/knowledge"
	"github.com/zenoharsh/ragserve/internal/log"
)

// Options configures index provisioning.
type Options struct {
	DocDir       string // Corpus directory read when building
	StorageDir   string // Persistent index location (opaque blob)
	ChunkSize    int    // Words per chunk
	ChunkOverlap int    // Words shared between consecutive chunks
}

// Provision returns a ready store: loaded from StorageDir when persisted
// state exists there, otherwise built from the documents in DocDir and
// persisted. Any error leaves no store behind — the caller decides whether
// that means degraded mode or a failed command.
func Provision(ctx context.Context, opts Options, embed chromem.EmbeddingFunc, logger log.Logger) (*knowledge.Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	if knowledge.Exists(opts.StorageDir) {
		logger.Info("loading saved vector index", "storage", opts.StorageDir)
		store, err := knowledge.Open(opts.StorageDir, embed, logger)
		if err != nil {
			return nil, fmt.Errorf("loading index from %q: %w", opts.StorageDir, err)
		}
		logger.Info("vector index loaded", "chunks", store.Count())
		return store, nil
	}

	logger.Info("no storage found, building new index",
		"docs", opts.DocDir, "storage", opts.StorageDir)
	store, err := build(ctx, opts, embed, logger)
	if err != nil {
		// Remove any partially written state so the next start rebuilds
		// instead of loading a half-populated index.
		if rmErr := os.RemoveAll(opts.StorageDir); rmErr != nil {
			logger.Warn("removing partial index state", "error", rmErr)
		}
		return nil, err
	}
	return store, nil
}

// build reads, chunks, embeds, and persists the corpus.
func build(ctx context.Context, opts Options, embed chromem.EmbeddingFunc, logger log.Logger) (*knowledge.Store, error) {
	start := time.Now()

	docs, stats, err := ReadDocuments(opts.DocDir)
	if err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no readable documents in %q (skipped %d, failed %d)",
			opts.DocDir, stats.FilesSkipped, stats.FilesFailed)
	}

	splitter, err := knowledge.NewSplitter(opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("creating splitter: %w", err)
	}

	var chunks []knowledge.Document
	for _, doc := range docs {
		pieces := splitter.Split(doc.Text)
		docID := sourceID(doc.Path)
		for i, piece := range pieces {
			chunks = append(chunks, knowledge.Document{
				ID:      docID + "-" + strconv.Itoa(i),
				Content: piece,
				Metadata: map[string]string{
					"source": doc.Path,
					"chunk":  strconv.Itoa(i),
				},
			})
		}
	}

	store, err := knowledge.Open(opts.StorageDir, embed, logger)
	if err != nil {
		return nil, fmt.Errorf("creating index at %q: %w", opts.StorageDir, err)
	}

	if err := store.Add(ctx, chunks); err != nil {
		return nil, fmt.Errorf("indexing %d chunks: %w", len(chunks), err)
	}

	logger.Info("index built and saved to disk",
		"files", stats.FilesRead,
		"skipped", stats.FilesSkipped,
		"failed", stats.FilesFailed,
		"chunks", len(chunks),
		"duration", time.Since(start),
	)
	return store, nil
}

// sourceID derives a stable document ID from a corpus-relative path.
func sourceID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}
