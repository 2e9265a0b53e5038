package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/zenoharsh/ragserve/internal/knowledge"
	"github.com/zenoharsh/ragserve/internal/testutil"
)

func TestProvision_BuildsWhenStorageAbsent(t *testing.T) {
	t.Parallel()

	docDir := t.TempDir()
	writeFile(t, docDir, "a.txt", "the quick brown fox jumps over the lazy dog")
	writeFile(t, docDir, "b.md", "pack my box with five dozen liquor jugs")

	storageDir := filepath.Join(t.TempDir(), "storage")
	embed := testutil.NewMockEmbedder(8).EmbeddingFunc()

	store, err := Provision(context.Background(), Options{
		DocDir:       docDir,
		StorageDir:   storageDir,
		ChunkSize:    5,
		ChunkOverlap: 1,
	}, embed, nil)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if store.Count() == 0 {
		t.Error("built index holds no chunks")
	}
	if !knowledge.Exists(storageDir) {
		t.Error("storage directory missing after build")
	}
}

func TestProvision_LoadsExistingStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	docDir := t.TempDir()
	writeFile(t, docDir, "a.txt", "some document words to index and retrieve later on")

	storageDir := filepath.Join(t.TempDir(), "storage")
	embedder := testutil.NewMockEmbedder(8)

	opts := Options{DocDir: docDir, StorageDir: storageDir, ChunkSize: 5, ChunkOverlap: 1}
	first, err := Provision(ctx, opts, embedder.EmbeddingFunc(), nil)
	if err != nil {
		t.Fatalf("first Provision: %v", err)
	}
	wantCount := first.Count()

	// Remove the corpus; a second provision must load the persisted index
	// without touching the documents.
	if err := os.RemoveAll(docDir); err != nil {
		t.Fatalf("removing doc dir: %v", err)
	}

	second, err := Provision(ctx, opts, embedder.EmbeddingFunc(), nil)
	if err != nil {
		t.Fatalf("second Provision: %v", err)
	}
	if got := second.Count(); got != wantCount {
		t.Errorf("reloaded index holds %d chunks, want %d", got, wantCount)
	}
}

func TestProvision_MissingDocDir(t *testing.T) {
	t.Parallel()

	storageDir := filepath.Join(t.TempDir(), "storage")
	embed := testutil.NewMockEmbedder(8).EmbeddingFunc()

	_, err := Provision(context.Background(), Options{
		DocDir:       filepath.Join(t.TempDir(), "missing"),
		StorageDir:   storageDir,
		ChunkSize:    5,
		ChunkOverlap: 1,
	}, embed, nil)
	if err == nil {
		t.Fatal("Provision succeeded with a missing document directory")
	}

	// Failed builds must not leave partial state that a later start would
	// mistake for a complete index.
	if knowledge.Exists(storageDir) {
		t.Error("partial storage left behind after failed build")
	}
}

func TestProvision_EmptyDocDir(t *testing.T) {
	t.Parallel()

	embed := testutil.NewMockEmbedder(8).EmbeddingFunc()

	_, err := Provision(context.Background(), Options{
		DocDir:       t.TempDir(),
		StorageDir:   filepath.Join(t.TempDir(), "storage"),
		ChunkSize:    5,
		ChunkOverlap: 1,
	}, embed, nil)
	if err == nil {
		t.Fatal("Provision succeeded with no readable documents")
	}
}

func TestProvision_ChunkIDsAreStable(t *testing.T) {
	t.Parallel()

	if got, want := sourceID("a.txt"), sourceID("a.txt"); got != want {
		t.Errorf("sourceID not deterministic: %q != %q", got, want)
	}
	if sourceID("a.txt") == sourceID("b.txt") {
		t.Error("distinct paths share a source ID")
	}
	if len(sourceID("a.txt")) != 16 {
		t.Errorf("sourceID length = %d, want 16 hex chars", len(sourceID("a.txt")))
	}
}
