package rag

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestReadDocuments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "plain text notes")
	writeFile(t, dir, "guide.md", "# markdown guide")
	writeFile(t, dir, "nested/deep.txt", "nested document")
	writeFile(t, dir, "photo.jpg", "not text")
	writeFile(t, dir, "empty.txt", "   \n")

	docs, stats, err := ReadDocuments(dir)
	if err != nil {
		t.Fatalf("ReadDocuments: %v", err)
	}

	if stats.FilesRead != 3 {
		t.Errorf("FilesRead = %d, want 3", stats.FilesRead)
	}
	// The unsupported extension and the whitespace-only file both count as
	// skipped.
	if stats.FilesSkipped != 2 {
		t.Errorf("FilesSkipped = %d, want 2", stats.FilesSkipped)
	}
	if stats.FilesFailed != 0 {
		t.Errorf("FilesFailed = %d, want 0", stats.FilesFailed)
	}

	byPath := make(map[string]string, len(docs))
	for _, doc := range docs {
		byPath[filepath.ToSlash(doc.Path)] = doc.Text
	}
	if byPath["notes.txt"] != "plain text notes" {
		t.Errorf("notes.txt text = %q", byPath["notes.txt"])
	}
	if byPath["nested/deep.txt"] != "nested document" {
		t.Errorf("nested/deep.txt text = %q", byPath["nested/deep.txt"])
	}
	if _, ok := byPath["photo.jpg"]; ok {
		t.Error("unsupported file was read")
	}
}

func TestReadDocuments_MissingDirectory(t *testing.T) {
	t.Parallel()

	_, _, err := ReadDocuments(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("ReadDocuments on a missing directory succeeded")
	}
}

func TestReadDocuments_CorruptPDFCountsAsFailed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.txt", "real content")
	writeFile(t, dir, "broken.pdf", "this is not a pdf")

	docs, stats, err := ReadDocuments(dir)
	if err != nil {
		t.Fatalf("ReadDocuments: %v", err)
	}
	if stats.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", stats.FilesFailed)
	}
	if len(docs) != 1 {
		t.Errorf("got %d documents, want only the readable one", len(docs))
	}
}
