package rag

// reader.go loads the raw document corpus from a directory.
//
// Supported file types are plain text, markdown, and PDF. Unsupported files
// are skipped; unreadable files are counted but do not abort the walk.

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// supportedExtensions are the file types the reader can extract text from.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

// SourceDocument is one raw document loaded from the corpus directory.
type SourceDocument struct {
	Path string // Path relative to the corpus directory
	Text string // Extracted plain text
}

// ReadStats summarizes a corpus read.
type ReadStats struct {
	FilesRead    int
	FilesSkipped int
	FilesFailed  int
}

// ReadDocuments loads every supported file under dir. A missing or
// unreadable directory is an error; individual file failures are tolerated
// and reported in the stats.
func ReadDocuments(dir string) ([]SourceDocument, ReadStats, error) {
	var stats ReadStats

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, stats, fmt.Errorf("resolving document directory: %w", err)
	}

	var docs []SourceDocument
	err = filepath.Walk(absDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// A failed root walk means the corpus is unreadable; individual
			// entries failing mid-walk only count against stats.
			if path == absDir {
				return err
			}
			stats.FilesFailed++
			return nil
		}
		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !supportedExtensions[ext] {
			stats.FilesSkipped++
			return nil
		}

		text, err := extractText(path, ext)
		if err != nil {
			stats.FilesFailed++
			return nil
		}
		if strings.TrimSpace(text) == "" {
			stats.FilesSkipped++
			return nil
		}

		rel, err := filepath.Rel(absDir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		docs = append(docs, SourceDocument{Path: rel, Text: text})
		stats.FilesRead++
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walking document directory %q: %w", dir, err)
	}

	return docs, stats, nil
}

// extractText returns the plain text content of the file at path.
func extractText(path, ext string) (string, error) {
	if ext == ".pdf" {
		return extractPDFText(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(content), nil
}

// extractPDFText extracts the plain text of a PDF file.
func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}
