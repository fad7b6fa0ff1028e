// Package spool provides request-scoped temporary storage for uploaded
// statement files. Each request gets its own batch directory; the handler
// closes the batch on every exit path, and a background sweep reclaims
// anything left behind by crashed requests.
package spool

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// File is a statement file staged inside a batch.
type File struct {
	// Name is the sanitized original filename, kept for reporting.
	Name string
	// Path is the absolute on-disk location inside the batch directory.
	Path string
	Size int64
}

// Spool manages batch directories under a single base path.
type Spool struct {
	basePath string
}

// New creates a spool rooted at basePath, creating the directory if needed.
func New(basePath string) (*Spool, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve spool directory: %w", err)
	}
	return &Spool{basePath: abs}, nil
}

// BasePath returns the spool root.
func (s *Spool) BasePath() string {
	return s.basePath
}

// Batch is one request's staging directory.
type Batch struct {
	ID    uuid.UUID
	dir   string
	files []File
}

// NewBatch creates a fresh batch directory.
func (s *Spool) NewBatch() (*Batch, error) {
	id := uuid.New()
	dir := filepath.Join(s.basePath, id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create batch directory: %w", err)
	}
	return &Batch{ID: id, dir: dir}, nil
}

// Add writes r into the batch under a sanitized version of filename.
// The partial file is removed when the write fails.
func (b *Batch) Add(filename string, r io.Reader) (File, error) {
	safe := sanitizeFilename(filename)
	if safe == "" {
		return File{}, fmt.Errorf("invalid filename %q", filename)
	}

	path := filepath.Join(b.dir, safe)
	f, err := os.Create(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to create spool file: %w", err)
	}

	size, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path) // Cleanup on error
		return File{}, fmt.Errorf("failed to write spool file: %w", err)
	}

	file := File{Name: safe, Path: path, Size: size}
	b.files = append(b.files, file)
	return file, nil
}

// Files returns the files staged so far, in add order.
func (b *Batch) Files() []File {
	return b.files
}

// Close removes the batch directory and everything in it.
// Safe to call more than once.
func (b *Batch) Close() error {
	if b.dir == "" {
		return nil
	}
	err := os.RemoveAll(b.dir)
	b.dir = ""
	b.files = nil
	return err
}

// Sweep removes batch directories older than maxAge. It returns the number of
// batches removed; the janitor runs it on a schedule to catch leaks.
func (s *Spool) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read spool directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue // not one of ours
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.basePath, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	cleaned := strings.TrimSpace(replacer.Replace(name))
	if cleaned == "." || cleaned == "" {
		return ""
	}
	return cleaned
}
