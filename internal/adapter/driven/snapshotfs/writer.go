// Package snapshotfs publishes snapshot documents as files in the directory
// the static front end is served from.
package snapshotfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/forkmonkey/internal/domain/model"
	"github.com/ericfisherdev/forkmonkey/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SnapshotWriter = (*Writer)(nil)

// fileMode is applied to every published file so the web server can read it.
const fileMode os.FileMode = 0o644

// Writer writes each snapshot kind to its fixed file name under a directory.
// Files are replaced by rename: a reader sees either the previous document or
// the new one, never a partial write.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Path returns the file a snapshot kind is published to.
func (w *Writer) Path(kind model.SnapshotKind) string {
	return filepath.Join(w.dir, kind.FileName())
}

// Publish replaces the files of every document, creating the output
// directory if needed. All documents are staged as temporary files next to
// their targets before the first one is renamed into place, so an encoding,
// disk or cancellation failure leaves the previous run's files untouched.
func (w *Writer) Publish(ctx context.Context, docs []model.SnapshotDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, doc := range docs {
		if !doc.Kind.Valid() {
			return fmt.Errorf("unknown snapshot kind %q", doc.Kind)
		}
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", w.dir, err)
	}

	staged := make([]string, 0, len(docs))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp) // Already renamed files are gone; the error is expected.
		}
	}()

	for _, doc := range docs {
		tmp, err := w.stage(doc)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	for i, doc := range docs {
		path := w.Path(doc.Kind)
		if err := atomic.ReplaceFile(staged[i], path); err != nil {
			return fmt.Errorf("replace %s: %w", path, err)
		}
	}

	return nil
}

// stage writes the document to a synced temporary file in the output
// directory and returns its path.
func (w *Writer) stage(doc model.SnapshotDocument) (string, error) {
	f, err := os.CreateTemp(w.dir, "."+doc.Kind.FileName()+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", doc.Kind, err)
	}
	name := f.Name()

	if _, err := f.Write(doc.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("stage %s: %w", doc.Kind, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("sync %s: %w", doc.Kind, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close %s: %w", doc.Kind, err)
	}
	if err := os.Chmod(name, fileMode); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("chmod %s: %w", doc.Kind, err)
	}

	return name, nil
}
