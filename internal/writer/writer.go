// Package writer exports records to the content tree: it computes
// canonical on-disk paths, serializes headers and bodies, and performs
// physical moves and deletes. It is the only mutator of the tree during
// a sync pass.
package writer

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/arnarsson/gitpress/internal/checksum"
	"github.com/arnarsson/gitpress/internal/layout"
	"github.com/arnarsson/gitpress/internal/mapper"
	"github.com/arnarsson/gitpress/internal/models"
	"github.com/arnarsson/gitpress/internal/parser"
	"github.com/arnarsson/gitpress/internal/storage"
)

// Writer serializes records to content files.
type Writer struct {
	tree   storage.Provider
	m      *mapper.Mapper
	logger *slog.Logger
}

// New creates a Writer over the given tree.
func New(tree storage.Provider, m *mapper.Mapper, logger *slog.Logger) *Writer {
	return &Writer{tree: tree, m: m, logger: logger}
}

// TargetPath returns the canonical absolute and relative paths for a
// record within the given category.
func (w *Writer) TargetPath(p *models.Post, categorySlug string) (absolute, relative string) {
	relative = layout.TargetPath(p.Type, categorySlug, p.Title, p.RichContent)
	absolute = filepath.Join(w.tree.Root(), filepath.FromSlash(relative))
	return absolute, relative
}

// Write serializes a record to its canonical path. When the old record's
// path differs from the new one, the physical file moves first so the
// VCS observes a rename rather than an add+delete pair. An unchanged
// file (same canonical metadata and body) is not rewritten.
func (w *Writer) Write(in mapper.SerializeInput, old *models.Post, categorySlug string) (string, error) {
	_, rel := w.TargetPath(in.Post, categorySlug)

	if old != nil && old.SourcePath != "" && old.SourcePath != rel && w.tree.Exists(old.SourcePath) {
		if err := w.tree.Move(old.SourcePath, rel); err != nil {
			return "", fmt.Errorf("writer: move %s: %w", old.SourcePath, err)
		}
		w.logger.Debug("moved content file",
			slog.String("from", old.SourcePath), slog.String("to", rel))
	}

	order, meta := w.m.Serialize(in)
	if w.unchanged(rel, meta, in.Post.Body) {
		return rel, nil
	}

	data, err := parser.Marshal(order, meta, in.Post.Body)
	if err != nil {
		return "", fmt.Errorf("writer: serialize %s: %w", rel, err)
	}
	if err := w.tree.Write(rel, data); err != nil {
		return "", fmt.Errorf("writer: %w", err)
	}
	return rel, nil
}

// WriteCategoryIndex serializes a category record as its index document.
func (w *Writer) WriteCategoryIndex(cat *models.Category, cover *models.Media) (string, error) {
	rel := layout.IndexPath(cat.Type, cat.Slug)
	order, meta := w.m.SerializeCategoryIndex(cat, cover)
	if w.unchanged(rel, meta, cat.Description) {
		return rel, nil
	}
	data, err := parser.Marshal(order, meta, cat.Description)
	if err != nil {
		return "", fmt.Errorf("writer: serialize %s: %w", rel, err)
	}
	if err := w.tree.Write(rel, data); err != nil {
		return "", fmt.Errorf("writer: %w", err)
	}
	return rel, nil
}

// Delete removes a record's file, tolerating files already gone. Empty
// parent directories are pruned by the tree provider.
func (w *Writer) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	if err := w.tree.Delete(rel); err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	return nil
}

// unchanged compares the canonical metadata hash and body of the file at
// rel against what would be written, to keep rewrites idempotent.
func (w *Writer) unchanged(rel string, meta map[string]any, body string) bool {
	if !w.tree.Exists(rel) {
		return false
	}
	data, err := w.tree.Read(rel)
	if err != nil {
		return false
	}
	existing, err := parser.Parse(data)
	if err != nil {
		return false
	}
	return checksum.MetaSum(existing.Meta) == checksum.MetaSum(meta) &&
		normalizeBody(existing.Body) == normalizeBody(body)
}

func normalizeBody(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
