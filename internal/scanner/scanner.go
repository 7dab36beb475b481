// Package scanner walks the content tree and parses each file into a
// transient Document. Per-file scans run under a bounded concurrency gate
// so large trees do not spike descriptors or memory.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/checksum"
	"github.com/arnarsson/gitpress/internal/layout"
	"github.com/arnarsson/gitpress/internal/models"
	"github.com/arnarsson/gitpress/internal/parser"
	"github.com/arnarsson/gitpress/internal/storage"
)

// scanConcurrency caps the number of files parsed at once.
const scanConcurrency = 20

// Scanner reads and parses content files.
type Scanner struct {
	store  storage.Provider
	logger *slog.Logger
}

// New creates a Scanner over the given tree.
func New(store storage.Provider, logger *slog.Logger) *Scanner {
	return &Scanner{store: store, logger: logger}
}

// ScanAll walks the whole tree and parses every recognized content file.
// Optional glob patterns narrow the walk: a file is kept when any pattern
// matches its relative path or its base name. A failing file is recorded
// with its path context and does not abort the batch. Results are ordered
// by path for deterministic processing.
func (s *Scanner) ScanAll(ctx context.Context, patterns ...string) ([]models.Document, []models.SyncIssue, error) {
	infos, err := s.store.List()
	if err != nil {
		return nil, nil, fmt.Errorf("scanner: %w", err)
	}
	infos = filterPatterns(infos, patterns)

	var (
		mu     sync.Mutex
		docs   []models.Document
		issues []models.SyncIssue
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	for _, info := range infos {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := s.scan(info)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("scan failed",
					slog.String("path", info.Path),
					slog.String("error", err.Error()))
				issues = append(issues, models.SyncIssue{
					Context: info.Path,
					Code:    apperr.CodeParseFailed,
					Message: err.Error(),
				})
				return nil
			}
			docs = append(docs, *doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].RelPath < docs[j].RelPath })
	return docs, issues, nil
}

// filterPatterns keeps the files matching any of the given globs. An
// empty pattern set keeps everything.
func filterPatterns(infos []storage.FileInfo, patterns []string) []storage.FileInfo {
	if len(patterns) == 0 {
		return infos
	}
	var out []storage.FileInfo
	for _, info := range infos {
		for _, pat := range patterns {
			full, err := path.Match(pat, info.Path)
			if err != nil {
				continue
			}
			base, _ := path.Match(pat, path.Base(info.Path))
			if full || base {
				out = append(out, info)
				break
			}
		}
	}
	return out
}

// ScanFile parses a single content file by relative path. The file is
// stat'ed so the document carries its real modified time, matching what
// a full tree walk would report.
func (s *Scanner) ScanFile(rel string) (*models.Document, error) {
	if !layout.IsContentFile(rel) {
		return nil, fmt.Errorf("scanner: not a content file: %s", rel)
	}
	info, err := s.store.Stat(rel)
	if err != nil {
		return nil, err
	}
	return s.scan(info)
}

func (s *Scanner) scan(info storage.FileInfo) (*models.Document, error) {
	data, err := s.store.Read(info.Path)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	pi := layout.Parse(info.Path)
	doc := &models.Document{
		RelPath:         info.Path,
		ContentHash:     checksum.Sum(data),
		MetadataHash:    checksum.MetaSum(res.Meta),
		Meta:            res.Meta,
		Body:            res.Body,
		ModifiedTime:    info.ModTime,
		DerivedType:     pi.Type,
		DerivedCategory: pi.CategorySlug,
	}
	doc.IsCategoryIndex = path.Base(info.Path) == layout.IndexFilename && pi.CategorySlug != ""
	return doc, nil
}
