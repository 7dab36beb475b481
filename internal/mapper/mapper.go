// Package mapper turns scanned documents into record fields and back.
// It owns the declarative field table, the reference resolvers, and the
// document↔record matcher. The engine consumes it through narrow
// collaborator interfaces so the sync core never depends on concrete
// persistence types.
package mapper

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/models"
	"github.com/arnarsson/gitpress/internal/storage"
)

// Catalog is the store view the resolvers need for categories and tags.
type Catalog interface {
	GetCategory(slug, contentType string) (*models.Category, error)
	GetCategoryByID(id string) (*models.Category, error)
	CreateCategory(c *models.Category) error
	GetTagBySlug(slug string) (*models.Tag, error)
	CreateTag(t *models.Tag) error
}

// Identity is the author-lookup collaborator.
type Identity interface {
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	SystemUser() (*models.User, error)
}

// MediaLibrary is the media-ingestion collaborator used by the cover chain.
type MediaLibrary interface {
	GetMediaByID(id string) (*models.Media, error)
	FindMediaByHash(hash string) (*models.Media, error)
	FindMediaByPath(path string) (*models.Media, error)
	SearchMediaByFilename(fragment string) (*models.Media, error)
	Ingest(filename, path, hash, uploadedBy string) (*models.Media, error)
}

// Options tunes resolution behavior.
type Options struct {
	// AutoCreateCategories creates a category row when natural-key
	// resolution misses, instead of falling back to the default slug.
	AutoCreateCategories bool
	// DefaultCategorySlug receives documents whose category cannot be
	// resolved while auto-create is off.
	DefaultCategorySlug string
}

// Mapper orchestrates resolvers and the field table.
type Mapper struct {
	catalog  Catalog
	identity Identity
	media    MediaLibrary
	tree     storage.Provider
	opts     Options
	logger   *slog.Logger
}

// New creates a Mapper.
func New(catalog Catalog, identity Identity, media MediaLibrary, tree storage.Provider, opts Options, logger *slog.Logger) *Mapper {
	return &Mapper{
		catalog:  catalog,
		identity: identity,
		media:    media,
		tree:     tree,
		opts:     opts,
		logger:   logger,
	}
}

// Mapped is the result of mapping one document. It carries everything the
// handlers need to persist a record: the field values, the resolved
// references, and the tag set.
type Mapped struct {
	Post         models.Post
	CategorySlug string
	TagIDs       []string
	TagNames     []string
}

// MapDocument resolves a content document into record fields. dryRun
// switches tag resolution to get-only and suppresses all side effects
// (category auto-create, media ingest).
func (m *Mapper) MapDocument(doc *models.Document, dryRun bool) (*Mapped, *apperr.SyncError) {
	meta := doc.Meta
	out := &Mapped{}
	p := &out.Post

	title, _ := metaString(meta, "title")
	if title == "" {
		return nil, apperr.NewSyncError(doc.RelPath, apperr.CodeMissingField, "title is required")
	}
	p.Title = title
	p.Body = doc.Body
	p.SourcePath = doc.RelPath

	if slug, ok := metaString(meta, "slug"); ok {
		p.Slug = slug
	}

	typ, serr := m.resolveType(doc)
	if serr != nil {
		return nil, serr
	}
	p.Type = typ

	status, serr := m.resolveStatus(doc)
	if serr != nil {
		return nil, serr
	}
	p.Status = status

	date, serr := m.resolveDate(doc)
	if serr != nil {
		return nil, serr
	}
	p.Date = date

	author, serr := m.resolveAuthor(doc)
	if serr != nil {
		return nil, serr
	}
	p.AuthorID = author.ID

	cat, serr := m.resolveCategory(doc, typ, dryRun)
	if serr != nil {
		return nil, serr
	}
	if cat != nil {
		p.CategoryID = cat.ID
		out.CategorySlug = cat.Slug
	}

	if media := m.ResolveCover(doc.RelPath, meta, dryRun); media != nil {
		p.CoverID = media.ID
	}

	tags, serr := m.resolveTags(doc, dryRun)
	if serr != nil {
		return nil, serr
	}
	for _, t := range tags {
		out.TagIDs = append(out.TagIDs, t.ID)
		out.TagNames = append(out.TagNames, t.Name)
	}

	for _, f := range postFields {
		raw, ok := meta[f.Key]
		if !ok {
			f.Set(p, f.Default)
			continue
		}
		v, err := f.parse(raw)
		if err != nil {
			return nil, apperr.Syncf(doc.RelPath, apperr.CodeParseFailed, "%s: %v", f.Key, err)
		}
		f.Set(p, v)
	}

	return out, nil
}

// metaString fetches a metadata value as a trimmed string.
func metaString(meta map[string]any, key string) (string, bool) {
	v, ok := meta[key]
	if !ok || v == nil {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	return s, s != ""
}

// titleFromSlug renders a readable category name from a slug.
func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
