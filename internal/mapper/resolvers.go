package mapper

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/checksum"
	"github.com/arnarsson/gitpress/internal/layout"
	"github.com/arnarsson/gitpress/internal/models"
)

// resolveType derives the content type. The directory always wins over
// declared metadata; declared metadata is only a fallback for paths too
// shallow to carry a type segment.
func (m *Mapper) resolveType(doc *models.Document) (string, *apperr.SyncError) {
	if doc.DerivedType != "" {
		return doc.DerivedType, nil
	}
	if declared, ok := metaString(doc.Meta, "type"); ok {
		t := strings.ToLower(declared)
		if !layout.KnownType(t) {
			return "", apperr.Syncf(doc.RelPath, apperr.CodeInvalidType, "unknown type %q", declared)
		}
		return t, nil
	}
	return "article", nil
}

// resolveStatus validates the declared status, defaulting to draft.
func (m *Mapper) resolveStatus(doc *models.Document) (string, *apperr.SyncError) {
	declared, ok := metaString(doc.Meta, "status")
	if !ok {
		return models.StatusDraft, nil
	}
	s := strings.ToLower(declared)
	if !models.ValidStatus(s) {
		return "", apperr.Syncf(doc.RelPath, apperr.CodeInvalidStatus, "unknown status %q", declared)
	}
	return s, nil
}

// resolveDate accepts a native YAML timestamp, a date-only string, or
// RFC 3339. Absent dates fall back to the file's modified time.
func (m *Mapper) resolveDate(doc *models.Document) (time.Time, *apperr.SyncError) {
	raw, ok := doc.Meta["date"]
	if !ok || raw == nil {
		return doc.ModifiedTime, nil
	}
	if t, ok := raw.(time.Time); ok {
		return t, nil
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", raw))
	for _, format := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Syncf(doc.RelPath, apperr.CodeParseFailed, "unparseable date %q", s)
}

// resolveAuthor applies the uniform precedence: a backsigned author_id
// that resolves is used verbatim; an unresolvable one is discarded with a
// warning. Natural-key resolution by username follows. Authors have no
// auto-create path: a missing or unresolvable author is a hard per-file
// error.
func (m *Mapper) resolveAuthor(doc *models.Document) (*models.User, *apperr.SyncError) {
	if id, ok := metaString(doc.Meta, "author_id"); ok {
		u, err := m.identity.GetUserByID(id)
		if err == nil {
			return u, nil
		}
		m.logger.Warn("backsigned author_id does not resolve, discarding",
			slog.String("path", doc.RelPath), slog.String("author_id", id))
	}
	username, ok := metaString(doc.Meta, "author")
	if !ok {
		return nil, apperr.NewSyncError(doc.RelPath, apperr.CodeAuthorNotFound, "author not found: no author declared")
	}
	u, err := m.identity.GetUserByUsername(username)
	if err != nil {
		return nil, apperr.Syncf(doc.RelPath, apperr.CodeAuthorNotFound, "author not found: %q", username)
	}
	return u, nil
}

// resolveCategory resolves the category reference. A backsigned
// category_id that resolves is authoritative and bypasses derivation,
// unless its row's type conflicts with the document's type, in which case
// it is discarded with a warning and resolution falls through. Natural-key
// resolution uses the directory-derived slug first (it wins over declared
// metadata), then the declared one. A miss either auto-creates the
// category or falls back to the configured default slug, re-resolving
// with auto-create forced off; the default itself is created when missing.
func (m *Mapper) resolveCategory(doc *models.Document, contentType string, dryRun bool) (*models.Category, *apperr.SyncError) {
	if id, ok := metaString(doc.Meta, "category_id"); ok {
		c, err := m.catalog.GetCategoryByID(id)
		switch {
		case err == nil && c.Type == contentType:
			return c, nil
		case err == nil:
			m.logger.Warn("backsigned category_id has conflicting type, discarding",
				slog.String("path", doc.RelPath),
				slog.String("category_type", c.Type),
				slog.String("document_type", contentType))
		default:
			m.logger.Warn("backsigned category_id does not resolve, discarding",
				slog.String("path", doc.RelPath), slog.String("category_id", id))
		}
	}

	slug := doc.DerivedCategory
	if slug == "" {
		if declared, ok := metaString(doc.Meta, "category"); ok {
			slug = layout.Slugify(declared)
		}
	}
	if slug == "" {
		return nil, nil // uncategorized
	}

	c, err := m.lookupOrCreate(slug, contentType, m.opts.AutoCreateCategories && !dryRun)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Syncf(doc.RelPath, apperr.CodeStore, "category %q: %v", slug, err)
	}

	// Two-step fallback with auto-create forced off, bounded instead of
	// recursive: resolve the default, then create the default if it too
	// is missing.
	def := m.opts.DefaultCategorySlug
	if def == "" || dryRun {
		return nil, nil
	}
	c, err = m.lookupOrCreate(def, contentType, false)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Syncf(doc.RelPath, apperr.CodeStore, "default category %q: %v", def, err)
	}
	c, cerr := m.createCategory(def, contentType)
	if cerr != nil {
		return nil, apperr.Syncf(doc.RelPath, apperr.CodeStore, "create default category %q: %v", def, cerr)
	}
	return c, nil
}

// lookupOrCreate resolves a category by natural key, creating it when
// autoCreate is set.
func (m *Mapper) lookupOrCreate(slug, contentType string, autoCreate bool) (*models.Category, error) {
	c, err := m.catalog.GetCategory(slug, contentType)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) || !autoCreate {
		return nil, err
	}
	return m.createCategory(slug, contentType)
}

func (m *Mapper) createCategory(slug, contentType string) (*models.Category, error) {
	c := &models.Category{
		ID:   uuid.NewString(),
		Slug: slug,
		Type: contentType,
		Name: titleFromSlug(slug),
	}
	if err := m.catalog.CreateCategory(c); err != nil {
		// A concurrent creator may have won; re-resolve before failing.
		if existing, gerr := m.catalog.GetCategory(slug, contentType); gerr == nil {
			return existing, nil
		}
		return nil, err
	}
	return c, nil
}

// ResolveCover walks the cover fallback chain: exact media id, ingested
// media path, on-disk local file inside the content root (read,
// hash-dedup, ingest under the system identity), and finally a fuzzy
// filename search. Every failure is a warning, never fatal; the document
// simply ends up without a cover. Exported because category-index
// handling uses the same chain.
func (m *Mapper) ResolveCover(relPath string, meta map[string]any, dryRun bool) *models.Media {
	if id, ok := metaString(meta, "cover_media_id"); ok {
		if media, err := m.media.GetMediaByID(id); err == nil {
			return media
		}
		m.logger.Warn("backsigned cover_media_id does not resolve, discarding",
			slog.String("path", relPath), slog.String("cover_media_id", id))
	}

	ref, ok := metaString(meta, "cover")
	if !ok {
		return nil
	}

	if media, err := m.media.FindMediaByPath(ref); err == nil {
		return media
	}

	if m.tree.Exists(ref) {
		if media := m.ingestLocalFile(relPath, ref, dryRun); media != nil {
			return media
		}
	}

	if media, err := m.media.SearchMediaByFilename(path.Base(ref)); err == nil {
		return media
	}

	m.logger.Warn("cover does not resolve",
		slog.String("path", relPath), slog.String("cover", ref))
	return nil
}

// ingestLocalFile reads a cover file that lives inside the content tree
// and ingests it into the media library, deduplicating by content hash.
func (m *Mapper) ingestLocalFile(relPath, ref string, dryRun bool) *models.Media {
	data, err := m.tree.Read(ref)
	if err != nil {
		m.logger.Warn("cover file unreadable",
			slog.String("path", relPath), slog.String("cover", ref))
		return nil
	}
	hash := checksum.Sum(data)
	if media, err := m.media.FindMediaByHash(hash); err == nil {
		return media
	}
	if dryRun {
		return nil
	}
	system, err := m.identity.SystemUser()
	if err != nil {
		m.logger.Warn("system identity unavailable for cover ingest",
			slog.String("error", err.Error()))
		return nil
	}
	media, err := m.media.Ingest(path.Base(ref), ref, hash, system.ID)
	if err != nil {
		m.logger.Warn("cover ingest failed",
			slog.String("path", relPath), slog.String("error", err.Error()))
		return nil
	}
	return media
}

// resolveTags accepts a sequence or a delimited string. Each name is
// slugified and get-or-created on a full run; on a dry run tags are
// get-only and unresolvable ones are dropped rather than invented.
func (m *Mapper) resolveTags(doc *models.Document, dryRun bool) ([]models.Tag, *apperr.SyncError) {
	raw, ok := doc.Meta["tags"]
	if !ok || raw == nil {
		return nil, nil
	}

	var names []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if s := strings.TrimSpace(fmt.Sprintf("%v", item)); s != "" {
				names = append(names, s)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				names = append(names, s)
			}
		}
	default:
		return nil, apperr.Syncf(doc.RelPath, apperr.CodeParseFailed, "tags: expected list or string, got %T", raw)
	}

	var (
		out  []models.Tag
		seen = map[string]bool{}
	)
	for _, name := range names {
		slug := layout.Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		t, err := m.catalog.GetTagBySlug(slug)
		if err == nil {
			out = append(out, *t)
			continue
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Syncf(doc.RelPath, apperr.CodeStore, "tag %q: %v", name, err)
		}
		if dryRun {
			continue // dropped from the preview rather than invented
		}
		nt := &models.Tag{ID: uuid.NewString(), Name: name, Slug: slug}
		if err := m.catalog.CreateTag(nt); err != nil {
			if existing, gerr := m.catalog.GetTagBySlug(slug); gerr == nil {
				out = append(out, *existing)
				continue
			}
			return nil, apperr.Syncf(doc.RelPath, apperr.CodeStore, "create tag %q: %v", name, err)
		}
		out = append(out, *nt)
	}
	return out, nil
}
