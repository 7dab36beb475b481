package engine

import (
	"sort"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/models"
	"github.com/arnarsson/gitpress/internal/parser"
)

// backsignOrder lists the identifier fields that get written back into a
// content file after creation, enabling id-based matching on later runs.
var backsignOrder = []string{"slug", "author_id", "category_id", "cover_media_id"}

// backsign writes generated identifiers back into the document's metadata
// header. Only fields whose value differs from what the file already
// declares are touched; when nothing differs the file is left alone.
func (e *Engine) backsign(doc *models.Document, p *models.Post) *apperr.SyncError {
	want := map[string]string{
		"slug":           p.Slug,
		"author_id":      p.AuthorID,
		"category_id":    p.CategoryID,
		"cover_media_id": p.CoverID,
	}
	return e.backsignFields(doc, want)
}

// backsignCategory writes the category id into an index document.
func (e *Engine) backsignCategory(doc *models.Document, c *models.Category) *apperr.SyncError {
	return e.backsignFields(doc, map[string]string{"category_id": c.ID})
}

func (e *Engine) backsignFields(doc *models.Document, want map[string]string) *apperr.SyncError {
	meta := doc.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	changed := false
	for key, value := range want {
		if value == "" {
			continue
		}
		if cur, ok := meta[key]; ok && stringish(cur) == value {
			continue
		}
		meta[key] = value
		changed = true
	}
	if !changed {
		return nil
	}

	data, err := parser.Marshal(headerKeyOrder(meta), meta, doc.Body)
	if err != nil {
		return apperr.Syncf(doc.RelPath, apperr.CodeFileOp, "backsign: %v", err)
	}
	if err := e.tree.Write(doc.RelPath, data); err != nil {
		return apperr.Syncf(doc.RelPath, apperr.CodeFileOp, "backsign: %v", err)
	}
	return nil
}

// headerKeyOrder keeps the file's known keys in canonical order and
// appends unknown keys sorted, so backsigning never scrambles a header.
func headerKeyOrder(meta map[string]any) []string {
	known := []string{
		"title", "name", "slug", "date", "status",
		"author", "author_id", "category", "category_id",
		"cover", "cover_media_id", "tags",
		"featured", "allow_comments", "rich_content",
		"excerpt", "seo_title", "seo_description", "seo_keywords",
		"sort", "icon", "hidden",
	}
	inKnown := map[string]bool{}
	var order []string
	for _, k := range known {
		inKnown[k] = true
		if _, ok := meta[k]; ok {
			order = append(order, k)
		}
	}
	var rest []string
	for k := range meta {
		if !inKnown[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func stringish(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
