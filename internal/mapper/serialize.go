package mapper

import (
	"strings"
	"time"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/models"
)

// headerOrder fixes the key order of generated metadata headers.
var headerOrder = []string{
	"title", "slug", "date", "status",
	"author", "author_id",
	"category", "category_id",
	"cover", "cover_media_id",
	"tags",
	"featured", "allow_comments", "rich_content",
	"excerpt", "seo_title", "seo_description", "seo_keywords",
}

// indexHeaderOrder is the key order for category index documents.
var indexHeaderOrder = []string{
	"name", "category_id", "sort", "icon", "hidden",
	"cover", "cover_media_id",
}

// SerializeInput carries a record and its resolved references for the
// record→document direction.
type SerializeInput struct {
	Post     *models.Post
	Author   *models.User     // may be nil
	Category *models.Category // may be nil
	Cover    *models.Media    // may be nil
	TagNames []string
}

// Serialize maps a record back into a metadata header. It is the inverse
// of MapDocument: references serialize as both natural key and backsigned
// id, scalar attributes go through the field table, and keys equal to
// their defaults are omitted.
func (m *Mapper) Serialize(in SerializeInput) (order []string, meta map[string]any) {
	p := in.Post
	meta = map[string]any{
		"title":  p.Title,
		"slug":   p.Slug,
		"status": p.Status,
	}
	if !p.Date.IsZero() {
		meta["date"] = p.Date.UTC().Format(time.RFC3339)
	}
	if in.Author != nil {
		meta["author"] = in.Author.Username
		meta["author_id"] = in.Author.ID
	} else if p.AuthorID != "" {
		meta["author_id"] = p.AuthorID
	}
	if in.Category != nil {
		meta["category"] = in.Category.Slug
		meta["category_id"] = in.Category.ID
	}
	if in.Cover != nil {
		meta["cover"] = in.Cover.Path
		meta["cover_media_id"] = in.Cover.ID
	}
	if len(in.TagNames) > 0 {
		tags := make([]any, len(in.TagNames))
		for i, n := range in.TagNames {
			tags[i] = n
		}
		meta["tags"] = tags
	}

	for _, f := range postFields {
		v := f.Get(p)
		if f.SkipIfDefault && v == f.Default {
			continue
		}
		meta[f.Key] = v
	}
	return headerOrder, meta
}

// MapCategoryIndex merges a category index document into a category
// record: description comes from the body, name/icon/sort/hidden from
// metadata, and the cover goes through the shared cover chain. When cat
// is nil a fresh record (without ID) is returned for creation.
func (m *Mapper) MapCategoryIndex(doc *models.Document, contentType string, cat *models.Category, dryRun bool) (*models.Category, *apperr.SyncError) {
	out := &models.Category{
		Slug: doc.DerivedCategory,
		Type: contentType,
	}
	if cat != nil {
		*out = *cat
	}

	if name, ok := metaString(doc.Meta, "name"); ok {
		out.Name = name
	} else if out.Name == "" {
		out.Name = titleFromSlug(out.Slug)
	}
	if icon, ok := metaString(doc.Meta, "icon"); ok {
		out.Icon = icon
	}
	if raw, ok := doc.Meta["sort"]; ok {
		v, err := parseInt(raw)
		if err != nil {
			return nil, apperr.Syncf(doc.RelPath, apperr.CodeParseFailed, "sort: %v", err)
		}
		out.Sort = v.(int)
	}
	if raw, ok := doc.Meta["hidden"]; ok {
		v, err := parseBool(raw)
		if err != nil {
			return nil, apperr.Syncf(doc.RelPath, apperr.CodeParseFailed, "hidden: %v", err)
		}
		out.Hidden = v.(bool)
	}
	if desc := strings.TrimSpace(doc.Body); desc != "" {
		out.Description = desc
	}
	if media := m.ResolveCover(doc.RelPath, doc.Meta, dryRun); media != nil {
		out.CoverID = media.ID
	}
	return out, nil
}

// SerializeCategoryIndex renders a category record as an index document
// header. The description travels in the body, not the header.
func (m *Mapper) SerializeCategoryIndex(cat *models.Category, cover *models.Media) (order []string, meta map[string]any) {
	meta = map[string]any{
		"name":        cat.Name,
		"category_id": cat.ID,
	}
	if cat.Sort != 0 {
		meta["sort"] = cat.Sort
	}
	if cat.Icon != "" {
		meta["icon"] = cat.Icon
	}
	if cat.Hidden {
		meta["hidden"] = true
	}
	if cover != nil {
		meta["cover"] = cover.Path
		meta["cover_media_id"] = cover.ID
	}
	return indexHeaderOrder, meta
}
