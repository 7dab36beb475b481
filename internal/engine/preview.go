package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arnarsson/gitpress/internal/mapper"
	"github.com/arnarsson/gitpress/internal/models"
)

// Preview computes a dry-run diff: what a full sync would create, update,
// and delete, without persisting anything. It shares the sync lock so a
// preview never observes a half-applied pass.
func (e *Engine) Preview(ctx context.Context) (*models.Preview, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := &models.Preview{}

	docs, issues, err := e.scanner.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	out.Errors = append(out.Errors, issues...)

	posts, err := e.store.ListExported()
	if err != nil {
		return nil, err
	}

	matched := make(map[string]bool, len(posts))
	for i := range docs {
		doc := &docs[i]
		if doc.IsCategoryIndex {
			continue
		}
		existing, _ := mapper.Match(doc, posts)
		if existing != nil {
			matched[existing.ID] = true
		}
		mapped, serr := e.mapper.MapDocument(doc, true)
		if serr != nil {
			out.Errors = append(out.Errors, models.SyncIssue{
				Context: serr.Context, Code: serr.Code, Message: serr.Message,
			})
			continue
		}
		if existing == nil {
			out.ToCreate = append(out.ToCreate, models.PreviewEntry{Path: doc.RelPath})
			continue
		}
		diffs := e.diffPost(doc, mapped, existing)
		if len(diffs) > 0 {
			out.ToUpdate = append(out.ToUpdate, models.PreviewEntry{
				Path: doc.RelPath, Slug: existing.Slug, Diffs: diffs,
			})
		}
	}

	// A record whose file failed to scan or map is an error, not a
	// pending deletion.
	failed := make(map[string]bool, len(out.Errors))
	for _, issue := range out.Errors {
		failed[issue.Context] = true
	}
	for i := range posts {
		p := &posts[i]
		if !matched[p.ID] && !failed[p.SourcePath] {
			out.ToDelete = append(out.ToDelete, models.PreviewEntry{
				Path: p.SourcePath, Slug: p.Slug,
			})
		}
	}

	never, err := e.store.CountNeverExported()
	if err != nil {
		return nil, err
	}
	out.NeverExported = never
	return out, nil
}

// diffPost compares mapped document fields against an existing record.
// Identifier and enum fields fold case, so representation-only
// differences (id casing, enum casing, timestamp precision) never
// register; content fields compare exactly.
func (e *Engine) diffPost(doc *models.Document, mapped *mapper.Mapped, existing *models.Post) []models.FieldDiff {
	var diffs []models.FieldDiff
	add := func(field string, oldV, newV any) {
		o, n := normalize(oldV), normalize(newV)
		if o != n {
			diffs = append(diffs, models.FieldDiff{Field: field, Old: o, New: n})
		}
	}
	addFold := func(field string, oldV, newV any) {
		o, n := normalize(oldV), normalize(newV)
		if !strings.EqualFold(o, n) {
			diffs = append(diffs, models.FieldDiff{Field: field, Old: o, New: n})
		}
	}

	p := &mapped.Post
	add("title", existing.Title, p.Title)
	addFold("type", existing.Type, p.Type)
	addFold("status", existing.Status, p.Status)
	add("source_path", existing.SourcePath, doc.RelPath)
	addFold("category_id", existing.CategoryID, p.CategoryID)
	addFold("author_id", existing.AuthorID, p.AuthorID)
	addFold("cover_id", existing.CoverID, p.CoverID)
	add("body", existing.Body, p.Body)
	add("excerpt", existing.Excerpt, p.Excerpt)
	add("seo_title", existing.SEOTitle, p.SEOTitle)
	add("seo_description", existing.SEODesc, p.SEODesc)
	add("seo_keywords", existing.SEOKeywords, p.SEOKeywords)
	add("featured", existing.Featured, p.Featured)
	add("allow_comments", existing.AllowComments, p.AllowComments)
	add("rich_content", existing.RichContent, p.RichContent)
	// An undeclared date falls back to the file's modified time, which
	// moves on every rewrite; only a declared date can register a change.
	if _, ok := doc.Meta["date"]; ok {
		add("date", existing.Date, p.Date)
	}

	if tags, err := e.store.PostTags(existing.ID); err == nil {
		var existingNames []string
		for _, t := range tags {
			existingNames = append(existingNames, t.Name)
		}
		add("tags", strings.Join(existingNames, ","), strings.Join(mapped.TagNames, ","))
	}
	return diffs
}

// normalize renders a value in its canonical comparison form: booleans
// as plain strings, timestamps at second precision. String case is
// preserved; callers fold it only for identifier and enum fields.
func normalize(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Truncate(time.Second).Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
