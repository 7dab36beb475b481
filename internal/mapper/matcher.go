package mapper

import "github.com/arnarsson/gitpress/internal/models"

// Match pairs a document with an existing record. An exact source-path
// match wins and is never a move. Failing that, a record carrying the
// document's declared slug signals a move: the caller must update the
// record's source path. No match means the document is a creation
// candidate.
func Match(doc *models.Document, candidates []models.Post) (*models.Post, bool) {
	byPath := make(map[string]*models.Post, len(candidates))
	bySlug := make(map[string]*models.Post, len(candidates))
	for i := range candidates {
		p := &candidates[i]
		if p.SourcePath != "" {
			byPath[p.SourcePath] = p
		}
		bySlug[p.Slug] = p
	}

	if p, ok := byPath[doc.RelPath]; ok {
		return p, false
	}
	if slug, ok := metaString(doc.Meta, "slug"); ok {
		if p, ok := bySlug[slug]; ok {
			return p, true
		}
	}
	return nil, false
}
