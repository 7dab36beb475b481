// Package models defines the domain types for gitpress.
package models

import "time"

// Post statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ValidStatus reports whether s is a known post status.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

// Post is a content record in the store. Slug is the natural key and is
// immutable after creation; SourcePath links the record to at most one
// file in the content tree.
type Post struct {
	ID            string
	Slug          string
	Title         string
	Type          string
	Status        string
	SourcePath    string // empty when the record was never exported to disk
	CategoryID    string
	AuthorID      string
	CoverID       string
	Body          string
	Rendered      string // derived artifact produced by the render collaborator
	Excerpt       string
	SEOTitle      string
	SEODesc       string
	SEOKeywords   string
	Featured      bool
	AllowComments bool
	RichContent   bool // selects the .mdx extension on export
	Date          time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Category is unique per (slug, type).
type Category struct {
	ID          string
	Slug        string
	Type        string
	Name        string
	ParentID    string
	Sort        int
	Icon        string
	Hidden      bool
	Description string
	CoverID     string
}

// Tag has a unique name and slug.
type Tag struct {
	ID   string
	Name string
	Slug string
}

// User is an author identity. The system user owns machine-ingested media.
type User struct {
	ID          string
	Username    string
	DisplayName string
	System      bool
}

// Media is a reference to an ingested media file.
type Media struct {
	ID         string
	Filename   string
	Path       string // path under the managed media directory
	Hash       string
	UploadedBy string
}

// Document is the transient result of scanning one content file. It is
// discarded after reconciliation.
type Document struct {
	RelPath          string
	ContentHash      string
	MetadataHash     string
	Meta             map[string]any
	Body             string
	ModifiedTime     time.Time
	DerivedType      string
	DerivedCategory  string
	IsCategoryIndex  bool
}

// SyncStats is the per-run outcome of a sync pass.
type SyncStats struct {
	Added    int           `json:"added"`
	Updated  int           `json:"updated"`
	Deleted  []string      `json:"deleted"`
	Errors   []SyncIssue   `json:"errors"`
	Duration time.Duration `json:"duration"`

	touched []string
}

// Touched records a created or updated source path for downstream cache
// invalidation.
func (s *SyncStats) Touched(path string) { s.touched = append(s.touched, path) }

// AffectedPaths returns every path the run created, updated, or deleted.
func (s *SyncStats) AffectedPaths() []string {
	out := make([]string, 0, len(s.Deleted)+len(s.touched))
	out = append(out, s.Deleted...)
	return append(out, s.touched...)
}

// SyncIssue is one recorded per-file error.
type SyncIssue struct {
	Context string `json:"context"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Clean reports whether the run finished without per-file errors.
func (s *SyncStats) Clean() bool { return len(s.Errors) == 0 }

// Changed reports whether the run touched any record or file.
func (s *SyncStats) Changed() bool {
	return s.Added > 0 || s.Updated > 0 || len(s.Deleted) > 0
}

// FieldDiff is one attribute-level difference found by preview.
type FieldDiff struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// PreviewEntry classifies one document in a dry run.
type PreviewEntry struct {
	Path  string      `json:"path"`
	Slug  string      `json:"slug,omitempty"`
	Diffs []FieldDiff `json:"diffs,omitempty"`
}

// Preview is the result of a dry-run comparison.
type Preview struct {
	ToCreate      []PreviewEntry `json:"to_create"`
	ToUpdate      []PreviewEntry `json:"to_update"`
	ToDelete      []PreviewEntry `json:"to_delete"`
	NeverExported int            `json:"never_exported"`
	Errors        []SyncIssue    `json:"errors,omitempty"`
}
