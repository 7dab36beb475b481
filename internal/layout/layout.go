// Package layout encodes the on-disk conventions of the content tree:
// how directories map to content types and categories, and how records
// map back to canonical file paths.
package layout

import (
	"path"
	"strings"
	"unicode"
)

// IndexFilename is the reserved name for category index documents.
const IndexFilename = "index.md"

// DefaultCategoryDir is used for records without a category.
const DefaultCategoryDir = "uncategorized"

// Extensions recognized as content files.
var Extensions = map[string]bool{
	".md":  true,
	".mdx": true,
}

// typeAliases maps directory names (singular and plural) to canonical
// content types.
var typeAliases = map[string]string{
	"article":  "article",
	"articles": "article",
	"idea":     "idea",
	"ideas":    "idea",
	"note":     "note",
	"notes":    "note",
	"page":     "page",
	"pages":    "page",
}

// typeDirs is the inverse of typeAliases: canonical type → plural directory.
var typeDirs = map[string]string{
	"article": "articles",
	"idea":    "ideas",
	"note":    "notes",
	"page":    "pages",
}

// PathInfo is what a relative path alone says about a document.
type PathInfo struct {
	Type         string // canonical content type, empty when underivable
	CategorySlug string // empty when the path carries no category segment
}

// Parse derives type and category from a slash-separated relative path.
// Segment 0 maps through the type-alias table; segment 1 becomes the
// category slug only when the path has three or more segments. A
// two-segment path yields type only; a single segment yields neither.
func Parse(rel string) PathInfo {
	rel = strings.Trim(path.Clean(filepathToSlash(rel)), "/")
	segs := strings.Split(rel, "/")

	var info PathInfo
	if len(segs) < 2 {
		return info
	}
	info.Type = typeAliases[strings.ToLower(segs[0])]
	if len(segs) >= 3 {
		info.CategorySlug = Slugify(segs[1])
	}
	return info
}

// KnownType reports whether t is a canonical content type.
func KnownType(t string) bool {
	_, ok := typeDirs[t]
	return ok
}

// TypeDir returns the plural directory name for a canonical type,
// falling back to the type itself for unknown values.
func TypeDir(t string) string {
	if d, ok := typeDirs[t]; ok {
		return d
	}
	return t
}

// IsContentFile reports whether name has a recognized content extension
// and is not on the ignore list (README, LICENSE, dotfiles).
func IsContentFile(name string) bool {
	base := path.Base(filepathToSlash(name))
	if strings.HasPrefix(base, ".") {
		return false
	}
	upper := strings.ToUpper(base)
	if strings.HasPrefix(upper, "README") || strings.HasPrefix(upper, "LICENSE") {
		return false
	}
	return Extensions[strings.ToLower(path.Ext(base))]
}

// Slugify lowercases s and replaces runs of non-letter, non-digit runes
// with single dashes. Letters and digits from any script are kept, so
// non-ASCII category directories survive.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteRune('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// maxTitleLen bounds sanitized filenames to stay well under common
// filesystem limits even for multi-byte scripts.
const maxTitleLen = 80

// SanitizeTitle turns a record title into a safe filename stem: control
// and filesystem-reserved characters are dropped, whitespace collapses to
// single spaces, and the result is truncated to maxTitleLen runes.
// Non-ASCII scripts are preserved.
func SanitizeTitle(title string) string {
	var b strings.Builder
	space := false
	for _, r := range title {
		switch {
		case unicode.IsControl(r):
			continue
		case strings.ContainsRune(`/\:*?"<>|`, r):
			continue
		case unicode.IsSpace(r):
			if !space && b.Len() > 0 {
				b.WriteRune(' ')
				space = true
			}
		default:
			b.WriteRune(r)
			space = false
		}
	}
	out := strings.TrimSpace(b.String())
	runes := []rune(out)
	if len(runes) > maxTitleLen {
		out = strings.TrimSpace(string(runes[:maxTitleLen]))
	}
	if out == "" {
		out = "untitled"
	}
	return out
}

// TargetPath computes the canonical relative path for a record of the
// given type and category. Rich-content records get the .mdx extension.
func TargetPath(contentType, categorySlug, title string, richContent bool) string {
	dir := TypeDir(contentType)
	cat := categorySlug
	if cat == "" {
		cat = DefaultCategoryDir
	}
	ext := ".md"
	if richContent {
		ext = ".mdx"
	}
	return path.Join(dir, cat, SanitizeTitle(title)+ext)
}

// IndexPath returns the category index document path for a type/category.
func IndexPath(contentType, categorySlug string) string {
	return path.Join(TypeDir(contentType), categorySlug, IndexFilename)
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
