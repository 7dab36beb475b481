package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arnarsson/gitpress/internal/models"
)

// Field is one row of the declarative mapping table between a metadata
// key and a record attribute. Parsing uses Parse or identity; on
// serialization the key is omitted when SkipIfDefault holds and the value
// equals Default, keeping generated files minimal. The table is the
// single point of truth for attribute round-trip coverage.
type Field struct {
	Key           string
	Default       any
	SkipIfDefault bool
	Parse         func(any) (any, error)
	Get           func(*models.Post) any
	Set           func(*models.Post, any)
}

func (f Field) parse(raw any) (any, error) {
	if f.Parse != nil {
		return f.Parse(raw)
	}
	return raw, nil
}

// postFields covers the scalar attributes that need no reference
// resolution. Title, slug, date, status, and all references are handled
// by dedicated resolvers.
var postFields = []Field{
	{
		Key: "featured", Default: false, SkipIfDefault: true, Parse: parseBool,
		Get: func(p *models.Post) any { return p.Featured },
		Set: func(p *models.Post, v any) { p.Featured = v.(bool) },
	},
	{
		Key: "allow_comments", Default: true, SkipIfDefault: true, Parse: parseBool,
		Get: func(p *models.Post) any { return p.AllowComments },
		Set: func(p *models.Post, v any) { p.AllowComments = v.(bool) },
	},
	{
		Key: "rich_content", Default: false, SkipIfDefault: true, Parse: parseBool,
		Get: func(p *models.Post) any { return p.RichContent },
		Set: func(p *models.Post, v any) { p.RichContent = v.(bool) },
	},
	{
		Key: "excerpt", Default: "", SkipIfDefault: true, Parse: parseString,
		Get: func(p *models.Post) any { return p.Excerpt },
		Set: func(p *models.Post, v any) { p.Excerpt = v.(string) },
	},
	{
		Key: "seo_title", Default: "", SkipIfDefault: true, Parse: parseString,
		Get: func(p *models.Post) any { return p.SEOTitle },
		Set: func(p *models.Post, v any) { p.SEOTitle = v.(string) },
	},
	{
		Key: "seo_description", Default: "", SkipIfDefault: true, Parse: parseString,
		Get: func(p *models.Post) any { return p.SEODesc },
		Set: func(p *models.Post, v any) { p.SEODesc = v.(string) },
	},
	{
		Key: "seo_keywords", Default: "", SkipIfDefault: true, Parse: parseString,
		Get: func(p *models.Post) any { return p.SEOKeywords },
		Set: func(p *models.Post, v any) { p.SEOKeywords = v.(string) },
	},
}

func parseString(raw any) (any, error) {
	return strings.TrimSpace(fmt.Sprintf("%v", raw)), nil
}

func parseBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", v)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("not a boolean: %v", raw)
	}
}

func parseInt(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("not an integer: %v", raw)
	}
}
