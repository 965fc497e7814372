package dyntable

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Column defines how one data field is displayed and sorted.
// A Column is a value object: once built it is safe to share across
// render calls.
type Column struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	OrderBy     string `json:"order_by"`
	Tag         string `json:"tag,omitempty"`
	ClassNames  string `json:"class_names,omitempty"`
	Style       string `json:"style,omitempty"`

	// Annotate attaches a computed value under Name before column
	// resolution. Either a literal SQL expression (string) or an
	// AnnotateFunc for arbitrary computed columns.
	Annotate any `json:"-"`
}

// AnnotateFunc computes an annotation by transforming the bound data
// collection. It may return a replacement collection.
type AnnotateFunc func(name string, data any, parent any) any

// NewColumn builds a Column from any of the accepted shapes:
//
//   - a bare name string
//   - a positional sequence [name, display_name, order_by, tag,
//     class_names, style] (trailing entries optional, extras ignored)
//   - a map with keys name, display_name, order_by (alias "sort"),
//     tag, class_names, style, annotate
//   - an existing Column, re-normalized
//
// Missing DisplayName and OrderBy are always backfilled from Name.
func NewColumn(spec any) Column {
	var c Column
	switch v := spec.(type) {
	case Column:
		c = v
	case *Column:
		c = *v
	case string:
		c.Name = v
	case map[string]any:
		c = c.merge(v)
	case []string:
		li := make([]any, len(v))
		for i, s := range v {
			li[i] = s
		}
		c = c.fromList(li)
	case []any:
		c = c.fromList(v)
	}
	return c.normalized()
}

// merge applies a map spec on top of the column, deriving a missing
// name from the display name when possible.
func (c Column) merge(m map[string]any) Column {
	if v, ok := m["name"]; ok {
		c.Name = asString(v)
	}
	if v, ok := m["display_name"]; ok {
		c.DisplayName = asString(v)
	}
	if v, ok := m["order_by"]; ok {
		c.OrderBy = asString(v)
	} else if v, ok := m["sort"]; ok {
		c.OrderBy = asString(v)
	}
	if v, ok := m["tag"]; ok {
		c.Tag = asString(v)
	}
	if v, ok := m["class_names"]; ok {
		c.ClassNames = asString(v)
	}
	if v, ok := m["style"]; ok {
		c.Style = asString(v)
	}
	if v, ok := m["annotate"]; ok {
		c.Annotate = v
	}
	if c.Name == "" && c.DisplayName != "" {
		c.Name = strings.ReplaceAll(strings.ToLower(c.DisplayName), " ", "_")
	}
	return c
}

func (c Column) fromList(li []any) Column {
	if len(li) > 0 {
		c.Name = asString(li[0])
	}
	if len(li) > 1 {
		c.DisplayName = asString(li[1])
	}
	if len(li) > 2 {
		c.OrderBy = asString(li[2])
	}
	if len(li) > 3 {
		c.Tag = asString(li[3])
	}
	if len(li) > 4 {
		c.ClassNames = asString(li[4])
	}
	if len(li) > 5 {
		c.Style = asString(li[5])
	}
	return c
}

// normalized backfills DisplayName and OrderBy from Name.
func (c Column) normalized() Column {
	if c.DisplayName == "" && c.Name != "" {
		c.DisplayName = displayName(c.Name)
	}
	if c.OrderBy == "" && c.Name != "" {
		c.OrderBy = c.Name
	}
	return c
}

// SafeTag returns the raw tag with placeholder spacing collapsed and
// quotes escaped, for embedding in a generated script or attribute
// context. It does not evaluate the template.
func (c Column) SafeTag() Safe {
	tag := strings.ReplaceAll(strings.ReplaceAll(c.Tag, "{{ ", "{{"), " }}", "}}")
	tag = strings.ReplaceAll(tag, `"`, `\"`)
	tag = strings.ReplaceAll(tag, `'`, `\'`)
	return Safe(tag)
}

func displayName(name string) string {
	return titleWords(strings.ReplaceAll(name, "_", " "))
}

func titleWords(s string) string {
	return cases.Title(language.English).String(s)
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}
