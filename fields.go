package dyntable

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoFieldSpec is returned when a table definition has a schema but
// declares neither Fields nor Exclude.
var ErrNoFieldSpec = errors.New("add an explicit Fields or Exclude to the table definition")

// BuildColumns resolves the column list for a table definition.
//
// fields may be nil (derive every schema field, skipping auto primary
// keys and parent links), an ordered sequence of column specs (any
// shape NewColumn accepts), or a map of name to override spec. exclude
// removes named columns regardless of source. Entries whose resolved
// name is empty are dropped.
func BuildColumns(schema *Schema, fields any, exclude []string) ([]Column, error) {
	if schema == nil && fields == nil {
		if exclude == nil {
			return nil, ErrNoFieldSpec
		}
		return nil, nil
	}
	if schema != nil && fields == nil && exclude == nil {
		return nil, ErrNoFieldSpec
	}

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	switch spec := fields.(type) {
	case nil:
		return deriveColumns(schema, excluded), nil
	case []Column:
		li := make([]any, len(spec))
		for i, c := range spec {
			li[i] = c
		}
		return listColumns(li, excluded), nil
	case []string:
		li := make([]any, len(spec))
		for i, s := range spec {
			li[i] = s
		}
		return listColumns(li, excluded), nil
	case []any:
		return listColumns(spec, excluded), nil
	case map[string]any:
		return mapColumns(spec, excluded), nil
	default:
		return nil, fmt.Errorf("unsupported fields spec %T", fields)
	}
}

// deriveColumns builds one column per schema field in declared order.
func deriveColumns(schema *Schema, excluded map[string]bool) []Column {
	var cols []Column
	for _, f := range schema.Fields() {
		if f.Auto || f.ParentLink || excluded[f.Name] {
			continue
		}
		label := f.Label
		if label == "" {
			label = f.Name
		}
		cols = append(cols, Column{
			Name:        f.Name,
			DisplayName: titleWords(label),
			OrderBy:     f.Name,
		}.normalized())
	}
	return cols
}

func listColumns(specs []any, excluded map[string]bool) []Column {
	var cols []Column
	for _, spec := range specs {
		col := NewColumn(spec)
		if col.Name != "" && !excluded[col.Name] {
			cols = append(cols, col)
		}
	}
	return cols
}

// mapColumns builds columns from name -> override spec. Keys are
// visited in sorted order since Go maps have no declaration order.
func mapColumns(spec map[string]any, excluded map[string]bool) []Column {
	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	sort.Strings(names)

	var cols []Column
	for _, name := range names {
		if excluded[name] {
			continue
		}
		col := NewColumn(name)
		if overrides, ok := spec[name].(map[string]any); ok {
			col = col.merge(overrides).normalized()
		}
		if col.Name != "" {
			cols = append(cols, col)
		}
	}
	return cols
}
