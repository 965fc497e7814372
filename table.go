package dyntable

import (
	"fmt"
	"sync"
)

// DataSet is the deferred data collection a Table binds to.
// Implementations apply annotations and ordering to their underlying
// query; plain in-memory collections simply don't implement it and the
// Table passes them through untouched.
type DataSet interface {
	// Annotate attaches computed expressions under their names.
	Annotate(exprs map[string]string)
	// OrderBy replaces the collection's ordering with SQL clauses.
	OrderBy(clauses ...string)
}

// RenderFunc is a per-column render hook, called with the row, the
// pre-extracted cell value and the row index (nil when absent).
type RenderFunc func(row any, cell any, rowIdx any) string

// Options configures a table definition.
type Options struct {
	Schema  *Schema
	Schemas *SchemaSet // relation targets for ordering traversal

	// Fields is nil (derive all schema fields), an ordered sequence of
	// column specs, or a map of name -> override spec.
	Fields  any
	Exclude []string

	// NoSort disables ordering for every instance of this table.
	NoSort bool

	// Annotations maps synthetic field names to literal expressions
	// attached to the data set before column resolution. The map is
	// treated as an immutable template; instances deep-copy it.
	Annotations map[string]string

	// Renderers holds named per-column render hooks, keyed by column
	// name.
	Renderers map[string]RenderFunc

	TableID         string
	TableClassNames string
	TableStyle      string
	RowClassNames   string
	RowStyle        string
}

// Definition is the immutable, one-time-built description of a table
// type: its column list, annotation template and presentation
// metadata. Build definitions once at startup with Define.
type Definition struct {
	name        string
	opts        Options
	columns     []Column
	annotations map[string]string
}

var (
	regMu    sync.RWMutex
	registry = make(map[string]*Definition)
)

// Define builds a table definition, resolving its columns, and stores
// it in the process-wide registry under name. Configuration errors are
// reported here, at definition time, never at render time.
func Define(name string, opts Options) (*Definition, error) {
	columns, err := BuildColumns(opts.Schema, opts.Fields, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("dyntable: define %q: %w", name, err)
	}
	if opts.TableID == "" {
		opts.TableID = "dynamic_table"
	}
	def := &Definition{
		name:        name,
		opts:        opts,
		columns:     columns,
		annotations: cloneAnnotations(opts.Annotations),
	}

	regMu.Lock()
	registry[name] = def
	regMu.Unlock()
	return def, nil
}

// MustDefine is Define, panicking on configuration errors.
func MustDefine(name string, opts Options) *Definition {
	def, err := Define(name, opts)
	if err != nil {
		panic(err)
	}
	return def
}

// Lookup returns a registered definition by name.
func Lookup(name string) (*Definition, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	def, ok := registry[name]
	return def, ok
}

// Name returns the registry name of the definition.
func (d *Definition) Name() string { return d.name }

// Columns returns a copy of the resolved column list.
func (d *Definition) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// Sortable reports whether instances of this table apply ordering.
func (d *Definition) Sortable() bool { return !d.opts.NoSort }

func (d *Definition) TableID() string         { return d.opts.TableID }
func (d *Definition) TableClassNames() string { return d.opts.TableClassNames }
func (d *Definition) TableStyle() string      { return d.opts.TableStyle }
func (d *Definition) RowClassNames() string   { return d.opts.RowClassNames }
func (d *Definition) RowStyle() string        { return d.opts.RowStyle }

// Table is a per-request binding of a definition to a data collection.
// Instances own copies of the definition's column list and annotation
// map, so runtime mutation never leaks back to the definition or to
// concurrent instances. Tables are cheap and must not be shared across
// concurrent renders.
type Table struct {
	def *Definition

	Columns []Column
	Data    any

	// OrderBy holds the resolved order terms; Ordering retains the raw
	// requested sort string for round-tripping into URLs.
	OrderBy  []OrderTerm
	Ordering string

	annotations map[string]string
}

// New binds the definition to a data collection. orderBy is the raw
// requested sort specification ("" for none); parent is handed to
// callable annotations.
func (d *Definition) New(data any, orderBy string, parent any) *Table {
	t := &Table{
		def:         d,
		Columns:     d.Columns(),
		annotations: cloneAnnotations(d.annotations),
	}
	t.SetOrdering(orderBy)
	t.Data = t.sort(t.annotate(data, parent))
	return t
}

// Definition returns the definition this table was built from.
func (t *Table) Definition() *Definition { return t.def }

// SetOrdering records the requested sort string and resolves it into
// order terms.
func (t *Table) SetOrdering(orderBy string) {
	t.Ordering = orderBy
	t.OrderBy = nil
	if orderBy != "" {
		t.OrderBy = Ordering(t.def.opts.Schemas, t.def.opts.Schema, orderBy)
	}
}

// Headers returns every column's display name, in column order.
func (t *Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = col.DisplayName
	}
	return headers
}

// annotate applies column annotations: callables transform the data
// set directly, literal expressions are collected and attached in one
// pass together with the instance annotation map.
func (t *Table) annotate(data any, parent any) any {
	exprs := cloneAnnotations(t.annotations)
	for _, col := range t.Columns {
		switch a := col.Annotate.(type) {
		case nil:
		case AnnotateFunc:
			data = a(col.Name, data, parent)
		case func(name string, data any, parent any) any:
			data = a(col.Name, data, parent)
		case string:
			exprs[col.Name] = a
		}
	}
	if len(exprs) == 0 {
		return data
	}
	if ds, ok := data.(DataSet); ok {
		ds.Annotate(exprs)
	}
	return data
}

// sort applies the resolved ordering to the data set when the
// definition is sortable and an ordering was requested.
func (t *Table) sort(data any) any {
	if !t.def.Sortable() || t.Ordering == "" {
		return data
	}
	if ds, ok := data.(DataSet); ok {
		clauses := make([]string, len(t.OrderBy))
		for i, term := range t.OrderBy {
			clauses[i] = term.SQL()
		}
		ds.OrderBy(clauses...)
	}
	return data
}

// Render produces the cell for one row/column pair. Columns with a tag
// go through the tag interpreter; otherwise a named render hook for the
// column is tried; otherwise the raw cell value is stringified. All
// results are marked safe for embedding.
func (t *Table) Render(row any, col Column, rowIdx any) Safe {
	cell := cellValue(row, col.Name)

	if col.Tag != "" {
		return col.ParseTag(row, cell, rowIdx)
	}
	if fn, ok := t.def.opts.Renderers[col.Name]; ok {
		return Safe(fn(row, cell, rowIdx))
	}
	return Safe(stringify(cell))
}

// cellValue extracts the column's value from a row: mapping key or
// attribute lookup, "" on a miss, invoking callables.
func cellValue(row any, name string) any {
	v, ok := itemAttr(row, name)
	if !ok {
		return ""
	}
	if v == nil {
		return ""
	}
	return v
}

func cloneAnnotations(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
