package dyntable

// Kind classifies a schema field for display and ordering purposes.
type Kind string

const (
	KindAuto      Kind = "auto" // auto-generated primary key
	KindChar      Kind = "char"
	KindText      Kind = "text"
	KindEmail     Kind = "email"
	KindFile      Kind = "file"
	KindFilePath  Kind = "filepath"
	KindSlug      Kind = "slug"
	KindURL       Kind = "url"
	KindUUID      Kind = "uuid"
	KindIPAddress Kind = "ip"
	KindInteger   Kind = "integer"
	KindFloat     Kind = "float"
	KindDecimal   Kind = "decimal"
	KindBool      Kind = "bool"
	KindDate      Kind = "date"
	KindDateTime  Kind = "datetime"
	KindRelation  Kind = "relation"
)

// textKinds are the kinds whose natural database collation is case
// sensitive; ordering on them gets a case-insensitive sort key.
var textKinds = map[Kind]bool{
	KindChar:      true,
	KindText:      true,
	KindEmail:     true,
	KindFile:      true,
	KindFilePath:  true,
	KindSlug:      true,
	KindURL:       true,
	KindUUID:      true,
	KindIPAddress: true,
}

// Text reports whether ordering on this kind should fold case.
func (k Kind) Text() bool { return textKinds[k] }

// Field describes one attribute of a record type.
type Field struct {
	Name       string
	Label      string
	Kind       Kind
	Auto       bool   // auto-generated primary key, skipped when deriving columns
	ParentLink bool   // inheritance-join link, skipped when deriving columns
	RelatedTo  string // target schema name for relation fields
}

// Schema is an ordered set of field descriptors describing a record type.
type Schema struct {
	Name   string
	fields []Field
	byName map[string]int
}

// NewSchema builds a schema from fields in their declared order.
func NewSchema(name string, fields ...Field) *Schema {
	s := &Schema{Name: name, fields: fields, byName: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.byName[f.Name] = i
	}
	return s
}

// Fields returns the field descriptors in declared order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field descriptor by name.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// SchemaSet resolves schema names to schemas, used when an ordering
// token traverses relations.
type SchemaSet struct {
	m map[string]*Schema
}

// NewSchemaSet builds a set from the given schemas.
func NewSchemaSet(schemas ...*Schema) *SchemaSet {
	set := &SchemaSet{m: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		set.Add(s)
	}
	return set
}

// Add registers a schema under its name, replacing any previous entry.
func (ss *SchemaSet) Add(s *Schema) {
	if ss.m == nil {
		ss.m = make(map[string]*Schema)
	}
	ss.m[s.Name] = s
}

// Schema looks up a schema by name.
func (ss *SchemaSet) Schema(name string) (*Schema, bool) {
	if ss == nil {
		return nil, false
	}
	s, ok := ss.m[name]
	return s, ok
}
