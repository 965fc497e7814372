package dyntable

import "strings"

// relation path separator inside a sort token, e.g. "author__name".
const pathSep = "__"

// OrderTerm is one resolved unit of a sort specification.
type OrderTerm struct {
	Raw  string // the token as requested, sign included
	Path string // field path without the sign
	Desc bool
	Fold bool // case-insensitive sort key
}

// String returns the token as it appeared in the request, for
// round-tripping into URLs.
func (t OrderTerm) String() string { return t.Raw }

// SQL renders the term as an ORDER BY element. Relation separators map
// to dotted column references; the caller's query builder is expected
// to have joined the related tables under matching aliases.
func (t OrderTerm) SQL() string {
	col := strings.ReplaceAll(t.Path, pathSep, ".")
	if t.Fold {
		col = "UPPER(" + col + ")"
	}
	if t.Desc {
		return col + " DESC"
	}
	return col
}

// Ordering rewrites a comma-separated sort specification into order
// terms. Each token may be prefixed with "-" for descending and may
// traverse relations with "__", re-resolving the schema at every hop
// through the schema set. Tokens naming a case-sensitive text field
// get a case-insensitive sort key; every other token — numeric,
// boolean, date, or unresolvable — passes through unchanged.
func Ordering(set *SchemaSet, schema *Schema, spec string) []OrderTerm {
	parts := strings.Split(spec, ",")
	terms := make([]OrderTerm, 0, len(parts))
	for _, tok := range parts {
		terms = append(terms, orderTerm(set, schema, tok))
	}
	return terms
}

func orderTerm(set *SchemaSet, schema *Schema, tok string) OrderTerm {
	col := tok
	desc := false
	if strings.HasPrefix(col, "-") {
		desc = true
		col = col[1:]
	}
	term := OrderTerm{Raw: tok, Path: col, Desc: desc}

	// Walk relation hops; a miss at any hop returns the token as-is.
	sub := col
	for strings.Contains(sub, pathSep) {
		name, rest, _ := strings.Cut(sub, pathSep)
		f, ok := schema.Field(name)
		if !ok {
			diag("ordering field not found", "token", tok, "segment", name)
			return term
		}
		schema, ok = set.Schema(f.RelatedTo)
		if !ok {
			diag("ordering relation not found", "token", tok, "relation", f.RelatedTo)
			return term
		}
		sub = rest
	}

	f, ok := schema.Field(sub)
	if !ok {
		diag("ordering field not found", "token", tok, "segment", sub)
		return term
	}
	if f.Kind.Text() {
		term.Fold = true
	}
	return term
}
