package dyntable

import (
	"fmt"
	"html/template"
	"reflect"
	"regexp"
	"strings"
)

// Safe marks a string as safe for direct HTML embedding. Tag output is
// never HTML-escaped: template authors write the tags themselves, but
// values resolved from row attributes are substituted raw. That is an
// intentional trust boundary, not an escaping bug.
type Safe = template.HTML

var tagPlaceholder = regexp.MustCompile(`\{([^{}]+)\}`)

// ParseTag evaluates the column's tag template against a row object and
// the pre-extracted cell value. rowIdx may be nil when the caller has
// no row index.
//
// Placeholders use {{...}} delimiters ({{ x }} and {{x}} are
// equivalent). Reserved tokens: item, item.<attr>, row_idx, if <expr>,
// else, endif; any other token substitutes the cell value. Conditional
// blocks support a single level of if/else; nesting an if inside
// another if is unsupported input. Resolution misses (unknown key or
// attribute, wrong container type, a panicking callable) substitute ""
// rather than propagating.
func (c Column) ParseTag(row any, cell any, rowIdx any) Safe {
	tag := strings.ReplaceAll(strings.ReplaceAll(c.Tag, "{{ ", "{{"), " }}", "}}")

	// The token list is fixed up front; block reduction below mutates
	// the working template only.
	matches := tagPlaceholder.FindAllStringSubmatch(tag, -1)
	for _, m := range matches {
		val := m[1]
		if val == "endif" || val == "else" {
			continue
		}

		isIfCond := false
		if strings.HasPrefix(val, "if ") {
			isIfCond = true
			val = val[3:]
		}

		value := resolveTagValue(val, row, cell, rowIdx)

		if isIfCond {
			tag = reduceIf(tag, val, truthy(value))
			tag = strings.ReplaceAll(tag, "{{"+val+"}}", stringify(value))
			continue
		}

		tag = strings.ReplaceAll(tag, "{{"+val+"}}", stringify(value))
	}

	return Safe(tag)
}

// reduceIf resolves one {{if cond}}...{{else}}...{{endif}} block.
// Unmatched markers leave the template untouched for this token.
func reduceIf(tag, cond string, keep bool) string {
	open := "{{if " + cond + "}}"
	start := strings.Index(tag, open)
	endifIdx := strings.Index(tag, "{{endif}}")
	if start < 0 || endifIdx < 0 {
		return tag
	}
	end := endifIdx + len("{{endif}}")
	elseIdx := strings.Index(tag, "{{else}}")
	hasElse := elseIdx >= 0 && elseIdx < end

	if keep {
		if hasElse {
			// Drop the else branch, then the opening marker.
			tag = tag[:elseIdx] + tag[end:]
			return strings.Replace(tag, open, "", 1)
		}
		tag = strings.Replace(tag, open, "", 1)
		return strings.Replace(tag, "{{endif}}", "", 1)
	}
	if hasElse {
		// Keep the else branch only.
		tag = tag[:start] + tag[elseIdx+len("{{else}}"):]
		return strings.Replace(tag, "{{endif}}", "", 1)
	}
	return tag[:start] + tag[end:]
}

// resolveTagValue resolves one placeholder token. nil results collapse
// to "".
func resolveTagValue(val string, row, cell, rowIdx any) any {
	var value any
	switch {
	case strings.HasPrefix(val, "item."):
		value, _ = itemAttr(row, val[len("item."):])
	case val == "item":
		value = row
	case val == "row_idx":
		value = rowIdx
	default:
		value = cell
	}
	if value == nil {
		return ""
	}
	return value
}

// itemAttr looks up name on a row: mapping key first, then exported
// struct field, then a no-argument method. Callable results are
// invoked. The boolean reports whether the lookup resolved; failures
// are reported to the diagnostics hook and collapse to "".
func itemAttr(row any, name string) (v any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			diag("tag attribute lookup failed", "attr", name, "panic", r)
			v, ok = "", false
		}
	}()

	switch m := row.(type) {
	case map[string]any:
		if val, found := m[name]; found {
			return call(val), true
		}
	case map[string]string:
		if val, found := m[name]; found {
			return val, true
		}
	}

	rv := reflect.ValueOf(row)
	if !rv.IsValid() {
		return "", false
	}
	if mv := rv.MethodByName(name); mv.IsValid() {
		return call(mv.Interface()), true
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		if fv := rv.FieldByName(name); fv.IsValid() && fv.CanInterface() {
			return call(fv.Interface()), true
		}
	}
	diag("tag attribute lookup failed", "attr", name)
	return "", false
}

// call invokes v when it is a niladic function and returns its first
// result, mirroring attribute access that auto-invokes callables.
func call(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return v
	}
	t := rv.Type()
	if t.NumIn() != 0 {
		return v
	}
	out := rv.Call(nil)
	if len(out) == 0 {
		return nil
	}
	return out[0].Interface()
}

// truthy follows "empty string/nil/zero/false => false" semantics.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case Safe:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}
