package dyntable

import "testing"

func TestParseTagNoPlaceholders(t *testing.T) {
	col := Column{Tag: "<td>static</td>"}
	got := string(col.ParseTag(map[string]any{}, "x", nil))
	if got != "<td>static</td>" {
		t.Errorf("Expected template unchanged, got '%s'", got)
	}
}

func TestParseTagCellAndSpacing(t *testing.T) {
	// {{ cell }} and {{cell}} are equivalent
	col := Column{Tag: "<b>{{ cell }}</b>-{{cell}}"}
	got := string(col.ParseTag(map[string]any{}, "42", nil))
	if got != "<b>42</b>-42" {
		t.Errorf("Expected '<b>42</b>-42', got '%s'", got)
	}
}

func TestParseTagItemAttr(t *testing.T) {
	// Test case 1: Mapping key
	col := Column{Tag: "{{item.city}}"}
	got := string(col.ParseTag(map[string]any{"city": "Oslo"}, "", nil))
	if got != "Oslo" {
		t.Errorf("Expected 'Oslo', got '%s'", got)
	}

	// Test case 2: Callable mapping value is auto-invoked
	row := map[string]any{"get_name": func() any { return "Bob" }}
	col2 := Column{Tag: "{{item.get_name}}"}
	got2 := string(col2.ParseTag(row, "", nil))
	if got2 != "Bob" {
		t.Errorf("Expected 'Bob', got '%s'", got2)
	}

	// Test case 3: Missing attribute resolves to empty
	col3 := Column{Tag: "[{{item.missing}}]"}
	got3 := string(col3.ParseTag(map[string]any{}, "", nil))
	if got3 != "[]" {
		t.Errorf("Expected '[]', got '%s'", got3)
	}
}

type tagUser struct {
	Status string
}

func (u tagUser) Link() string { return "/u/1" }

func TestParseTagStructRow(t *testing.T) {
	col := Column{Tag: "<a href='{{item.Link}}'>{{item.Status}}</a>"}
	got := string(col.ParseTag(tagUser{Status: "ok"}, "", nil))
	if got != "<a href='/u/1'>ok</a>" {
		t.Errorf("Expected '<a href='/u/1'>ok</a>', got '%s'", got)
	}
}

func TestParseTagRowIdx(t *testing.T) {
	col := Column{Tag: "row {{row_idx}}"}
	got := string(col.ParseTag(map[string]any{}, "", 7))
	if got != "row 7" {
		t.Errorf("Expected 'row 7', got '%s'", got)
	}

	// Absent index renders empty
	got2 := string(col.ParseTag(map[string]any{}, "", nil))
	if got2 != "row " {
		t.Errorf("Expected 'row ', got '%s'", got2)
	}
}

func TestParseTagIfElse(t *testing.T) {
	col := Column{Tag: "{{if item.active}}YES{{else}}NO{{endif}}"}

	// Truthy condition keeps the if branch
	got := string(col.ParseTag(map[string]any{"active": true}, "", nil))
	if got != "YES" {
		t.Errorf("Expected 'YES', got '%s'", got)
	}

	// Falsy condition keeps the else branch
	got2 := string(col.ParseTag(map[string]any{"active": false}, "", nil))
	if got2 != "NO" {
		t.Errorf("Expected 'NO', got '%s'", got2)
	}

	// Missing attribute resolves falsy
	got3 := string(col.ParseTag(map[string]any{}, "", nil))
	if got3 != "NO" {
		t.Errorf("Expected 'NO', got '%s'", got3)
	}
}

func TestParseTagIfWithoutElse(t *testing.T) {
	col := Column{Tag: "A{{if x}}B{{endif}}C"}

	// Falsy cell drops the whole block
	got := string(col.ParseTag(map[string]any{}, "", nil))
	if got != "AC" {
		t.Errorf("Expected 'AC', got '%s'", got)
	}

	// Truthy cell keeps the body
	got2 := string(col.ParseTag(map[string]any{}, "1", nil))
	if got2 != "ABC" {
		t.Errorf("Expected 'ABC', got '%s'", got2)
	}
}

func TestParseTagIfConditionSpacing(t *testing.T) {
	col := Column{Tag: "{{ if item.ok }}on{{ endif }}"}
	got := string(col.ParseTag(map[string]any{"ok": 1}, "", nil))
	if got != "on" {
		t.Errorf("Expected 'on', got '%s'", got)
	}
}

func TestParseTagUnmatchedEndif(t *testing.T) {
	// No matching endif: best effort, no panic, literal text kept
	col := Column{Tag: "{{if item.a}}X"}
	got := string(col.ParseTag(map[string]any{"a": true}, "", nil))
	if got != "{{if item.a}}X" {
		t.Errorf("Expected literal template, got '%s'", got)
	}
}

func TestParseTagPanickingCallable(t *testing.T) {
	row := map[string]any{"boom": func() any { panic("broken") }}
	col := Column{Tag: "[{{item.boom}}]"}
	got := string(col.ParseTag(row, "", nil))
	if got != "[]" {
		t.Errorf("Expected '[]', got '%s'", got)
	}
}

func TestParseTagCellInCondition(t *testing.T) {
	// An unreserved condition token falls back to the cell value
	col := Column{Tag: "{{if status}}{{status}}{{else}}none{{endif}}"}
	got := string(col.ParseTag(map[string]any{}, "open", nil))
	if got != "open" {
		t.Errorf("Expected 'open', got '%s'", got)
	}
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, "", 0, 0.0, false, []string{}, map[string]any{}}
	for _, v := range falsy {
		if truthy(v) {
			t.Errorf("Expected %#v to be falsy", v)
		}
	}
	truths := []any{"x", 1, -1.5, true, []string{"a"}}
	for _, v := range truths {
		if !truthy(v) {
			t.Errorf("Expected %#v to be truthy", v)
		}
	}
}
