package model

import "testing"

func TestModelHelpers(t *testing.T) {
	m := &Model{
		Name:        "accounts",
		Status:      StatusActive,
		Fields:      []string{"id", "tags"},
		FieldTypes:  map[string]FieldType{"tags": TypeString},
		ArrayFields: map[string]bool{"tags": true},
	}

	if !m.HasField("id") || m.HasField("ghost") {
		t.Fatal("HasField mismatch")
	}
	if m.TypeOf("id") != TypeString {
		t.Fatal("undeclared type must default to string")
	}
	if !m.IsArray("tags") || m.IsArray("id") {
		t.Fatal("IsArray mismatch")
	}
	if !m.Writable() {
		t.Fatal("active model must be writable")
	}

	m.Frozen = true
	if m.Writable() {
		t.Fatal("frozen model must not be writable")
	}

	m.Frozen = false
	m.Status = StatusTrashed
	if m.Writable() {
		t.Fatal("trashed model must not be writable")
	}
}

func TestRecord(t *testing.T) {
	r := Record{"a": 1, "b": nil}

	if !r.Has("a") {
		t.Fatal("Has must report present non-nil values")
	}
	if r.Has("b") || r.Has("c") {
		t.Fatal("nil and absent values are both missing")
	}

	c := r.Clone()
	c["a"] = 2
	if r["a"] != 1 {
		t.Fatal("Clone must not alias the original map")
	}
}
