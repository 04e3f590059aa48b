package translate

import (
	"errors"
	"testing"
)

func TestDelimitedTranslate(t *testing.T) {
	tr, err := New(Config{
		Type:       "delimited",
		KeyClass:   "string",
		ValueClass: "string",
		FieldNames: []string{"name", "count", "score", "active"},
		FieldTypes: []string{"string", "long", "double", "boolean"},
		Delimiter:  "|",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r, err := tr.Translate(nil, "widget|42|1.5|true")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	name, _ := r.Get("name")
	count, _ := r.Get("count")
	score, _ := r.Get("score")
	active, _ := r.Get("active")
	if name != "widget" || count != int64(42) || score != 1.5 || active != true {
		t.Fatalf("unexpected row values: %v %v %v %v", name, count, score, active)
	}
}

func TestDelimitedTranslate_TrailingFieldsNull(t *testing.T) {
	tr, err := New(Config{
		Type:       "delimited",
		KeyClass:   "string",
		ValueClass: "string",
		FieldNames: []string{"a", "b"},
		FieldTypes: []string{"string", "string"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r, err := tr.Translate(nil, "only")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if v, _ := r.Get("b"); v != nil {
		t.Fatalf("want null trailing field, got %v", v)
	}
}

func TestDelimitedTranslate_TooManyFields(t *testing.T) {
	tr, err := New(Config{
		Type:       "delimited",
		KeyClass:   "string",
		ValueClass: "string",
		FieldNames: []string{"a"},
		FieldTypes: []string{"string"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tr.Translate(nil, "x,y"); err == nil {
		t.Fatal("expected error for extra fields")
	}
}

func TestDelimitedTranslate_ClassMismatch(t *testing.T) {
	tr, err := New(Config{
		Type:       "delimited",
		KeyClass:   "string",
		ValueClass: "bytearray",
		FieldNames: []string{"a"},
		FieldTypes: []string{"string"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tr.Translate(nil, "not bytes"); !errors.Is(err, ErrBadRecordType) {
		t.Fatalf("want ErrBadRecordType, got %v", err)
	}
}
