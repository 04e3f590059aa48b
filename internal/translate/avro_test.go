package translate

import (
	"bytes"
	"errors"
	"testing"

	"github.com/linkedin/goavro/v2"
)

const fooSchema = `{"type":"record","name":"message","fields":[{"name":"foo","type":["null","string"],"default":null}]}`

func encodeFoo(t *testing.T, value any) []byte {
	t.Helper()
	codec, err := goavro.NewCodec(fooSchema)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	native := map[string]any{"foo": value}
	out, err := codec.BinaryFromNative(nil, native)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return out
}

func fooTranslator(t *testing.T, cfg Config) Translator {
	t.Helper()
	if cfg.Type == "" {
		cfg.Type = "avro"
	}
	if cfg.FieldNames == nil {
		cfg.FieldNames = []string{"foo"}
		cfg.FieldTypes = []string{"string"}
	}
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func TestAvroTranslate(t *testing.T) {
	tr := fooTranslator(t, Config{KeyClass: "bytearray", ValueClass: "bytearray"})

	encoded := encodeFoo(t, map[string]any{"string": "YES?!"})
	r, err := tr.Translate(nil, encoded)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	got, err := r.GetString("foo")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if got != "YES?!" {
		t.Fatalf("want YES?!, got %q", got)
	}
}

func TestAvroTranslate_AbsentOptionalFieldIsNull(t *testing.T) {
	tr := fooTranslator(t, Config{KeyClass: "bytearray", ValueClass: "bytearray"})

	encoded := encodeFoo(t, nil)
	r, err := tr.Translate(nil, encoded)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	v, err := r.Get("foo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != nil {
		t.Fatalf("want null for absent optional field, got %v", v)
	}
}

func TestAvroTranslate_InvalidKeyClass(t *testing.T) {
	tr := fooTranslator(t, Config{KeyClass: "string", ValueClass: "bytearray"})

	_, err := tr.Translate([]byte("k"), encodeFoo(t, map[string]any{"string": "YES?!"}))
	if !errors.Is(err, ErrBadRecordType) {
		t.Fatalf("want ErrBadRecordType, got %v", err)
	}
}

func TestAvroTranslate_InvalidMessageClass(t *testing.T) {
	tr := fooTranslator(t, Config{KeyClass: "bytearray", ValueClass: "string"})

	_, err := tr.Translate(nil, []byte("foo"))
	if !errors.Is(err, ErrBadRecordType) {
		t.Fatalf("want ErrBadRecordType, got %v", err)
	}
}

func TestAvroTranslate_OCF(t *testing.T) {
	var buf bytes.Buffer
	w, err := goavro.NewOCFWriter(goavro.OCFConfig{W: &buf, Schema: fooSchema})
	if err != nil {
		t.Fatalf("ocf writer: %v", err)
	}
	if err := w.Append([]any{map[string]any{"foo": map[string]any{"string": "YES?!"}}}); err != nil {
		t.Fatalf("append: %v", err)
	}

	tr := fooTranslator(t, Config{KeyClass: "bytearray", ValueClass: "bytearray", Mode: "ocf"})
	r, err := tr.Translate(nil, buf.Bytes())
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	got, err := r.GetString("foo")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if got != "YES?!" {
		t.Fatalf("want YES?!, got %q", got)
	}
}

func TestAvroConfigure_Errors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"bad key class", Config{Type: "avro", KeyClass: "varint", ValueClass: "bytearray", FieldNames: []string{"foo"}, FieldTypes: []string{"string"}}},
		{"no fields", Config{Type: "avro", KeyClass: "bytearray", ValueClass: "bytearray"}},
		{"mismatched lists", Config{Type: "avro", KeyClass: "bytearray", ValueClass: "bytearray", FieldNames: []string{"a", "b"}, FieldTypes: []string{"string"}}},
		{"bad field type", Config{Type: "avro", KeyClass: "bytearray", ValueClass: "bytearray", FieldNames: []string{"a"}, FieldTypes: []string{"varchar"}}},
		{"bad mode", Config{Type: "avro", KeyClass: "bytearray", ValueClass: "bytearray", FieldNames: []string{"a"}, FieldTypes: []string{"string"}, Mode: "json"}},
	}
	for _, tc := range cases {
		if _, err := New(tc.cfg); err == nil {
			t.Errorf("%s: expected configure error", tc.name)
		}
	}
}

func TestUnknownTranslatorType(t *testing.T) {
	if _, err := New(Config{Type: "thrift"}); err == nil {
		t.Fatal("expected error for unknown translator type")
	}
}
