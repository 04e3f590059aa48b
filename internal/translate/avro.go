package translate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/linkedin/goavro/v2"

	"github.com/mglaserna/envelope/internal/row"
)

const (
	avroModeBinary = "binary"
	avroModeOCF    = "ocf"
)

// avroTranslator decodes Avro-encoded values. In binary mode the schema is
// compiled once from the declared field lists and the payload is a bare
// binary datum. In ocf mode the payload is an object container file whose
// embedded schema describes itself.
type avroTranslator struct {
	keyClass   Class
	valueClass Class
	schema     *row.Schema
	codec      *goavro.Codec
	mode       string
}

func init() { Register("avro", func() Translator { return &avroTranslator{} }) }

func (t *avroTranslator) Configure(cfg Config) error {
	var err error
	if t.keyClass, t.valueClass, err = parseClasses(cfg); err != nil {
		return err
	}

	fields, err := declaredFields(cfg)
	if err != nil {
		return err
	}
	t.schema = row.NewSchema(fields)

	t.mode = cfg.Mode
	if t.mode == "" {
		t.mode = avroModeBinary
	}
	switch t.mode {
	case avroModeOCF:
		// schema is read from each payload
	case avroModeBinary:
		schemaJSON, err := avroSchemaJSON(fields)
		if err != nil {
			return err
		}
		if t.codec, err = goavro.NewCodec(schemaJSON); err != nil {
			return fmt.Errorf("translate: compile avro schema: %w", err)
		}
	default:
		return fmt.Errorf("translate: invalid avro mode %q (valid modes are 'binary' and 'ocf')", cfg.Mode)
	}
	return nil
}

func (t *avroTranslator) Schema() *row.Schema { return t.schema }

func (t *avroTranslator) Translate(key, value any) (*row.Row, error) {
	if err := checkClass(t.keyClass, key); err != nil {
		return nil, fmt.Errorf("record key: %w", err)
	}
	if err := checkClass(t.valueClass, value); err != nil {
		return nil, fmt.Errorf("record value: %w", err)
	}

	raw := valueBytes(value)

	var native any
	var err error
	switch t.mode {
	case avroModeOCF:
		native, err = decodeOCF(raw)
	default:
		native, _, err = t.codec.NativeFromBinary(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("translate: decode avro value: %w", err)
	}

	datum, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("translate: avro value decoded to %T, want record", native)
	}

	values := make([]any, len(t.schema.Fields))
	for i, f := range t.schema.Fields {
		v, present := datum[f.Name]
		if !present {
			if t.mode == avroModeOCF {
				return nil, fmt.Errorf("translate: field %q declared in field_names is missing from the embedded schema", f.Name)
			}
			values[i] = nil
			continue
		}
		values[i] = unwrapUnion(v)
	}
	return row.New(t.schema, values...), nil
}

func decodeOCF(raw []byte) (any, error) {
	r, err := goavro.NewOCFReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if !r.Scan() {
		return nil, fmt.Errorf("empty object container file")
	}
	return r.Read()
}

// unwrapUnion flattens goavro's single-entry union representation,
// e.g. {"string": "YES?!"} for a ["null","string"] field.
func unwrapUnion(v any) any {
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		for _, inner := range m {
			return inner
		}
	}
	return v
}

type avroSchemaField struct {
	Name    string `json:"name"`
	Type    []any  `json:"type"`
	Default any    `json:"default"`
}

type avroSchema struct {
	Type   string            `json:"type"`
	Name   string            `json:"name"`
	Fields []avroSchemaField `json:"fields"`
}

// avroSchemaJSON builds the writer schema for the declared field list.
// Every field is an optional ["null", T] union, matching how upstream
// producers declare translator-fed records.
func avroSchemaJSON(fields []row.Field) (string, error) {
	s := avroSchema{Type: "record", Name: "message", Fields: make([]avroSchemaField, len(fields))}
	for i, f := range fields {
		at, err := avroType(f.Type)
		if err != nil {
			return "", err
		}
		s.Fields[i] = avroSchemaField{Name: f.Name, Type: []any{"null", at}, Default: nil}
	}
	out, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func avroType(t row.FieldType) (string, error) {
	switch t {
	case row.TypeString:
		return "string", nil
	case row.TypeInt:
		return "int", nil
	case row.TypeLong:
		return "long", nil
	case row.TypeFloat:
		return "float", nil
	case row.TypeDouble:
		return "double", nil
	case row.TypeBoolean:
		return "boolean", nil
	case row.TypeBinary:
		return "bytes", nil
	}
	return "", fmt.Errorf("translate: no avro type for field type %q", t)
}
