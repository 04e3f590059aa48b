package translate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mglaserna/envelope/internal/row"
)

// delimitedTranslator splits the value on a delimiter and parses each part
// positionally against the declared field types. Trailing fields absent
// from the payload decode to null.
type delimitedTranslator struct {
	keyClass   Class
	valueClass Class
	schema     *row.Schema
	delimiter  string
}

func init() { Register("delimited", func() Translator { return &delimitedTranslator{} }) }

func (t *delimitedTranslator) Configure(cfg Config) error {
	var err error
	if t.keyClass, t.valueClass, err = parseClasses(cfg); err != nil {
		return err
	}
	fields, err := declaredFields(cfg)
	if err != nil {
		return err
	}
	t.schema = row.NewSchema(fields)
	t.delimiter = cfg.Delimiter
	if t.delimiter == "" {
		t.delimiter = ","
	}
	return nil
}

func (t *delimitedTranslator) Schema() *row.Schema { return t.schema }

func (t *delimitedTranslator) Translate(key, value any) (*row.Row, error) {
	if err := checkClass(t.keyClass, key); err != nil {
		return nil, fmt.Errorf("record key: %w", err)
	}
	if err := checkClass(t.valueClass, value); err != nil {
		return nil, fmt.Errorf("record value: %w", err)
	}

	parts := strings.Split(string(valueBytes(value)), t.delimiter)
	if len(parts) > len(t.schema.Fields) {
		return nil, fmt.Errorf("translate: value has %d fields but only %d are declared",
			len(parts), len(t.schema.Fields))
	}

	values := make([]any, len(t.schema.Fields))
	for i, f := range t.schema.Fields {
		if i >= len(parts) {
			values[i] = nil
			continue
		}
		v, err := parseField(f.Type, parts[i])
		if err != nil {
			return nil, fmt.Errorf("translate: field %q: %w", f.Name, err)
		}
		values[i] = v
	}
	return row.New(t.schema, values...), nil
}

func parseField(t row.FieldType, s string) (any, error) {
	switch t {
	case row.TypeString:
		return s, nil
	case row.TypeInt:
		v, err := strconv.ParseInt(s, 10, 32)
		return int32(v), err
	case row.TypeLong:
		return strconv.ParseInt(s, 10, 64)
	case row.TypeFloat:
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	case row.TypeDouble:
		return strconv.ParseFloat(s, 64)
	case row.TypeBoolean:
		return strconv.ParseBool(s)
	case row.TypeBinary:
		return []byte(s), nil
	}
	return nil, fmt.Errorf("unsupported field type %q", t)
}
