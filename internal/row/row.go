package row

import "fmt"

// FieldType enumerates the value types a schema field can declare.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeLong    FieldType = "long"
	TypeFloat   FieldType = "float"
	TypeDouble  FieldType = "double"
	TypeBoolean FieldType = "boolean"
	TypeBinary  FieldType = "binary"
)

// ParseFieldType validates a declared field type name.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(s) {
	case TypeString, TypeInt, TypeLong, TypeFloat, TypeDouble, TypeBoolean, TypeBinary:
		return FieldType(s), nil
	}
	return "", fmt.Errorf("row: unsupported field type %q", s)
}

type Field struct {
	Name     string
	Type     FieldType
	Nullable bool
}

// Schema is an ordered field list with a name index.
type Schema struct {
	Fields []Field
	index  map[string]int
}

func NewSchema(fields []Field) *Schema {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.Name] = i
	}
	return &Schema{Fields: fields, index: idx}
}

func (s *Schema) FieldIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Row is a decoded record: one value per schema field, in schema order.
// A nil value means the field was absent (null) in the payload.
type Row struct {
	Schema *Schema
	Values []any
}

func New(schema *Schema, values ...any) *Row {
	return &Row{Schema: schema, Values: values}
}

// Get returns the value for a named field. A name not present in the
// schema is an error, never a silent nil.
func (r *Row) Get(name string) (any, error) {
	i, ok := r.Schema.FieldIndex(name)
	if !ok {
		return nil, fmt.Errorf("row: no field %q in schema", name)
	}
	return r.Values[i], nil
}

// GetString returns a string field value. A value of another runtime
// type is an error.
func (r *Row) GetString(name string) (string, error) {
	v, err := r.Get(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", fmt.Errorf("row: field %q is null", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("row: field %q is %T, not string", name, v)
	}
	return s, nil
}
