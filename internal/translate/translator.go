package translate

import (
	"errors"
	"fmt"

	"github.com/mglaserna/envelope/internal/row"
)

// ErrBadRecordType reports a record whose runtime representation does not
// match what the translator was configured for.
var ErrBadRecordType = errors.New("translate: record type does not match declared class")

// Class identifies the runtime representation of a record key or value.
type Class string

const (
	ClassString    Class = "string"
	ClassByteArray Class = "bytearray"
)

func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case ClassString, ClassByteArray:
		return Class(s), nil
	}
	return "", fmt.Errorf("translate: invalid record class %q (valid classes are 'string' and 'bytearray')", s)
}

// checkClass rejects a value whose runtime type is not the declared class.
// A nil value is always allowed (absent key).
func checkClass(declared Class, v any) error {
	if v == nil {
		return nil
	}
	switch declared {
	case ClassString:
		if _, ok := v.(string); ok {
			return nil
		}
	case ClassByteArray:
		if _, ok := v.([]byte); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: declared %q, got %T", ErrBadRecordType, declared, v)
}

// valueBytes converts an already class-checked value to raw bytes.
func valueBytes(v any) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	}
	return nil
}

// Config is the translator sub-block of the pipeline spec.
type Config struct {
	Type       string   `yaml:"type"`
	KeyClass   string   `yaml:"key_class"`
	ValueClass string   `yaml:"value_class"`
	FieldNames []string `yaml:"field_names"`
	FieldTypes []string `yaml:"field_types"`
	Mode       string   `yaml:"mode"`      // avro: binary|ocf
	Delimiter  string   `yaml:"delimiter"` // delimited only
}

// Translator decodes one raw record value into a Row.
type Translator interface {
	Configure(Config) error
	Schema() *row.Schema
	Translate(key, value any) (*row.Row, error)
}

type Factory func() Translator

var registry = map[string]Factory{}

func Register(name string, f Factory) {
	registry[name] = f
}

// New builds and configures a translator by type name.
func New(cfg Config) (Translator, error) {
	f, ok := registry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("translate: unsupported translator type %q", cfg.Type)
	}
	t := f()
	if err := t.Configure(cfg); err != nil {
		return nil, err
	}
	return t, nil
}

// declaredFields parses the field name/type lists shared by translators.
func declaredFields(cfg Config) ([]row.Field, error) {
	if len(cfg.FieldNames) == 0 {
		return nil, fmt.Errorf("translate: field_names must not be empty")
	}
	if len(cfg.FieldNames) != len(cfg.FieldTypes) {
		return nil, fmt.Errorf("translate: field_names has %d entries but field_types has %d",
			len(cfg.FieldNames), len(cfg.FieldTypes))
	}
	fields := make([]row.Field, len(cfg.FieldNames))
	for i, name := range cfg.FieldNames {
		ft, err := row.ParseFieldType(cfg.FieldTypes[i])
		if err != nil {
			return nil, err
		}
		fields[i] = row.Field{Name: name, Type: ft, Nullable: true}
	}
	return fields, nil
}

func parseClasses(cfg Config) (key, value Class, err error) {
	if key, err = ParseClass(cfg.KeyClass); err != nil {
		return "", "", fmt.Errorf("key_class: %w", err)
	}
	if value, err = ParseClass(cfg.ValueClass); err != nil {
		return "", "", fmt.Errorf("value_class: %w", err)
	}
	return key, value, nil
}
