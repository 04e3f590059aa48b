package spec

import (
	"github.com/mglaserna/envelope/internal/rule"
	"github.com/mglaserna/envelope/internal/translate"
)

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Source struct {
		Kind   string `yaml:"kind"`
		Driver string `yaml:"driver"`
		Config string `yaml:"config"`
	} `yaml:"source"`

	Translator translate.Config `yaml:"translator"`

	// Rules every decoded row must pass before it reaches processing.
	Rules []rule.Config `yaml:"rules"`
}
