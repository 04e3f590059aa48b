package rule

import (
	"fmt"

	"github.com/mglaserna/envelope/internal/row"
)

// Verdict is the outcome of checking one rule against one row.
type Verdict struct {
	Rule   string
	Pass   bool
	Failed []string // violating field names, first-failure only unless full attribution
}

// Config is one rule entry of the pipeline spec.
type Config struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Fields      []string `yaml:"fields"`
	Attribution string   `yaml:"attribution"` // "" (first failure) | "full"
	Regex       string   `yaml:"regex"`
	Min         *float64 `yaml:"min"`
	Max         *float64 `yaml:"max"`
}

// RowRule checks a declarative predicate against a row. A failing verdict
// is a normal outcome; an error means the rule could not be evaluated
// (e.g. a configured field is absent from the row's schema).
type RowRule interface {
	Configure(Config) error
	Name() string
	Check(*row.Row) (Verdict, error)
}

type Factory func() RowRule

var registry = map[string]Factory{}

func Register(name string, f Factory) {
	registry[name] = f
}

// New builds and configures a rule by type name.
func New(cfg Config) (RowRule, error) {
	f, ok := registry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("rule: unsupported rule type %q", cfg.Type)
	}
	r := f()
	if err := r.Configure(cfg); err != nil {
		return nil, err
	}
	return r, nil
}

// requireFields rejects a rule configured with no target fields: a rule
// over nothing is a configuration mistake, not a vacuous pass.
func requireFields(cfg Config) error {
	if len(cfg.Fields) == 0 {
		return fmt.Errorf("rule %q: fields must not be empty", cfg.Name)
	}
	return nil
}

func fullAttribution(cfg Config) (bool, error) {
	switch cfg.Attribution {
	case "", "first":
		return false, nil
	case "full":
		return true, nil
	}
	return false, fmt.Errorf("rule %q: invalid attribution %q (valid values are 'first' and 'full')", cfg.Name, cfg.Attribution)
}
