package rule

import (
	"fmt"

	"github.com/mglaserna/envelope/internal/row"
)

// notNullRule passes a row when every configured field carries a value.
type notNullRule struct {
	name   string
	fields []string
	full   bool
}

func init() { Register("notnull", func() RowRule { return &notNullRule{} }) }

func (r *notNullRule) Configure(cfg Config) error {
	if err := requireFields(cfg); err != nil {
		return err
	}
	full, err := fullAttribution(cfg)
	if err != nil {
		return err
	}
	r.name, r.fields, r.full = cfg.Name, cfg.Fields, full
	return nil
}

func (r *notNullRule) Name() string { return r.name }

func (r *notNullRule) Check(rw *row.Row) (Verdict, error) {
	v := Verdict{Rule: r.name, Pass: true}
	for _, field := range r.fields {
		val, err := rw.Get(field)
		if err != nil {
			return Verdict{}, fmt.Errorf("rule %q: %w", r.name, err)
		}
		if val == nil {
			v.Pass = false
			v.Failed = append(v.Failed, field)
			if !r.full {
				break
			}
		}
	}
	return v, nil
}
