package rule

import (
	"fmt"

	"github.com/mglaserna/envelope/internal/row"
)

// rangeRule passes a row when every configured numeric field lies within
// the inclusive [min, max] bounds.
type rangeRule struct {
	name     string
	fields   []string
	min, max float64
	full     bool
}

func init() { Register("range", func() RowRule { return &rangeRule{} }) }

func (r *rangeRule) Configure(cfg Config) error {
	if err := requireFields(cfg); err != nil {
		return err
	}
	if cfg.Min == nil || cfg.Max == nil {
		return fmt.Errorf("rule %q: min and max are required", cfg.Name)
	}
	if *cfg.Min > *cfg.Max {
		return fmt.Errorf("rule %q: min %v exceeds max %v", cfg.Name, *cfg.Min, *cfg.Max)
	}
	full, err := fullAttribution(cfg)
	if err != nil {
		return err
	}
	r.name, r.fields, r.min, r.max, r.full = cfg.Name, cfg.Fields, *cfg.Min, *cfg.Max, full
	return nil
}

func (r *rangeRule) Name() string { return r.name }

func (r *rangeRule) Check(rw *row.Row) (Verdict, error) {
	v := Verdict{Rule: r.name, Pass: true}
	for _, field := range r.fields {
		val, err := rw.Get(field)
		if err != nil {
			return Verdict{}, fmt.Errorf("rule %q: %w", r.name, err)
		}
		n, ok := asFloat(val)
		if val != nil && !ok {
			return Verdict{}, fmt.Errorf("rule %q: field %q is %T, not numeric", r.name, field, val)
		}
		if val == nil || n < r.min || n > r.max {
			v.Pass = false
			v.Failed = append(v.Failed, field)
			if !r.full {
				break
			}
		}
	}
	return v, nil
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
