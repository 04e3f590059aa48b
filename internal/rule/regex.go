package rule

import (
	"fmt"
	"regexp"

	"github.com/mglaserna/envelope/internal/row"
)

// regexRule passes a row when every configured field fully matches the
// pattern. Fields are checked in configured order and evaluation stops at
// the first failure unless full attribution is enabled.
type regexRule struct {
	name    string
	pattern *regexp.Regexp
	fields  []string
	full    bool
}

func init() { Register("regex", func() RowRule { return &regexRule{} }) }

func (r *regexRule) Configure(cfg Config) error {
	if err := requireFields(cfg); err != nil {
		return err
	}
	if cfg.Regex == "" {
		return fmt.Errorf("rule %q: regex must not be empty", cfg.Name)
	}
	full, err := fullAttribution(cfg)
	if err != nil {
		return err
	}
	// Anchor so the whole value must match, as a matches() check would.
	pattern, err := regexp.Compile("^(?:" + cfg.Regex + ")$")
	if err != nil {
		return fmt.Errorf("rule %q: %w", cfg.Name, err)
	}
	r.name, r.pattern, r.fields, r.full = cfg.Name, pattern, cfg.Fields, full
	return nil
}

func (r *regexRule) Name() string { return r.name }

func (r *regexRule) Check(rw *row.Row) (Verdict, error) {
	v := Verdict{Rule: r.name, Pass: true}
	for _, field := range r.fields {
		val, err := rw.Get(field)
		if err != nil {
			return Verdict{}, fmt.Errorf("rule %q: %w", r.name, err)
		}
		if val == nil {
			v.Pass = false
			v.Failed = append(v.Failed, field)
		} else {
			s, ok := val.(string)
			if !ok {
				return Verdict{}, fmt.Errorf("rule %q: field %q is %T, not string", r.name, field, val)
			}
			if !r.pattern.MatchString(s) {
				v.Pass = false
				v.Failed = append(v.Failed, field)
			}
		}
		if !v.Pass && !r.full {
			break
		}
	}
	return v, nil
}
