package rule

import (
	"testing"

	"github.com/mglaserna/envelope/internal/row"
)

var testSchema = row.NewSchema([]row.Field{
	{Name: "foo", Type: row.TypeString, Nullable: true},
	{Name: "bar", Type: row.TypeString, Nullable: true},
	{Name: "n", Type: row.TypeLong, Nullable: true},
})

func testRow(foo, bar any, n any) *row.Row {
	return row.New(testSchema, foo, bar, n)
}

func TestRegexRule(t *testing.T) {
	r, err := New(Config{Name: "shouty", Type: "regex", Regex: `YES\?!`, Fields: []string{"foo"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v, err := r.Check(testRow("YES?!", "x", int64(1)))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !v.Pass {
		t.Fatal("want pass for matching value")
	}

	v, err = r.Check(testRow("no", "x", int64(1)))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v.Pass {
		t.Fatal("want fail for non-matching value")
	}
	if len(v.Failed) != 1 || v.Failed[0] != "foo" {
		t.Fatalf("want failed field foo, got %v", v.Failed)
	}
}

func TestRegexRule_ShortCircuit(t *testing.T) {
	r, err := New(Config{Name: "r", Type: "regex", Regex: `ok`, Fields: []string{"foo", "bar"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := r.Check(testRow("bad", "bad", nil))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v.Pass || len(v.Failed) != 1 {
		t.Fatalf("want single first-failure attribution, got %+v", v)
	}
}

func TestRegexRule_FullAttribution(t *testing.T) {
	r, err := New(Config{Name: "r", Type: "regex", Regex: `ok`, Fields: []string{"foo", "bar"}, Attribution: "full"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := r.Check(testRow("bad", "bad", nil))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v.Pass || len(v.Failed) != 2 {
		t.Fatalf("want both fields attributed, got %+v", v)
	}
}

func TestRegexRule_MissingFieldIsError(t *testing.T) {
	r, err := New(Config{Name: "r", Type: "regex", Regex: `.*`, Fields: []string{"nope"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Check(testRow("x", "y", nil)); err == nil {
		t.Fatal("want error for field absent from schema")
	}
}

func TestRegexRule_ZeroFieldsIsConfigError(t *testing.T) {
	if _, err := New(Config{Name: "r", Type: "regex", Regex: `.*`}); err == nil {
		t.Fatal("want configure error for zero fields")
	}
}

func TestRangeRule(t *testing.T) {
	min, max := 0.0, 100.0
	r, err := New(Config{Name: "bounds", Type: "range", Fields: []string{"n"}, Min: &min, Max: &max})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v, err := r.Check(testRow("x", "y", int64(42)))
	if err != nil || !v.Pass {
		t.Fatalf("want pass for 42: %+v %v", v, err)
	}
	v, err = r.Check(testRow("x", "y", int64(101)))
	if err != nil || v.Pass {
		t.Fatalf("want fail for 101: %+v %v", v, err)
	}
	v, err = r.Check(testRow("x", "y", nil))
	if err != nil || v.Pass {
		t.Fatalf("want fail for null: %+v %v", v, err)
	}
}

func TestNotNullRule(t *testing.T) {
	r, err := New(Config{Name: "present", Type: "notnull", Fields: []string{"foo"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v, _ := r.Check(testRow("x", "y", nil)); !v.Pass {
		t.Fatal("want pass for non-null field")
	}
	if v, _ := r.Check(testRow(nil, "y", nil)); v.Pass {
		t.Fatal("want fail for null field")
	}
}

func TestUnknownRuleType(t *testing.T) {
	if _, err := New(Config{Name: "r", Type: "luhn", Fields: []string{"foo"}}); err == nil {
		t.Fatal("want error for unknown rule type")
	}
}
