package lang

import "testing"

func TestCommentStripping(t *testing.T) {
	rates := newTestRates()
	if got := evalText("2 + 3 # running total", Env{}, rates); got != "5" {
		t.Errorf("inline comment: got %q, want 5", got)
	}
	e := ParseLine("# just a note", Env{}, rates)
	if ee, ok := e.(*ErrorExpr); !ok || ee.Msg != "Empty expression" {
		t.Errorf("full comment line parsed as %#v", e)
	}
}

func TestAssignmentSplitsOnFirstEquals(t *testing.T) {
	rates := newTestRates()
	e := ParseLine("x = 2 + 3", Env{}, rates)
	a, ok := e.(*AssignExpr)
	if !ok {
		t.Fatalf("expected *AssignExpr, got %#v", e)
	}
	if a.Name != "x" {
		t.Errorf("name = %q, want x", a.Name)
	}
	if _, ok := a.Expr.(*BinaryExpr); !ok {
		t.Errorf("right side parsed as %#v, want *BinaryExpr", a.Expr)
	}
}

func TestAdditiveSplitIsRightLeaning(t *testing.T) {
	rates := newTestRates()
	e := ParseLine("10 - 2 - 3", Env{}, rates)
	b, ok := e.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected *BinaryExpr, got %#v", e)
	}
	if _, ok := b.Left.(*NumberExpr); !ok {
		t.Errorf("left of first split parsed as %#v, want *NumberExpr", b.Left)
	}
	if _, ok := b.Right.(*BinaryExpr); !ok {
		t.Errorf("right of first split parsed as %#v, want nested *BinaryExpr", b.Right)
	}
}

func TestVariableOfRequiresBinding(t *testing.T) {
	rates := newTestRates()
	got := evalText("tax of 80", Env{}, rates)
	if got != "Error: Cannot parse expression: tax of 80" {
		t.Errorf("unbound 'tax of 80' = %q", got)
	}
	vars := Env{"tax": Percentage{Value: 10}}
	if got := evalText("tax of 80", vars, rates); got != "8" {
		t.Errorf("bound 'tax of 80' = %q, want 8", got)
	}
}

func TestConversionSplitIsGreedyLeft(t *testing.T) {
	rates := newTestRates()
	// both "in" words present: the last one is the separator
	if got := evalText("100 cm in m in km", Env{}, rates); got != "0.001000 km" {
		t.Errorf("chained conversion = %q, want 0.001000 km", got)
	}
}

func TestSetRate(t *testing.T) {
	rates := newTestRates()
	e := ParseLine("setrate USD to GBP = 0.65", Env{}, rates)
	u, ok := e.(*UnitExpr)
	if !ok {
		t.Fatalf("expected *UnitExpr, got %#v", e)
	}
	if u.Value != 0.65 || u.Unit != "GBP" {
		t.Errorf("setrate yielded %v %s", u.Value, u.Unit)
	}
	if got := evalText("10 USD in GBP", Env{}, rates); got != "£6.50" {
		t.Errorf("10 USD in GBP after setrate = %q, want £6.50", got)
	}
	v := Evaluate(ParseLine("20 GBP in USD", Env{}, rates), Env{}, rates)
	back, ok := v.(Unit)
	if !ok || back.Unit != "USD" {
		t.Fatalf("20 GBP in USD = %#v", v)
	}
	if diff := back.Value - 20/0.65; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("reciprocal conversion gave %v, want %v", back.Value, 20/0.65)
	}
}

func TestSetRateRejectsNonPositive(t *testing.T) {
	rates := newTestRates()
	e := ParseLine("setrate USD to GBP = 0", Env{}, rates)
	// falls through to the assignment stage
	if _, ok := e.(*AssignExpr); !ok {
		t.Fatalf("zero rate should fall through to assignment, got %#v", e)
	}
	if rate, _ := rates.Get("USD", "GBP"); rate != 0.72 {
		t.Errorf("fallback USD->GBP rate disturbed: %v", rate)
	}
}

func TestSimpleValueFallback(t *testing.T) {
	rates := newTestRates()
	vars := Env{"x": Number{Value: 7}}
	cases := []struct{ in, want string }{
		{"42", "42"},
		{"42.5", "42.50"},
		{"15%", "15%"},
		{"10 kg", "10 kg"},
		{"x", "7"},
		{"hello", "Error: Cannot parse expression: hello"},
	}
	for _, c := range cases {
		if got := evalText(c.in, vars, rates); got != c.want {
			t.Errorf("%q = %q, want %q", c.in, got, c.want)
		}
	}
}
