package lang

import (
	"testing"
	"time"
)

func newTestDocument() *Document {
	d := NewDocument(newTestRates())
	d.SetDebounce(0)
	return d
}

func typeLine(d *Document, row int, text string) {
	for i, r := range []rune(text) {
		d.InsertRune(row, i, r)
	}
}

func TestDocumentStartsBlank(t *testing.T) {
	d := newTestDocument()
	if d.LineCount() != 1 || d.Line(0) != "" || d.Result(0) != "" {
		t.Errorf("fresh document: %d lines, line %q, result %q", d.LineCount(), d.Line(0), d.Result(0))
	}
	d.Evaluate() // empty dirty set is a no-op
	if d.Result(0) != "" {
		t.Errorf("no-op pass produced %q", d.Result(0))
	}
}

func TestDocumentChain(t *testing.T) {
	d := newTestDocument()
	typeLine(d, 0, "price = 10")
	d.SplitLine(0, len("price = 10"))
	typeLine(d, 1, "discount = 20% of price")
	d.SplitLine(1, len("discount = 20% of price"))
	typeLine(d, 2, "total = price - discount USD")
	d.Evaluate()

	if got := d.Result(0); got != "10" {
		t.Errorf("line 0 = %q, want 10", got)
	}
	if got := d.Result(1); got != "2" {
		t.Errorf("line 1 = %q, want 2", got)
	}
	if got := d.Result(2); got != "$8" {
		t.Errorf("line 2 = %q, want $8", got)
	}
}

func TestAssignmentPropagation(t *testing.T) {
	d := newTestDocument()
	d.Load([]string{"price = 10 USD", "discount = 2 USD", "total = price + discount"})
	if got := d.Result(2); got != "$12" {
		t.Errorf("line 2 = %q, want $12", got)
	}
	total, ok := d.vars["total"]
	if !ok {
		t.Fatal("total not committed")
	}
	if u, ok := total.(Unit); !ok || u.Value != 12 || u.Unit != "USD" {
		t.Errorf("total = %#v, want Unit 12 USD", total)
	}
}

func TestForwardReferenceCatchesUpWithinPass(t *testing.T) {
	d := newTestDocument()
	d.Load([]string{"y + 1", "y = 5"})
	// line 0 evaluated before y existed, then re-evaluated once y changed
	if got := d.Result(0); got != "6" {
		t.Errorf("line 0 = %q, want 6", got)
	}
}

func TestDependentLinesRecompute(t *testing.T) {
	d := newTestDocument()
	d.Load([]string{"x = 10", "x * 2", "x + 5"})
	if d.Result(1) != "20" || d.Result(2) != "15" {
		t.Fatalf("initial load: %q, %q", d.Result(1), d.Result(2))
	}

	// retype line 0 only; lines 1 and 2 must follow via the changed variable
	for range []rune("x = 10") {
		d.DeleteBefore(0, 1)
	}
	typeLine(d, 0, "x = 7")
	d.Evaluate()

	if got := d.Result(1); got != "14" {
		t.Errorf("dependent line 1 = %q, want 14", got)
	}
	if got := d.Result(2); got != "12" {
		t.Errorf("dependent line 2 = %q, want 12", got)
	}
}

// Dependency detection is substring-based on the raw line text, so a line
// mentioning "x" inside a longer word recomputes too. That over-approximation
// must never skip a real dependent.
func TestDependencyDetectionIsSuperset(t *testing.T) {
	d := newTestDocument()
	d.Load([]string{"x = 1", "max = 5", "max + x"})
	if d.Result(2) != "6" {
		t.Fatalf("initial: %q", d.Result(2))
	}
	for range []rune("x = 1") {
		d.DeleteBefore(0, 1)
	}
	typeLine(d, 0, "x = 2")
	d.Evaluate()
	if got := d.Result(2); got != "7" {
		t.Errorf("after x = 2: line 2 = %q, want 7", got)
	}
	if got := d.Result(1); got != "5" {
		t.Errorf("line 1 disturbed: %q", got)
	}
}

func TestAssignmentsVisibleWithinPass(t *testing.T) {
	d := newTestDocument()
	d.Load([]string{"a = 2", "b = a * 3", "b + 1"})
	if got := d.Result(2); got != "7" {
		t.Errorf("line 2 = %q, want 7", got)
	}
}

func TestBlankAndCommentLinesKeepResults(t *testing.T) {
	d := newTestDocument()
	d.Load([]string{"1 + 1", "", "# note", "2 + 2"})
	if d.Result(0) != "2" || d.Result(3) != "4" {
		t.Fatalf("load results: %q %q", d.Result(0), d.Result(3))
	}
	if d.Result(1) != "" || d.Result(2) != "" {
		t.Errorf("blank/comment lines produced %q, %q", d.Result(1), d.Result(2))
	}
}

func TestSplitAndJoin(t *testing.T) {
	d := newTestDocument()
	typeLine(d, 0, "12 + 34")
	d.Evaluate()
	if d.Result(0) != "46" {
		t.Fatalf("before split: %q", d.Result(0))
	}

	d.SplitLine(0, 4) // "12 +" / " 34"
	d.Evaluate()
	if d.LineCount() != 2 {
		t.Fatalf("after split: %d lines", d.LineCount())
	}

	d.JoinLines(0)
	d.Evaluate()
	if d.LineCount() != 1 {
		t.Fatalf("after join: %d lines", d.LineCount())
	}
	if got := d.Result(0); got != "46" {
		t.Errorf("after join: %q, want 46", got)
	}
}

func TestLoadClearsVariables(t *testing.T) {
	d := newTestDocument()
	d.Load([]string{"x = 99"})
	d.Load([]string{"x + 1"})
	want := "Error: Cannot perform Add on Error: Unknown variable: x and 1"
	if got := d.DebouncedResult(0); got != want {
		t.Errorf("after reload: %q, want %q", got, want)
	}
}

func TestSaveJoinsLines(t *testing.T) {
	d := newTestDocument()
	d.Load([]string{"a = 1", "a + 1"})
	if got := d.Save(); got != "a = 1\na + 1" {
		t.Errorf("Save() = %q", got)
	}
}

func TestDebounceHidesErrorsUntilTick(t *testing.T) {
	d := NewDocument(newTestRates())
	d.SetDebounce(time.Hour)
	typeLine(d, 0, "1 +")
	d.Evaluate()

	if got := d.DebouncedResult(0); got == "" {
		t.Fatal("debounced projection should always be complete")
	}
	if got := d.Result(0); got != "" {
		t.Errorf("live projection shows %q inside the debounce window", got)
	}

	d.Tick() // window still open, nothing promoted
	if got := d.Result(0); got != "" {
		t.Errorf("early tick promoted %q", got)
	}

	d.SetDebounce(0)
	d.Tick()
	if got := d.Result(0); got != d.DebouncedResult(0) {
		t.Errorf("after tick live = %q, debounced = %q", got, d.DebouncedResult(0))
	}
}

func TestNonErrorResultsAreLive(t *testing.T) {
	d := NewDocument(newTestRates())
	d.SetDebounce(time.Hour)
	typeLine(d, 0, "2 + 2")
	d.Evaluate()
	if got := d.Result(0); got != "4" {
		t.Errorf("valid result delayed: live = %q", got)
	}
}

func TestDocumentSetRate(t *testing.T) {
	d := newTestDocument()
	if !d.SetRate("USD", "EUR", 0.5) {
		t.Fatal("SetRate rejected")
	}
	d.Load([]string{"10 USD in EUR"})
	if got := d.Result(0); got != "€5" {
		t.Errorf("after override: %q, want €5", got)
	}
}

func TestDateChainThroughVariable(t *testing.T) {
	d := newTestDocument()
	d.Load([]string{"start = next monday", "start + 14"})
	want := Evaluate(ParseLine("next monday + 2 weeks", Env{}, newTestRates()), Env{}, nil).String()
	if got := d.Result(1); got != want {
		t.Errorf("start + 14 = %q, want %q", got, want)
	}
}
