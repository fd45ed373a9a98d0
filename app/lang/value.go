package lang

import (
	"math"
	"strconv"
	"time"
)

// Value is the interface all runtime value variants implement.
// It is a closed union: Number, Percentage, Unit, Date, Error, Assignment.
type Value interface {
	valueTag()
	String() string
}

// Number is a dimensionless scalar.
type Number struct {
	Value float64
}

// Percentage is an unapplied "X%" literal. The value is in percent units.
type Percentage struct {
	Value float64
}

// Unit is a scalar tagged with a physical or currency unit.
type Unit struct {
	Value float64
	Unit  string
}

// Date is a concrete calendar day with no time-of-day component.
type Date struct {
	Day time.Time
}

// Error is a failed computation. It propagates as data and is never retried.
type Error struct {
	Msg string
}

// Assignment wraps the value produced by "name = expr". It signals a side
// effect to the caller and is unwrapped before a variable is stored; a
// variable's stored value is never itself an Assignment.
type Assignment struct {
	Name  string
	Value Value
}

func (Number) valueTag()     {}
func (Percentage) valueTag() {}
func (Unit) valueTag()       {}
func (Date) valueTag()       {}
func (Error) valueTag()      {}
func (Assignment) valueTag() {}

// currencySymbols maps currency codes to their display prefixes. Codes not
// listed here render as "<value> <code>".
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "C$",
	"JPY": "¥",
	"AUD": "A$",
	"CNY": "¥",
	"INR": "₹",
}

func (v Number) String() string {
	return formatNumber(v.Value)
}

func (v Percentage) String() string {
	return formatNumber(v.Value) + "%"
}

func (v Unit) String() string {
	if isCurrencyCode(v.Unit) {
		if sym, ok := currencySymbols[v.Unit]; ok {
			return sym + formatNumber(v.Value)
		}
	}
	return formatNumber(v.Value) + " " + v.Unit
}

func (v Date) String() string {
	return v.Day.Format("2006-01-02")
}

func (v Error) String() string {
	return "Error: " + v.Msg
}

// String renders the inner value; the variable name is not shown.
func (v Assignment) String() string {
	return v.Value.String()
}

// formatNumber renders integers without a decimal part. Non-integers use two
// decimal places when that representation round-trips within 1e-10 of the
// original float, and six decimal places otherwise.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	short := strconv.FormatFloat(f, 'f', 2, 64)
	if back, err := strconv.ParseFloat(short, 64); err == nil && math.Abs(back-f) <= 1e-10 {
		return short
	}
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// isCurrencyCode reports whether a unit string is currency-shaped:
// exactly three ASCII uppercase letters.
func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// valueEqual compares two values structurally, including unit tags.
// Used by the engine to detect which variables changed between passes.
func valueEqual(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		return ok && av.Value == bv.Value
	case Percentage:
		bv, ok := b.(Percentage)
		return ok && av.Value == bv.Value
	case Unit:
		bv, ok := b.(Unit)
		return ok && av.Value == bv.Value && av.Unit == bv.Unit
	case Date:
		bv, ok := b.(Date)
		return ok && av.Day.Equal(bv.Day)
	case Error:
		bv, ok := b.(Error)
		return ok && av.Msg == bv.Msg
	case Assignment:
		bv, ok := b.(Assignment)
		return ok && av.Name == bv.Name && valueEqual(av.Value, bv.Value)
	}
	return false
}
