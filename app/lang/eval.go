package lang

import (
	"fmt"
	"math"
	"time"
)

// Env is the variable environment mapping names to values.
type Env map[string]Value

// Evaluate walks an expression tree to a value. It never writes into vars:
// an assignment comes back wrapped in Assignment and committing it is the
// caller's responsibility. rates serves currency conversions.
func Evaluate(expr Expr, vars Env, rates *Rates) Value {
	switch e := expr.(type) {
	case *NumberExpr:
		return Number{Value: e.Value}

	case *PercentageExpr:
		return Percentage{Value: e.Value}

	case *VariableExpr:
		if v, ok := vars[e.Name]; ok {
			return v
		}
		return Error{Msg: "Unknown variable: " + e.Name}

	case *UnitExpr:
		return Unit{Value: e.Value, Unit: e.Unit}

	case *AssignExpr:
		return Assignment{Name: e.Name, Value: Evaluate(e.Expr, vars, rates)}

	case *BinaryExpr:
		return evalBinaryOp(e.Left, e.Op, e.Right, vars, rates)

	case *PercentOfExpr:
		return evalPercentOf(e.Percent, e.Value, vars, rates)

	case *ConvertExpr:
		return evalConvert(e.Value, e.Unit, vars, rates)

	case *DateOffsetExpr:
		return evalDateOffset(e.Weekday, e.Amount, e.Unit)

	case *ErrorExpr:
		return Error{Msg: e.Msg}
	}
	return Error{Msg: "Unknown expression"}
}

// evalBinaryOp dispatches on the pair of operand kinds and the operator.
// The rule set is closed; unlisted combinations are a type error.
func evalBinaryOp(left Expr, op Op, right Expr, vars Env, rates *Rates) Value {
	a := Evaluate(left, vars, rates)
	b := Evaluate(right, vars, rates)

	switch av := a.(type) {
	case Number:
		switch bv := b.(type) {
		case Number:
			return evalNumberOp(av.Value, op, bv.Value)
		case Percentage:
			// "+10%" adds 10% of the base, not the literal number 10.
			switch op {
			case OpAdd:
				return Number{Value: av.Value + av.Value*bv.Value/100}
			case OpSubtract:
				return Number{Value: av.Value - av.Value*bv.Value/100}
			case OpMultiply:
				return Number{Value: av.Value * (bv.Value / 100)}
			}
		case Unit:
			// The bare number is promoted to the unit.
			switch op {
			case OpAdd:
				return Unit{Value: av.Value + bv.Value, Unit: bv.Unit}
			case OpSubtract:
				return Unit{Value: av.Value - bv.Value, Unit: bv.Unit}
			case OpMultiply:
				return Unit{Value: av.Value * bv.Value, Unit: bv.Unit}
			}
		}

	case Percentage:
		if bv, ok := b.(Number); ok && op == OpMultiply {
			return Number{Value: (av.Value / 100) * bv.Value}
		}

	case Unit:
		switch bv := b.(type) {
		case Percentage:
			switch op {
			case OpAdd:
				return Unit{Value: av.Value + av.Value*bv.Value/100, Unit: av.Unit}
			case OpSubtract:
				return Unit{Value: av.Value - av.Value*bv.Value/100, Unit: av.Unit}
			}
		case Number:
			switch op {
			case OpMultiply:
				return Unit{Value: av.Value * bv.Value, Unit: av.Unit}
			case OpDivide:
				if bv.Value == 0 {
					return Error{Msg: "Division by zero"}
				}
				return Unit{Value: av.Value / bv.Value, Unit: av.Unit}
			}
		case Unit:
			if op == OpAdd || op == OpSubtract {
				return evalUnitAddSub(av, op, bv, rates)
			}
		}

	case Date:
		if bv, ok := b.(Number); ok {
			switch op {
			case OpAdd:
				return Date{Day: av.Day.AddDate(0, 0, int(bv.Value))}
			case OpSubtract:
				return Date{Day: av.Day.AddDate(0, 0, -int(bv.Value))}
			}
		}
	}

	return Error{Msg: fmt.Sprintf("Cannot perform %s on %s and %s", op, a, b)}
}

func evalNumberOp(a float64, op Op, b float64) Value {
	switch op {
	case OpAdd:
		return Number{Value: a + b}
	case OpSubtract:
		return Number{Value: a - b}
	case OpMultiply:
		return Number{Value: a * b}
	case OpDivide:
		if b == 0 {
			return Error{Msg: "Division by zero"}
		}
		return Number{Value: a / b}
	case OpModulo:
		if b == 0 {
			return Error{Msg: "Modulo by zero"}
		}
		return Number{Value: math.Mod(a, b)}
	case OpPower:
		return Number{Value: math.Pow(a, b)}
	}
	return Error{Msg: "Unknown operator"}
}

// evalUnitAddSub adds or subtracts two unit values, converting the right
// operand into the left operand's unit when the spellings differ.
func evalUnitAddSub(a Unit, op Op, b Unit, rates *Rates) Value {
	if a.Unit == b.Unit {
		return unitAddSub(a.Value, op, b.Value, a.Unit)
	}

	na := NormalizeUnit(a.Unit)
	nb := NormalizeUnit(b.Unit)
	if na == nb {
		return unitAddSub(a.Value, op, b.Value, a.Unit)
	}

	if isCurrencyCode(na) && isCurrencyCode(nb) {
		converted, ok := ConvertUnits(b.Value, nb, na, rates)
		if !ok {
			return Error{Msg: fmt.Sprintf("Cannot convert from %s to %s", b.Unit, a.Unit)}
		}
		return unitAddSub(a.Value, op, converted, a.Unit)
	}

	if converted, ok := ConvertUnits(b.Value, nb, na, rates); ok {
		return unitAddSub(a.Value, op, converted, a.Unit)
	}
	return Error{Msg: fmt.Sprintf("Cannot perform %s on %s and %s", op, a.Unit, b.Unit)}
}

func unitAddSub(a float64, op Op, b float64, unit string) Value {
	if op == OpSubtract {
		return Unit{Value: a - b, Unit: unit}
	}
	return Unit{Value: a + b, Unit: unit}
}

func evalPercentOf(percentExpr, valueExpr Expr, vars Env, rates *Rates) Value {
	p := Evaluate(percentExpr, vars, rates)
	v := Evaluate(valueExpr, vars, rates)

	var percent float64
	switch pv := p.(type) {
	case Number:
		percent = pv.Value
	case Percentage:
		percent = pv.Value
	default:
		return Error{Msg: "Invalid percentage calculation"}
	}

	switch vv := v.(type) {
	case Number:
		return Number{Value: (percent / 100) * vv.Value}
	case Unit:
		return Unit{Value: (percent / 100) * vv.Value, Unit: vv.Unit}
	}
	return Error{Msg: "Invalid percentage calculation"}
}

func evalConvert(valueExpr Expr, targetUnit string, vars Env, rates *Rates) Value {
	v := Evaluate(valueExpr, vars, rates)
	normTarget := NormalizeUnit(targetUnit)
	display := displayUnit(targetUnit, normTarget)

	switch vv := v.(type) {
	case Unit:
		normSource := NormalizeUnit(vv.Unit)
		if normSource == normTarget {
			return Unit{Value: vv.Value, Unit: display}
		}
		if converted, ok := ConvertUnits(vv.Value, normSource, normTarget, rates); ok {
			return Unit{Value: converted, Unit: display}
		}
		return Error{Msg: fmt.Sprintf("Cannot convert from %s to %s", vv.Unit, targetUnit)}

	case Number:
		// A unitless number is simply tagged with the target unit.
		return Unit{Value: vv.Value, Unit: display}
	}

	return Error{Msg: fmt.Sprintf(
		"Cannot convert value to %s. Try assigning the unit first with 'variable * 1 %s'",
		targetUnit, targetUnit)}
}

// displayUnit picks the spelling shown in the result. Data units keep their
// uppercase canonical form; an all-uppercase target (currency codes) is shown
// as typed; everything else uses the normalized spelling.
func displayUnit(target, normalized string) string {
	switch normalized {
	case "B", "KB", "MB", "GB", "TB", "PB":
		return normalized
	}
	if target != "" && allUppercaseAlpha(target) {
		return target
	}
	return normalized
}

func allUppercaseAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return len(s) > 0
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// evalDateOffset resolves "next <weekday> + <amount> <unit>" against the
// process's local today. If today is the named weekday, the result rolls to
// next week. Months are approximated as 30 days.
func evalDateOffset(weekdayName string, amount int64, unit string) Value {
	target, ok := weekdayNames[weekdayName]
	if !ok {
		return Error{Msg: "Unknown day: " + weekdayName}
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	daysUntil := (int(target) - int(today.Weekday()) + 7) % 7
	if daysUntil == 0 {
		daysUntil = 7
	}
	next := today.AddDate(0, 0, daysUntil)

	switch unit {
	case "day", "days":
		return Date{Day: next.AddDate(0, 0, int(amount))}
	case "week", "weeks":
		return Date{Day: next.AddDate(0, 0, int(amount)*7)}
	case "month", "months":
		return Date{Day: next.AddDate(0, 0, int(amount)*30)}
	}
	return Error{Msg: "Unknown time unit: " + unit}
}
