package lang

import (
	"regexp"
	"strconv"
	"strings"
)

// The grammar is an ordered cascade of pattern checks over the raw line text,
// not a token grammar. Stage order matters: assignment before conversion,
// conversion before percentage, additive split before multiplicative. The
// additive split takes the first + or - in the line and reparses the
// remainder, so "10 - 2 - 3" groups as 10 - (2 - 3). That split behavior is
// load-bearing for existing documents and must not be replaced with
// precedence climbing.
var (
	setRateRe   = regexp.MustCompile(`(?i)setrate\s+([A-Za-z]{3})\s+(?:to|in)\s+([A-Za-z]{3})\s*=\s*(\d+(?:\.\d+)?)`)
	convertRe   = regexp.MustCompile(`(.+)\s+(?:in|to)\s+(.+)`)
	percentOfRe = regexp.MustCompile(`(.+)%\s+of\s+(.+)`)
	varOfRe     = regexp.MustCompile(`(\w+)\s+of\s+(.+)`)
	ofWhatIsRe  = regexp.MustCompile(`(.+)\s+of\s+what\s+is\s+(.+)`)
	nextDayRe   = regexp.MustCompile(`(?i)next\s+(\w+)(?:\s*\+\s*(\d+)\s+(\w+))?`)
	addSubRe    = regexp.MustCompile(`(.+?)([+\-])(.+)`)
	mulDivRe    = regexp.MustCompile(`(.+?)([*/^%])(.+)`)
	unitValueRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*([a-zA-Z][a-zA-Z0-9]*)`)
	varUnitRe   = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9]*)\s+([A-Z]{3})`)
)

// ParseLine parses one line into an expression tree. It never fails
// structurally: unparseable input becomes an ErrorExpr. vars is read to
// disambiguate stages that depend on whether a name is bound; rates receives
// setrate installs at parse time.
func ParseLine(line string, vars Env, rates *Rates) Expr {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return &ErrorExpr{Msg: "Empty expression"}
	}

	if e := parseSetRate(line, rates); e != nil {
		return e
	}
	if e := parseAssignment(line, vars, rates); e != nil {
		return e
	}
	if e := parseConversion(line, vars, rates); e != nil {
		return e
	}
	if e := parsePercentage(line, vars, rates); e != nil {
		return e
	}
	if e := parseDateExpression(line); e != nil {
		return e
	}
	if e := parseBinaryOp(line, vars, rates); e != nil {
		return e
	}
	return parseSimpleValue(line, vars)
}

// parseSetRate handles "setrate USD to EUR = 0.92". The rate is installed
// into the cache as a side effect of parsing; a non-positive rate makes the
// stage fall through to the ordinary assignment path.
func parseSetRate(line string, rates *Rates) Expr {
	caps := setRateRe.FindStringSubmatch(line)
	if caps == nil {
		return nil
	}
	from := strings.ToUpper(caps[1])
	to := strings.ToUpper(caps[2])
	rate, err := strconv.ParseFloat(caps[3], 64)
	if err != nil {
		return nil
	}
	if rates == nil || !rates.Set(from, to, rate) {
		return nil
	}
	return &UnitExpr{Value: rate, Unit: to}
}

func parseAssignment(line string, vars Env, rates *Rates) Expr {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return nil
	}
	name := strings.TrimSpace(parts[0])
	return &AssignExpr{Name: name, Expr: ParseLine(parts[1], vars, rates)}
}

func parseConversion(line string, vars Env, rates *Rates) Expr {
	caps := convertRe.FindStringSubmatch(line)
	if caps == nil {
		return nil
	}
	return &ConvertExpr{
		Value: ParseLine(caps[1], vars, rates),
		Unit:  strings.TrimSpace(caps[2]),
	}
}

// parsePercentage tries the three "of" forms in order: "X% of Y", then
// "name of Y" for a bound variable holding the percentage, then
// "X of what is Y". The last one reads like an inverse query but computes
// the forward percentage, matching how documents in the wild use it.
func parsePercentage(line string, vars Env, rates *Rates) Expr {
	if caps := percentOfRe.FindStringSubmatch(line); caps != nil {
		return &PercentOfExpr{
			Percent: parseSimpleValue(strings.TrimSpace(caps[1]), vars),
			Value:   ParseLine(caps[2], vars, rates),
		}
	}
	if caps := varOfRe.FindStringSubmatch(line); caps != nil {
		name := strings.TrimSpace(caps[1])
		if _, ok := vars[name]; ok {
			return &PercentOfExpr{
				Percent: &VariableExpr{Name: name},
				Value:   ParseLine(caps[2], vars, rates),
			}
		}
	}
	if caps := ofWhatIsRe.FindStringSubmatch(line); caps != nil {
		return &PercentOfExpr{
			Percent: parseSimpleValue(strings.TrimSpace(caps[1]), vars),
			Value:   ParseLine(caps[2], vars, rates),
		}
	}
	return nil
}

func parseDateExpression(line string) Expr {
	caps := nextDayRe.FindStringSubmatch(line)
	if caps == nil {
		return nil
	}
	var amount int64
	if caps[2] != "" {
		amount, _ = strconv.ParseInt(caps[2], 10, 64)
	}
	unit := "days"
	if caps[3] != "" {
		unit = strings.ToLower(caps[3])
	}
	return &DateOffsetExpr{
		Weekday: strings.ToLower(caps[1]),
		Amount:  amount,
		Unit:    unit,
	}
}

var binaryOps = map[string]Op{
	"+": OpAdd,
	"-": OpSubtract,
	"*": OpMultiply,
	"/": OpDivide,
	"^": OpPower,
	"%": OpModulo,
}

func parseBinaryOp(line string, vars Env, rates *Rates) Expr {
	caps := addSubRe.FindStringSubmatch(line)
	if caps == nil {
		caps = mulDivRe.FindStringSubmatch(line)
	}
	if caps == nil {
		return nil
	}
	return &BinaryExpr{
		Left:  ParseLine(caps[1], vars, rates),
		Op:    binaryOps[caps[2]],
		Right: ParseLine(caps[3], vars, rates),
	}
}

// parseSimpleValue is the terminal stage: percentage literal, number with a
// unit suffix, bound variable followed by a currency code, bare number, or
// bound variable name.
func parseSimpleValue(line string, vars Env) Expr {
	line = strings.TrimSpace(line)

	if strings.HasSuffix(line, "%") {
		text := strings.TrimSpace(strings.TrimSuffix(line, "%"))
		if n, err := strconv.ParseFloat(text, 64); err == nil {
			return &PercentageExpr{Value: n}
		}
	}

	if caps := unitValueRe.FindStringSubmatch(line); caps != nil {
		if n, err := strconv.ParseFloat(caps[1], 64); err == nil {
			return &UnitExpr{Value: n, Unit: strings.TrimSpace(caps[2])}
		}
	}

	// "price USD" where price is a bound variable: sugar for price * 1 USD.
	if caps := varUnitRe.FindStringSubmatch(line); caps != nil {
		if _, ok := vars[caps[1]]; ok {
			return &BinaryExpr{
				Left:  &VariableExpr{Name: caps[1]},
				Op:    OpMultiply,
				Right: &UnitExpr{Value: 1, Unit: caps[2]},
			}
		}
	}

	if n, err := strconv.ParseFloat(line, 64); err == nil {
		return &NumberExpr{Value: n}
	}
	if _, ok := vars[line]; ok {
		return &VariableExpr{Name: line}
	}
	return &ErrorExpr{Msg: "Cannot parse expression: " + line}
}
