package lang

// Expr is the interface all expression nodes implement.
// Expressions are immutable once built; a parse always produces a fresh tree.
type Expr interface {
	exprTag()
}

// NumberExpr is a bare number literal.
type NumberExpr struct {
	Value float64
}

// PercentageExpr is a percentage literal like "8%". The value is in percent
// units (8, not 0.08); it is applied only when combined with another value.
type PercentageExpr struct {
	Value float64
}

// VariableExpr references a previously assigned variable.
type VariableExpr struct {
	Name string
}

// UnitExpr is a number tagged with a unit or currency, like "10 USD" or "5 kg".
type UnitExpr struct {
	Value float64
	Unit  string
}

// AssignExpr is "name = expr". Storage of the result is the caller's job.
type AssignExpr struct {
	Name string
	Expr Expr
}

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Left  Expr
	Op    Op
	Right Expr
}

// PercentOfExpr is "X% of Y".
type PercentOfExpr struct {
	Percent Expr
	Value   Expr
}

// ConvertExpr converts a value expression into a target unit, like "x in km".
type ConvertExpr struct {
	Value Expr
	Unit  string
}

// DateOffsetExpr is "next <weekday> + <amount> <unit>".
type DateOffsetExpr struct {
	Weekday string
	Amount  int64
	Unit    string
}

// ErrorExpr carries a parse failure as data; it evaluates to an error value.
type ErrorExpr struct {
	Msg string
}

func (*NumberExpr) exprTag()     {}
func (*PercentageExpr) exprTag() {}
func (*VariableExpr) exprTag()   {}
func (*UnitExpr) exprTag()       {}
func (*AssignExpr) exprTag()     {}
func (*BinaryExpr) exprTag()     {}
func (*PercentOfExpr) exprTag()  {}
func (*ConvertExpr) exprTag()    {}
func (*DateOffsetExpr) exprTag() {}
func (*ErrorExpr) exprTag()      {}

// Op identifies a binary operator.
type Op int

const (
	OpAdd Op = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
)

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "Add"
	case OpSubtract:
		return "Subtract"
	case OpMultiply:
		return "Multiply"
	case OpDivide:
		return "Divide"
	case OpModulo:
		return "Modulo"
	case OpPower:
		return "Power"
	}
	return "Unknown"
}
