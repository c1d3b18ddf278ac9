package exact

import "strconv"

// OperatorError is an error indicating an operator token that is not
// understood by the parser. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched parentheses in the input.
// It implements InputError.
type BracketError struct {
	// Col is the position of the error.
	Col int
	// Right is the unexpected closing parenthesis, or the empty string when
	// an open parenthesis was never closed.
	Right string
}

func (err *BracketError) Error() string {
	if err.Right == "" {
		return errpos(err.Col, "open parenthesis with no close")
	}
	return errpos(err.Col, "close parenthesis with no open")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// SeparatorError is an error indicating a comma outside a set literal or
// argument list. It implements InputError.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "comma outside parentheses")
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

// CallError is an error indicating a function call with the wrong number of
// arguments. It implements InputError.
type CallError struct {
	// Col is the position of the end of the call expression.
	Col int
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments the function call tried to imply.
	Len int
}

func (err *CallError) Error() string {
	return errpos(err.Col, "cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+" arguments")
}

func (err *CallError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating an empty subexpression where
// an operand is required. It implements InputError.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// AssignError is an error indicating an assignment whose target is not a
// bare identifier or a call with identifier parameters. It implements
// InputError.
type AssignError struct {
	// Col is the position of the assignment marker.
	Col int
}

func (err *AssignError) Error() string {
	return errpos(err.Col, "assignment target must be a name or a call like f(x)")
}

func (err *AssignError) Pos() int {
	return err.Col
}

// DepthError is an error indicating input nested beyond the configured
// depth limit. It is reported by both parsing and evaluation; for parsing
// it implements InputError.
type DepthError struct {
	// Col is the position at which the limit was exceeded, or 0 when the
	// error arose during evaluation.
	Col int
	// Depth is the limit that was exceeded.
	Depth int
}

func (err *DepthError) Error() string {
	if err.Col == 0 {
		return "expression nested deeper than " + strconv.Itoa(err.Depth)
	}
	return errpos(err.Col, "expression nested deeper than "+strconv.Itoa(err.Depth))
}

func (err *DepthError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting
// from invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*AssignError)(nil)
	_ InputError = (*DepthError)(nil)
	_ InputError = (*LexError)(nil)
)
