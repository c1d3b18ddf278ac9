package exact

import "strconv"

// Func describes a callable recognized by the parser. The whitelist of Func
// names is what disambiguates "floor 3.5" (application) from "x 3.5"
// (implicit multiplication): an identifier that is not a known Func is a
// variable.
type Func interface {
	// Call applies the function to fully reduced arguments. The evaluator
	// only calls it when CanCall(len(args)) held at parse time and every
	// argument reduced to a concrete Rational.
	Call(args []Rational) (Rational, error)

	// CanCall reports whether the function accepts n arguments. The parser
	// uses this to decide whether a bare or parenthesized operand after the
	// name is an argument list and to reject wrong arities at parse time.
	CanCall(n int) bool
}

// builtins is the closed set of built-in functions. Each delegates to the
// corresponding Rational operation.
var builtins = map[string]Func{
	"floor": monadic(Rational.Floor),
	"ceil":  monadic(Rational.Ceil),
	"round": monadic(Rational.Round),
	"trunc": monadic(Rational.Trunc),
	"fract": monadic(Rational.Fract),
	"abs":   monadic(Rational.Abs),
}

// Builtins returns the names of the built-in functions, in no particular
// order.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for k := range builtins {
		names = append(names, k)
	}
	return names
}

type monadicFunc struct {
	f func(Rational) Rational
}

func (m monadicFunc) Call(args []Rational) (Rational, error) {
	return m.f(args[0]), nil
}

func (m monadicFunc) CanCall(n int) bool {
	return n == 1
}

func monadic(f func(Rational) Rational) Func {
	return monadicFunc{f}
}

// arityFunc stands in for a function whose body lives in an Env. The parser
// needs only its arity; application is performed by the evaluator, so Call
// reports a DomainError if something reaches it.
type arityFunc struct {
	name string
	n    int
}

func (a arityFunc) Call(args []Rational) (Rational, error) {
	return Rational{}, &DomainError{Func: a.name, Got: len(args), Want: a.n}
}

func (a arityFunc) CanCall(n int) bool {
	return n == a.n
}

// Defined returns a Func usable as a parse option for a function defined in
// an environment, accepting exactly n arguments.
func Defined(name string, n int) Func {
	return arityFunc{name: name, n: n}
}

// DomainError is an error from applying a function outside its domain,
// including applying a defined function to the wrong number of arguments.
type DomainError struct {
	// Func is the function name.
	Func string
	// Got and Want are the offered and accepted argument counts when the
	// error is an arity mismatch; both are zero otherwise.
	Got, Want int
	// Msg describes non-arity domain violations.
	Msg string
}

func (err *DomainError) Error() string {
	if err.Msg != "" {
		return err.Func + ": " + err.Msg
	}
	return err.Func + " takes " + strconv.Itoa(err.Want) + " arguments, not " + strconv.Itoa(err.Got)
}
