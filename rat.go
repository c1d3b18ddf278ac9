package exact

import (
	"errors"
	"math/big"
)

// Rational is an exact arbitrary-precision rational number. The zero value
// is 0. Rational values are immutable; every operation returns a new value.
// Results are always in lowest terms with a positive denominator.
type Rational struct {
	r *big.Rat
}

// ErrUnsupported indicates an arithmetic request the exact-rational model
// cannot represent, such as a non-integer exponent.
var ErrUnsupported = errors.New("operation not representable as an exact rational")

// DivisionByZeroError indicates a zero denominator or divisor.
type DivisionByZeroError struct {
	// Op is the operation that divided by zero: "/", "%", "^", or
	// "construct".
	Op string
}

func (err *DivisionByZeroError) Error() string {
	return "division by zero in " + err.Op
}

// FromInt creates the rational n/1.
func FromInt(n int64) Rational {
	return Rational{big.NewRat(n, 1)}
}

// FromBigInt creates the rational n/1.
func FromBigInt(n *big.Int) Rational {
	return Rational{new(big.Rat).SetInt(n)}
}

// FromFrac creates the rational num/den in lowest terms. It reports a
// DivisionByZeroError if den is zero.
func FromFrac(num, den *big.Int) (Rational, error) {
	if den.Sign() == 0 {
		return Rational{}, &DivisionByZeroError{Op: "construct"}
	}
	return Rational{new(big.Rat).SetFrac(num, den)}, nil
}

// FromBigRat creates a Rational from a big.Rat. The argument is copied.
func FromBigRat(r *big.Rat) Rational {
	return Rational{new(big.Rat).Set(r)}
}

// rat returns the receiver's value, treating the zero Rational as 0.
// The result must not be modified.
func (x Rational) rat() *big.Rat {
	if x.r == nil {
		return new(big.Rat)
	}
	return x.r
}

// Rat returns a copy of x as a big.Rat.
func (x Rational) Rat() *big.Rat {
	return new(big.Rat).Set(x.rat())
}

// Num returns a copy of the numerator, with the sign of x.
func (x Rational) Num() *big.Int {
	return new(big.Int).Set(x.rat().Num())
}

// Denom returns a copy of the denominator, which is always positive.
func (x Rational) Denom() *big.Int {
	return new(big.Int).Set(x.rat().Denom())
}

// Sign returns -1, 0, or +1 according to the sign of x.
func (x Rational) Sign() int {
	return x.rat().Sign()
}

// Cmp compares x and y exactly and returns -1, 0, or +1.
func (x Rational) Cmp(y Rational) int {
	return x.rat().Cmp(y.rat())
}

// IsInt reports whether x has denominator 1.
func (x Rational) IsInt() bool {
	return x.rat().IsInt()
}

// Add returns x + y.
func (x Rational) Add(y Rational) Rational {
	return Rational{new(big.Rat).Add(x.rat(), y.rat())}
}

// Sub returns x - y.
func (x Rational) Sub(y Rational) Rational {
	return Rational{new(big.Rat).Sub(x.rat(), y.rat())}
}

// Mul returns x * y.
func (x Rational) Mul(y Rational) Rational {
	return Rational{new(big.Rat).Mul(x.rat(), y.rat())}
}

// Div returns x / y, or a DivisionByZeroError if y is zero.
func (x Rational) Div(y Rational) (Rational, error) {
	if y.Sign() == 0 {
		return Rational{}, &DivisionByZeroError{Op: "/"}
	}
	return Rational{new(big.Rat).Quo(x.rat(), y.rat())}, nil
}

// Mod returns the truncated-division remainder x - y*trunc(x/y), so the
// result has the sign of x, matching Go's % on integers. It reports a
// DivisionByZeroError if y is zero.
func (x Rational) Mod(y Rational) (Rational, error) {
	q, err := x.Div(y)
	if err != nil {
		return Rational{}, &DivisionByZeroError{Op: "%"}
	}
	return x.Sub(y.Mul(q.Trunc())), nil
}

// Neg returns -x.
func (x Rational) Neg() Rational {
	return Rational{new(big.Rat).Neg(x.rat())}
}

// Abs returns the absolute value of x.
func (x Rational) Abs() Rational {
	return Rational{new(big.Rat).Abs(x.rat())}
}

// Pow returns x raised to an integer exponent. If y is not an integer, Pow
// reports ErrUnsupported; callers that prefer to leave such powers symbolic
// must check for it. 0^0 is 1; a negative exponent with a zero base reports
// a DivisionByZeroError.
func (x Rational) Pow(y Rational) (Rational, error) {
	if !y.IsInt() {
		return Rational{}, ErrUnsupported
	}
	e := y.rat().Num()
	neg := e.Sign() < 0
	if neg && x.Sign() == 0 {
		return Rational{}, &DivisionByZeroError{Op: "^"}
	}
	abs := new(big.Int).Abs(e)
	num := new(big.Int).Exp(x.rat().Num(), abs, nil)
	den := new(big.Int).Exp(x.rat().Denom(), abs, nil)
	if neg {
		num, den = den, num
	}
	// num carries the sign; den is a power of a positive integer unless the
	// exponent was negative and x was negative, which SetFrac normalizes.
	return FromFrac(num, den)
}

// Floor returns the greatest integer not greater than x.
func (x Rational) Floor() Rational {
	r := x.rat()
	q := new(big.Int).Div(r.Num(), r.Denom())
	return Rational{new(big.Rat).SetInt(q)}
}

// Ceil returns the least integer not less than x.
func (x Rational) Ceil() Rational {
	return x.Neg().Floor().Neg()
}

// Trunc returns x rounded toward zero to an integer.
func (x Rational) Trunc() Rational {
	r := x.rat()
	q := new(big.Int).Quo(r.Num(), r.Denom())
	return Rational{new(big.Rat).SetInt(q)}
}

// Round returns the integer nearest to x, rounding halves away from zero.
func (x Rational) Round() Rational {
	half := big.NewRat(1, 2)
	if x.Sign() < 0 {
		return Rational{new(big.Rat).Sub(x.rat(), half)}.Ceil()
	}
	return Rational{new(big.Rat).Add(x.rat(), half)}.Floor()
}

// Fract returns the fractional part x - trunc(x), with the sign of x.
func (x Rational) Fract() Rational {
	return x.Sub(x.Trunc())
}

// String returns x as an integer literal or a num/den fraction. The result
// parses back to the same value, as a literal or as a quotient.
func (x Rational) String() string {
	return x.rat().RatString()
}

// Float returns x as a big.Float of the given precision. It is a display
// convenience; nothing in evaluation consumes the result.
func (x Rational) Float(prec uint) *big.Float {
	f := new(big.Float).SetPrec(prec)
	return f.SetRat(x.rat())
}
