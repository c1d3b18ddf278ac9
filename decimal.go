package exact

import (
	"math/big"
	"strconv"
	"strings"
)

// Decimal renders x as a minimal decimal string. A repeating digit cycle is
// wrapped in parentheses: 1/6 renders as "0.1(6)" and 1/7 as "0.(142857)".
// Terminating decimals carry no cycle mark. ParseDecimal reconstructs the
// exact value from the result.
func (x Rational) Decimal() string {
	r := x.rat()
	num := new(big.Int).Abs(r.Num())
	den := r.Denom()
	var b strings.Builder
	if r.Sign() < 0 {
		b.WriteByte('-')
	}
	ip, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	b.WriteString(ip.String())
	if rem.Sign() == 0 {
		return b.String()
	}
	b.WriteByte('.')
	// Long division. Each step maps a remainder in [1, den) to a digit; by
	// pigeonhole a remainder repeats within den-1 steps, and the first
	// repeat marks the start of the cycle.
	var digits []byte
	seen := make(map[string]int)
	ten := big.NewInt(10)
	cycle := -1
	for rem.Sign() != 0 {
		key := rem.String()
		if at, ok := seen[key]; ok {
			cycle = at
			break
		}
		seen[key] = len(digits)
		rem.Mul(rem, ten)
		d, m := new(big.Int).QuoRem(rem, den, new(big.Int))
		digits = append(digits, byte('0'+d.Int64()))
		rem = m
	}
	if cycle < 0 {
		b.Write(digits)
		return b.String()
	}
	b.Write(digits[:cycle])
	b.WriteByte('(')
	b.Write(digits[cycle:])
	b.WriteByte(')')
	return b.String()
}

// DecimalError indicates text that is not a valid decimal literal.
type DecimalError struct {
	// Text is the rejected literal.
	Text string
}

func (err *DecimalError) Error() string {
	return "invalid decimal literal " + strconv.Quote(err.Text)
}

// ParseDecimal parses a decimal literal into an exact Rational. The literal
// is an optional sign, an integer part, an optional fractional part, an
// optional repeating cycle in parentheses, and an optional e/E exponent:
// "3", "-0.25", "0.1(6)", "1.5e-3". A cycle of digits c after a fractional
// prefix of length k contributes c/(10^k · (10^len(c)-1)), i.e. the cycle
// repeats forever, so ParseDecimal(q.Decimal()) == q for every q.
func ParseDecimal(s string) (Rational, error) {
	text := s
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	digits := func(s string) (string, string) {
		i := 0
		for i < len(s) && '0' <= s[i] && s[i] <= '9' {
			i++
		}
		return s[:i], s[i:]
	}
	var ip, fp, cp string
	ip, s = digits(s)
	if len(s) > 0 && s[0] == '.' {
		fp, s = digits(s[1:])
		if len(s) > 0 && s[0] == '(' {
			cp, s = digits(s[1:])
			if cp == "" || len(s) == 0 || s[0] != ')' {
				return Rational{}, &DecimalError{Text: text}
			}
			s = s[1:]
		}
	}
	if ip == "" && fp == "" {
		return Rational{}, &DecimalError{Text: text}
	}
	exp := 0
	if len(s) > 0 && (s[0] == 'e' || s[0] == 'E') {
		var err error
		exp, err = strconv.Atoi(s[1:])
		if err != nil {
			return Rational{}, &DecimalError{Text: text}
		}
		s = ""
	}
	if s != "" {
		return Rational{}, &DecimalError{Text: text}
	}

	v := new(big.Rat)
	if ip != "" {
		n, ok := new(big.Int).SetString(ip, 10)
		if !ok {
			return Rational{}, &DecimalError{Text: text}
		}
		v.SetInt(n)
	}
	ten := big.NewInt(10)
	if fp != "" {
		n, ok := new(big.Int).SetString(fp, 10)
		if !ok {
			return Rational{}, &DecimalError{Text: text}
		}
		den := new(big.Int).Exp(ten, big.NewInt(int64(len(fp))), nil)
		v.Add(v, new(big.Rat).SetFrac(n, den))
	}
	if cp != "" {
		n, ok := new(big.Int).SetString(cp, 10)
		if !ok {
			return Rational{}, &DecimalError{Text: text}
		}
		// 10^len(fp) * (10^len(cp) - 1)
		den := new(big.Int).Exp(ten, big.NewInt(int64(len(cp))), nil)
		den.Sub(den, big.NewInt(1))
		den.Mul(den, new(big.Int).Exp(ten, big.NewInt(int64(len(fp))), nil))
		v.Add(v, new(big.Rat).SetFrac(n, den))
	}
	if exp != 0 {
		e := new(big.Int).Exp(ten, big.NewInt(int64(abs(exp))), nil)
		if exp > 0 {
			v.Mul(v, new(big.Rat).SetInt(e))
		} else {
			v.Quo(v, new(big.Rat).SetInt(e))
		}
	}
	if neg {
		v.Neg(v)
	}
	return Rational{v}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
