package exact

import (
	"math/big"
	"testing"
)

func ratOf(t *testing.T, s string) Rational {
	t.Helper()
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		t.Fatalf("bad rational literal %q", s)
	}
	return FromBigRat(r)
}

// checkReduced verifies the representation invariant: lowest terms,
// positive denominator.
func checkReduced(t *testing.T, x Rational) {
	t.Helper()
	num, den := x.Num(), x.Denom()
	if den.Sign() <= 0 {
		t.Errorf("%v has nonpositive denominator %v", x, den)
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(num), den)
	if g.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("%v is not in lowest terms: gcd(%v, %v) = %v", x, num, den, g)
	}
}

func TestArith(t *testing.T) {
	cases := []struct {
		name    string
		x, op, y string
		want    string
	}{
		{"add", "1/3", "+", "1/6", "1/2"},
		{"addneg", "1/2", "+", "-1/2", "0"},
		{"sub", "1/3", "-", "1/2", "-1/6"},
		{"mul", "2/3", "*", "9/4", "3/2"},
		{"mulzero", "0", "*", "5/7", "0"},
		{"div", "1/3", "/", "1/6", "2"},
		{"divneg", "1", "/", "-4", "-1/4"},
		{"mod", "7", "%", "3", "1"},
		{"modneg", "-7", "%", "3", "-1"},
		{"modnegden", "7", "%", "-3", "1"},
		{"modfrac", "7/2", "%", "1", "1/2"},
		{"pow", "2/3", "^", "3", "8/27"},
		{"powneg", "2", "^", "-3", "1/8"},
		{"pownegbase", "-2", "^", "3", "-8"},
		{"pownegbaseneg", "-2/3", "^", "-2", "9/4"},
		{"powzero", "5/3", "^", "0", "1"},
		{"powzerozero", "0", "^", "0", "1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x, y := ratOf(t, c.x), ratOf(t, c.y)
			var got Rational
			var err error
			switch c.op {
			case "+":
				got = x.Add(y)
			case "-":
				got = x.Sub(y)
			case "*":
				got = x.Mul(y)
			case "/":
				got, err = x.Div(y)
			case "%":
				got, err = x.Mod(y)
			case "^":
				got, err = x.Pow(y)
			}
			if err != nil {
				t.Fatalf("%s %s %s: %v", c.x, c.op, c.y, err)
			}
			if want := ratOf(t, c.want); got.Cmp(want) != 0 {
				t.Errorf("%s %s %s: want %v, got %v", c.x, c.op, c.y, want, got)
			}
			checkReduced(t, got)
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	zero := Rational{}
	if _, err := FromInt(1).Div(zero); err == nil {
		t.Error("1/0 did not error")
	}
	if _, err := FromInt(1).Mod(zero); err == nil {
		t.Error("1%0 did not error")
	}
	if _, err := zero.Pow(FromInt(-1)); err == nil {
		t.Error("0^-1 did not error")
	}
	if _, err := FromFrac(big.NewInt(1), big.NewInt(0)); err == nil {
		t.Error("1/0 construction did not error")
	}
}

func TestPowFractionalExponent(t *testing.T) {
	if _, err := FromInt(2).Pow(ratOf(t, "1/2")); err != ErrUnsupported {
		t.Errorf("2^(1/2): want ErrUnsupported, got %v", err)
	}
}

func TestRounding(t *testing.T) {
	cases := []struct {
		x                                string
		floor, ceil, trunc, round, fract string
	}{
		{"0", "0", "0", "0", "0", "0"},
		{"7/2", "3", "4", "3", "4", "1/2"},
		{"-7/2", "-4", "-3", "-3", "-4", "-1/2"},
		{"1/3", "0", "1", "0", "0", "1/3"},
		{"-1/3", "-1", "0", "0", "0", "-1/3"},
		{"5/3", "1", "2", "1", "2", "2/3"},
		{"-5/3", "-2", "-1", "-1", "-2", "-2/3"},
		{"4", "4", "4", "4", "4", "0"},
		{"-4", "-4", "-4", "-4", "-4", "0"},
	}
	for _, c := range cases {
		t.Run(c.x, func(t *testing.T) {
			x := ratOf(t, c.x)
			ops := []struct {
				name string
				f    func(Rational) Rational
				want string
			}{
				{"floor", Rational.Floor, c.floor},
				{"ceil", Rational.Ceil, c.ceil},
				{"trunc", Rational.Trunc, c.trunc},
				{"round", Rational.Round, c.round},
				{"fract", Rational.Fract, c.fract},
			}
			for _, op := range ops {
				got := op.f(x)
				if want := ratOf(t, op.want); got.Cmp(want) != 0 {
					t.Errorf("%s(%s): want %v, got %v", op.name, c.x, want, got)
				}
				checkReduced(t, got)
			}
		})
	}
}

func TestZeroValue(t *testing.T) {
	var x Rational
	if x.Sign() != 0 {
		t.Errorf("zero value has sign %d", x.Sign())
	}
	if got := x.Add(FromInt(3)); got.Cmp(FromInt(3)) != 0 {
		t.Errorf("0 + 3 = %v", got)
	}
	if x.String() != "0" {
		t.Errorf("zero value renders %q", x.String())
	}
}

func TestImmutable(t *testing.T) {
	x := ratOf(t, "2/3")
	y := ratOf(t, "5/7")
	x.Add(y)
	x.Mul(y)
	x.Neg()
	if _, err := x.Div(y); err != nil {
		t.Fatal(err)
	}
	if x.Cmp(ratOf(t, "2/3")) != 0 {
		t.Errorf("operand changed to %v", x)
	}
}
