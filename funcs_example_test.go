package exact_test

import (
	"fmt"

	"github.com/mkately/exact"
)

type max struct{}

func (max) CanCall(n int) bool {
	return n > 0
}

func (max) Call(args []exact.Rational) (exact.Rational, error) {
	r := args[0]
	for _, a := range args[1:] {
		if a.Cmp(r) > 0 {
			r = a
		}
	}
	return r, nil
}

func ExampleFunc() {
	env := exact.NewEnv()
	a, _ := exact.EvalString("max(1/3, 0.4, -2)", env, exact.ParseFunc("max", max{}))
	b, _ := exact.EvalString("max 5", env, exact.ParseFunc("max", max{}))
	fmt.Println(a)
	fmt.Println(b)
	// Output:
	// 2/5
	// 5
}

func ExampleEvalString() {
	env := exact.NewEnv()
	exact.EvalString("f(x) := x^2 + 1", env)
	a, _ := exact.EvalString("f(3) / 2", env)
	b, _ := exact.EvalString("f(y)", env)
	fmt.Println(a)
	fmt.Println(b)
	// Output:
	// 5
	// y ^ 2 + 1
}

func ExampleRational_Decimal() {
	x, _ := exact.ParseDecimal("1.25")
	y, _ := exact.ParseDecimal("0.(3)")
	fmt.Println(x.Decimal())
	fmt.Println(x.Add(y).Decimal())
	// Output:
	// 1.25
	// 1.58(3)
}
