package exact

import (
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// NameError is an error from asking for the numeric value of a name that
// has none, either because nothing binds it or because its definition
// refers back to itself.
type NameError struct {
	// Name is the name with no value.
	Name string
}

func (err *NameError) Error() string {
	return "no value for " + err.Name
}

// Approx computes a floating point approximation of an expression at the
// given precision in bits. Unlike Eval, which keeps results exact or
// residual, Approx must produce a number, so any name or call that does not
// resolve to one is an error. It is a display aid; nothing feeds its
// results back into evaluation.
func Approx(e *Expr, env *Env, prec uint) (*big.Float, error) {
	ap := approximator{env: env, guard: make(map[string]bool), prec: prec}
	return ap.approx(e.n)
}

type approximator struct {
	env   *Env
	guard map[string]bool
	prec  uint
}

func (ap *approximator) approx(n *node) (*big.Float, error) {
	switch n.kind {
	case nodeNum:
		return n.num.Float(ap.prec), nil
	case nodeName:
		if ap.guard[n.name] || ap.env == nil {
			return nil, &NameError{Name: n.name}
		}
		b, ok := ap.env.lookup(n.name)
		if !ok || b.fn {
			return nil, &NameError{Name: n.name}
		}
		ap.guard[n.name] = true
		defer delete(ap.guard, n.name)
		return ap.approx(b.body)
	case nodeNeg:
		x, err := ap.approx(n.left)
		if err != nil {
			return nil, err
		}
		return x.Neg(x), nil
	case nodeCall:
		// Eval folds every call it can; one that survived has no value.
		return nil, &NameError{Name: n.name}
	case nodeSet:
		return nil, &DomainError{Func: "approx", Msg: "a set is not a number"}
	case nodeAssign:
		return nil, &DomainError{Func: "approx", Msg: "a definition is not a number"}
	}
	x, err := ap.approx(n.left)
	if err != nil {
		return nil, err
	}
	y, err := ap.approx(n.right)
	if err != nil {
		return nil, err
	}
	switch n.kind {
	case nodeAdd:
		return x.Add(x, y), nil
	case nodeSub:
		return x.Sub(x, y), nil
	case nodeMul:
		return x.Mul(x, y), nil
	case nodeDiv:
		if y.Sign() == 0 {
			return nil, &DivisionByZeroError{Op: "/"}
		}
		return x.Quo(x, y), nil
	case nodeMod:
		if y.Sign() == 0 {
			return nil, &DivisionByZeroError{Op: "%"}
		}
		q := new(big.Float).SetPrec(ap.prec).Quo(x, y)
		t, _ := q.Int(nil)
		q.SetInt(t)
		return x.Sub(x, q.Mul(q, y)), nil
	case nodePow:
		return ap.pow(x, y)
	default:
		panic("exact: invalid node kind " + n.kind.String())
	}
}

// pow approximates x^y. Exponentiation is the one place approximation can
// do more than exact arithmetic: a power that Eval left residual, like
// 2^(1/2), still has a perfectly good float.
func (ap *approximator) pow(x, y *big.Float) (*big.Float, error) {
	if x.Sign() == 0 {
		if y.Sign() < 0 {
			return nil, &DivisionByZeroError{Op: "^"}
		}
		if y.Sign() == 0 {
			return big.NewFloat(1).SetPrec(ap.prec), nil
		}
		return x, nil
	}
	if x.Sign() > 0 {
		return bigfloat.Pow(x, x, y), nil
	}
	// Negative base works only for integer exponents. Even then it has to
	// go through the magnitude, since Pow takes a logarithm.
	if !y.IsInt() {
		return nil, &DomainError{Func: "^", Msg: "negative base with fractional exponent"}
	}
	e, _ := y.Int(nil)
	r := bigfloat.Pow(x, x.Neg(x), y)
	if e.Bit(0) == 1 {
		r.Neg(r)
	}
	return r, nil
}
