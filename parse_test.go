package exact

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// diff finds the first in-order node of n that differs from m, or nil, nil
// if the two ASTs are equal. If any node is nodeNone, it is returned.
func (n *node) diff(m *node) (*node, *node) {
	if n == nil {
		if m != nil {
			return n, m
		}
		return nil, nil
	}
	if m == nil {
		return n, m
	}
	if n.kind == nodeNone || m.kind == nodeNone {
		return n, m
	}
	if n.kind != m.kind {
		return n, m
	}
	switch n.kind {
	case nodeNum:
		if n.num.Cmp(m.num) != 0 {
			return n, m
		}
	case nodeName:
		if n.name != m.name {
			return n, m
		}
	case nodeCall, nodeSet:
		if n.name != m.name || len(n.list) != len(m.list) {
			return n, m
		}
		for i := range n.list {
			if d, e := n.list[i].diff(m.list[i]); d != nil || e != nil {
				return d, e
			}
		}
	case nodeAssign:
		if n.name != m.name || len(n.params) != len(m.params) {
			return n, m
		}
		for i := range n.params {
			if n.params[i] != m.params[i] {
				return n, m
			}
		}
		if (n.params == nil) != (m.params == nil) {
			return n, m
		}
		return n.left.diff(m.left)
	case nodeNeg:
		return n.left.diff(m.left)
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodeMod, nodePow:
		if d, e := n.left.diff(m.left); d != nil || e != nil {
			return d, e
		}
		return n.right.diff(m.right)
	default:
		panic(fmt.Errorf("invalid node kind: n=%+v m=%+v", n, m))
	}
	return nil, nil
}

// haskind checks whether a parse tree contains a node of the given type.
func (n *node) haskind(k nodeKind) bool {
	if n == nil {
		return false
	}
	if n.kind == k {
		return true
	}
	if n.left.haskind(k) || n.right.haskind(k) {
		return true
	}
	for _, c := range n.list {
		if c.haskind(k) {
			return true
		}
	}
	return false
}

type mockfn struct {
	can []int
}

func mockFunc(n ...int) Func {
	return mockfn{can: n}
}

func (f mockfn) Call(args []Rational) (Rational, error) {
	return Rational{}, nil
}

func (f mockfn) CanCall(n int) bool {
	for _, v := range f.can {
		if v == n {
			return true
		}
	}
	return false
}

var testfns = map[string]Func{
	"zero":    mockFunc(0),
	"one":     mockFunc(1),
	"zeroone": mockFunc(0, 1),
	"five":    mockFunc(5),
}

func testopts(more ...ParseOption) []ParseOption {
	return append([]ParseOption{DisableDefaultFuncs(), ParseFuncs(testfns)}, more...)
}

func TestOpPrecsExist(t *testing.T) {
	for _, r := range Operators {
		b := binop(string(r))
		u := unop(string(r))
		if b.op == nodeNone && u.op == nodeNone {
			t.Errorf("no operator for %c", r)
		}
	}
}

// TestPrecLadder pins the unconventional parts of the grammar: implicit
// multiplication binds between explicit multiplication and exponentiation,
// and unary minus binds above exponentiation.
func TestPrecLadder(t *testing.T) {
	if !termprec.moreBinding(binop("*")) {
		t.Error("implicit multiplication does not outbind *")
	}
	if !binop("^").moreBinding(termprec) {
		t.Error("^ does not outbind implicit multiplication")
	}
	if !unop("-").moreBinding(binop("^")) {
		t.Error("unary - does not outbind ^")
	}
	if b := binop("×"); b != binop("*") {
		t.Errorf("× is %v but * is %v", b, binop("*"))
	}
	if b := binop("÷"); b != binop("/") {
		t.Errorf("÷ is %v but / is %v", b, binop("/"))
	}
}

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"paren", "(x)", "x"},
		{"multiparen", "(((x)))", "x"},

		{"neg", "-x", "(-(x))"},
		{"negnum", "-1", "(-(1))"},
		{"add", "x+y", "((x)+(y))"},
		{"sub", "x-y", "((x)-(y))"},
		{"mul", "x*y", "((x)*(y))"},
		{"div", "x/y", "((x)/(y))"},
		{"mod", "x%y", "((x)%(y))"},
		{"pow", "x^y", "((x)^(y))"},
		{"altmul", "x×y", "x*y"},
		{"altdiv", "x÷y", "x/y"},
		{"terms", "x y", "x*y"},
		{"parenterms", "x(y)", "x*y"},
		{"numterms", "2x", "2*x"},

		{"add4", "w+x+y+z", "((w+x)+y)+z"},
		{"sub4", "w-x-y-z", "((w-x)-y)-z"},
		{"mul4", "w*x*y*z", "((w*x)*y)*z"},
		{"div4", "w/x/y/z", "((w/x)/y)/z"},
		{"pow4", "w^x^y^z", "w^(x^(y^z))"},

		// Implicit multiplication above explicit: 1/2b is 1/(2b).
		{"halfb", "1/2b", "1/(2*b)"},
		{"halfb-explicit", "1/2*b", "(1/2)*b"},
		{"terms-mul", "a b*c", "(a*b)*c"},
		{"terms-exp", "2x^2", "2*(x^2)"},
		{"powterms", "x y^z", "x*(y^z)"},
		{"powparen", "x^y(z)", "(x^y)*z"},

		// Unary minus above exponentiation.
		{"negpow", "-x^2", "(-x)^2"},
		{"powneg", "x^-1", "x^(-1)"},
		{"pownegpow", "x^-y^-z", "x^(-(y^(-z)))"},
		{"negneg", "--x", "-(-x)"},
		{"negsub", "-x-x", "(-x)-x"},
		{"negterms", "-2x", "(-2)*x"},

		{"desc", "w^x*y+z", "((w^x)*y)+z"},
		{"asc", "w+x*y^z", "w+(x*(y^z))"},

		// Applications.
		{"call0", "zero()", "zero"},
		{"call0-terms", "zero x", "zero()*x"},
		{"call0-paren", "zero(x)", "zero()*x"},
		{"call0-up", "zero^x(y)", "((zero())^x)*y"},
		{"call1-bare", "one x", "one(x)"},
		{"call1-num", "one 3.5", "one(3.5)"},
		{"call1-terms", "one a b c * d", "one(a b c) * d"},
		{"call1-neg", "one -x", "one(-x)"},
		{"call1-add", "one x + y", "one(x) + y"},
		{"call1-exp", "one x^y", "one(x^y)"},
		{"call1-up", "one ^ x ^ y z", "(one(z))^(x^y)"},
		{"call5", "five(a, b, c, d, e)", "five( a , b , c , d , e )"},

		// Sets.
		{"set2", "(1, 2)", "( 1 , 2 )"},
		{"set-group", "((1, 2))", "(1, 2)"},
		{"set-nested", "(1, (2, 3))", "( 1 , (2, 3) )"},
		{"set-exprs", "(1+2, x y)", "( (1+2) , (x*y) )"},
		{"set-mul", "2(1, 2)", "2*(1, 2)"},

		// Assignments.
		{"assign", "a := 2", "a = 2"},
		{"assign-chain", "a := b := 2", "a = b = 2"},
		{"assign-expr", "a := 1/2b", "a := 1/(2 b)"},
		{"fndef", "f(x) := x^2 + 1", "f( x ) = x^2 + 1"},
		{"fndef-recursive", "f(x) := f(x - 1)", "f( x ) = f(x - 1)"},
	}
	opts := testopts()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(strings.NewReader(c.a), opts...)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.a, err)
			}
			b, err := Parse(strings.NewReader(c.b), opts...)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.b, err)
			}
			d, e := a.n.diff(b.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\t%q parses %v has %v\n\t%q parses %v has %v", c.a, a.n, d, c.b, b.n, e)
			}
		})
	}
}

func TestParseExact(t *testing.T) {
	cases := []struct {
		name string
		src  string
		n    *node
	}{
		{
			name: "call01-paren",
			src:  "zeroone(x)",
			n: &node{
				kind: nodeCall,
				name: "zeroone",
				list: []*node{{kind: nodeName, name: "x"}},
			},
		},
		{
			name: "emptyset",
			src:  "()",
			n:    &node{kind: nodeSet},
		},
		{
			name: "set3",
			src:  "(1, 2, 3)",
			n: &node{
				kind: nodeSet,
				list: []*node{
					{kind: nodeNum, num: FromInt(1)},
					{kind: nodeNum, num: FromInt(2)},
					{kind: nodeNum, num: FromInt(3)},
				},
			},
		},
		{
			name: "assign",
			src:  "a := 2",
			n: &node{
				kind: nodeAssign,
				name: "a",
				left: &node{kind: nodeNum, num: FromInt(2)},
			},
		},
		{
			name: "fndef",
			src:  "g(n) := n",
			n: &node{
				kind:   nodeAssign,
				name:   "g",
				params: []string{"n"},
				left:   &node{kind: nodeName, name: "n"},
			},
		},
		{
			name: "fndef-niladic",
			src:  "g() := 2",
			n: &node{
				kind:   nodeAssign,
				name:   "g",
				params: []string{},
				left:   &node{kind: nodeNum, num: FromInt(2)},
			},
		},
		{
			name: "builtin-target",
			src:  "zero := 2",
			n: &node{
				kind: nodeAssign,
				name: "zero",
				left: &node{kind: nodeNum, num: FromInt(2)},
			},
		},
	}
	opts := testopts()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(strings.NewReader(c.src), opts...)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			d, e := a.n.diff(c.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\twant %v which has %v\n\tgot  %v which has %v from %q", c.n, e, a.n, d, c.src)
			}
		})
	}
}

func TestExprString(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"paren", "(x)"},
		{"neg", "-x"},
		{"negnum", "-1"},
		{"add", "x+y"},
		{"sub", "x-y"},
		{"mul", "x*y"},
		{"div", "x/y"},
		{"mod", "x%y"},
		{"pow", "x^y"},
		{"terms", "x y"},
		{"frac", "0.5"},
		{"cyclefrac", "1/3"},

		{"add4", "w+x+y+z"},
		{"sub4", "w-x-y-z"},
		{"pow4", "w^x^y^z"},
		{"terms4", "w x y z"},

		{"halfb", "1/2b"},
		{"negpow", "-x^2"},
		{"powneg", "x^-1"},
		{"negneg", "--x"},
		{"negsub", "-x-x"},
		{"powterms", "x y^z"},
		{"powparen", "x^y(z)"},
		{"descasc", "w^x*y+z+a*b^c"},

		{"call0", "zero()"},
		{"call1-bare", "one x"},
		{"call1-terms", "one a b c * d"},
		{"call5", "five(a, b, c, d, e)"},

		{"emptyset", "()"},
		{"set", "(1, 2, 3)"},
		{"setexprs", "(x+1, -y, z^2)"},
		{"nestedset", "(1, (2, 3))"},

		{"assign", "a := 2"},
		{"chain", "a := b := 2"},
		{"fndef", "f(x, y) := x y"},
		{"fndef-niladic", "f() := 2"},
	}
	opts := testopts()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(strings.NewReader(c.src), opts...)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			s := a.String()
			b, err := Parse(strings.NewReader(s), opts...)
			if err != nil {
				t.Fatalf("%q -> %q failed to parse: %v", c.src, s, err)
			}
			d, e := a.n.diff(b.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\t%q parses %v has %v\n\t%q parses %v has %v", c.src, a.n, d, s, b.n, e)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  InputError
	}{
		{"empty", "", new(EmptyExpressionError)},
		{"emptyoperand", "x*", new(EmptyExpressionError)},
		{"emptyunary", "x*-", new(EmptyExpressionError)},
		{"emptyneg", "-", new(EmptyExpressionError)},
		{"trailingcomma", "(1,)", new(EmptyExpressionError)},
		{"emptyelem", "(1,,2)", new(EmptyExpressionError)},
		{"left", "(x", new(BracketError)},
		{"right", "x)", new(BracketError)},
		{"unclosedset", "(1, 2", new(BracketError)},
		{"nonunary", "*x", new(OperatorError)},
		{"nonunary-div", "/x", new(OperatorError)},
		{"sep", "x, y", new(SeparatorError)},
		{"call1-0", "one()", new(CallError)},
		{"call1-eof", "one", new(CallError)},
		{"call1-pareneof", "one(", new(BracketError)},
		{"call1-2", "one(x, y)", new(CallError)},
		{"call1-emptyarg", "one(, x)", new(EmptyExpressionError)},
		{"call1-trailing", "one(x,)", new(EmptyExpressionError)},
		{"call5-4", "five(a, b, c, d)", new(CallError)},
		{"call5-bare", "five x", new(CallError)},
		{"assign-mid", "2 + a := 3", new(AssignError)},
		{"assign-num", "2 := 3", new(AssignError)},
		{"assign-call", "x(2) := 3", new(AssignError)},
		{"assign-dupparam", "f(x, x) := x", new(AssignError)},
		{"assign-empty", "a :=", new(EmptyExpressionError)},
		{"assign-inparen", "(a := 2)", new(AssignError)},
		{"lexer", "2^(-$)", new(LexError)},
		{"lonecolon", "a : 2", new(LexError)},
	}
	opts := testopts()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(strings.NewReader(c.src), opts...)
			if a != nil {
				t.Errorf("%q parsed non-nil to %v", c.src, a.n)
			}
			if reflect.TypeOf(err) != reflect.TypeOf(c.err) {
				t.Errorf("wrong error type from %q: want %T, got %T", c.src, c.err, err)
			}
			if err == nil {
				return
			}
			ie, ok := err.(InputError)
			if !ok {
				t.Errorf("error %v from %q is not an InputError", err, c.src)
			} else if ie.Pos() < 1 {
				t.Errorf("error %v from %q has position %d", err, c.src, ie.Pos())
			}
		})
	}
}

func TestBuiltinArity(t *testing.T) {
	if _, err := ParseString("floor(3.2, 1)"); err == nil {
		t.Error("floor(3.2, 1) parsed")
	} else if _, ok := err.(*CallError); !ok {
		t.Errorf("floor(3.2, 1): want CallError, got %T", err)
	}
	if _, err := ParseString("floor 3.7"); err != nil {
		t.Errorf("floor 3.7 did not parse: %v", err)
	}
}

func TestDisableDefaultFuncs(t *testing.T) {
	for name := range builtins {
		t.Run(name, func(t *testing.T) {
			a, err := Parse(strings.NewReader(name+"(x)"), DisableDefaultFuncs())
			if err != nil {
				t.Fatalf("%s(x) failed to parse: %v", name, err)
			}
			if a.n.haskind(nodeCall) {
				t.Errorf("call expression in %v", a.n)
			}
		})
	}
}

func TestMaxDepth(t *testing.T) {
	src := strings.Repeat("(", 50) + "x" + strings.Repeat(")", 50)
	if _, err := ParseString(src, MaxDepth(10)); err == nil {
		t.Error("deep nesting parsed under a shallow limit")
	} else if _, ok := err.(*DepthError); !ok {
		t.Errorf("want DepthError, got %T", err)
	}
	if _, err := ParseString(src); err != nil {
		t.Errorf("nesting within the default limit failed: %v", err)
	}
}

func TestVars(t *testing.T) {
	a, err := ParseString("b + a*c + a", testopts()...)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	got := a.Vars()
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}
