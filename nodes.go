package exact

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	// num is the literal value of a nodeNum.
	num Rational
	// name is the identifier of a nodeName or nodeCall, or the target of a
	// nodeAssign.
	name string
	// params is the parameter list of a function-definition nodeAssign.
	// A nil params on nodeAssign means a plain variable binding.
	params []string

	left  *node
	right *node
	// list holds nodeCall arguments and nodeSet elements in order.
	list []*node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // literal rational
	nodeName // variable reference

	nodeCall // name is the callee, list is the arguments
	nodeSet  // list is the elements

	nodeNeg // negate left
	nodeAdd // left + right
	nodeSub // left - right
	nodeMul // left * right
	nodeDiv // left / right
	nodeMod // left % right
	nodePow // left ^ right

	nodeAssign // bind name (with optional params) to left
)

func (k nodeKind) String() string {
	switch k {
	case nodeNone:
		return "None"
	case nodeNum:
		return "Num"
	case nodeName:
		return "Name"
	case nodeCall:
		return "Call"
	case nodeSet:
		return "Set"
	case nodeNeg:
		return "Neg"
	case nodeAdd:
		return "Add"
	case nodeSub:
		return "Sub"
	case nodeMul:
		return "Mul"
	case nodeDiv:
		return "Div"
	case nodeMod:
		return "Mod"
	case nodePow:
		return "Pow"
	case nodeAssign:
		return "Assign"
	}
	return "nodeKind(" + strconv.Itoa(int(k)) + ")"
}

// Rendering precedence levels, loosest first. Rendering always uses explicit
// operators, so the surface grammar's implicit-multiplication slot does not
// appear here. Unary minus binds more tightly than ^, same as the parser.
const (
	fmtAssign = iota
	fmtAdd
	fmtMul
	fmtPow
	fmtNeg
	fmtAtom
)

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, fmtAssign)
	return b.String()
}

// prec returns the rendering precedence of n's top operator. Number literals
// report the precedence of their written form: a fraction prints as a
// quotient and a negative integer prints with a leading minus, and each
// needs parentheses exactly where that form would.
func (n *node) prec() int {
	switch n.kind {
	case nodeAssign:
		return fmtAssign
	case nodeAdd, nodeSub:
		return fmtAdd
	case nodeMul, nodeDiv, nodeMod:
		return fmtMul
	case nodeNeg:
		return fmtNeg
	case nodePow:
		return fmtPow
	case nodeNum:
		if !n.num.IsInt() {
			return fmtMul
		}
		if n.num.Sign() < 0 {
			return fmtNeg
		}
		return fmtAtom
	default:
		return fmtAtom
	}
}

// fmt writes n to b, parenthesizing wherever reparsing the result would
// otherwise bind differently. outer is the loosest precedence the context
// accepts without parentheses.
func (n *node) fmt(b *strings.Builder, outer int) {
	if p := n.prec(); p < outer {
		b.WriteByte('(')
		defer b.WriteByte(')')
		n.fmt(b, fmtAssign)
		return
	}
	switch n.kind {
	case nodeNum:
		b.WriteString(n.num.String())
	case nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		b.WriteByte('(')
		for i, a := range n.list {
			if i > 0 {
				b.WriteString(", ")
			}
			a.fmt(b, fmtAssign)
		}
		b.WriteByte(')')
	case nodeSet:
		b.WriteByte('(')
		for i, e := range n.list {
			if i > 0 {
				b.WriteString(", ")
			}
			e.fmt(b, fmtAssign)
		}
		b.WriteByte(')')
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b, fmtNeg)
	case nodeAdd:
		n.left.fmt(b, fmtAdd)
		b.WriteString(" + ")
		n.right.fmt(b, fmtAdd+1)
	case nodeSub:
		n.left.fmt(b, fmtAdd)
		b.WriteString(" - ")
		n.right.fmt(b, fmtAdd+1)
	case nodeMul:
		n.left.fmt(b, fmtMul)
		b.WriteString(" * ")
		n.right.fmt(b, fmtMul+1)
	case nodeDiv:
		n.left.fmt(b, fmtMul)
		b.WriteString(" / ")
		n.right.fmt(b, fmtMul+1)
	case nodeMod:
		n.left.fmt(b, fmtMul)
		b.WriteString(" % ")
		n.right.fmt(b, fmtMul+1)
	case nodePow:
		n.left.fmt(b, fmtPow+1)
		b.WriteString(" ^ ")
		n.right.fmt(b, fmtPow)
	case nodeAssign:
		b.WriteString(n.name)
		if n.params != nil {
			b.WriteByte('(')
			b.WriteString(strings.Join(n.params, ", "))
			b.WriteByte(')')
		}
		b.WriteString(" := ")
		n.left.fmt(b, fmtAssign)
	default:
		panic("exact: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

// clone returns a deep copy of n.
func (n *node) clone() *node {
	if n == nil {
		return nil
	}
	m := &node{kind: n.kind, num: n.num, name: n.name}
	if n.params != nil {
		// Keep empty parameter lists non-nil; nil means a variable binding.
		m.params = append(make([]string, 0, len(n.params)), n.params...)
	}
	m.left = n.left.clone()
	m.right = n.right.clone()
	if n.list != nil {
		m.list = make([]*node, len(n.list))
		for i, c := range n.list {
			m.list[i] = c.clone()
		}
	}
	return m
}

// equal reports whether two trees are structurally identical, comparing
// number literals exactly.
func (n *node) equal(m *node) bool {
	if n == nil || m == nil {
		return n == nil && m == nil
	}
	if n.kind != m.kind || n.name != m.name || len(n.list) != len(m.list) || len(n.params) != len(m.params) {
		return false
	}
	if n.kind == nodeNum && n.num.Cmp(m.num) != 0 {
		return false
	}
	for i, p := range n.params {
		if m.params[i] != p {
			return false
		}
	}
	for i, c := range n.list {
		if !c.equal(m.list[i]) {
			return false
		}
	}
	return n.left.equal(m.left) && n.right.equal(m.right)
}

// Expr is a parsed or evaluated expression.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the list of variable names used in the expression.
	names []string
}

// Vars returns the variable names used in the expression, sorted.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String renders the expression as text that parses back to an expression
// with the same value: parenthesization follows the surface grammar, and a
// fractional literal prints as a quotient.
func (e *Expr) String() string {
	return e.n.String()
}

// Num returns the expression's value when it is a single number literal,
// i.e. when evaluation reduced it completely.
func (e *Expr) Num() (Rational, bool) {
	if e.n.kind != nodeNum {
		return Rational{}, false
	}
	return e.n.num, true
}

// Set returns the expression's elements when it is a set literal. The
// elements may themselves be residual expressions.
func (e *Expr) Set() ([]*Expr, bool) {
	if e.n.kind != nodeSet {
		return nil, false
	}
	elems := make([]*Expr, len(e.n.list))
	for i, c := range e.n.list {
		elems[i] = &Expr{n: c, names: freenames(c)}
	}
	return elems, true
}

// IsResidual reports whether the expression is neither a number nor a set,
// i.e. evaluation left symbolic structure behind.
func (e *Expr) IsResidual() bool {
	return e.n.kind != nodeNum && e.n.kind != nodeSet
}

// Equal reports whether two expressions have identical structure.
func (e *Expr) Equal(o *Expr) bool {
	return e.n.equal(o.n)
}

// Targets returns the names the expression assigns, outermost first.
// Assignments chain, so a := b := 2 has two targets.
func (e *Expr) Targets() []string {
	var names []string
	for n := e.n; n != nil && n.kind == nodeAssign; n = n.left {
		names = append(names, n.name)
	}
	return names
}
