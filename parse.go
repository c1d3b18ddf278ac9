package exact

import (
	"io"
	"sort"
	"strings"
)

// The surface grammar, loosest binding first:
//
//	line     = assign | expr
//	assign   = target (":=" | "=") line
//	target   = name | name "(" [name {"," name}] ")"
//	expr     = addsub
//	addsub   = muldiv {("+" | "-") muldiv}
//	muldiv   = implicit {("*" | "/" | "%") implicit}
//	implicit = power {power}
//	power    = unary ["^" power]
//	unary    = "-" unary | apply
//	apply    = funcname arglist | funcname power | primary
//	primary  = num | name | "(" [expr {"," expr}] ")"
//
// Juxtaposition in the implicit production multiplies, and deliberately
// binds between ^ and explicit *, so 1/2b is 1/(2*b). A parenthesized group
// of zero or two or more expressions is a set literal; exactly one is
// grouping. Whether an identifier heads an application or is a variable in
// a product is decided by the function whitelist at parse time.

// Parse parses one line into an expression that can be evaluated against an
// environment. The given options are applied in order.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	scan := lex(src)
	p := parsectx{
		names:    make(map[string]bool),
		maxdepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	merged := make(map[string]Func, len(builtins)+len(p.funcs))
	for k, v := range builtins {
		merged[k] = v
	}
	for k, v := range p.funcs {
		merged[k] = v
	}
	p.funcs = merged
	n, err := parseline(scan, &p)
	if err != nil {
		return nil, err
	}
	switch tok := scan.must(); tok.kind {
	case tokenEOF:
	default:
		return nil, itShouldNotHaveEndedThisWay(tok)
	}
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	sort.Strings(ex.names)
	return &ex, nil
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// parseline parses a top-level line, which is the only place assignment is
// legal. Assignment chains right-associatively: a := b := 2 binds both.
func parseline(scan *lexer, p *parsectx) (*node, error) {
	name, params, col, ok, err := probeAssign(scan)
	if err != nil {
		return nil, err
	}
	if !ok {
		return parseterm(scan, p, exprprec)
	}
	if params != nil {
		for i, pm := range params {
			for _, pn := range params[:i] {
				if pm == pn {
					return nil, &AssignError{Col: col}
				}
			}
		}
		// The definition is callable in its own body, so f(x) := f(x) has
		// somewhere to bottom out (the evaluator's recursion guard).
		p.funcs[name] = Defined(name, len(params))
	}
	rhs, err := parseline(scan, p)
	if err != nil {
		return nil, err
	}
	if rhs == nil {
		tok := scan.must()
		scan.push(tok)
		return nil, &EmptyExpressionError{Col: tok.pos, End: tok.text}
	}
	return &node{kind: nodeAssign, name: name, params: params, left: rhs}, nil
}

// probeAssign recognizes an assignment head: a bare identifier or an
// identifier with a parenthesized parameter list of identifiers, followed
// by := or =. On a match it consumes through the assignment marker and
// returns the target; otherwise every scanned token is pushed back and the
// line parses as an ordinary expression. params is nil for a variable
// target and non-nil (possibly empty) for a function definition.
func probeAssign(scan *lexer) (name string, params []string, col int, ok bool, err error) {
	bail := func(toks []lexToken) {
		for i := len(toks) - 1; i >= 0; i-- {
			scan.push(toks[i])
		}
	}
	t1, err := scan.next()
	if err != nil {
		return "", nil, 0, false, err
	}
	if t1.kind != tokenIdent {
		scan.push(t1)
		return "", nil, 0, false, nil
	}
	t2, err := scan.next()
	if err != nil {
		return "", nil, 0, false, err
	}
	switch t2.kind {
	case tokenAssign:
		return t1.text, nil, t2.pos, true, nil
	case tokenOpen:
		// fall below
	default:
		bail([]lexToken{t1, t2})
		return "", nil, 0, false, nil
	}
	toks := []lexToken{t1, t2}
	params = []string{}
	for {
		t, err := scan.next()
		if err != nil {
			return "", nil, 0, false, err
		}
		toks = append(toks, t)
		if t.kind == tokenClose && len(params) == 0 {
			break
		}
		if t.kind != tokenIdent {
			bail(toks)
			return "", nil, 0, false, nil
		}
		params = append(params, t.text)
		t, err = scan.next()
		if err != nil {
			return "", nil, 0, false, err
		}
		toks = append(toks, t)
		if t.kind == tokenClose {
			break
		}
		if t.kind != tokenSep {
			bail(toks)
			return "", nil, 0, false, nil
		}
	}
	t, err := scan.next()
	if err != nil {
		return "", nil, 0, false, err
	}
	if t.kind != tokenAssign {
		toks = append(toks, t)
		bail(toks)
		return "", nil, 0, false, nil
	}
	return t1.text, params, t.pos, true, nil
}

// parseterm parses a single term. If there is no error, then parseterm
// pushes the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an
// error in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator) (*node, error) {
	if p.depth++; p.depth > p.maxdepth {
		return nil, &DepthError{Col: scan.rune, Depth: p.maxdepth}
	}
	defer func() { p.depth-- }()
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	if p.resv != nil {
		// parselhs parsed a niladic function followed by a parenthesized
		// term. So, the parsing here is as if we encountered an open
		// parenthesis, except that the contents are already parsed and
		// valid.
		prec := termprec
		if !prec.moreBinding(until) {
			return n, nil
		}
		n = &node{kind: nodeMul, left: n, right: p.resv}
		p.resv = nil
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent:
			// (parsed) x -> (parsed) * (x)
			// a^(parsed) x -> (a^(parsed)) * (x)
			scan.push(tok)
			prec := termprec
			if !prec.moreBinding(until) {
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeMul, left: n, right: rhs}
		case tokenOp:
			// Binary operator.
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				end := scan.must()
				scan.push(end)
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			n = &node{kind: prec.op, left: n, right: rhs}
		case tokenAssign:
			return nil, &AssignError{Col: tok.pos}
		case tokenOpen:
			// Since parselhs parses applications aggressively, this is a
			// multiplication by a parenthesized term: 2 (expr).
			prec := termprec
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parsegroup(scan, p, tok.pos)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeMul, left: n, right: rhs}
		case tokenClose, tokenSep, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("exact: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary
// and any encountered token must be valid as the start of a subexpression.
func parselhs(scan *lexer, p *parsectx, until operator) (*node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	var n *node
	switch tok.kind {
	case tokenNum:
		n = &node{kind: nodeNum, num: tok.num}
	case tokenIdent:
		fn := p.funcs[tok.text]
		if fn == nil {
			p.names[tok.text] = true
			n = &node{kind: nodeName, name: tok.text}
		} else {
			args, exp, err := parsecall(scan, p, until, fn, tok.text)
			if err != nil {
				return nil, err
			}
			// If fn is niladic and the call is like fn(a), then args is nil
			// and p.resv is non-nil.
			n = &node{kind: nodeCall, name: tok.text, list: args}
			if exp != nil {
				exp.left = n
				n = exp
			}
		}
	case tokenOp:
		// Unary operator.
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			end := scan.must()
			scan.push(end)
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		n = &node{kind: prec.op, left: rhs}
	case tokenAssign:
		return nil, &AssignError{Col: tok.pos}
	case tokenOpen:
		return parsegroup(scan, p, tok.pos)
	case tokenClose:
		// This might be part of niladic func(), so just let the caller
		// decide what to do.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		// Empty element, as in (1,,2), or a stray comma. The caller sees
		// the pushed separator and reports the right error for its context.
		scan.push(tok)
		return nil, nil
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("exact: unknown token: " + tok.String())
	}
	return n, nil
}

// parsegroup parses the contents of parentheses in an operand position,
// starting after the open parenthesis and consuming the close. Zero
// elements or two or more form a set literal; exactly one is grouping.
func parsegroup(scan *lexer, p *parsectx, opencol int) (*node, error) {
	var elems []*node
	for {
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			// Reporting the unclosed parenthesis is more helpful than the
			// empty expression at EOF.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: opencol}
			}
			return nil, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			if rhs == nil {
				if len(elems) != 0 {
					// (a,) is not allowed.
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return &node{kind: nodeSet}, nil
			}
			if len(elems) == 0 {
				return rhs, nil
			}
			return &node{kind: nodeSet, list: append(elems, rhs)}, nil
		case tokenSep:
			if rhs == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			elems = append(elems, rhs)
		case tokenEOF:
			return nil, &BracketError{Col: end.pos}
		default:
			panic("exact: parsegroup ended on non-end token " + end.String())
		}
	}
}

// parsecall parses the arguments to a call of a given Func. The second
// result, if non-nil, is a node that the function call is lhs to.
func parsecall(scan *lexer, p *parsectx, until operator, fn Func, name string) ([]*node, *node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, nil, err
	}
	switch tok.kind {
	case tokenOp:
		// Check for e.g. ^2 in floor^2 x, which parses as floor(x)^2. Must
		// be an exponentiation or higher.
		if prec := binop(tok.text); prec.moreBinding(powprec) {
			up, err := parseterm(scan, p, powprec)
			if err != nil {
				return nil, nil, err
			}
			if up == nil {
				end := scan.must()
				scan.push(end)
				return nil, nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			args, ee, err := parsecall(scan, p, until, fn, name)
			if err != nil {
				return nil, nil, err
			}
			if ee != nil {
				// The precedence we parsed is right-associative and higher
				// than any other binary operator, so a second exponent
				// cannot appear.
				panic("exact: parsed second call exponent: " + ee.String())
			}
			exp := &node{kind: nodePow, right: up}
			return args, exp, nil
		}
		// Other than exponentiations, finding an operator is the same as
		// finding a number or identifier.
		fallthrough
	case tokenNum, tokenIdent:
		switch {
		case fn.CanCall(1):
			// Single bare argument: floor 3.5 -> floor(3.5).
			scan.push(tok)
			if termprec.moreBinding(until) {
				until = termprec
			}
			rhs, err := parseterm(scan, p, until)
			if err != nil {
				return nil, nil, err
			}
			return []*node{rhs}, nil, nil
		case fn.CanCall(0):
			// No argument: tau x -> (tau()) * (x).
			scan.push(tok)
		default:
			// Any other number of arguments requires parentheses.
			return nil, nil, &CallError{Col: tok.pos, Func: name, Len: 1}
		}
	case tokenOpen:
		args, err := parsearglist(scan, p, tok.pos)
		if err != nil {
			return nil, nil, err
		}
		if !fn.CanCall(len(args)) {
			if p.resv != nil && fn.CanCall(0) {
				// If fn is niladic, convert from fn(a) to fn()*a.
				return nil, nil, nil
			}
			p.resv = nil
			return nil, nil, &CallError{Col: tok.pos, Func: name, Len: len(args)}
		}
		p.resv = nil
		return args, nil, nil
	case tokenAssign:
		return nil, nil, &AssignError{Col: tok.pos}
	case tokenClose, tokenSep, tokenEOF:
		if !fn.CanCall(0) {
			return nil, nil, &CallError{Col: tok.pos, Func: name}
		}
		scan.push(tok)
	default:
		panic("exact: unknown token: " + tok.String())
	}
	return nil, nil, nil
}

// parsearglist parses a parenthesized list of zero or more arguments,
// consuming the closing parenthesis.
func parsearglist(scan *lexer, p *parsectx, opencol int) ([]*node, error) {
	var args []*node
	for {
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: opencol}
			}
			return nil, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			if rhs == nil {
				// func() is allowed, but func(a,) isn't.
				if len(args) != 0 {
					return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, nil
			}
			args = append(args, rhs)
			if len(args) == 1 {
				// func(a). If func is niladic, then this is an implicit
				// multiplication. Reserve the argument so that the parser
				// can convert from a function call.
				p.resv = rhs
			}
			return args, nil
		case tokenSep:
			if rhs == nil {
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			args = append(args, rhs)
		case tokenEOF:
			return nil, &BracketError{Col: end.pos}
		default:
			panic("exact: parsearglist ended on non-end token " + end.String())
		}
	}
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an
// unexpected token at the end of a line.
func itShouldNotHaveEndedThisWay(tok lexToken) error {
	switch tok.kind {
	case tokenClose:
		return &BracketError{Col: tok.pos, Right: tok.text}
	case tokenSep:
		return &SeparatorError{Col: tok.pos}
	default:
		panic("exact: it really should not have ended this way: " + tok.String())
	}
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such
// binary operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*", "×":
		return operator{5, false, nodeMul}
	case "/", "÷":
		return operator{5, false, nodeDiv}
	case "%":
		return operator{5, false, nodeMod}
	case "^":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "-":
		return operator{20, true, nodeNeg}
	default:
		return operator{}
	}
}

var (
	// termprec is the precedence of implicit multiplication. It sits above
	// explicit multiplication and below exponentiation on purpose: 1/2b is
	// 1/(2*b), which disagrees with convention and agrees with notes.
	termprec = operator{10, true, nodeMul}
	// powprec is the precedence of exponentiation.
	powprec = binop("^")
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, nodeNone}
)
