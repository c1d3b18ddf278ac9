package exact

import "sort"

// Eval reduces an expression as far as env allows. Subexpressions whose
// operands all reduce to numbers are folded exactly; names that env does
// not bind, and names whose resolution would revisit a definition already
// being resolved, are left in place, so the result may be a number, a set,
// or a residual expression over the remaining names. Assignments bind into
// env only when their right side evaluates without error. env may be nil,
// in which case every name is residual and assignments bind nowhere.
//
// Evaluation never mutates e, and rebinding a name in env later changes
// what a residual expression reduces to, not what it is.
func Eval(e *Expr, env *Env) (*Expr, error) {
	ev := evaluator{
		env:      env,
		guard:    make(map[string]bool),
		maxdepth: DefaultMaxDepth,
	}
	n, err := ev.eval(e.n)
	if err != nil {
		return nil, err
	}
	return &Expr{n: n, names: freenames(n)}, nil
}

// EvalString parses src with env's bindings visible to the parser and
// evaluates the result against env.
func EvalString(src string, env *Env, opts ...ParseOption) (*Expr, error) {
	if env != nil {
		opts = append([]ParseOption{env.ParseOption()}, opts...)
	}
	e, err := ParseString(src, opts...)
	if err != nil {
		return nil, err
	}
	return Eval(e, env)
}

type evaluator struct {
	env *Env
	// guard holds the names whose definitions are being resolved along the
	// current chain of substitutions. A guarded name stays residual, which
	// is what makes a := a + 1 terminate.
	guard map[string]bool
	// shield holds parameter names while a function definition's body is
	// evaluated, so they are not captured by same-named bindings in env.
	shield map[string]bool
	depth  int
	// maxdepth bounds substitution depth against pathological chains of
	// definitions.
	maxdepth int
}

func (ev *evaluator) eval(n *node) (*node, error) {
	if ev.depth++; ev.depth > ev.maxdepth {
		return nil, &DepthError{Depth: ev.maxdepth}
	}
	defer func() { ev.depth-- }()
	switch n.kind {
	case nodeNum:
		return n, nil
	case nodeName:
		return ev.name(n)
	case nodeNeg:
		l, err := ev.eval(n.left)
		if err != nil {
			return nil, err
		}
		if l.kind == nodeNum {
			return &node{kind: nodeNum, num: l.num.Neg()}, nil
		}
		return &node{kind: nodeNeg, left: l}, nil
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodeMod, nodePow:
		return ev.binop(n)
	case nodeCall:
		return ev.call(n)
	case nodeSet:
		elems := make([]*node, len(n.list))
		for i, c := range n.list {
			e, err := ev.eval(c)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
		return &node{kind: nodeSet, list: elems}, nil
	case nodeAssign:
		return ev.assign(n)
	default:
		panic("exact: invalid node kind " + n.kind.String())
	}
}

// name resolves a variable reference. Shielded parameters, guarded names,
// unbound names, and names bound as functions stay residual.
func (ev *evaluator) name(n *node) (*node, error) {
	if ev.shield[n.name] || ev.guard[n.name] || ev.env == nil {
		return n, nil
	}
	b, ok := ev.env.lookup(n.name)
	if !ok || b.fn {
		return n, nil
	}
	ev.guard[n.name] = true
	defer delete(ev.guard, n.name)
	return ev.eval(b.body)
}

// binop evaluates both operands and folds when both are numbers. An exact
// power may not exist; the power then stays residual over its reduced
// operands rather than becoming an approximation.
func (ev *evaluator) binop(n *node) (*node, error) {
	l, err := ev.eval(n.left)
	if err != nil {
		return nil, err
	}
	r, err := ev.eval(n.right)
	if err != nil {
		return nil, err
	}
	if l.kind != nodeNum || r.kind != nodeNum {
		return &node{kind: n.kind, left: l, right: r}, nil
	}
	var v Rational
	switch n.kind {
	case nodeAdd:
		v = l.num.Add(r.num)
	case nodeSub:
		v = l.num.Sub(r.num)
	case nodeMul:
		v = l.num.Mul(r.num)
	case nodeDiv:
		v, err = l.num.Div(r.num)
	case nodeMod:
		v, err = l.num.Mod(r.num)
	case nodePow:
		v, err = l.num.Pow(r.num)
		if err == ErrUnsupported {
			return &node{kind: nodePow, left: l, right: r}, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return &node{kind: nodeNum, num: v}, nil
}

// call applies a function. Definitions in env take precedence over
// builtins; a builtin applies only once every argument is a number, and
// anything else leaves the call residual over its reduced arguments.
func (ev *evaluator) call(n *node) (*node, error) {
	args := make([]*node, len(n.list))
	for i, c := range n.list {
		a, err := ev.eval(c)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	if ev.env != nil && !ev.guard[n.name] {
		if b, ok := ev.env.lookup(n.name); ok && b.fn {
			if len(args) != len(b.params) {
				return nil, &DomainError{Func: n.name, Got: len(args), Want: len(b.params)}
			}
			sub := make(map[string]*node, len(b.params))
			for i, p := range b.params {
				sub[p] = args[i]
			}
			ev.guard[n.name] = true
			defer delete(ev.guard, n.name)
			return ev.eval(subst(b.body, sub))
		}
	}
	if fn := builtins[n.name]; fn != nil && allnums(args) && fn.CanCall(len(args)) {
		rats := make([]Rational, len(args))
		for i, a := range args {
			rats[i] = a.num
		}
		v, err := fn.Call(rats)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeNum, num: v}, nil
	}
	return &node{kind: nodeCall, name: n.name, list: args}, nil
}

// assign evaluates an assignment's right side and binds it on success. A
// variable assignment results in the bound expression; a function
// definition results in the definition itself, with its body reduced as
// far as it can be without its parameters.
func (ev *evaluator) assign(n *node) (*node, error) {
	if n.params == nil {
		v, err := ev.eval(n.left)
		if err != nil {
			return nil, err
		}
		if ev.env != nil {
			ev.env.bind(n.name, nil, false, v.clone())
		}
		return v, nil
	}
	saved := ev.shield
	ev.shield = make(map[string]bool, len(saved)+len(n.params))
	for k := range saved {
		ev.shield[k] = true
	}
	for _, p := range n.params {
		ev.shield[p] = true
	}
	body, err := ev.eval(n.left)
	ev.shield = saved
	if err != nil {
		return nil, err
	}
	if ev.env != nil {
		ev.env.bind(n.name, append(make([]string, 0, len(n.params)), n.params...), true, body.clone())
	}
	return &node{kind: nodeAssign, name: n.name, params: n.params, left: body}, nil
}

// subst rebuilds n with every name in sub replaced by its expression.
// Replacement expressions are shared, not copied; nothing mutates nodes
// after parsing, so sharing is safe.
func subst(n *node, sub map[string]*node) *node {
	switch n.kind {
	case nodeNum:
		return n
	case nodeName:
		if r := sub[n.name]; r != nil {
			return r
		}
		return n
	case nodeSet, nodeCall:
		list := make([]*node, len(n.list))
		for i, c := range n.list {
			list[i] = subst(c, sub)
		}
		return &node{kind: n.kind, name: n.name, list: list}
	case nodeAssign:
		return &node{kind: nodeAssign, name: n.name, params: n.params, left: subst(n.left, sub)}
	case nodeNeg:
		return &node{kind: nodeNeg, left: subst(n.left, sub)}
	default:
		return &node{kind: n.kind, left: subst(n.left, sub), right: subst(n.right, sub)}
	}
}

func allnums(args []*node) bool {
	for _, a := range args {
		if a.kind != nodeNum {
			return false
		}
	}
	return true
}

// freenames collects the sorted distinct names appearing in n.
func freenames(n *node) []string {
	seen := make(map[string]bool)
	var walk func(*node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if n.kind == nodeName {
			seen[n.name] = true
		}
		walk(n.left)
		walk(n.right)
		for _, c := range n.list {
			walk(c)
		}
	}
	walk(n)
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
