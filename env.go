package exact

// Env is a session-scoped mapping from names to the expressions most
// recently assigned to them. Bindings hold expressions, not values: a bound
// expression may still contain unresolved names, which is what lets partial
// and recursive definitions resolve later as more bindings arrive.
//
// An Env is owned by a single session and is not safe for concurrent use.
type Env struct {
	order []string
	vars  map[string]binding
}

type binding struct {
	// params is non-nil for a function definition, and holds its parameter
	// names in order.
	params []string
	fn     bool
	body   *node
}

// Binding is one environment entry.
type Binding struct {
	// Name is the bound name.
	Name string
	// Params holds the parameter names when the binding is a function
	// definition; it is nil for plain variables.
	Params []string
	// Value is the bound expression: a function's body, or a variable's
	// (possibly still symbolic) assigned expression.
	Value *Expr
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{vars: make(map[string]binding)}
}

func (env *Env) bind(name string, params []string, fn bool, n *node) {
	if _, ok := env.vars[name]; !ok {
		env.order = append(env.order, name)
	}
	env.vars[name] = binding{params: params, fn: fn, body: n}
}

func (env *Env) lookup(name string) (binding, bool) {
	b, ok := env.vars[name]
	return b, ok
}

// Bind binds a name to an expression, overwriting any previous binding.
func (env *Env) Bind(name string, e *Expr) {
	env.bind(name, nil, false, e.n.clone())
}

// BindFunc binds a name as a function with the given parameters and body.
func (env *Env) BindFunc(name string, params []string, body *Expr) {
	env.bind(name, append(make([]string, 0, len(params)), params...), true, body.n.clone())
}

// Forget removes a binding and reports whether it existed.
func (env *Env) Forget(name string) bool {
	if _, ok := env.vars[name]; !ok {
		return false
	}
	delete(env.vars, name)
	for i, n := range env.order {
		if n == name {
			env.order = append(env.order[:i], env.order[i+1:]...)
			break
		}
	}
	return true
}

// Lookup returns the binding for a name.
func (env *Env) Lookup(name string) (Binding, bool) {
	b, ok := env.vars[name]
	if !ok {
		return Binding{}, false
	}
	var ps []string
	if b.params != nil {
		ps = append(make([]string, 0, len(b.params)), b.params...)
	}
	return Binding{
		Name:   name,
		Params: ps,
		Value:  &Expr{n: b.body.clone(), names: freenames(b.body)},
	}, true
}

// String renders the binding as the assignment that would recreate it.
func (b Binding) String() string {
	n := node{kind: nodeAssign, name: b.Name, params: b.Params, left: b.Value.n}
	return n.String()
}

// Bindings returns every entry in insertion order.
func (env *Env) Bindings() []Binding {
	out := make([]Binding, 0, len(env.order))
	for _, name := range env.order {
		b, _ := env.Lookup(name)
		out = append(out, b)
	}
	return out
}

// ParseOption returns a parse option reflecting this environment: names
// defined as functions parse as callables of their arity, and a variable
// binding that shadows a built-in function name disables that function so
// the name parses as the variable.
func (env *Env) ParseOption() ParseOption {
	fns := make(map[string]Func)
	for name, b := range env.vars {
		if b.fn {
			fns[name] = Defined(name, len(b.params))
		} else if _, ok := builtins[name]; ok {
			fns[name] = nil
		}
	}
	return ParseFuncs(fns)
}
