package exact

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	funcopt struct {
		name string
		fn   Func
	}
	funcsopt map[string]Func
	depthopt int
)

// parsectx holds general data for parsing.
type parsectx struct {
	// names is the set of variable names that have been seen this parse.
	names map[string]bool
	// funcs is the set of function names that trigger special parsing for
	// identifiers.
	funcs map[string]Func
	// resv is a reserved parsed node. parsearglist sets this when it parses
	// a single parenthesized term so that the parser can back it out to an
	// implicit multiplication if the function is niladic.
	resv *node
	// depth counts nesting; maxdepth bounds it.
	depth, maxdepth int
}

// ParseFunc sets a function for parsing. To disable parsing a function,
// pass nil for fn.
func ParseFunc(name string, fn Func) ParseOption {
	return &funcopt{name, fn}
}

func (o *funcopt) parseOption(p parsectx) parsectx {
	if p.funcs == nil {
		p.funcs = map[string]Func{}
	}
	p.funcs[o.name] = o.fn
	return p
}

// ParseFuncs sets a group of functions for parsing. To disable parsing any
// function, set it to nil. Environments produce their own ParseFuncs via
// Env.ParseOption.
func ParseFuncs(fns map[string]Func) ParseOption {
	return funcsopt(fns)
}

func (o funcsopt) parseOption(p parsectx) parsectx {
	if p.funcs == nil {
		// Always make a copy.
		p.funcs = make(map[string]Func, len(o))
	}
	for k, v := range o {
		p.funcs[k] = v
	}
	return p
}

// DisableDefaultFuncs disables all built-in functions during parsing. Their
// names will be parsed as variables instead.
func DisableDefaultFuncs() ParseOption {
	fns := make(funcsopt, len(builtins))
	for k := range builtins {
		fns[k] = nil
	}
	return fns
}

// MaxDepth bounds expression nesting during parsing. The default is
// DefaultMaxDepth.
func MaxDepth(n int) ParseOption {
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.maxdepth = int(o)
	return p
}

// DefaultMaxDepth is the nesting limit applied when MaxDepth is not given.
// Exceeding it reports a DepthError rather than exhausting the stack.
const DefaultMaxDepth = 10000
