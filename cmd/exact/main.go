// Command exact is an interactive calculator over exact rational
// arithmetic. Results are rendered as decimals with repeating cycles in
// parentheses, and expressions the environment cannot fully reduce come
// back symbolically instead of approximately.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mkately/exact"
	"github.com/mkately/exact/internal/session"
)

func main() {
	log.SetFlags(0)
	var (
		evalStr = flag.String("e", "", "evaluate one expression and exit")
		dbPath  = flag.String("db", defaultDB(), `database path ("-" disables persistence)`)
		echo    = flag.Bool("echo", false, "print parsed expressions before results")
		prec    = flag.Uint("prec", 64, "precision of approximate display in bits")
	)
	flag.Parse()
	if *prec == 0 {
		log.Fatal("precision must be positive")
	}

	store, err := openStore(*dbPath)
	if err != nil {
		log.Fatalf("opening %s: %v", *dbPath, err)
	}
	defer store.Close()

	c := &calc{
		env:   exact.NewEnv(),
		store: store,
		id:    uuid.NewString(),
		echo:  *echo,
		prec:  *prec,
	}
	c.restore()

	switch {
	case *evalStr != "":
		if err := c.line(os.Stdout, *evalStr); err != nil {
			log.Fatal(err)
		}
	case interactive():
		c.repl()
	default:
		c.pipe(os.Stdin)
	}
}

// defaultDB is the database path used when -db is not given.
func defaultDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "-"
	}
	return filepath.Join(home, ".exact.db")
}

func openStore(path string) (session.Store, error) {
	if path == "-" {
		return session.NewMemory(), nil
	}
	return session.NewSQLite(path)
}

// calc holds one interactive session.
type calc struct {
	env   *exact.Env
	store session.Store
	// id keys this run's history rows.
	id   string
	echo bool
	prec uint
}

// restore rebuilds the environment by re-evaluating the stored assignment
// lines. A line that no longer evaluates is reported and skipped rather
// than aborting startup.
func (c *calc) restore() {
	bs, err := c.store.Bindings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "restoring bindings: %v\n", err)
		return
	}
	for _, b := range bs {
		if _, err := exact.EvalString(b.Source, c.env); err != nil {
			fmt.Fprintf(os.Stderr, "restoring %s: %v\n", b.Name, err)
		}
	}
}

// pipe evaluates lines from non-interactive input.
func (c *calc) pipe(r io.Reader) {
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" {
			continue
		}
		if err := c.line(os.Stdout, line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	if err := scan.Err(); err != nil {
		log.Fatal(err)
	}
}

// line evaluates one input line, printing results to w and persisting
// history and any new bindings. Errors are returned, not printed.
func (c *calc) line(w io.Writer, line string) error {
	if err := c.store.AppendHistory(c.id, line); err != nil {
		fmt.Fprintf(os.Stderr, "recording history: %v\n", err)
	}
	e, err := exact.ParseString(line, c.env.ParseOption())
	if err != nil {
		return err
	}
	if c.echo {
		fmt.Fprintf(w, " > %v\n", e)
	}
	r, err := exact.Eval(e, c.env)
	if err != nil {
		return err
	}
	for _, name := range e.Targets() {
		if err := c.store.PutBinding(name, line); err != nil {
			fmt.Fprintf(os.Stderr, "persisting %s: %v\n", name, err)
		}
	}
	fmt.Fprintln(w, display(r))
	return nil
}

// display renders an evaluation result: numbers as decimals with repeating
// cycles marked, everything else in expression syntax.
func display(e *exact.Expr) string {
	if x, ok := e.Num(); ok {
		return x.Decimal()
	}
	return e.String()
}

// approx renders an approximation of an expression, or of each element
// when it is a set.
func (c *calc) approx(w io.Writer, src string) error {
	r, err := exact.EvalString(src, c.env)
	if err != nil {
		return err
	}
	if elems, ok := r.Set(); ok {
		parts := make([]string, len(elems))
		for i, el := range elems {
			f, err := exact.Approx(el, c.env, c.prec)
			if err != nil {
				return err
			}
			parts[i] = f.Text('g', -1)
		}
		fmt.Fprintf(w, "(%s)\n", strings.Join(parts, ", "))
		return nil
	}
	f, err := exact.Approx(r, c.env, c.prec)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, f.Text('g', -1))
	return nil
}

// forget drops a binding from the environment and the store.
func (c *calc) forget(w io.Writer, name string) error {
	if !c.env.Forget(name) {
		return fmt.Errorf("nothing bound to %s", name)
	}
	if err := c.store.DeleteBinding(name); err != nil {
		fmt.Fprintf(os.Stderr, "forgetting %s: %v\n", name, err)
	}
	fmt.Fprintf(w, "forgot %s\n", name)
	return nil
}

// vars lists the environment in binding order.
func (c *calc) vars(w io.Writer) {
	bs := c.env.Bindings()
	if len(bs) == 0 {
		fmt.Fprintln(w, "nothing bound")
		return
	}
	for _, b := range bs {
		fmt.Fprintln(w, b)
	}
}
