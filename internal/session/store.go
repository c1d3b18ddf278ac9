// Package session persists calculator sessions: the lines a session read
// and the bindings it built. Bindings are stored as their assignment source
// text, so restoring an environment is just re-evaluating each line.
package session

// Entry is one line of a session's input history.
type Entry struct {
	// Session is the id of the session the line belongs to.
	Session string
	// Seq orders lines within a session, starting at 1.
	Seq int
	// Line is the input text as typed.
	Line string
	// Ts is the time the line was stored, as recorded by the store.
	Ts string
}

// Binding is one persisted environment binding.
type Binding struct {
	// Name is the bound name.
	Name string
	// Source is the assignment line that produced the binding.
	Source string
}

// Store is the interface for session persistence. History is keyed by
// session id; bindings are shared across sessions, since the point of
// persisting them is that the environment outlives any one run.
type Store interface {
	// AppendHistory appends a line to a session's history.
	AppendHistory(session, line string) error
	// History returns a session's lines, oldest first. A positive limit
	// returns only the most recent limit lines.
	History(session string, limit int) ([]Entry, error)
	// Recent returns the most recent lines across all sessions, oldest
	// first. This is what seeds interactive history recall in a new
	// session.
	Recent(limit int) ([]Entry, error)
	// PutBinding stores a binding, overwriting any previous one by name.
	PutBinding(name, source string) error
	// DeleteBinding removes a binding by name.
	DeleteBinding(name string) error
	// Bindings returns all bindings in the order they were first stored.
	Bindings() ([]Binding, error)
	// Close releases resources.
	Close() error
}
