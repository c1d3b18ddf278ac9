package session

import (
	"sync"
	"time"
)

// Memory is an in-memory store for testing and for running with
// persistence disabled.
type Memory struct {
	mu       sync.RWMutex
	history  map[string][]Entry
	all      []Entry
	bindings map[string]string
	order    []string
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		history:  make(map[string][]Entry),
		bindings: make(map[string]string),
	}
}

// AppendHistory appends a line to a session's history.
func (m *Memory) AppendHistory(session, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := Entry{
		Session: session,
		Seq:     len(m.history[session]) + 1,
		Line:    line,
		Ts:      time.Now().UTC().Format(time.DateTime),
	}
	m.history[session] = append(m.history[session], e)
	m.all = append(m.all, e)
	return nil
}

// History returns a session's lines, oldest first.
func (m *Memory) History(session string, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.history[session]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return append([]Entry(nil), entries...), nil
}

// Recent returns the most recent lines across all sessions, oldest first.
func (m *Memory) Recent(limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.all
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return append([]Entry(nil), entries...), nil
}

// PutBinding stores a binding, overwriting any previous one by name.
func (m *Memory) PutBinding(name, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bindings[name]; !ok {
		m.order = append(m.order, name)
	}
	m.bindings[name] = source
	return nil
}

// DeleteBinding removes a binding by name.
func (m *Memory) DeleteBinding(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bindings[name]; !ok {
		return nil
	}
	delete(m.bindings, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Bindings returns all bindings in the order they were first stored.
func (m *Memory) Bindings() ([]Binding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bs := make([]Binding, 0, len(m.order))
	for _, n := range m.order {
		bs = append(bs, Binding{Name: n, Source: m.bindings[n]})
	}
	return bs, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}
