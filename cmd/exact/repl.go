package main

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// historyRecall is how many stored lines seed the up-arrow history.
const historyRecall = 500

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// repl runs the interactive loop. Commands start with a colon; anything
// else is an expression or assignment.
func (c *calc) repl() {
	fmt.Println("exact calculator (:quit or Ctrl+D to exit, :help for commands)")

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "raw mode: %v\n", err)
		c.pipe(os.Stdin)
		return
	}
	defer term.Restore(fd, oldState)

	ed := &editor{}
	if entries, err := c.store.Recent(historyRecall); err == nil {
		for _, e := range entries {
			ed.remember(e.Line)
		}
	}

	out := crlfWriter{}
	for {
		line, eof := ed.readLine("» ")
		if eof {
			fmt.Print("\r\n")
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ed.remember(line)
		if strings.HasPrefix(line, ":") {
			if quit := c.command(out, line); quit {
				return
			}
			continue
		}
		if err := c.line(out, line); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

// command dispatches a colon command and reports whether to exit.
func (c *calc) command(out crlfWriter, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(out, ":vars           list bindings")
		fmt.Fprintln(out, ":forget name    drop a binding")
		fmt.Fprintln(out, ":approx expr    approximate as a float")
		fmt.Fprintln(out, ":quit           exit")
	case ":vars":
		c.vars(out)
	case ":forget":
		if rest == "" {
			fmt.Fprintln(out, "usage: :forget name")
			break
		}
		if err := c.forget(out, rest); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	case ":approx":
		if rest == "" {
			fmt.Fprintln(out, "usage: :approx expr")
			break
		}
		if err := c.approx(out, rest); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	default:
		fmt.Fprintf(out, "unknown command %s\n", cmd)
	}
	return false
}

// crlfWriter rewrites bare newlines for raw-mode display.
type crlfWriter struct{}

func (crlfWriter) Write(p []byte) (int, error) {
	s := strings.ReplaceAll(string(p), "\n", "\r\n")
	if _, err := os.Stdout.WriteString(s); err != nil {
		return 0, err
	}
	return len(p), nil
}

// editor is a minimal raw-mode line editor with history navigation.
type editor struct {
	history []string
	// hpos is the history cursor while navigating; len(history) means the
	// draft line.
	hpos  int
	draft []rune
}

// remember appends a line to the navigable history, skipping immediate
// duplicates.
func (ed *editor) remember(line string) {
	if n := len(ed.history); n > 0 && ed.history[n-1] == line {
		return
	}
	ed.history = append(ed.history, line)
}

// readLine reads one line in raw mode. It reports eof on Ctrl+D at an
// empty line or when input closes.
func (ed *editor) readLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	var line []rune
	cursor := 0
	ed.hpos = len(ed.history)
	buf := make([]byte, 1)

	// Redraw from the cursor to the end of the line, then put the
	// terminal cursor back.
	redraw := func() {
		fmt.Print("\x1b[K")
		fmt.Print(string(line[cursor:]))
		if cursor < len(line) {
			fmt.Printf("\x1b[%dD", len(line)-cursor)
		}
	}
	// Replace the whole visible line, cursor at the end.
	replace := func(with []rune) {
		fmt.Printf("\r\x1b[K%s%s", prompt, string(with))
		line = append(line[:0], with...)
		cursor = len(line)
	}
	insert := func(r rune) {
		line = append(line, 0)
		copy(line[cursor+1:], line[cursor:])
		line[cursor] = r
		cursor++
		fmt.Print(string(r))
		if cursor < len(line) {
			redraw()
		}
	}

	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return string(line), true
		}
		switch b := buf[0]; b {
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				return "", true
			}
			if cursor < len(line) {
				line = append(line[:cursor], line[cursor+1:]...)
				redraw()
			}
		case 0x03: // Ctrl+C
			fmt.Print("^C\r\n")
			return "", false
		case 0x0d, 0x0a: // Enter
			fmt.Print("\r\n")
			return string(line), false
		case 0x7f, 0x08: // Backspace
			if cursor > 0 {
				cursor--
				line = append(line[:cursor], line[cursor+1:]...)
				fmt.Print("\b")
				redraw()
			}
		case 0x01: // Ctrl+A
			if cursor > 0 {
				fmt.Printf("\x1b[%dD", cursor)
				cursor = 0
			}
		case 0x05: // Ctrl+E
			if cursor < len(line) {
				fmt.Printf("\x1b[%dC", len(line)-cursor)
				cursor = len(line)
			}
		case 0x0b: // Ctrl+K
			if cursor < len(line) {
				line = line[:cursor]
				fmt.Print("\x1b[K")
			}
		case 0x15: // Ctrl+U
			if cursor > 0 {
				fmt.Printf("\x1b[%dD", cursor)
				line = append(line[:0], line[cursor:]...)
				cursor = 0
				redraw()
			}
		case 0x1b: // escape sequence
			if n, err := os.Stdin.Read(buf); err != nil || n == 0 || buf[0] != '[' {
				continue
			}
			if n, err := os.Stdin.Read(buf); err != nil || n == 0 {
				continue
			}
			switch buf[0] {
			case 'A': // up: older history
				if ed.hpos == 0 {
					break
				}
				if ed.hpos == len(ed.history) {
					ed.draft = append(ed.draft[:0], line...)
				}
				ed.hpos--
				replace([]rune(ed.history[ed.hpos]))
			case 'B': // down: newer history, then the draft
				if ed.hpos >= len(ed.history) {
					break
				}
				ed.hpos++
				if ed.hpos == len(ed.history) {
					replace(ed.draft)
				} else {
					replace([]rune(ed.history[ed.hpos]))
				}
			case 'C': // right
				if cursor < len(line) {
					cursor++
					fmt.Print("\x1b[C")
				}
			case 'D': // left
				if cursor > 0 {
					cursor--
					fmt.Print("\x1b[D")
				}
			case '3': // delete: ESC [ 3 ~
				if n, err := os.Stdin.Read(buf); err != nil || n == 0 || buf[0] != '~' {
					break
				}
				if cursor < len(line) {
					line = append(line[:cursor], line[cursor+1:]...)
					redraw()
				}
			}
		default:
			switch {
			case b >= 0x20 && b < 0x7f:
				insert(rune(b))
			case b >= 0x80:
				// UTF-8 multi-byte sequence.
				utf := []byte{b}
				more := 0
				switch {
				case b&0xE0 == 0xC0:
					more = 1
				case b&0xF0 == 0xE0:
					more = 2
				case b&0xF8 == 0xF0:
					more = 3
				}
				for i := 0; i < more; i++ {
					if n, err := os.Stdin.Read(buf); err != nil || n == 0 {
						break
					}
					utf = append(utf, buf[0])
				}
				if r, _ := utf8.DecodeRune(utf); r != utf8.RuneError {
					insert(r)
				}
			}
		}
	}
}
