// Package replline is a raw-mode line editor for the interactive CLI: history
// navigation, cursor movement, and the usual control characters, read one
// byte at a time from a background goroutine so escape sequences (arrow
// keys) can be decoded without blocking the whole read.
//
// Grounded on the teacher's repl/input_tty.go. Dropped relative to the
// original: the idle-tick poll for "unhandled task failures", which existed
// because the teacher's evaluator could run detached concurrent tasks
// (spawn/race expressions); this engine's evaluation is synchronous and
// single-threaded (SPEC_FULL.md §5), so there is nothing to poll for between
// keystrokes.
package replline

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

type byteEvent struct {
	b   byte
	err error
}

// Reader is a line editor bound to one terminal. The zero value is not
// usable; build one with New.
type Reader struct {
	in         *os.File
	out        io.Writer
	state      *term.State
	events     chan byteEvent
	history    []string
	maxHistory int
}

// New puts in/out into raw mode and starts the background byte reader. ok is
// false when either stream is not a real terminal (e.g. input piped from a
// file), in which case the caller should fall back to bufio.Scanner.
func New(in io.Reader, out io.Writer) (r *Reader, ok bool) {
	inFile, ok := in.(*os.File)
	if !ok {
		return nil, false
	}
	outFile, ok := out.(*os.File)
	if !ok {
		return nil, false
	}
	if !term.IsTerminal(int(inFile.Fd())) || !term.IsTerminal(int(outFile.Fd())) {
		return nil, false
	}

	state, err := term.MakeRaw(int(inFile.Fd()))
	if err != nil {
		return nil, false
	}

	r = &Reader{
		in:         inFile,
		out:        out,
		state:      state,
		events:     make(chan byteEvent, 128),
		history:    make([]string, 0, 256),
		maxHistory: 1000,
	}
	go r.readBytes()
	return r, true
}

func (r *Reader) Close() {
	if r == nil || r.state == nil {
		return
	}
	_ = term.Restore(int(r.in.Fd()), r.state)
}

func (r *Reader) readBytes() {
	defer close(r.events)
	buf := make([]byte, 1)
	for {
		n, err := r.in.Read(buf)
		if n > 0 {
			r.events <- byteEvent{b: buf[0]}
		}
		if err != nil {
			r.events <- byteEvent{err: err}
			return
		}
	}
}

// ReadLine reads one line of input with history and cursor editing. ok is
// false on EOF, Ctrl+C, or Ctrl+D on an empty line.
func (r *Reader) ReadLine(prompt string) (string, bool) {
	if r == nil {
		return "", false
	}
	line := make([]byte, 0, 64)
	cursor := 0
	historyIndex := len(r.history)
	inHistoryNav := false
	draftLine := make([]byte, 0, 64)
	fmt.Fprint(r.out, prompt)

	for ev := range r.events {
		if ev.err != nil {
			return "", false
		}

		switch ev.b {
		case '\r', '\n':
			fmt.Fprint(r.out, "\r\n")
			entered := string(line)
			r.appendHistory(entered)
			return entered, true
		case 0x03: // Ctrl+C
			fmt.Fprint(r.out, "^C\r\n")
			return "", false
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				fmt.Fprint(r.out, "\r\n")
				return "", false
			}
		case 0x0c: // Ctrl+L
			clearScreen(r.out)
			redrawLine(r.out, prompt, line, cursor)
		case 0x7f, 0x08: // Backspace
			if cursor > 0 {
				if inHistoryNav {
					inHistoryNav = false
					historyIndex = len(r.history)
				}
				line = append(line[:cursor-1], line[cursor:]...)
				cursor--
				redrawLine(r.out, prompt, line, cursor)
			}
		case 0x1b: // Escape sequence (arrows/home/end/delete)
			next, ok := r.readByteWithTimeout(10 * time.Millisecond)
			if !ok {
				continue
			}
			if next != '[' && next != 'O' {
				continue
			}
			code, ok := r.readByteWithTimeout(10 * time.Millisecond)
			if !ok {
				continue
			}
			switch code {
			case 'A': // Up arrow
				if len(r.history) == 0 {
					continue
				}
				if !inHistoryNav {
					draftLine = append(draftLine[:0], line...)
					inHistoryNav = true
					historyIndex = len(r.history) - 1
				} else if historyIndex > 0 {
					historyIndex--
				}
				line = []byte(r.history[historyIndex])
				cursor = len(line)
				redrawLine(r.out, prompt, line, cursor)
			case 'B': // Down arrow
				if !inHistoryNav {
					continue
				}
				if historyIndex < len(r.history)-1 {
					historyIndex++
					line = []byte(r.history[historyIndex])
				} else {
					inHistoryNav = false
					historyIndex = len(r.history)
					line = append([]byte(nil), draftLine...)
				}
				cursor = len(line)
				redrawLine(r.out, prompt, line, cursor)
			case 'D': // Left arrow
				if cursor > 0 {
					cursor--
					redrawLine(r.out, prompt, line, cursor)
				}
			case 'C': // Right arrow
				if cursor < len(line) {
					cursor++
					redrawLine(r.out, prompt, line, cursor)
				}
			case 'H': // Home
				cursor = 0
				redrawLine(r.out, prompt, line, cursor)
			case 'F': // End
				cursor = len(line)
				redrawLine(r.out, prompt, line, cursor)
			case '3': // Delete sequence ESC [ 3 ~
				termByte, ok := r.readByteWithTimeout(10 * time.Millisecond)
				if ok && termByte == '~' && cursor < len(line) {
					if inHistoryNav {
						inHistoryNav = false
						historyIndex = len(r.history)
					}
					line = append(line[:cursor], line[cursor+1:]...)
					redrawLine(r.out, prompt, line, cursor)
				}
			}
		default:
			if ev.b >= 0x20 || ev.b == '\t' {
				if inHistoryNav {
					inHistoryNav = false
					historyIndex = len(r.history)
				}
				line = append(line, 0)
				copy(line[cursor+1:], line[cursor:])
				line[cursor] = ev.b
				cursor++
				redrawLine(r.out, prompt, line, cursor)
			}
		}
	}
	return "", false
}

func (r *Reader) appendHistory(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if n := len(r.history); n > 0 && r.history[n-1] == line {
		return
	}
	r.history = append(r.history, line)
	if r.maxHistory > 0 && len(r.history) > r.maxHistory {
		r.history = r.history[len(r.history)-r.maxHistory:]
	}
}

func (r *Reader) readByteWithTimeout(timeout time.Duration) (byte, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev, ok := <-r.events:
		if !ok || ev.err != nil {
			return 0, false
		}
		return ev.b, true
	case <-timer.C:
		return 0, false
	}
}

func redrawLine(out io.Writer, prompt string, line []byte, cursor int) {
	fmt.Fprintf(out, "\r%s%s\x1b[K", prompt, string(line))
	moveLeft := len(line) - cursor
	if moveLeft > 0 {
		fmt.Fprintf(out, "\x1b[%dD", moveLeft)
	}
}

func clearScreen(out io.Writer) {
	fmt.Fprint(out, "\x1b[H\x1b[2J")
}
