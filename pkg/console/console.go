// Package console provides the input side of `String read`: a line editor
// when stdin is a terminal, a buffered reader otherwise.
package console

import (
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/chazu/sol25/lib/runtime"
)

// Reader is a LineReader that must be closed to restore the terminal.
type Reader interface {
	runtime.LineReader
	io.Closer
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Open returns a Reader over f. Only os.Stdin can be put into line
// editing mode; every other file is read through a buffer.
func Open(f *os.File, prompt string) Reader {
	if f == os.Stdin && IsTerminal(f) {
		return NewTerminal(prompt)
	}
	return &plain{LineReader: runtime.NewLineReader(f)}
}

// ---------------------------------------------------------------------------
// Terminal input
// ---------------------------------------------------------------------------

// Terminal reads lines from the controlling terminal with history.
type Terminal struct {
	state  *liner.State
	prompt string
}

// NewTerminal puts stdin into line editing mode.
func NewTerminal(prompt string) *Terminal {
	s := liner.NewLiner()
	s.SetCtrlCAborts(true)
	return &Terminal{state: s, prompt: prompt}
}

// ReadLine prompts for one line. Ctrl-C and Ctrl-D end input.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.state.Prompt(t.prompt)
	switch {
	case err == nil:
		t.state.AppendHistory(line)
		return line, nil
	case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
		return "", io.EOF
	default:
		return "", err
	}
}

// Close restores the terminal mode.
func (t *Terminal) Close() error {
	return t.state.Close()
}

// ---------------------------------------------------------------------------
// Non-interactive input
// ---------------------------------------------------------------------------

type plain struct {
	runtime.LineReader
}

func (*plain) Close() error { return nil }
