package io

import (
	"bytes"
	"io"

	"golang.org/x/term"
)

// Terminal switches a terminal file descriptor into raw mode for
// interactive console I/O.
type Terminal struct {
	Fd int

	state *term.State
}

// IsTerminal returns true if the descriptor is a terminal.
func (tt *Terminal) IsTerminal() bool {
	return term.IsTerminal(tt.Fd)
}

// Raw puts the terminal into raw mode.
func (tt *Terminal) Raw() (err error) {
	if !tt.IsTerminal() {
		err = ErrNotTerminal
		return
	}

	if tt.state != nil {
		return
	}

	tt.state, err = term.MakeRaw(tt.Fd)
	return
}

// Restore returns the terminal to the mode it had before Raw.
func (tt *Terminal) Restore() (err error) {
	if tt.state == nil {
		err = ErrNotRaw
		return
	}

	err = term.Restore(tt.Fd, tt.state)
	tt.state = nil
	return
}

// Writer wraps an output stream, expanding LF to CR LF as raw mode
// no longer does it.
func (tt *Terminal) Writer(w io.Writer) io.Writer {
	return &crlfWriter{w}
}

type crlfWriter struct {
	io.Writer
}

func (cw *crlfWriter) Write(data []byte) (n int, err error) {
	_, err = cw.Writer.Write(bytes.ReplaceAll(data, []byte("\n"), []byte("\r\n")))
	if err != nil {
		return
	}
	n = len(data)
	return
}
