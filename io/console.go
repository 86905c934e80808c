package io

import (
	"io"
)

const (
	PORT_CONSOLE_IN  = uint8(0x00) // Console character input.
	PORT_CONSOLE_OUT = uint8(0x01) // Console character output.
)

// Console provides character I/O over a byte stream.
// Reads at the end of the input, or with no input, return 0x00.
// Output is dropped when there is no writer.
type Console struct {
	Input  io.Reader
	Output io.Writer

	Err error // First write error, if any.
}

// Attach maps the console input and output devices onto a bus.
func (con *Console) Attach(bus *Bus) {
	bus.Map(PORT_CONSOLE_IN, &consoleInput{con})
	bus.Map(PORT_CONSOLE_OUT, &consoleOutput{con})
}

// Read returns the next input byte, or 0x00 at end of input.
func (con *Console) Read() (value uint8) {
	if con.Input == nil {
		return
	}

	var one [1]byte
	n, _ := io.ReadFull(con.Input, one[:])
	if n == 1 {
		value = one[0]
	}

	return
}

// Write sends a byte to the output.
func (con *Console) Write(value uint8) {
	if con.Output == nil {
		return
	}

	_, err := con.Output.Write([]byte{value})
	if err != nil && con.Err == nil {
		con.Err = err
	}
}

type consoleInput struct {
	*Console
}

func (ci *consoleInput) In() uint8 {
	return ci.Read()
}

func (ci *consoleInput) Out(value uint8) {
}

type consoleOutput struct {
	*Console
}

func (co *consoleOutput) In() uint8 {
	return PORT_FLOAT
}

func (co *consoleOutput) Out(value uint8) {
	co.Write(value)
}
