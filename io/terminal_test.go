package io

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalNotTerminal(t *testing.T) {
	assert := assert.New(t)

	file, err := os.CreateTemp(t.TempDir(), "tty")
	assert.NoError(err)
	defer file.Close()

	tt := &Terminal{Fd: int(file.Fd())}
	assert.False(tt.IsTerminal())
	assert.ErrorIs(tt.Raw(), ErrNotTerminal)
	assert.ErrorIs(tt.Restore(), ErrNotRaw)
}

func TestTerminalWriter(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	tt := &Terminal{}
	w := tt.Writer(buf)

	n, err := w.Write([]byte("a\nb\n"))
	assert.NoError(err)
	assert.Equal(4, n)
	assert.Equal("a\r\nb\r\n", buf.String())
}
