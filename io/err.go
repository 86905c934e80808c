package io

import (
	"errors"

	"github.com/ezrec/asm8085/translate"
)

var f = translate.From

var (
	// Terminal errors
	ErrNotTerminal = errors.New(f("not a terminal"))
	ErrNotRaw      = errors.New(f("terminal is not in raw mode"))
)
