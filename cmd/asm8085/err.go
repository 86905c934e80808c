package main

import (
	"errors"

	"github.com/ezrec/asm8085/translate"
)

var f = translate.From

var (
	ErrDefineSyntax  = errors.New(f("define must be NAME=VALUE"))
	ErrArguments     = errors.New(f("wrong number of arguments"))
	ErrAddress       = errors.New(f("invalid address"))
	ErrBenchmarkRuns = errors.New(f("benchmark needs at least one run"))
)

// ErrCommandUnknown is an unrecognized command name.
type ErrCommandUnknown string

func (err ErrCommandUnknown) Error() string {
	return f("unknown command: %v", string(err))
}
