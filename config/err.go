package config

import (
	"errors"
	"fmt"

	"github.com/ezrec/asm8085/translate"
)

var f = translate.From

var (
	ErrBaseInvalid  = errors.New(f("base must be one of hex, dec or bin"))
	ErrClockInvalid = errors.New(f("clock must be positive"))
)

// ErrKeyUnknown lists keys in a configuration file that are not understood.
type ErrKeyUnknown []string

func (err ErrKeyUnknown) Error() string {
	return f("unknown configuration keys: %v", fmt.Sprint([]string(err)))
}

// ErrConfig indicates the file a configuration error came from.
type ErrConfig struct {
	Path string
	Err  error
}

func (err *ErrConfig) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrConfig) Unwrap() error {
	return err.Err
}
