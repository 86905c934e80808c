package export

import (
	"errors"

	"github.com/ezrec/asm8085/translate"
)

var f = translate.From

var (
	ErrFormatUnknown = errors.New(f("unknown export format"))
)
