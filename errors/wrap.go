package errors

import (
	"github.com/pkg/errors"
)

var (
	Wrap      = errors.Wrap
	Wrapf     = errors.Wrapf
	New       = errors.New
	WithStack = errors.WithStack
	Is        = errors.Is
)
