package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// NewDiscardLogger returns a logger that swallows all output, for tests.
func NewDiscardLogger() Logger {
	return &zerologLogger{logger: zerolog.New(io.Discard)}
}
