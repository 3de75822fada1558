package types

import (
	"github.com/aunum/log"
)

// Logger used by the training loop and the evaluator
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type defaultLogger struct{}

var _ Logger = defaultLogger{}

// DefaultLogger writes through the aunum/log package level logger
func DefaultLogger() Logger {
	return defaultLogger{}
}

func (defaultLogger) Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func (defaultLogger) Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// NoopLogger discards everything
type NoopLogger struct{}

var _ Logger = NoopLogger{}

func (NoopLogger) Infof(string, ...interface{})  {}
func (NoopLogger) Errorf(string, ...interface{}) {}
