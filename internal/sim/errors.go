package sim

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidConfig indicates parameters that can not describe a run.
	ErrInvalidConfig = errors.New("ising: invalid configuration")

	// ErrCanceled indicates the run was interrupted between sweeps.
	ErrCanceled = errors.New("ising: run canceled")
)

// ConfigError names the offending parameter.
type ConfigError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s=%v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }
