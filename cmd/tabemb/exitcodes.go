package main

import (
	"errors"

	"tabemb/internal/dataset"
	"tabemb/internal/schema"
)

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure, cancellation)
	ExitConfigError  = 2 // Configuration error (unreadable or invalid config, embedder setup)
	ExitSchemaError  = 3 // Input dataset does not fit the positional schema
	ExitPersistError = 4 // Input could not be read or output could not be written
)

// configError marks failures caused by configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return "config: " + e.err.Error() }

func (e *configError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	var (
		cfgErr     *configError
		schemaErr  *schema.Error
		persistErr *dataset.PersistError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &schemaErr):
		return ExitSchemaError
	case errors.As(err, &persistErr):
		return ExitPersistError
	default:
		return ExitError
	}
}
