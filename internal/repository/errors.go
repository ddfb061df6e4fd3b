package repository

import "errors"

// Common repository errors
var (
	// ErrUnknownDriver is returned when DB_DRIVER names no supported database
	ErrUnknownDriver = errors.New("unknown database driver")

	// ErrJournalDisabled is returned when the journal has no database behind it
	ErrJournalDisabled = errors.New("move journal disabled")
)
