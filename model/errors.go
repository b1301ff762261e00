package model

import "errors"

var (
	ErrAlreadyExists = errors.New("record already exists")
	ErrNotFound      = errors.New("record not found")

	// ErrStale is returned by conditional updates when the record changed
	// between read and write, e.g. a concurrent sweep already advanced the
	// notification tier.
	ErrStale = errors.New("record changed since read")
)
