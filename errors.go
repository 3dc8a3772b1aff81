package sluice

import (
	"errors"
)

var (
	// ErrInvalidInput is returned when a co-group input is nil, empty, or
	// contains an uninitialized Collection.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidOption is returned when a nil option is supplied.
	ErrInvalidOption = errors.New("invalid option")

	// ErrPipelineMismatch is returned when collections from different
	// pipelines are combined. This always signals a programming error in
	// pipeline construction, never a data condition.
	ErrPipelineMismatch = errors.New("collections belong to different pipelines")
)
