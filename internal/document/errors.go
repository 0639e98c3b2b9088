package document

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a request has no line items
var ErrEmptyInput = errors.New("document has no line items")

// Kind classifies generation failures
type Kind int

const (
	// KindValidation means one or more line items are invalid
	KindValidation Kind = iota + 1
	// KindEmptyInput means the request has no line items
	KindEmptyInput
	// KindLayout means the request asks for an unusable layout
	KindLayout
)

// String returns a human-readable representation of the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindEmptyInput:
		return "empty input"
	case KindLayout:
		return "layout"
	default:
		return "unknown"
	}
}

// GenerationError is the only error type returned by Planner.Build
type GenerationError struct {
	Kind Kind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("document generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// KindOf returns the generation error kind carried by err, or 0
func KindOf(err error) Kind {
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return 0
}
