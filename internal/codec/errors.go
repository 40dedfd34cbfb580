package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCarrier is returned for nil, empty, or inconsistently sized carriers.
	ErrInvalidCarrier = errors.New("invalid carrier")

	// ErrInvalidConfig is returned when an embedding configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCapacityExceeded is returned when the framed payload needs more bits
	// than the carrier has suitable blocks.
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// CapacityError reports the shortfall of an embed that did not fit.
// It matches ErrCapacityExceeded under errors.Is.
type CapacityError struct {
	Required  int // bits in the framed, repetition-coded payload
	Available int // suitable blocks in the carrier (one bit each)
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: payload needs %d bits, carrier holds %d", e.Required, e.Available)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}
