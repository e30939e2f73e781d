package domain

import "errors"

var (
	// ErrInvalidPriority is returned when an order is submitted with an unknown priority class.
	ErrInvalidPriority = errors.New("invalid order priority")

	// ErrJobNotFound is a sentinel error returned when an order or its completion record is not found.
	ErrJobNotFound = errors.New("order not found")
)
