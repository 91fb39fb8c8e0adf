package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBasketNotFound matches any *NotFoundError via errors.Is.
	ErrBasketNotFound = errors.New("basket not found")

	// ErrStoreFailure marks a failed write or read against the authoritative store.
	ErrStoreFailure = errors.New("basket store failure")

	// ErrUpstreamUnavailable marks cache or pricing authority failures. These are
	// recovered locally and never reach the caller.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

type NotFoundError struct {
	UserName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("basket for user %q not found", e.UserName)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrBasketNotFound
}
