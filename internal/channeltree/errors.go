package channeltree

import (
	"errors"
	"fmt"
)

// Sentinel errors for navigation failures.
// Use errors.Is(err, channeltree.ErrChannelNotFound) to check.
var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrNoParent        = errors.New("channel has no parent")
)

// NotFoundError names the path segment that matched no child channel.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("channel %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrChannelNotFound
}
