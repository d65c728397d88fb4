package subscribe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBatchPartialFailure matches a *BatchError via errors.Is.
var ErrBatchPartialFailure = errors.New("some subscription updates failed")

// Failure records one request the server (or transport) rejected.
type Failure struct {
	Request Request
	Err     error
}

// BatchError reports the failed requests of a batch after every dispatched
// request has finished. It unwraps to ErrBatchPartialFailure and to each
// underlying request error.
type BatchError struct {
	Failures []Failure
	Total    int
}

func (e *BatchError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d of %d subscription updates failed", len(e.Failures), e.Total)

	for _, f := range e.Failures {
		name := f.Request.Path
		if name == "" {
			name = f.Request.ChannelID
		}

		fmt.Fprintf(&b, "\n  %s: %v", name, f.Err)
	}

	return b.String()
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	errs = append(errs, ErrBatchPartialFailure)

	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}

	return errs
}
