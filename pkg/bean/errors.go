package bean

import (
	"errors"
	"fmt"
)

// ResolutionError reports a shorthand fragment that matched no open account
// and no historical payee. It is recoverable: later fallback tiers may still
// produce a transaction.
type ResolutionError struct {
	Fragment string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("account %s not found", e.Fragment)
}

var (
	// ErrIncompleteShorthand marks input with too few tokens for a direct
	// build. Like ResolutionError it can be completed by later tiers.
	ErrIncompleteShorthand = errors.New("shorthand line is incomplete")

	// ErrEmptyResult means the similarity tier produced no usable
	// candidate.
	ErrEmptyResult = errors.New("no usable similar transaction")

	// ErrNoTransaction means the completion service response contained no
	// parsable transaction.
	ErrNoTransaction = errors.New("no transaction found in completion")
)

// recoverable reports whether a Builder failure may still be salvaged by
// the similarity or generative tier.
func recoverable(err error) bool {
	var resErr *ResolutionError
	return errors.As(err, &resErr) || errors.Is(err, ErrIncompleteShorthand)
}
