package polls

import (
	"strings"

	"emperror.dev/errors"
)

var (
	ErrPollNotFound     = errors.New("poll not found")
	ErrPollEnded        = errors.New("poll has ended")
	ErrInvalidOption    = errors.New("invalid option")
	ErrMalformedAction  = errors.New("malformed action token")
	ErrPermissionDenied = errors.New("permission denied")

	// ErrResultsWithheld is returned for anonymous polls that are still
	// open; it's a refusal, not a failure.
	ErrResultsWithheld = errors.New("results withheld until the poll ends")
)

// ValidationError carries every violation found in a creation request, not
// just the first one.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "\n")
}
