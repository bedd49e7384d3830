package sift

import "github.com/pkg/errors"

// Sentinel error kinds. Use errors.Is to test for these; the errors
// returned by this package wrap them with call-site context.
var (
	// ErrInvalidArgument is returned for non-positive sizes, false
	// positive rates outside (0,1), a distinct-index count exceeding
	// the table size, or a fingerprint wider than the hash it is cut
	// from.
	ErrInvalidArgument = errors.New("sift: invalid argument")

	// ErrFilterFull is returned by CuckooFilter.Add when throwOnFull is
	// true and the eviction loop ran out of kicks. It is recoverable:
	// the caller may build a larger filter and reinsert.
	ErrFilterFull = errors.New("sift: filter full")

	// ErrImportError is returned when an exported record fails shape
	// validation or cannot be reconstructed into a filter.
	ErrImportError = errors.New("sift: import error")
)

func invalidArgf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}
