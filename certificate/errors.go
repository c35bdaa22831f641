package certificate

import "errors"

var (
	// ErrNotFound means the token ID was never issued. This is a normal
	// negative result, not a fault.
	ErrNotFound = errors.New("certificate not found")

	// ErrLedgerUnavailable means a registry read failed at the transport
	// level and may succeed on retry.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrContentUnavailable means the metadata at the token URI could not be
	// fetched.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrMalformedContent means the fetched metadata could not be parsed or
	// canonicalized. It is never silently coerced into a hash.
	ErrMalformedContent = errors.New("malformed content")
)
