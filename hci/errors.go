package hci

import "github.com/pkg/errors"

var (
	// ErrTruncatedInput means a buffer is shorter than a declared field or length.
	ErrTruncatedInput = errors.New("hci: truncated input")

	// ErrMalformedBatch means an aggregated batch could not be split to the end.
	ErrMalformedBatch = errors.New("hci: malformed aggregate batch")

	ErrPayloadTooLarge = errors.New("hci: payload too large")
	ErrValueTooLarge   = errors.New("hci: tlv value too large")
)
