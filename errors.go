package uhdrsplit

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedStream means the bytes at a marker position are not a recognized marker.
	ErrMalformedStream = errors.New("malformed stream")
	// ErrTruncatedStream means a segment or scan runs past the end of the buffer.
	ErrTruncatedStream = errors.New("truncated stream")

	// ErrNotXMP means an APP1 payload does not carry the XMP namespace signature.
	ErrNotXMP = errors.New("not an XMP segment")
	// ErrNotUltraHDR means XMP text does not hold a complete gain map record.
	ErrNotUltraHDR = errors.New("not UltraHDR metadata")
	// ErrMissingField means a required hdrgm field is absent.
	ErrMissingField = fmt.Errorf("%w: missing field", ErrNotUltraHDR)
	// ErrNumberFormat means a matched numeral could not be converted.
	ErrNumberFormat = fmt.Errorf("%w: invalid number", ErrNotUltraHDR)
)

// ScanError reports a fatal scan failure at a byte offset.
type ScanError struct {
	Offset int
	Marker Marker
	Err    error
}

func (e *ScanError) Error() string {
	if e.Marker != 0 {
		return fmt.Sprintf("%v: %s at offset %#x", e.Err, e.Marker, e.Offset)
	}
	return fmt.Sprintf("%v at offset %#x", e.Err, e.Offset)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// FieldError reports a metadata field that could not be populated.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("hdrgm:%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
