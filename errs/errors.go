// Package errs defines the error values shared across the bdat packages.
//
// Fatal conditions are sentinel errors so callers can match them with
// errors.Is; parse failures additionally carry the byte offset at which they
// were raised via AtOffset. Tolerated conditions (unknown subheaders, corrupt
// decompressed rows, magic-number deviations) are collected as Warnings on the
// reader instead of aborting the parse.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrOpenFailed indicates the input file could not be opened or is empty.
	ErrOpenFailed = errors.New("file cannot be opened or is empty")

	// ErrHeaderUnreasonable indicates a zero header or page size in the file header.
	ErrHeaderUnreasonable = errors.New("header or page size is zero")

	// ErrNonMonotonicPage indicates a computed page base that did not advance.
	ErrNonMonotonicPage = errors.New("page position did not increase")

	// ErrTruncated indicates a read past the end of the file.
	ErrTruncated = errors.New("read past end of file")

	// ErrCorruptSubheader indicates a subheader field that the format requires
	// to be zero held another value, or a subheader whose contents are
	// otherwise inconsistent (bad pool pointers, counts or markers).
	ErrCorruptSubheader = errors.New("corrupt subheader")

	// ErrWriterUnsupported indicates a write request outside the supported
	// profile: compression, or a column type/width the writer cannot emit.
	ErrWriterUnsupported = errors.New("unsupported writer profile")

	// ErrMagicMismatch flags a magic-number word outside the known signature.
	// Warning class: the first word may legitimately be zero.
	ErrMagicMismatch = errors.New("magic number mismatch")

	// ErrUnknownSubheader flags an unrecognised subheader signature.
	// Warning class: the subheader is skipped.
	ErrUnknownSubheader = errors.New("unknown subheader signature")

	// ErrCorruptRow flags a decompressed row whose length differs from the
	// declared row length. Warning class: the row is emitted as-is.
	ErrCorruptRow = errors.New("decompressed row length mismatch")

	// ErrUnsupportedCompression flags a compression name outside the known
	// set. Warning class: metadata is returned without rows.
	ErrUnsupportedCompression = errors.New("unsupported compression")

	// ErrInvalidSelection indicates a row range or column selection that
	// cannot be applied to the dataset.
	ErrInvalidSelection = errors.New("invalid row or column selection")
)

// OffsetError wraps a sentinel error with the file offset at which it was raised.
type OffsetError struct {
	Err    error
	Offset int64
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("%v (at byte offset %d)", e.Err, e.Offset)
}

func (e *OffsetError) Unwrap() error {
	return e.Err
}

// AtOffset attaches a byte offset to err. A nil err stays nil.
func AtOffset(err error, offset int64) error {
	if err == nil {
		return nil
	}

	return &OffsetError{Err: err, Offset: offset}
}

// Warning records a tolerated deviation encountered during parsing.
type Warning struct {
	// Err is the warning-class sentinel (ErrMagicMismatch, ErrUnknownSubheader,
	// ErrCorruptRow, ErrUnsupportedCompression or ErrCorruptSubheader).
	Err error
	// Offset is the byte offset at which the condition was observed.
	Offset int64
	// Detail carries context such as the offending signature or lengths.
	Detail string
}

func (w Warning) String() string {
	if w.Detail == "" {
		return fmt.Sprintf("%v at offset %d", w.Err, w.Offset)
	}

	return fmt.Sprintf("%v at offset %d: %s", w.Err, w.Offset, w.Detail)
}
