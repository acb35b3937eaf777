package sgclient

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Causes carried by errors returned from this package. Every error returned
// by a Client is an *errors.Error whose Kind classifies the failure and whose
// cause chain ends in one of these values, a *DecodeError, a *StatusError, or
// an underlying transport error. Use Is to test for them.
var (
	// ErrNotConfigured is the cause when a download is attempted before
	// SetURL succeeded.
	ErrNotConfigured = errors.New("client has no base URL")
	// ErrBadURL is the cause when SetURL rejects a base URL.
	ErrBadURL = errors.New("invalid base URL")
	// ErrUnmappedID is the cause when a sequence id has no mapping in the
	// current session.
	ErrUnmappedID = errors.New("unmapped sequence id")
	// ErrInvalidRange is the cause when a requested or received range does
	// not lie within its sequence.
	ErrInvalidRange = errors.New("invalid range")
	// ErrLengthMismatch is the cause when downloaded bases do not have the
	// requested length.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrIDMismatch is the cause when a response describes a different
	// object than the one requested.
	ErrIDMismatch = errors.New("id mismatch")
)

// Shape names a response body layout understood by the decoder.
type Shape string

// Response shapes.
const (
	ShapeSequences  Shape = "sequences"
	ShapeReferences Shape = "references"
	ShapeBases      Shape = "bases"
	ShapeJoins      Shape = "joins"
	ShapeAlleleIDs  Shape = "alleles"
	ShapeAllele     Shape = "allele"
)

// DecodeError describes why a response body could not be decoded.
type DecodeError struct {
	Shape Shape
	// Field is the dotted path of the offending field, or empty if the body
	// itself was malformed.
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s: %s", e.Shape, e.Reason)
	}
	return fmt.Sprintf("decode %s: field %s: %s", e.Shape, e.Field, e.Reason)
}

// StatusError is the cause of a transport error for a non-2xx HTTP response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
}

// Is returns true iff target appears in err's cause chain.
func Is(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		e, ok := err.(*errors.Error)
		if !ok {
			return false
		}
		err = e.Err
	}
	return false
}

// Cause returns the innermost cause of err: the first error in the chain
// that is not an *errors.Error.
func Cause(err error) error {
	for {
		e, ok := err.(*errors.Error)
		if !ok || e.Err == nil {
			return err
		}
		err = e.Err
	}
}

func decodeErr(shape Shape, field, format string, args ...interface{}) error {
	return errors.E(errors.Invalid, &DecodeError{Shape: shape, Field: field, Reason: fmt.Sprintf(format, args...)})
}
