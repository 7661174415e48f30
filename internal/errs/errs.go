// Package errs contains the error taxonomy shared by the billcycle packages.
//
// Callers match with errors.Is against the sentinels; format failures also
// carry a *FormatError describing which field was rejected.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInputFormat indicates malformed input: a bad date string, invalid
	// base64, a wrong-length salt or nonce, or a payload that does not match
	// the milestone schema.
	ErrInputFormat = errors.New("invalid input format")

	// ErrAuthentication indicates that the authentication tag did not verify.
	// A wrong password and a tampered record are deliberately indistinguishable.
	ErrAuthentication = errors.New("authentication failed: wrong password or corrupted record")

	// ErrMissingCredential indicates a password was required but none was supplied.
	ErrMissingCredential = errors.New("password required")
)

// FormatError describes which part of the input was rejected.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInputFormat, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInputFormat, e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInputFormat) match.
func (e *FormatError) Unwrap() error {
	return ErrInputFormat
}

// Format builds a *FormatError for field.
func Format(field, reason string, args ...any) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &FormatError{Field: field, Reason: reason}
}
