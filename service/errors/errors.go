// Package errors defines the error taxonomy of the service. Every error
// crossing the HTTP boundary is downgraded to a success/message envelope;
// these types exist so the layers below can tell validation problems,
// ledger I/O problems and profile store problems apart.
package errors

import "errors"

type NilConfigError struct{}

func (e *NilConfigError) Error() string {
	return "config can not be nil"
}

// ValidationError is a malformed input, caught before any I/O.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ReadError is a failed read-only ledger query.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return "ledger read error: " + e.Err.Error()
}

func (e *ReadError) Unwrap() error { return e.Err }

// SubmitError is a failed transaction submission (network failure, RPC
// rejection or a cancelled wallet approval).
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return "ledger submit error: " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error { return e.Err }

// NotFoundError is a query for a token id that was never minted or is out
// of range.
type NotFoundError struct {
	Err error
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.Err.Error()
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// RemoteStoreError is a profile store failure. It is never propagated as
// fatal; callers degrade to cached data or a boolean failure return.
type RemoteStoreError struct {
	Err error
}

func (e *RemoteStoreError) Error() string {
	return "remote store error: " + e.Err.Error()
}

func (e *RemoteStoreError) Unwrap() error { return e.Err }

func IsValidationError(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

func IsNotFoundError(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

func IsRemoteStoreError(err error) bool {
	var t *RemoteStoreError
	return errors.As(err, &t)
}
