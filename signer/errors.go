package signer

import (
	"fmt"
)

// InvalidThresholdError is returned when a registry is constructed with
// no owners or with a threshold outside 1..len(owners).
type InvalidThresholdError struct {
	msg string
}

func (e *InvalidThresholdError) Error() string { return e.msg }

func newInvalidThresholdError(threshold int, owners int) *InvalidThresholdError {
	return &InvalidThresholdError{
		msg: fmt.Sprintf("invalid threshold: %d of %d owners", threshold, owners),
	}
}

// UnknownOwnerError is returned when a contribution names an owner that
// is not in the registry. The signing backend is never invoked.
type UnknownOwnerError struct {
	OwnerID string
}

func (e *UnknownOwnerError) Error() string {
	return fmt.Sprintf("unknown owner: %s", e.OwnerID)
}

func newUnknownOwnerError(ownerID string) *UnknownOwnerError {
	return &UnknownOwnerError{OwnerID: ownerID}
}

// BackendFailureError wraps an error from a signing backend. The
// coordinator surfaces it without retrying; retry policy belongs to
// the caller.
type BackendFailureError struct {
	OwnerID string
	Err     error
}

func (e *BackendFailureError) Error() string {
	return fmt.Sprintf("signing backend failure for owner %s: %v", e.OwnerID, e.Err)
}

func (e *BackendFailureError) Unwrap() error { return e.Err }

func newBackendFailureError(ownerID string, err error) *BackendFailureError {
	return &BackendFailureError{OwnerID: ownerID, Err: err}
}

// SignatureRejectedError is returned when a backend produced a
// signature that does not verify against the owner's registered key.
// The signature is not recorded.
type SignatureRejectedError struct {
	OwnerID string
}

func (e *SignatureRejectedError) Error() string {
	return fmt.Sprintf("signature from backend rejected for owner %s: does not verify against registered key", e.OwnerID)
}

func newSignatureRejectedError(ownerID string) *SignatureRejectedError {
	return &SignatureRejectedError{OwnerID: ownerID}
}

// SerializationError wraps a failure to encode, decode, read, or write
// the persistent wallet record.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("wallet state %s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

func newSerializationError(op string, err error) *SerializationError {
	return &SerializationError{Op: op, Err: err}
}
