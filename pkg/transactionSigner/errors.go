package transactionSigner

import (
	"errors"
	"fmt"
)

// Error kinds returned by signers. Match them with errors.Is.
var (
	// ErrSerialization means the payload could not be canonically encoded.
	ErrSerialization = errors.New("serialization error")

	// ErrNetwork means the remote signer was unreachable, returned a non
	// success status, or the exchange failed mid-flight.
	ErrNetwork = errors.New("network error")

	// ErrInvalidSignatureEncoding means the bytes received could not be parsed
	// into a signature of a supported scheme.
	ErrInvalidSignatureEncoding = errors.New("invalid signature encoding")

	// ErrAuthorizationMismatch means a caller asserted a sponsor address the
	// signer does not hold. Only Authorize returns it.
	ErrAuthorizationMismatch = errors.New("authorization mismatch")

	// ErrSignatureVerification means a remote signer returned a well formed
	// signature that does not verify for the sponsor address.
	ErrSignatureVerification = errors.New("signature verification failed")

	// ErrKeyCustody means the key custodian (KMS) rejected or failed the
	// operation.
	ErrKeyCustody = errors.New("key custody error")
)

// SigningError pairs an error kind with its cause.
type SigningError struct {
	Kind error
	Err  error
}

func (e *SigningError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *SigningError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func wrapSigningError(kind error, err error) error {
	return &SigningError{Kind: kind, Err: err}
}

func newSigningError(kind error, format string, args ...interface{}) error {
	return &SigningError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
