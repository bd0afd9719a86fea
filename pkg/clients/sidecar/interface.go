package sidecar

import (
	"context"
	"net/http"
)

// ISidecar is the client side of the remote signing sidecar protocol.
type ISidecar interface {
	// SetHttpClient replaces the underlying HTTP client, e.g. for mTLS or tests.
	SetHttpClient(client *http.Client)

	// SignTransactionBytes sends the encoded intent message and returns the raw
	// serialized signature bytes exactly as the sidecar produced them.
	SignTransactionBytes(ctx context.Context, txBytes []byte) ([]byte, error)
}

// Compile-time check to ensure Client implements ISidecar
var _ ISidecar = (*Client)(nil)
