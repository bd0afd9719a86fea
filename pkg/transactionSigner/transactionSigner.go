package transactionSigner

import (
	"context"
	"io"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
)

// ITransactionSigner signs sponsored transactions on behalf of one sponsor
// address. Implementations are immutable after construction and safe for
// concurrent use.
type ITransactionSigner interface {
	// SignTransaction wraps payload in the transaction intent, encodes it and
	// signs the digest. Deadlines and cancellation come from ctx; a call that
	// returns an error produced no signature.
	SignTransaction(ctx context.Context, payload intent.TransactionPayload) (*signature.Signature, error)

	// GetAddress returns the sponsor address signatures are produced for.
	GetAddress() address.SponsorAddress

	// IsValidAddress reports whether candidate is exactly the sponsor address.
	IsValidAddress(candidate address.SponsorAddress) bool
}

// Authorize is the RPC layer check run before any signing cost is paid.
func Authorize(signer ITransactionSigner, candidate address.SponsorAddress) error {
	if signer.IsValidAddress(candidate) {
		return nil
	}
	return newSigningError(ErrAuthorizationMismatch,
		"requested sponsor %s, signer holds %s", candidate, signer.GetAddress())
}

// Close releases resources a signer built by NewTransactionSigner holds, such
// as a journal it opened. Signers holding nothing are a no-op.
func Close(signer ITransactionSigner) error {
	if c, ok := signer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// encodeForSigning is the codec step shared by every backend.
func encodeForSigning(payload intent.TransactionPayload) (intent.EncodedMessage, error) {
	msg, err := intent.WrapAndEncode(payload)
	if err != nil {
		return nil, wrapSigningError(ErrSerialization, err)
	}
	return msg, nil
}
