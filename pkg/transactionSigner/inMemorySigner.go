package transactionSigner

import (
	"context"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"go.uber.org/zap"
)

// InMemoryTransactionSigner signs with a key held in process memory. The
// address is derived from the key, never configured.
type InMemoryTransactionSigner struct {
	keyPair crypto.KeyPair
	address address.SponsorAddress
	logger  *zap.Logger
}

var _ ITransactionSigner = (*InMemoryTransactionSigner)(nil)

// NewInMemoryTransactionSigner creates a new InMemoryTransactionSigner holding keyPair
func NewInMemoryTransactionSigner(keyPair crypto.KeyPair, logger *zap.Logger) *InMemoryTransactionSigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryTransactionSigner{
		keyPair: keyPair,
		address: keyPair.Address(),
		logger:  logger,
	}
}

// SignTransaction signs the intent message digest with the held key
func (s *InMemoryTransactionSigner) SignTransaction(ctx context.Context, payload intent.TransactionPayload) (*signature.Signature, error) {
	msg, err := encodeForSigning(payload)
	if err != nil {
		return nil, err
	}
	return s.SignEncodedMessage(ctx, msg)
}

// SignEncodedMessage signs an already encoded intent message. The sidecar
// server uses it since its requests carry the encoding, not the payload.
func (s *InMemoryTransactionSigner) SignEncodedMessage(_ context.Context, msg intent.EncodedMessage) (*signature.Signature, error) {
	sig, err := s.keyPair.SignDigest(msg.Digest())
	if err != nil {
		return nil, wrapSigningError(ErrKeyCustody, err)
	}
	s.logger.Sugar().Debugw("Signed transaction locally",
		"sponsor", s.address.String(),
		"scheme", sig.Scheme.String(),
	)
	return sig, nil
}

// GetAddress returns the address derived from the held public key
func (s *InMemoryTransactionSigner) GetAddress() address.SponsorAddress {
	return s.address
}

// IsValidAddress reports whether candidate is the derived sponsor address
func (s *InMemoryTransactionSigner) IsValidAddress(candidate address.SponsorAddress) bool {
	return candidate == s.address
}

// Scheme returns the scheme of the held key
func (s *InMemoryTransactionSigner) Scheme() signature.Scheme {
	return s.keyPair.Scheme()
}
