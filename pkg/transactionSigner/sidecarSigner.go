package transactionSigner

import (
	"context"
	"errors"
	"fmt"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/clients/sidecar"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	"github.com/Layr-Labs/gas-station-signer/pkg/metrics"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"go.uber.org/zap"
)

// SidecarTransactionSigner delegates signing to a sidecar service. The key
// never enters this process; the sponsor address is supplied by configuration.
// Each call is exactly one request with no retry and no internal timeout.
type SidecarTransactionSigner struct {
	client         sidecar.ISidecar
	sponsorAddress address.SponsorAddress
	metrics        *metrics.SignerMetrics
	logger         *zap.Logger
}

var _ ITransactionSigner = (*SidecarTransactionSigner)(nil)

type SidecarSignerOption func(*SidecarTransactionSigner)

// WithResponseVerification checks every returned signature against the
// configured address before handing it out. A mismatch is an invariant
// violation reported to m.
func WithResponseVerification(m *metrics.SignerMetrics) SidecarSignerOption {
	return func(s *SidecarTransactionSigner) {
		s.metrics = m
	}
}

// NewSidecarTransactionSigner creates a new SidecarTransactionSigner for sponsorAddress
func NewSidecarTransactionSigner(
	client sidecar.ISidecar,
	sponsorAddress address.SponsorAddress,
	logger *zap.Logger,
	opts ...SidecarSignerOption,
) *SidecarTransactionSigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SidecarTransactionSigner{
		client:         client,
		sponsorAddress: sponsorAddress,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignTransaction sends the encoded intent message to the sidecar and parses the returned signature
func (s *SidecarTransactionSigner) SignTransaction(ctx context.Context, payload intent.TransactionPayload) (*signature.Signature, error) {
	msg, err := encodeForSigning(payload)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.SignTransactionBytes(ctx, msg)
	if err != nil {
		if errors.Is(err, sidecar.ErrInvalidResponse) {
			return nil, wrapSigningError(ErrInvalidSignatureEncoding, err)
		}
		return nil, wrapSigningError(ErrNetwork, err)
	}

	sig, err := signature.FromBytes(resp)
	if err != nil {
		s.logger.Sugar().Warnw("Sidecar returned an unparseable signature",
			"sponsor", s.sponsorAddress.String(),
			"length", len(resp),
			"error", err,
		)
		return nil, wrapSigningError(ErrInvalidSignatureEncoding, err)
	}

	if s.metrics != nil {
		if err := sig.Verify(msg, s.sponsorAddress); err != nil {
			s.metrics.InvariantViolation(fmt.Sprintf("sidecar signature for sponsor %s does not verify: %v", s.sponsorAddress, err))
			return nil, wrapSigningError(ErrSignatureVerification, err)
		}
	}
	return sig, nil
}

// GetAddress returns the configured sponsor address
func (s *SidecarTransactionSigner) GetAddress() address.SponsorAddress {
	return s.sponsorAddress
}

// IsValidAddress reports whether candidate is the configured sponsor address
func (s *SidecarTransactionSigner) IsValidAddress(candidate address.SponsorAddress) bool {
	return candidate == s.sponsorAddress
}
