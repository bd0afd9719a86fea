package transactionSigner

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	"github.com/Layr-Labs/gas-station-signer/pkg/persistence"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JournalingTransactionSigner records every signature the wrapped signer
// produces. The journal is an audit trail: a failed write is logged and the
// signature is still returned.
type JournalingTransactionSigner struct {
	inner   ITransactionSigner
	journal persistence.ISignaturePersistence
	name    string
	logger  *zap.Logger
	now     func() time.Time

	// ownsJournal is set when the factory opened the journal
	ownsJournal bool
}

var _ ITransactionSigner = (*JournalingTransactionSigner)(nil)

// NewJournalingTransactionSigner wraps inner. name identifies the backend in
// journal records.
func NewJournalingTransactionSigner(inner ITransactionSigner, journal persistence.ISignaturePersistence, name string, logger *zap.Logger) *JournalingTransactionSigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalingTransactionSigner{
		inner:   inner,
		journal: journal,
		name:    name,
		logger:  logger,
		now:     time.Now,
	}
}

// SignTransaction signs with the wrapped signer and journals the result.
func (j *JournalingTransactionSigner) SignTransaction(ctx context.Context, payload intent.TransactionPayload) (*signature.Signature, error) {
	sig, err := j.inner.SignTransaction(ctx, payload)
	if err != nil {
		return nil, err
	}

	// the payload already encoded once inside the signer, so this cannot fail
	msg, err := intent.WrapAndEncode(payload)
	if err != nil {
		j.logger.Sugar().Errorw("Failed to re-encode signed payload for journal", "error", err)
		return sig, nil
	}
	digest := msg.Digest()

	record := &persistence.SignedTransactionRecord{
		Id:             uuid.New().String(),
		Digest:         hex.EncodeToString(digest[:]),
		SponsorAddress: j.inner.GetAddress().String(),
		Scheme:         sig.Scheme.String(),
		Signature:      sig.Base64(),
		Signer:         j.name,
		SignedAt:       j.now().UnixMilli(),
	}
	if err := j.journal.SaveSignedTransaction(record); err != nil {
		j.logger.Sugar().Errorw("Failed to journal signed transaction",
			"digest", record.Digest,
			"sponsor", record.SponsorAddress,
			"error", err,
		)
	}
	return sig, nil
}

// GetAddress returns the wrapped signer address
func (j *JournalingTransactionSigner) GetAddress() address.SponsorAddress {
	return j.inner.GetAddress()
}

// IsValidAddress defers to the wrapped signer
func (j *JournalingTransactionSigner) IsValidAddress(candidate address.SponsorAddress) bool {
	return j.inner.IsValidAddress(candidate)
}

// Unwrap returns the wrapped signer.
func (j *JournalingTransactionSigner) Unwrap() ITransactionSigner {
	return j.inner
}

// Close closes the journal if this signer opened it. A journal supplied by
// the caller stays open and remains the caller's to close.
func (j *JournalingTransactionSigner) Close() error {
	if !j.ownsJournal {
		return nil
	}
	return j.journal.Close()
}
