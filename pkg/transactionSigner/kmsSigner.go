package transactionSigner

import (
	"context"
	"crypto/elliptic"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// KmsAPI is the subset of the AWS KMS client the signer uses.
type KmsAPI interface {
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
}

var _ KmsAPI = (*kms.Client)(nil)

// KmsTransactionSigner signs with an asymmetric AWS KMS key. KMS has no
// ed25519 signing keys, so only the two ECDSA schemes are supported.
type KmsTransactionSigner struct {
	client     KmsAPI
	keyId      string
	scheme     signature.Scheme
	publicKey  []byte
	address    address.SponsorAddress
	curveOrder *big.Int
	logger     *zap.Logger
}

var _ ITransactionSigner = (*KmsTransactionSigner)(nil)

// NewKmsTransactionSigner fetches the public key of keyId once. The sponsor
// address is fixed from then on.
func NewKmsTransactionSigner(ctx context.Context, client KmsAPI, keyId string, logger *zap.Logger) (*KmsTransactionSigner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	out, err := client.GetPublicKey(ctx, &kms.GetPublicKeyInput{KeyId: aws.String(keyId)})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for KMS key %s", keyId)
	}
	if out.KeyUsage != types.KeyUsageTypeSignVerify {
		return nil, fmt.Errorf("KMS key %s has usage %s, expected %s", keyId, out.KeyUsage, types.KeyUsageTypeSignVerify)
	}

	var scheme signature.Scheme
	var curveOrder *big.Int
	switch out.KeySpec {
	case types.KeySpecEccSecgP256k1:
		scheme = signature.SchemeSecp256k1
		curveOrder = ethcrypto.S256().Params().N
	case types.KeySpecEccNistP256:
		scheme = signature.SchemeSecp256r1
		curveOrder = elliptic.P256().Params().N
	default:
		return nil, fmt.Errorf("KMS key %s has unsupported key spec %s", keyId, out.KeySpec)
	}

	curve, uncompressed, err := crypto.ParseSubjectPublicKeyInfo(out.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse public key for KMS key %s", keyId)
	}
	if curve != scheme.String() {
		return nil, fmt.Errorf("KMS key %s public key is on %s, key spec says %s", keyId, curve, scheme)
	}
	compressed, err := crypto.CompressPublicKey(uncompressed)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compress public key for KMS key %s", keyId)
	}

	s := &KmsTransactionSigner{
		client:     client,
		keyId:      keyId,
		scheme:     scheme,
		publicKey:  compressed,
		address:    address.FromPublicKey(scheme.Flag(), compressed),
		curveOrder: curveOrder,
		logger:     logger,
	}
	logger.Sugar().Infow("KMS signer initialized",
		"keyId", keyId,
		"scheme", scheme.String(),
		"sponsor", s.address.String(),
	)
	return s, nil
}

// SignTransaction signs the intent message digest with the KMS key
func (s *KmsTransactionSigner) SignTransaction(ctx context.Context, payload intent.TransactionPayload) (*signature.Signature, error) {
	msg, err := encodeForSigning(payload)
	if err != nil {
		return nil, err
	}
	return s.SignEncodedMessage(ctx, msg)
}

// SignEncodedMessage signs an already encoded intent message.
func (s *KmsTransactionSigner) SignEncodedMessage(ctx context.Context, msg intent.EncodedMessage) (*signature.Signature, error) {
	digest := msg.Digest()
	hash := sha256.Sum256(digest[:])

	out, err := s.client.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(s.keyId),
		Message:          hash[:],
		MessageType:      types.MessageTypeDigest,
		SigningAlgorithm: types.SigningAlgorithmSpecEcdsaSha256,
	})
	if err != nil {
		return nil, wrapSigningError(ErrKeyCustody, errors.Wrapf(err, "failed to sign with KMS key %s", s.keyId))
	}

	r, sv, err := crypto.ParseDERSignature(out.Signature)
	if err != nil {
		return nil, wrapSigningError(ErrInvalidSignatureEncoding, err)
	}
	sv = crypto.NormalizeLowS(sv, s.curveOrder)

	sig, err := signature.New(s.scheme, crypto.PackSignature(r, sv), s.publicKey)
	if err != nil {
		return nil, wrapSigningError(ErrInvalidSignatureEncoding, err)
	}
	if err := sig.VerifyDigest(digest); err != nil {
		return nil, wrapSigningError(ErrSignatureVerification, errors.Wrapf(err, "KMS key %s", s.keyId))
	}
	return sig, nil
}

// GetAddress returns the address derived from the KMS public key
func (s *KmsTransactionSigner) GetAddress() address.SponsorAddress {
	return s.address
}

// IsValidAddress reports whether candidate is the KMS key address
func (s *KmsTransactionSigner) IsValidAddress(candidate address.SponsorAddress) bool {
	return candidate == s.address
}

// Scheme returns the scheme backing the KMS key
func (s *KmsTransactionSigner) Scheme() signature.Scheme {
	return s.scheme
}
