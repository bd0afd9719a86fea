package signature

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var p256HalfOrder = new(big.Int).Rsh(elliptic.P256().Params().N, 1)

// Verify checks that the signature was produced over msg by the key behind addr.
func (s *Signature) Verify(msg intent.EncodedMessage, addr address.SponsorAddress) error {
	if s.Address() != addr {
		return fmt.Errorf("%w: public key belongs to %s, not %s", ErrVerificationFailed, s.Address(), addr)
	}
	digest := msg.Digest()
	return s.VerifyDigest(digest)
}

// VerifyDigest checks the signature over an intent message digest.
func (s *Signature) VerifyDigest(digest [32]byte) error {
	pkLen, err := s.Scheme.PublicKeyLength()
	if err != nil {
		return fmt.Errorf("%w: unsupported scheme %s", ErrVerificationFailed, s.Scheme)
	}
	if len(s.Signature) != SignatureLength || len(s.PublicKey) != pkLen {
		return fmt.Errorf("%w: %s signature and public key must be %d and %d bytes, got %d and %d",
			ErrVerificationFailed, s.Scheme, SignatureLength, pkLen, len(s.Signature), len(s.PublicKey))
	}

	switch s.Scheme {
	case SchemeEd25519:
		if !ed25519.Verify(ed25519.PublicKey(s.PublicKey), digest[:], s.Signature) {
			return fmt.Errorf("%w: invalid ed25519 signature", ErrVerificationFailed)
		}
		return nil
	case SchemeSecp256k1:
		hash := sha256.Sum256(digest[:])
		// rejects high-S signatures
		if !ethcrypto.VerifySignature(s.PublicKey, hash[:], s.Signature) {
			return fmt.Errorf("%w: invalid secp256k1 signature", ErrVerificationFailed)
		}
		return nil
	case SchemeSecp256r1:
		return verifySecp256r1(s.PublicKey, digest, s.Signature)
	default:
		return fmt.Errorf("%w: unsupported scheme %s", ErrVerificationFailed, s.Scheme)
	}
}

func verifySecp256r1(publicKey []byte, digest [32]byte, sig []byte) error {
	x, y := elliptic.UnmarshalCompressed(elliptic.P256(), publicKey)
	if x == nil {
		return fmt.Errorf("%w: invalid secp256r1 public key", ErrVerificationFailed)
	}
	r := new(big.Int).SetBytes(sig[:32])
	sv := new(big.Int).SetBytes(sig[32:])
	if sv.Cmp(p256HalfOrder) > 0 {
		return fmt.Errorf("%w: secp256r1 signature is not in low-S form", ErrVerificationFailed)
	}

	hash := sha256.Sum256(digest[:])
	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
	if !ecdsa.Verify(pub, hash[:], r, sv) {
		return fmt.Errorf("%w: invalid secp256r1 signature", ErrVerificationFailed)
	}
	return nil
}
