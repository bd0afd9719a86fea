package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SecretLength is the private key length for every supported scheme.
const SecretLength = 32

// KeyPair is an in-memory private key of one of the supported schemes.
type KeyPair interface {
	Scheme() signature.Scheme

	// PublicKey returns the public key in the form embedded in signatures.
	PublicKey() []byte

	Address() address.SponsorAddress

	// SignDigest signs an intent message digest.
	SignDigest(digest [32]byte) (*signature.Signature, error)

	// Secret returns the raw 32 byte private key.
	Secret() []byte
}

// GenerateKeyPair creates a fresh random key pair.
func GenerateKeyPair(scheme signature.Scheme) (KeyPair, error) {
	switch scheme {
	case signature.SchemeEd25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
		}
		return &Ed25519KeyPair{privateKey: priv}, nil
	case signature.SchemeSecp256k1:
		priv, err := ethcrypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate secp256k1 key: %w", err)
		}
		return &Secp256k1KeyPair{privateKey: priv}, nil
	case signature.SchemeSecp256r1:
		priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate secp256r1 key: %w", err)
		}
		return &Secp256r1KeyPair{privateKey: priv}, nil
	default:
		return nil, fmt.Errorf("unsupported signature scheme: %s", scheme)
	}
}

// KeyPairFromSecret rebuilds a key pair from its raw private key.
func KeyPairFromSecret(scheme signature.Scheme, secret []byte) (KeyPair, error) {
	if len(secret) != SecretLength {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", SecretLength, len(secret))
	}
	switch scheme {
	case signature.SchemeEd25519:
		return &Ed25519KeyPair{privateKey: ed25519.NewKeyFromSeed(secret)}, nil
	case signature.SchemeSecp256k1:
		priv, err := ethcrypto.ToECDSA(secret)
		if err != nil {
			return nil, fmt.Errorf("invalid secp256k1 private key: %w", err)
		}
		return &Secp256k1KeyPair{privateKey: priv}, nil
	case signature.SchemeSecp256r1:
		priv, err := p256FromSecret(secret)
		if err != nil {
			return nil, err
		}
		return &Secp256r1KeyPair{privateKey: priv}, nil
	default:
		return nil, fmt.Errorf("unsupported signature scheme: %s", scheme)
	}
}

// ParseKeystoreEntry decodes a keystore entry: base64(flag || private key).
func ParseKeystoreEntry(entry string) (KeyPair, error) {
	raw, err := base64.StdEncoding.DecodeString(entry)
	if err != nil {
		return nil, fmt.Errorf("keystore entry is not valid base64: %w", err)
	}
	if len(raw) != 1+SecretLength {
		return nil, fmt.Errorf("keystore entry must be %d bytes, got %d", 1+SecretLength, len(raw))
	}
	return KeyPairFromSecret(signature.Scheme(raw[0]), raw[1:])
}

// KeystoreEntry is the inverse of ParseKeystoreEntry.
func KeystoreEntry(kp KeyPair) string {
	raw := append([]byte{kp.Scheme().Flag()}, kp.Secret()...)
	return base64.StdEncoding.EncodeToString(raw)
}

type Ed25519KeyPair struct {
	privateKey ed25519.PrivateKey
}

func (k *Ed25519KeyPair) Scheme() signature.Scheme { return signature.SchemeEd25519 }

func (k *Ed25519KeyPair) PublicKey() []byte {
	return append([]byte{}, k.privateKey.Public().(ed25519.PublicKey)...)
}

func (k *Ed25519KeyPair) Address() address.SponsorAddress {
	return address.FromPublicKey(k.Scheme().Flag(), k.PublicKey())
}

func (k *Ed25519KeyPair) SignDigest(digest [32]byte) (*signature.Signature, error) {
	sig := ed25519.Sign(k.privateKey, digest[:])
	return signature.New(k.Scheme(), sig, k.PublicKey())
}

func (k *Ed25519KeyPair) Secret() []byte {
	return append([]byte{}, k.privateKey.Seed()...)
}

type Secp256k1KeyPair struct {
	privateKey *ecdsa.PrivateKey
}

func (k *Secp256k1KeyPair) Scheme() signature.Scheme { return signature.SchemeSecp256k1 }

func (k *Secp256k1KeyPair) PublicKey() []byte {
	return ethcrypto.CompressPubkey(&k.privateKey.PublicKey)
}

func (k *Secp256k1KeyPair) Address() address.SponsorAddress {
	return address.FromPublicKey(k.Scheme().Flag(), k.PublicKey())
}

// SignDigest signs SHA-256(digest). The recovery byte is dropped and the
// signature is already low-S.
func (k *Secp256k1KeyPair) SignDigest(digest [32]byte) (*signature.Signature, error) {
	hash := sha256.Sum256(digest[:])
	sig, err := ethcrypto.Sign(hash[:], k.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign with secp256k1 key: %w", err)
	}
	return signature.New(k.Scheme(), sig[:signature.SignatureLength], k.PublicKey())
}

func (k *Secp256k1KeyPair) Secret() []byte {
	return ethcrypto.FromECDSA(k.privateKey)
}

type Secp256r1KeyPair struct {
	privateKey *ecdsa.PrivateKey
}

func (k *Secp256r1KeyPair) Scheme() signature.Scheme { return signature.SchemeSecp256r1 }

func (k *Secp256r1KeyPair) PublicKey() []byte {
	return elliptic.MarshalCompressed(elliptic.P256(), k.privateKey.X, k.privateKey.Y)
}

func (k *Secp256r1KeyPair) Address() address.SponsorAddress {
	return address.FromPublicKey(k.Scheme().Flag(), k.PublicKey())
}

// SignDigest signs SHA-256(digest) and normalizes S to the lower half order.
func (k *Secp256r1KeyPair) SignDigest(digest [32]byte) (*signature.Signature, error) {
	hash := sha256.Sum256(digest[:])
	r, s, err := ecdsa.Sign(rand.Reader, k.privateKey, hash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign with secp256r1 key: %w", err)
	}
	s = NormalizeLowS(s, elliptic.P256().Params().N)
	return signature.New(k.Scheme(), PackSignature(r, s), k.PublicKey())
}

func (k *Secp256r1KeyPair) Secret() []byte {
	return k.privateKey.D.FillBytes(make([]byte, SecretLength))
}

func p256FromSecret(secret []byte) (*ecdsa.PrivateKey, error) {
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(secret)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, fmt.Errorf("invalid secp256r1 private key: scalar out of range")
	}
	priv := &ecdsa.PrivateKey{D: d}
	priv.PublicKey.Curve = curve
	priv.PublicKey.X, priv.PublicKey.Y = curve.ScalarBaseMult(secret)
	return priv, nil
}
