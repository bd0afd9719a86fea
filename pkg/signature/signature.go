package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
)

var (
	// ErrInvalidSignatureEncoding is returned when bytes do not describe a
	// signature of a supported scheme.
	ErrInvalidSignatureEncoding = errors.New("invalid signature encoding")

	// ErrVerificationFailed is returned when a well formed signature does not
	// verify for the given message and address.
	ErrVerificationFailed = errors.New("signature verification failed")
)

// Scheme is the flag byte that prefixes every serialized signature.
type Scheme byte

const (
	SchemeEd25519   Scheme = 0x00
	SchemeSecp256k1 Scheme = 0x01
	SchemeSecp256r1 Scheme = 0x02
)

const (
	// SignatureLength is the raw signature length for every supported scheme.
	SignatureLength = 64

	Ed25519PublicKeyLength = 32
	// ECDSA public keys are carried in compressed SEC1 form.
	CompressedPublicKeyLength = 33
)

func (s Scheme) String() string {
	switch s {
	case SchemeEd25519:
		return "ed25519"
	case SchemeSecp256k1:
		return "secp256k1"
	case SchemeSecp256r1:
		return "secp256r1"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(s))
	}
}

func (s Scheme) Flag() byte {
	return byte(s)
}

// PublicKeyLength returns the public key length carried by signatures of this
// scheme.
func (s Scheme) PublicKeyLength() (int, error) {
	switch s {
	case SchemeEd25519:
		return Ed25519PublicKeyLength, nil
	case SchemeSecp256k1, SchemeSecp256r1:
		return CompressedPublicKeyLength, nil
	default:
		return 0, fmt.Errorf("%w: unsupported scheme flag 0x%02x", ErrInvalidSignatureEncoding, byte(s))
	}
}

// ParseScheme maps a scheme name to its flag.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "ed25519":
		return SchemeEd25519, nil
	case "secp256k1":
		return SchemeSecp256k1, nil
	case "secp256r1":
		return SchemeSecp256r1, nil
	default:
		return 0, fmt.Errorf("unsupported signature scheme: %s", name)
	}
}

// Signature is a flag byte, a 64 byte signature and the signer's public key.
// That is everything a verifier needs besides the message and the address.
type Signature struct {
	Scheme    Scheme
	Signature []byte
	PublicKey []byte
}

// New validates component lengths and copies them.
func New(scheme Scheme, sig []byte, publicKey []byte) (*Signature, error) {
	pkLen, err := scheme.PublicKeyLength()
	if err != nil {
		return nil, err
	}
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("%w: %s signature must be %d bytes, got %d",
			ErrInvalidSignatureEncoding, scheme, SignatureLength, len(sig))
	}
	if len(publicKey) != pkLen {
		return nil, fmt.Errorf("%w: %s public key must be %d bytes, got %d",
			ErrInvalidSignatureEncoding, scheme, pkLen, len(publicKey))
	}
	return &Signature{
		Scheme:    scheme,
		Signature: append([]byte{}, sig...),
		PublicKey: append([]byte{}, publicKey...),
	}, nil
}

// Bytes serializes as flag || signature || public key.
func (s *Signature) Bytes() []byte {
	out := make([]byte, 0, 1+len(s.Signature)+len(s.PublicKey))
	out = append(out, s.Scheme.Flag())
	out = append(out, s.Signature...)
	out = append(out, s.PublicKey...)
	return out
}

// FromBytes is the inverse of Bytes.
func FromBytes(b []byte) (*Signature, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidSignatureEncoding)
	}
	scheme := Scheme(b[0])
	pkLen, err := scheme.PublicKeyLength()
	if err != nil {
		return nil, err
	}
	expected := 1 + SignatureLength + pkLen
	if len(b) != expected {
		return nil, fmt.Errorf("%w: %s signature must be %d bytes, got %d",
			ErrInvalidSignatureEncoding, scheme, expected, len(b))
	}
	return New(scheme, b[1:1+SignatureLength], b[1+SignatureLength:])
}

func (s *Signature) Base64() string {
	return base64.StdEncoding.EncodeToString(s.Bytes())
}

func FromBase64(encoded string) (*Signature, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureEncoding, err)
	}
	return FromBytes(raw)
}

func (s *Signature) Equal(other *Signature) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Scheme == other.Scheme &&
		bytes.Equal(s.Signature, other.Signature) &&
		bytes.Equal(s.PublicKey, other.PublicKey)
}

// Address is the address of the embedded public key.
func (s *Signature) Address() address.SponsorAddress {
	return address.FromPublicKey(s.Scheme.Flag(), s.PublicKey)
}

func (s *Signature) String() string {
	return s.Base64()
}
