package crypto

import (
	"encoding/asn1"
	"fmt"
	"math/big"
)

// NormalizeLowS maps s to the lower half of the curve order. Both ECDSA
// schemes reject signatures with a high S value.
func NormalizeLowS(s *big.Int, curveOrder *big.Int) *big.Int {
	halfOrder := new(big.Int).Rsh(curveOrder, 1)
	if s.Cmp(halfOrder) > 0 {
		return new(big.Int).Sub(curveOrder, s)
	}
	return s
}

// PackSignature lays r and s out as two 32 byte big-endian integers.
func PackSignature(r, s *big.Int) []byte {
	out := make([]byte, 64)
	r.FillBytes(out[:32])
	s.FillBytes(out[32:])
	return out
}

// CompressPublicKey converts an uncompressed SEC1 point (0x04 || X || Y) into
// its 33 byte compressed form.
func CompressPublicKey(uncompressed []byte) ([]byte, error) {
	if len(uncompressed) != 65 || uncompressed[0] != 0x04 {
		return nil, fmt.Errorf("expected 65 byte uncompressed public key, got %d bytes", len(uncompressed))
	}
	out := make([]byte, 33)
	out[0] = 0x02 | (uncompressed[64] & 0x01)
	copy(out[1:], uncompressed[1:33])
	return out, nil
}

type asn1EcSig struct {
	R *big.Int
	S *big.Int
}

// ParseDERSignature extracts r and s from an ASN.1 DER ECDSA signature.
func ParseDERSignature(der []byte) (*big.Int, *big.Int, error) {
	var sig asn1EcSig
	rest, err := asn1.Unmarshal(der, &sig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse DER signature: %w", err)
	}
	if len(rest) != 0 {
		return nil, nil, fmt.Errorf("trailing bytes after DER signature")
	}
	if sig.R == nil || sig.S == nil || sig.R.Sign() <= 0 || sig.S.Sign() <= 0 {
		return nil, nil, fmt.Errorf("DER signature has non-positive components")
	}
	return sig.R, sig.S, nil
}

// MarshalDERSignature is the inverse of ParseDERSignature.
func MarshalDERSignature(r, s *big.Int) ([]byte, error) {
	return asn1.Marshal(asn1EcSig{R: r, S: s})
}

type asn1EcPublicKey struct {
	EcPublicKeyInfo asn1EcPublicKeyInfo
	PublicKey       asn1.BitString
}

type asn1EcPublicKeyInfo struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.ObjectIdentifier
}

var (
	oidNamedCurveSecp256k1 = asn1.ObjectIdentifier{1, 3, 132, 0, 10}
	oidNamedCurveP256      = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
)

// ParseSubjectPublicKeyInfo parses a DER SubjectPublicKeyInfo for an EC key
// and returns the curve name with the uncompressed point. x509 does not know
// secp256k1, so the structure is decoded by hand.
func ParseSubjectPublicKeyInfo(der []byte) (string, []byte, error) {
	var spki asn1EcPublicKey
	if _, err := asn1.Unmarshal(der, &spki); err != nil {
		return "", nil, fmt.Errorf("failed to parse ASN.1 public key: %w", err)
	}

	var curve string
	switch {
	case spki.EcPublicKeyInfo.Parameters.Equal(oidNamedCurveSecp256k1):
		curve = "secp256k1"
	case spki.EcPublicKeyInfo.Parameters.Equal(oidNamedCurveP256):
		curve = "secp256r1"
	default:
		return "", nil, fmt.Errorf("unsupported named curve %s", spki.EcPublicKeyInfo.Parameters)
	}
	return curve, spki.PublicKey.Bytes, nil
}

// MarshalSubjectPublicKeyInfo encodes an uncompressed EC point for the named
// curve. Used to emulate KMS responses.
func MarshalSubjectPublicKeyInfo(curve string, uncompressed []byte) ([]byte, error) {
	var params asn1.ObjectIdentifier
	switch curve {
	case "secp256k1":
		params = oidNamedCurveSecp256k1
	case "secp256r1":
		params = oidNamedCurveP256
	default:
		return nil, fmt.Errorf("unsupported curve %s", curve)
	}
	return asn1.Marshal(asn1EcPublicKey{
		EcPublicKeyInfo: asn1EcPublicKeyInfo{
			Algorithm:  asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1},
			Parameters: params,
		},
		PublicKey: asn1.BitString{Bytes: uncompressed, BitLength: len(uncompressed) * 8},
	})
}
