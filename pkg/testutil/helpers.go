package testutil

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
)

// AllSchemes lists every supported signature scheme.
var AllSchemes = []signature.Scheme{
	signature.SchemeEd25519,
	signature.SchemeSecp256k1,
	signature.SchemeSecp256r1,
}

// fixedSecret is a valid private key for all three schemes.
var fixedSecret = bytes.Repeat([]byte{0x2a}, crypto.SecretLength)

// FixedKeyPair returns the same key pair for a scheme on every call.
func FixedKeyPair(t *testing.T, scheme signature.Scheme) crypto.KeyPair {
	t.Helper()
	kp, err := crypto.KeyPairFromSecret(scheme, fixedSecret)
	if err != nil {
		t.Fatalf("Failed to build fixed %s key pair: %v", scheme, err)
	}
	return kp
}

// RandomKeyPair returns a freshly generated key pair.
func RandomKeyPair(t *testing.T, scheme signature.Scheme) crypto.KeyPair {
	t.Helper()
	kp, err := crypto.GenerateKeyPair(scheme)
	if err != nil {
		t.Fatalf("Failed to generate %s key pair: %v", scheme, err)
	}
	return kp
}

// SampleTransaction returns an opaque BCS payload. The contents are never
// interpreted, only signed.
func SampleTransaction() intent.RawTransaction {
	return intent.RawTransaction{
		0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06,
		0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e,
		0x0f, 0x10, 0xde, 0xad, 0xbe, 0xef, 0xca, 0xfe,
	}
}

var errUnserializable = errors.New("payload contains a value with no BCS form")

// UnserializablePayload always fails to encode.
type UnserializablePayload struct{}

func (UnserializablePayload) MarshalBCS() ([]byte, error) {
	return nil, errUnserializable
}
