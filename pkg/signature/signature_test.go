package signature_test

import (
	"bytes"
	"crypto/elliptic"
	"math/big"
	"testing"

	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Signature_RoundTrip(t *testing.T) {
	msg, err := intent.WrapAndEncode(intent.RawTransaction{1, 2, 3, 4})
	require.NoError(t, err)

	for _, scheme := range []signature.Scheme{
		signature.SchemeEd25519,
		signature.SchemeSecp256k1,
		signature.SchemeSecp256r1,
	} {
		t.Run(scheme.String(), func(t *testing.T) {
			kp, err := crypto.GenerateKeyPair(scheme)
			require.NoError(t, err)

			sig, err := kp.SignDigest(msg.Digest())
			require.NoError(t, err)

			raw := sig.Bytes()
			assert.Equal(t, scheme.Flag(), raw[0])

			decoded, err := signature.FromBytes(raw)
			require.NoError(t, err)
			assert.True(t, sig.Equal(decoded))
			assert.Equal(t, raw, decoded.Bytes())

			fromB64, err := signature.FromBase64(sig.Base64())
			require.NoError(t, err)
			assert.True(t, sig.Equal(fromB64))

			assert.Equal(t, kp.Address(), decoded.Address())
			require.NoError(t, decoded.Verify(msg, kp.Address()))
		})
	}
}

func Test_FromBytes_Invalid(t *testing.T) {
	valid := append([]byte{0x00}, bytes.Repeat([]byte{7}, 64+32)...)
	_, err := signature.FromBytes(valid)
	require.NoError(t, err)

	cases := map[string][]byte{
		"empty":                  {},
		"flag only":              {0x00},
		"unknown flag":           append([]byte{0x09}, valid[1:]...),
		"multisig flag":          append([]byte{0x03}, valid[1:]...),
		"ed25519 too short":      valid[:len(valid)-1],
		"ed25519 too long":       append(append([]byte{}, valid...), 0x00),
		"secp256k1 ed25519 size": append([]byte{0x01}, valid[1:]...),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			sig, err := signature.FromBytes(input)
			assert.Nil(t, sig)
			assert.ErrorIs(t, err, signature.ErrInvalidSignatureEncoding)
		})
	}

	_, err = signature.FromBase64("%%%")
	assert.ErrorIs(t, err, signature.ErrInvalidSignatureEncoding)
}

func Test_New_ValidatesLengths(t *testing.T) {
	_, err := signature.New(signature.SchemeSecp256k1, make([]byte, 64), make([]byte, 32))
	assert.ErrorIs(t, err, signature.ErrInvalidSignatureEncoding)

	_, err = signature.New(signature.SchemeEd25519, make([]byte, 63), make([]byte, 32))
	assert.ErrorIs(t, err, signature.ErrInvalidSignatureEncoding)

	sig, err := signature.New(signature.SchemeSecp256r1, make([]byte, 64), make([]byte, 33))
	require.NoError(t, err)
	assert.Len(t, sig.Bytes(), 98)
}

func Test_Verify_HighS_Rejected(t *testing.T) {
	msg, err := intent.WrapAndEncode(intent.RawTransaction{5})
	require.NoError(t, err)

	kp, err := crypto.GenerateKeyPair(signature.SchemeSecp256r1)
	require.NoError(t, err)
	sig, err := kp.SignDigest(msg.Digest())
	require.NoError(t, err)

	// flip S into the upper half of the order: s' = n - s
	n := elliptic.P256().Params().N
	s := new(big.Int).SetBytes(sig.Signature[32:])
	highS := new(big.Int).Sub(n, s)
	highS.FillBytes(sig.Signature[32:])

	assert.ErrorIs(t, sig.Verify(msg, kp.Address()), signature.ErrVerificationFailed)
}

func Test_ParseScheme(t *testing.T) {
	for _, name := range []string{"ed25519", "secp256k1", "secp256r1"} {
		scheme, err := signature.ParseScheme(name)
		require.NoError(t, err)
		assert.Equal(t, name, scheme.String())
	}
	_, err := signature.ParseScheme("bls12381")
	assert.Error(t, err)
	assert.Contains(t, signature.Scheme(0x07).String(), "unknown")
}

func Test_VerifyDigest_MalformedComponents(t *testing.T) {
	var digest [32]byte
	tests := []struct {
		name string
		sig  *signature.Signature
	}{
		{"ed25519 short public key", &signature.Signature{Scheme: signature.SchemeEd25519, Signature: make([]byte, 64), PublicKey: make([]byte, 5)}},
		{"ed25519 short signature", &signature.Signature{Scheme: signature.SchemeEd25519, Signature: make([]byte, 10), PublicKey: make([]byte, 32)}},
		{"secp256k1 empty", &signature.Signature{Scheme: signature.SchemeSecp256k1}},
		{"secp256r1 short signature", &signature.Signature{Scheme: signature.SchemeSecp256r1, Signature: make([]byte, 16), PublicKey: make([]byte, 33)}},
		{"unknown scheme", &signature.Signature{Scheme: signature.Scheme(0x05), Signature: make([]byte, 64), PublicKey: make([]byte, 32)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				err = tt.sig.VerifyDigest(digest)
			})
			require.ErrorIs(t, err, signature.ErrVerificationFailed)
		})
	}
}
