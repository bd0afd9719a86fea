package keystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, scheme signature.Scheme) crypto.KeyPair {
	t.Helper()
	kp, err := crypto.GenerateKeyPair(scheme)
	require.NoError(t, err)
	return kp
}

func TestKeyStore_WriteAndLoad(t *testing.T) {
	ks := NewKeyStore()
	ed := generate(t, signature.SchemeEd25519)
	k1 := generate(t, signature.SchemeSecp256k1)
	r1 := generate(t, signature.SchemeSecp256r1)
	ks.Add(ed)
	ks.Add(k1)
	ks.Add(r1)
	ks.Add(ed)
	require.Equal(t, 3, ks.Len())

	path := filepath.Join(t.TempDir(), "sui.keystore")
	require.NoError(t, ks.WriteFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []address.SponsorAddress{ed.Address(), k1.Address(), r1.Address()}, loaded.Addresses())

	def, err := loaded.Default()
	require.NoError(t, err)
	assert.Equal(t, ed.Address(), def.Address())

	got, err := loaded.Get(r1.Address())
	require.NoError(t, err)
	assert.Equal(t, r1.Secret(), got.Secret())
	assert.Equal(t, signature.SchemeSecp256r1, got.Scheme())
}

func TestKeyStore_Errors(t *testing.T) {
	_, err := Parse([]byte(`{"not":"an array"}`))
	require.Error(t, err)

	_, err = Parse([]byte(`["not base64!"]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 0")

	ks, err := Parse([]byte(`[]`))
	require.NoError(t, err)
	_, err = ks.Default()
	require.Error(t, err)

	_, err = ks.Get(address.SponsorAddress{1})
	require.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
