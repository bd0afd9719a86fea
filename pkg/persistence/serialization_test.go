package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedTransactionRecordSerialization(t *testing.T) {
	record := &SignedTransactionRecord{
		Id:             "3b7c6e2a-9b0f-4a55-8a7e-0d6a0c1f2e11",
		Digest:         "ab01",
		SponsorAddress: "0x" + "11223344556677889900aabbccddeeff11223344556677889900aabbccddeeff",
		Scheme:         "ed25519",
		Signature:      "AAEC",
		Signer:         "local",
		SignedAt:       1700000000000,
	}

	data, err := MarshalSignedTransactionRecord(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sponsorAddress"`)
	assert.Contains(t, string(data), `"signedAt":1700000000000`)

	decoded, err := UnmarshalSignedTransactionRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestSignedTransactionRecordSerialization_Errors(t *testing.T) {
	_, err := MarshalSignedTransactionRecord(nil)
	require.Error(t, err)

	_, err = UnmarshalSignedTransactionRecord(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty data")

	_, err = UnmarshalSignedTransactionRecord([]byte("{not json"))
	require.Error(t, err)
}

func TestSignedTransactionRecord_Validate(t *testing.T) {
	assert.Error(t, (&SignedTransactionRecord{Signature: "AA"}).Validate())
	assert.Error(t, (&SignedTransactionRecord{Digest: "ab"}).Validate())
	assert.NoError(t, (&SignedTransactionRecord{Digest: "ab", Signature: "AA"}).Validate())
}

func TestSignedTransactionRecord_CopyIsIndependent(t *testing.T) {
	original := &SignedTransactionRecord{Digest: "ab", Signature: "AA", Signer: "local"}
	c := original.Copy()
	c.Signer = "kms"
	assert.Equal(t, "local", original.Signer)
}
