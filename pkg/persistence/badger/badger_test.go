package badger

import (
	"testing"

	"github.com/Layr-Labs/gas-station-signer/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var _ persistence.ISignaturePersistence = (*BadgerPersistence)(nil)

func newRecord(digest string, signedAt int64) *persistence.SignedTransactionRecord {
	return &persistence.SignedTransactionRecord{
		Id:        "id-" + digest,
		Digest:    digest,
		Scheme:    "secp256k1",
		Signature: "sig-" + digest,
		Signer:    "kms",
		SignedAt:  signedAt,
	}
}

func TestBadgerPersistence_SaveAndLoad(t *testing.T) {
	bp, err := NewBadgerPersistence(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = bp.Close() }()

	record := newRecord("aa", 10)
	require.NoError(t, bp.SaveSignedTransaction(record))

	loaded, err := bp.LoadSignedTransaction("aa")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record, loaded)
}

func TestBadgerPersistence_LoadNotFound(t *testing.T) {
	bp, err := NewBadgerPersistence(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = bp.Close() }()

	loaded, err := bp.LoadSignedTransaction("missing")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestBadgerPersistence_SaveNil(t *testing.T) {
	bp, err := NewBadgerPersistence(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = bp.Close() }()

	err = bp.SaveSignedTransaction(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil SignedTransactionRecord")
}

func TestBadgerPersistence_ListAndDelete(t *testing.T) {
	bp, err := NewBadgerPersistence(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = bp.Close() }()

	records, err := bp.ListSignedTransactions()
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, bp.SaveSignedTransaction(newRecord("cc", 30)))
	require.NoError(t, bp.SaveSignedTransaction(newRecord("aa", 20)))
	require.NoError(t, bp.SaveSignedTransaction(newRecord("bb", 10)))

	records, err = bp.ListSignedTransactions()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"bb", "aa", "cc"},
		[]string{records[0].Digest, records[1].Digest, records[2].Digest})

	require.NoError(t, bp.DeleteSignedTransaction("aa"))
	require.NoError(t, bp.DeleteSignedTransaction("aa"))

	records, err = bp.ListSignedTransactions()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestBadgerPersistence_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	logger := zaptest.NewLogger(t)

	bp, err := NewBadgerPersistence(dir, logger)
	require.NoError(t, err)
	require.NoError(t, bp.SaveSignedTransaction(newRecord("aa", 10)))
	require.NoError(t, bp.Close())

	reopened, err := NewBadgerPersistence(dir, logger)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadSignedTransaction("aa")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "kms", loaded.Signer)
}

func TestBadgerPersistence_Closed(t *testing.T) {
	bp, err := NewBadgerPersistence(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, bp.HealthCheck())

	require.NoError(t, bp.Close())
	require.NoError(t, bp.Close())

	assert.Error(t, bp.HealthCheck())
	assert.Error(t, bp.SaveSignedTransaction(newRecord("aa", 1)))
	_, err = bp.LoadSignedTransaction("aa")
	assert.Error(t, err)
	_, err = bp.ListSignedTransactions()
	assert.Error(t, err)
}
