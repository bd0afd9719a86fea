package redis

import (
	"os"
	"testing"

	"github.com/Layr-Labs/gas-station-signer/pkg/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var _ persistence.ISignaturePersistence = (*RedisPersistence)(nil)

// newTestPersistence connects to REDIS_TEST_ADDRESS with a unique key prefix
// so parallel runs do not collide.
func newTestPersistence(t *testing.T) *RedisPersistence {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDRESS not set")
	}

	rp, err := NewRedisPersistence(&RedisConfig{
		Address:   addr,
		KeyPrefix: "test-" + uuid.NewString() + ":",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rp.Close() })
	return rp
}

func newRecord(digest string, signedAt int64) *persistence.SignedTransactionRecord {
	return &persistence.SignedTransactionRecord{
		Id:        "id-" + digest,
		Digest:    digest,
		Scheme:    "secp256r1",
		Signature: "sig-" + digest,
		Signer:    "sidecar",
		SignedAt:  signedAt,
	}
}

func TestNewRedisPersistence_InvalidConfig(t *testing.T) {
	_, err := NewRedisPersistence(nil, zaptest.NewLogger(t))
	require.Error(t, err)

	_, err = NewRedisPersistence(&RedisConfig{}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address cannot be empty")
}

func TestRedisPersistence_SaveLoadListDelete(t *testing.T) {
	rp := newTestPersistence(t)

	loaded, err := rp.LoadSignedTransaction("aa")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, rp.SaveSignedTransaction(newRecord("bb", 20)))
	require.NoError(t, rp.SaveSignedTransaction(newRecord("aa", 10)))

	loaded, err = rp.LoadSignedTransaction("aa")
	require.NoError(t, err)
	assert.Equal(t, newRecord("aa", 10), loaded)

	records, err := rp.ListSignedTransactions()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "aa", records[0].Digest)
	assert.Equal(t, "bb", records[1].Digest)

	require.NoError(t, rp.DeleteSignedTransaction("aa"))
	records, err = rp.ListSignedTransactions()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRedisPersistence_Closed(t *testing.T) {
	rp := newTestPersistence(t)
	require.NoError(t, rp.HealthCheck())
	require.NoError(t, rp.Close())
	require.NoError(t, rp.Close())

	assert.Error(t, rp.HealthCheck())
	assert.Error(t, rp.SaveSignedTransaction(newRecord("aa", 1)))
}
