package transactionSigner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Layr-Labs/gas-station-signer/pkg/config"
	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/keystore"
	"github.com/Layr-Labs/gas-station-signer/pkg/metrics"
	"github.com/Layr-Labs/gas-station-signer/pkg/persistence/memory"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"github.com/Layr-Labs/gas-station-signer/pkg/testutil"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func Test_NewTransactionSigner_Local(t *testing.T) {
	kp := testutil.FixedKeyPair(t, signature.SchemeEd25519)

	signer, err := NewTransactionSigner(context.Background(), &config.SignerConfig{
		Type:  config.SignerTypeLocal,
		Local: &config.LocalSignerConfig{PrivateKey: crypto.KeystoreEntry(kp)},
	}, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &InMemoryTransactionSigner{}, signer)
	assert.Equal(t, kp.Address(), signer.GetAddress())
}

func Test_NewTransactionSigner_LocalKeystore(t *testing.T) {
	first := testutil.RandomKeyPair(t, signature.SchemeEd25519)
	second := testutil.RandomKeyPair(t, signature.SchemeSecp256k1)
	ks := keystore.NewKeyStore()
	ks.Add(first)
	ks.Add(second)
	path := filepath.Join(t.TempDir(), "sui.keystore")
	require.NoError(t, ks.WriteFile(path))

	signer, err := NewTransactionSigner(context.Background(), &config.SignerConfig{
		Type:  config.SignerTypeLocal,
		Local: &config.LocalSignerConfig{KeystorePath: path},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Address(), signer.GetAddress())

	signer, err = NewTransactionSigner(context.Background(), &config.SignerConfig{
		Type:  config.SignerTypeLocal,
		Local: &config.LocalSignerConfig{KeystorePath: path, SponsorAddress: second.Address().String()},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, second.Address(), signer.GetAddress())

	_, err = NewTransactionSigner(context.Background(), &config.SignerConfig{
		Type: config.SignerTypeLocal,
		Local: &config.LocalSignerConfig{
			KeystorePath:   path,
			SponsorAddress: testutil.RandomKeyPair(t, signature.SchemeEd25519).Address().String(),
		},
	}, nil, nil)
	require.Error(t, err)
}

func Test_NewTransactionSigner_LocalSponsorMismatch(t *testing.T) {
	kp := testutil.FixedKeyPair(t, signature.SchemeEd25519)
	other := testutil.FixedKeyPair(t, signature.SchemeSecp256k1)

	_, err := NewTransactionSigner(context.Background(), &config.SignerConfig{
		Type: config.SignerTypeLocal,
		Local: &config.LocalSignerConfig{
			PrivateKey:     crypto.KeystoreEntry(kp),
			SponsorAddress: other.Address().String(),
		},
	}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured sponsor")
}

func Test_NewTransactionSigner_SidecarWithJournal(t *testing.T) {
	kp := testutil.FixedKeyPair(t, signature.SchemeSecp256k1)
	mock := testutil.NewMockSidecar(kp)
	defer mock.Close()

	journal := memory.NewMemoryPersistence()
	deps := &Dependencies{
		Metrics: metrics.NewSignerMetricsForTesting(zap.NewNop(), metrics.WithFailFast(false)),
		Journal: journal,
	}

	signer, err := NewTransactionSigner(context.Background(), &config.SignerConfig{
		Type: config.SignerTypeSidecar,
		Sidecar: &config.SidecarSignerConfig{
			Url:             mock.URL(),
			SponsorAddress:  kp.Address().String(),
			VerifyResponses: true,
		},
	}, deps, zaptest.NewLogger(t))
	require.NoError(t, err)

	journaling, ok := signer.(*JournalingTransactionSigner)
	require.True(t, ok)
	assert.IsType(t, &SidecarTransactionSigner{}, journaling.Unwrap())

	_, err = signer.SignTransaction(context.Background(), testutil.SampleTransaction())
	require.NoError(t, err)

	records, err := journal.ListSignedTransactions()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sidecar", records[0].Signer)
}

func Test_NewTransactionSigner_Kms(t *testing.T) {
	fake := testutil.NewFakeKms()
	keyId, err := fake.AddKey(types.KeySpecEccNistP256)
	require.NoError(t, err)

	signer, err := NewTransactionSigner(context.Background(), &config.SignerConfig{
		Type: config.SignerTypeKms,
		Kms:  &config.KmsSignerConfig{KeyId: keyId, Region: "us-east-1"},
		Journal: &config.JournalConfig{
			Type:     config.JournalTypeBadger,
			DataPath: t.TempDir(),
		},
	}, &Dependencies{KmsClient: fake}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, ok := signer.(*JournalingTransactionSigner)
	require.True(t, ok)
	defer func() { _ = Close(signer) }()

	sig, err := signer.SignTransaction(context.Background(), testutil.SampleTransaction())
	require.NoError(t, err)
	assert.Equal(t, signature.SchemeSecp256r1, sig.Scheme)
}

func Test_NewTransactionSigner_InvalidConfig(t *testing.T) {
	_, err := NewTransactionSigner(context.Background(), nil, nil, nil)
	require.Error(t, err)

	_, err = NewTransactionSigner(context.Background(), &config.SignerConfig{Type: "hsm"}, nil, nil)
	require.Error(t, err)

	_, err = NewTransactionSigner(context.Background(), &config.SignerConfig{
		Type:    config.SignerTypeSidecar,
		Sidecar: &config.SidecarSignerConfig{Url: "ftp://nope", SponsorAddress: "0x1"},
	}, nil, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNetwork))
}

func Test_NewJournal(t *testing.T) {
	j, err := NewJournal(&config.JournalConfig{Type: config.JournalTypeNone}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, j)

	j, err = NewJournal(&config.JournalConfig{Type: config.JournalTypeMemory}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, j)
	require.NoError(t, j.HealthCheck())

	_, err = NewJournal(&config.JournalConfig{Type: "sqlite"}, zap.NewNop())
	require.Error(t, err)
}

func Test_NewTransactionSigner_VerifyingSidecarWithoutMetrics(t *testing.T) {
	kp := testutil.FixedKeyPair(t, signature.SchemeEd25519)
	mock := testutil.NewMockSidecar(kp)
	defer mock.Close()

	cfg := &config.SignerConfig{
		Type: config.SignerTypeSidecar,
		Sidecar: &config.SidecarSignerConfig{
			Url:             mock.URL(),
			SponsorAddress:  kp.Address().String(),
			VerifyResponses: true,
		},
	}

	for i := 0; i < 2; i++ {
		var signer ITransactionSigner
		require.NotPanics(t, func() {
			var err error
			signer, err = NewTransactionSigner(context.Background(), cfg, nil, zaptest.NewLogger(t))
			require.NoError(t, err)
		})
		sig, err := signer.SignTransaction(context.Background(), testutil.SampleTransaction())
		require.NoError(t, err)
		assert.Equal(t, signature.SchemeEd25519, sig.Scheme)
	}
}

func Test_NewTransactionSigner_ClosesOwnedJournal(t *testing.T) {
	kp := testutil.FixedKeyPair(t, signature.SchemeSecp256k1)
	dataPath := t.TempDir()
	cfg := &config.SignerConfig{
		Type:    config.SignerTypeLocal,
		Local:   &config.LocalSignerConfig{PrivateKey: crypto.KeystoreEntry(kp)},
		Journal: &config.JournalConfig{Type: config.JournalTypeBadger, DataPath: dataPath},
	}

	// the badger directory lock must be released for the second open to succeed
	for i := 0; i < 2; i++ {
		signer, err := NewTransactionSigner(context.Background(), cfg, nil, zaptest.NewLogger(t))
		require.NoError(t, err)

		_, err = signer.SignTransaction(context.Background(), testutil.SampleTransaction())
		require.NoError(t, err)
		require.NoError(t, Close(signer))
	}

	journal, err := NewJournal(cfg.Journal, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = journal.Close() }()

	records, err := journal.ListSignedTransactions()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, kp.Address().String(), records[0].SponsorAddress)
}

func Test_NewTransactionSigner_KeepsSuppliedJournalOpen(t *testing.T) {
	kp := testutil.FixedKeyPair(t, signature.SchemeEd25519)
	journal := memory.NewMemoryPersistence()

	signer, err := NewTransactionSigner(context.Background(), &config.SignerConfig{
		Type:  config.SignerTypeLocal,
		Local: &config.LocalSignerConfig{PrivateKey: crypto.KeystoreEntry(kp)},
	}, &Dependencies{Journal: journal}, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, Close(signer))
	require.NoError(t, journal.HealthCheck())
}

func Test_Close_SignerWithoutResources(t *testing.T) {
	signer := NewInMemoryTransactionSigner(testutil.FixedKeyPair(t, signature.SchemeEd25519), nil)
	require.NoError(t, Close(signer))
}

func Test_LoadLocalKeyPair_InvalidSponsorAddress(t *testing.T) {
	kp := testutil.FixedKeyPair(t, signature.SchemeEd25519)

	var err error
	require.NotPanics(t, func() {
		_, err = LoadLocalKeyPair(&config.LocalSignerConfig{
			PrivateKey:     crypto.KeystoreEntry(kp),
			SponsorAddress: "0xnot-an-address",
		})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sponsor address")
}
