package transactionSigner

import (
	"context"
	"fmt"

	internalAws "github.com/Layr-Labs/gas-station-signer/internal/aws"
	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/clients/sidecar"
	"github.com/Layr-Labs/gas-station-signer/pkg/config"
	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/keystore"
	"github.com/Layr-Labs/gas-station-signer/pkg/metrics"
	"github.com/Layr-Labs/gas-station-signer/pkg/persistence"
	"github.com/Layr-Labs/gas-station-signer/pkg/persistence/badger"
	"github.com/Layr-Labs/gas-station-signer/pkg/persistence/memory"
	"github.com/Layr-Labs/gas-station-signer/pkg/persistence/redis"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"go.uber.org/zap"
)

// Dependencies are optional collaborators for NewTransactionSigner. Nil
// fields are built from configuration.
type Dependencies struct {
	Metrics   *metrics.SignerMetrics
	Journal   persistence.ISignaturePersistence
	KmsClient KmsAPI
}

// NewTransactionSigner builds the signer selected by cfg.Type, wrapped in a
// journal when one is configured.
func NewTransactionSigner(ctx context.Context, cfg *config.SignerConfig, deps *Dependencies, logger *zap.Logger) (ITransactionSigner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("signer config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signer config: %w", err)
	}
	if deps == nil {
		deps = &Dependencies{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var signer ITransactionSigner
	var err error
	switch cfg.Type {
	case config.SignerTypeSidecar:
		signer, err = newSidecarSignerFromConfig(cfg.Sidecar, deps, logger)
	case config.SignerTypeLocal:
		signer, err = newLocalSignerFromConfig(cfg.Local, logger)
	case config.SignerTypeKms:
		signer, err = newKmsSignerFromConfig(ctx, cfg.Kms, deps, logger)
	default:
		return nil, fmt.Errorf("unsupported signer type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	journal := deps.Journal
	ownsJournal := false
	if journal == nil && cfg.Journal != nil {
		journal, err = NewJournal(cfg.Journal, logger)
		if err != nil {
			return nil, err
		}
		ownsJournal = journal != nil
	}
	if journal != nil {
		js := NewJournalingTransactionSigner(signer, journal, cfg.Type.String(), logger)
		js.ownsJournal = ownsJournal
		signer = js
	}

	logger.Sugar().Infow("Transaction signer ready",
		"type", cfg.Type.String(),
		"sponsor", signer.GetAddress().String(),
		"journal", journal != nil,
	)
	return signer, nil
}

// NewJournal opens the journal backend named by cfg. Returns nil, nil when
// journaling is disabled.
func NewJournal(cfg *config.JournalConfig, logger *zap.Logger) (persistence.ISignaturePersistence, error) {
	switch cfg.Type {
	case config.JournalTypeNone:
		return nil, nil
	case config.JournalTypeMemory:
		return memory.NewMemoryPersistence(), nil
	case config.JournalTypeBadger:
		bp, err := badger.NewBadgerPersistence(cfg.DataPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger journal: %w", err)
		}
		return bp, nil
	case config.JournalTypeRedis:
		rp, err := redis.NewRedisPersistence(&redis.RedisConfig{
			Address:   cfg.RedisAddress,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis journal: %w", err)
		}
		return rp, nil
	default:
		return nil, fmt.Errorf("unsupported journal type: %s", cfg.Type)
	}
}

func newSidecarSignerFromConfig(cfg *config.SidecarSignerConfig, deps *Dependencies, logger *zap.Logger) (*SidecarTransactionSigner, error) {
	sponsor, err := address.Parse(cfg.SponsorAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid sponsor address: %w", err)
	}
	client, err := sidecar.NewClient(cfg.Url, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sidecar client: %w", err)
	}

	var opts []SidecarSignerOption
	if cfg.VerifyResponses {
		m := deps.Metrics
		if m == nil {
			m = metrics.DefaultSignerMetrics(logger)
		}
		opts = append(opts, WithResponseVerification(m))
	}
	return NewSidecarTransactionSigner(client, sponsor, logger, opts...), nil
}

func newLocalSignerFromConfig(cfg *config.LocalSignerConfig, logger *zap.Logger) (*InMemoryTransactionSigner, error) {
	keyPair, err := LoadLocalKeyPair(cfg)
	if err != nil {
		return nil, err
	}
	return NewInMemoryTransactionSigner(keyPair, logger), nil
}

// LoadLocalKeyPair resolves the key a local signer holds: the inline entry,
// or the keystore key matching SponsorAddress (first key when unset).
func LoadLocalKeyPair(cfg *config.LocalSignerConfig) (crypto.KeyPair, error) {
	var keyPair crypto.KeyPair
	if cfg.PrivateKey != "" {
		kp, err := crypto.ParseKeystoreEntry(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		keyPair = kp
	} else {
		ks, err := keystore.LoadFile(cfg.KeystorePath)
		if err != nil {
			return nil, err
		}
		if cfg.SponsorAddress == "" {
			keyPair, err = ks.Default()
		} else {
			var sponsor address.SponsorAddress
			sponsor, err = address.Parse(cfg.SponsorAddress)
			if err == nil {
				keyPair, err = ks.Get(sponsor)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if cfg.SponsorAddress == "" {
		return keyPair, nil
	}
	sponsor, err := address.Parse(cfg.SponsorAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid sponsor address: %w", err)
	}
	if keyPair.Address() != sponsor {
		return nil, fmt.Errorf("private key belongs to %s, not configured sponsor %s", keyPair.Address(), cfg.SponsorAddress)
	}
	return keyPair, nil
}

func newKmsSignerFromConfig(ctx context.Context, cfg *config.KmsSignerConfig, deps *Dependencies, logger *zap.Logger) (*KmsTransactionSigner, error) {
	client := deps.KmsClient
	if client == nil {
		awsCfg, err := internalAws.LoadAWSConfig(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = kms.NewFromConfig(awsCfg)
	}
	return NewKmsTransactionSigner(ctx, client, cfg.KeyId, logger)
}
