package localKeyGenerator

import (
	"context"
	"fmt"
	"sync"

	"github.com/Layr-Labs/gas-station-signer/internal/keyGenerator"
	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type keyEntry struct {
	keyPair   crypto.KeyPair
	aliasName string
}

// LocalKeyGenerator generates sponsor keys in memory. The caller persists them
// with KeyPair, usually into a keystore file.
type LocalKeyGenerator struct {
	logger   *zap.Logger
	keyStore map[string]*keyEntry // keyId -> keyEntry
	mu       sync.RWMutex
}

var _ keyGenerator.IKeyGenerator = (*LocalKeyGenerator)(nil)

func NewLocalKeyGenerator(logger *zap.Logger) *LocalKeyGenerator {
	return &LocalKeyGenerator{
		logger:   logger,
		keyStore: make(map[string]*keyEntry),
	}
}

func (l *LocalKeyGenerator) GenerateKey(ctx context.Context, scheme signature.Scheme, aliasName string) (*keyGenerator.GeneratedKey, error) {
	kp, err := crypto.GenerateKeyPair(scheme)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s key: %w", scheme, err)
	}

	keyId := fmt.Sprintf("local-key-%s", uuid.New().String())

	l.mu.Lock()
	l.keyStore[keyId] = &keyEntry{
		keyPair:   kp,
		aliasName: aliasName,
	}
	l.mu.Unlock()

	l.logger.Info("Generated local sponsor key",
		zap.String("scheme", scheme.String()),
		zap.String("aliasName", aliasName),
		zap.String("keyId", keyId),
		zap.String("address", kp.Address().String()),
	)

	return toGeneratedKey(keyId, kp), nil
}

func (l *LocalKeyGenerator) GetKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedKey, error) {
	kp, err := l.KeyPair(keyId)
	if err != nil {
		return nil, err
	}
	return toGeneratedKey(keyId, kp), nil
}

// KeyPair returns the private key for keyId.
func (l *LocalKeyGenerator) KeyPair(keyId string) (crypto.KeyPair, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, exists := l.keyStore[keyId]
	if !exists {
		return nil, fmt.Errorf("key with ID %s not found", keyId)
	}
	return entry.keyPair, nil
}

// ListKeys returns all key IDs
func (l *LocalKeyGenerator) ListKeys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.keyStore))
	for keyId := range l.keyStore {
		keys = append(keys, keyId)
	}
	return keys
}

func toGeneratedKey(keyId string, kp crypto.KeyPair) *keyGenerator.GeneratedKey {
	return &keyGenerator.GeneratedKey{
		Scheme:    kp.Scheme(),
		PublicKey: kp.PublicKey(),
		Address:   kp.Address(),
		KeyId:     keyId,
	}
}
