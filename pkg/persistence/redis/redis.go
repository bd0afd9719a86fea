package redis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Layr-Labs/gas-station-signer/pkg/persistence"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixSignedTx    = "signer:signedtx:"
	keySchemaVersion     = "signer:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Redis has no native prefix iteration, so listing goes through an index set
	keySetSignedTxs = "signer:signedtx:index"
)

// RedisPersistence keeps the signing journal in Redis so that several gas
// station replicas sharing one sponsor can audit into one place.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address  string
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is prepended to every key, e.g. "station-a:" gives
	// "station-a:signer:signedtx:<digest>".
	KeyPrefix string
}

func NewRedisPersistence(cfg *RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis signing journal initialized",
		"address", cfg.Address,
		"db", cfg.DB,
		"keyPrefix", cfg.KeyPrefix,
	)
	return rp, nil
}

func (r *RedisPersistence) prefixKey(key string) string {
	return r.keyPrefix + key
}

func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}
	return nil
}

func (r *RedisPersistence) SaveSignedTransaction(record *persistence.SignedTransactionRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil SignedTransactionRecord")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	data, err := persistence.MarshalSignedTransactionRecord(record)
	if err != nil {
		return fmt.Errorf("failed to marshal SignedTransactionRecord: %w", err)
	}

	ctx := context.Background()
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.prefixKey(keyPrefixSignedTx+record.Digest), data, 0)
	pipe.SAdd(ctx, r.prefixKey(keySetSignedTxs), record.Digest)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save SignedTransactionRecord: %w", err)
	}
	return nil
}

func (r *RedisPersistence) LoadSignedTransaction(digest string) (*persistence.SignedTransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	data, err := r.client.Get(context.Background(), r.prefixKey(keyPrefixSignedTx+digest)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load SignedTransactionRecord: %w", err)
	}

	record, err := persistence.UnmarshalSignedTransactionRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal SignedTransactionRecord: %w", err)
	}
	return record, nil
}

func (r *RedisPersistence) ListSignedTransactions() ([]*persistence.SignedTransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()
	indexKey := r.prefixKey(keySetSignedTxs)

	digests, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list signed transaction digests: %w", err)
	}
	if len(digests) == 0 {
		return []*persistence.SignedTransactionRecord{}, nil
	}

	keys := make([]string, len(digests))
	for i, digest := range digests {
		keys[i] = r.prefixKey(keyPrefixSignedTx + digest)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch SignedTransactionRecords: %w", err)
	}

	records := make([]*persistence.SignedTransactionRecord, 0, len(values))
	for i, val := range values {
		if val == nil {
			// stale index entry
			r.client.SRem(ctx, indexKey, digests[i])
			continue
		}

		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for SignedTransactionRecord", "key", keys[i])
			continue
		}

		record, err := persistence.UnmarshalSignedTransactionRecord([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal SignedTransactionRecord, skipping",
				"key", keys[i], "error", err)
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].SignedAt == records[j].SignedAt {
			return records[i].Digest < records[j].Digest
		}
		return records[i].SignedAt < records[j].SignedAt
	})
	return records, nil
}

func (r *RedisPersistence) DeleteSignedTransaction(digest string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.prefixKey(keyPrefixSignedTx+digest))
	pipe.SRem(ctx, r.prefixKey(keySetSignedTxs), digest)

	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis signing journal closed")
	return nil
}

func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
