package persistence

// ISignaturePersistence records the signatures a sponsor has produced so that
// operators can audit what was authorized. All implementations must be
// thread-safe since signers are shared across concurrent callers.
type ISignaturePersistence interface {
	// SaveSignedTransaction persists a record indexed by its intent digest.
	// Re-signing the same transaction overwrites the previous record.
	SaveSignedTransaction(record *SignedTransactionRecord) error

	// LoadSignedTransaction retrieves a record by intent digest (hex).
	// Returns nil if the record doesn't exist, error only on storage failure.
	LoadSignedTransaction(digest string) (*SignedTransactionRecord, error)

	// ListSignedTransactions returns all records sorted by SignedAt (ascending).
	// Returns empty slice if none exist.
	ListSignedTransactions() ([]*SignedTransactionRecord, error)

	// DeleteSignedTransaction removes a record. Idempotent.
	DeleteSignedTransaction(digest string) error

	// Close cleanly shuts down the persistence layer. Idempotent.
	// After Close(), all other operations return errors.
	Close() error

	// HealthCheck returns nil if the persistence layer is operational.
	HealthCheck() error
}
