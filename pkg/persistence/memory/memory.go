package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Layr-Labs/gas-station-signer/pkg/persistence"
)

// MemoryPersistence is an in-memory implementation of ISignaturePersistence.
// All data is lost when the process exits; intended for tests and devnets.
type MemoryPersistence struct {
	mu sync.RWMutex

	// digest -> record
	records map[string]*persistence.SignedTransactionRecord

	closed bool
}

func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		records: make(map[string]*persistence.SignedTransactionRecord),
	}
}

func (m *MemoryPersistence) SaveSignedTransaction(record *persistence.SignedTransactionRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil SignedTransactionRecord")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	// Copy to prevent external mutation
	m.records[record.Digest] = record.Copy()
	return nil
}

func (m *MemoryPersistence) LoadSignedTransaction(digest string) (*persistence.SignedTransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	record, exists := m.records[digest]
	if !exists {
		return nil, nil
	}
	return record.Copy(), nil
}

func (m *MemoryPersistence) ListSignedTransactions() ([]*persistence.SignedTransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	result := make([]*persistence.SignedTransactionRecord, 0, len(m.records))
	for _, record := range m.records {
		result = append(result, record.Copy())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SignedAt == result[j].SignedAt {
			return result[i].Digest < result[j].Digest
		}
		return result[i].SignedAt < result[j].SignedAt
	})
	return result, nil
}

func (m *MemoryPersistence) DeleteSignedTransaction(digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	delete(m.records, digest)
	return nil
}

func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	return nil
}

func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}
	return nil
}
