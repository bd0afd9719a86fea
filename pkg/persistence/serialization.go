package persistence

import (
	"encoding/json"
	"fmt"
)

// MarshalSignedTransactionRecord serializes a record to JSON bytes.
func MarshalSignedTransactionRecord(record *SignedTransactionRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("cannot marshal nil SignedTransactionRecord")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SignedTransactionRecord to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalSignedTransactionRecord deserializes a record from JSON bytes.
func UnmarshalSignedTransactionRecord(data []byte) (*SignedTransactionRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var record SignedTransactionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to SignedTransactionRecord: %w", err)
	}

	return &record, nil
}
