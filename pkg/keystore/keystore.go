package keystore

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
)

// KeyStore holds the sponsor keys loaded from a keystore file: a JSON array
// of base64(flag || secret) entries. Order is preserved; the first entry is
// the default key.
type KeyStore struct {
	mu sync.RWMutex

	keys      []crypto.KeyPair
	byAddress map[address.SponsorAddress]crypto.KeyPair
}

// NewKeyStore creates an empty key store
func NewKeyStore() *KeyStore {
	return &KeyStore{
		keys:      make([]crypto.KeyPair, 0),
		byAddress: make(map[address.SponsorAddress]crypto.KeyPair),
	}
}

// LoadFile reads and parses a keystore file.
func LoadFile(path string) (*KeyStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore %s: %w", path, err)
	}
	ks, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse keystore %s: %w", path, err)
	}
	return ks, nil
}

// Parse decodes keystore JSON. Duplicate entries are collapsed.
func Parse(data []byte) (*KeyStore, error) {
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("keystore must be a JSON array of strings: %w", err)
	}

	ks := NewKeyStore()
	for i, entry := range entries {
		kp, err := crypto.ParseKeystoreEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		ks.Add(kp)
	}
	return ks, nil
}

// Add stores a key pair. Adding a key that is already present is a no-op.
func (ks *KeyStore) Add(kp crypto.KeyPair) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	addr := kp.Address()
	if _, exists := ks.byAddress[addr]; exists {
		return
	}
	ks.byAddress[addr] = kp
	ks.keys = append(ks.keys, kp)
}

// Get returns the key pair for addr.
func (ks *KeyStore) Get(addr address.SponsorAddress) (crypto.KeyPair, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	kp, ok := ks.byAddress[addr]
	if !ok {
		return nil, fmt.Errorf("no key for address %s in keystore", addr)
	}
	return kp, nil
}

// Default returns the first key in the store.
func (ks *KeyStore) Default() (crypto.KeyPair, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if len(ks.keys) == 0 {
		return nil, fmt.Errorf("keystore is empty")
	}
	return ks.keys[0], nil
}

// Addresses lists the addresses in file order.
func (ks *KeyStore) Addresses() []address.SponsorAddress {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	out := make([]address.SponsorAddress, len(ks.keys))
	for i, kp := range ks.keys {
		out[i] = kp.Address()
	}
	return out
}

func (ks *KeyStore) Len() int {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	return len(ks.keys)
}

// Marshal encodes the store back into keystore JSON.
func (ks *KeyStore) Marshal() ([]byte, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	entries := make([]string, len(ks.keys))
	for i, kp := range ks.keys {
		entries[i] = crypto.KeystoreEntry(kp)
	}
	return json.MarshalIndent(entries, "", "  ")
}

// WriteFile writes the store to path with owner-only permissions.
func (ks *KeyStore) WriteFile(path string) error {
	data, err := ks.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode keystore: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keystore %s: %w", path, err)
	}
	return nil
}
