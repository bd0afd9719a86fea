package address

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Length of a sponsor address in bytes.
const Length = 32

// SponsorAddress identifies the signing identity. It is the Blake2b-256 hash of
// the signature scheme flag followed by the public key bytes.
type SponsorAddress [Length]byte

// FromPublicKey derives the address for a public key of the scheme identified
// by flag.
func FromPublicKey(flag byte, publicKey []byte) SponsorAddress {
	h, _ := blake2b.New256(nil)
	h.Write([]byte{flag})
	h.Write(publicKey)

	var addr SponsorAddress
	copy(addr[:], h.Sum(nil))
	return addr
}

// Parse accepts a 0x-prefixed, 64 character hex string.
func Parse(s string) (SponsorAddress, error) {
	var addr SponsorAddress
	if !strings.HasPrefix(s, "0x") {
		return addr, fmt.Errorf("address must be 0x-prefixed: %q", s)
	}
	raw := s[2:]
	if len(raw) != Length*2 {
		return addr, fmt.Errorf("address must be %d hex chars, got %d", Length*2, len(raw))
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return addr, fmt.Errorf("invalid address hex: %w", err)
	}
	copy(addr[:], b)
	return addr, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) SponsorAddress {
	addr, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a SponsorAddress) Bytes() []byte {
	return append([]byte{}, a[:]...)
}

func (a SponsorAddress) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a SponsorAddress) IsZero() bool {
	return a == SponsorAddress{}
}

func (a SponsorAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *SponsorAddress) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
