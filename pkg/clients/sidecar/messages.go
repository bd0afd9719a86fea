package sidecar

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ByteArray marshals as a JSON array of numbers rather than base64, which is
// what the sidecar protocol expects in both directions.
type ByteArray []byte

func (b ByteArray) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(b)*4 + 2)
	buf.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%d", v)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("expected a JSON array of byte values: %w", err)
	}
	if values == nil {
		return fmt.Errorf("expected a JSON array of byte values, got null")
	}
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return fmt.Errorf("value %d at index %d is not a byte", v, i)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// SignRequest is the body POSTed to the sidecar: the canonical intent message.
type SignRequest struct {
	TxBytes ByteArray `json:"txBytes"`
}

// AddressResponse is served by the reference sidecar on GET /address.
type AddressResponse struct {
	SponsorAddress string `json:"sponsorAddress"`
	Scheme         string `json:"scheme"`
}
