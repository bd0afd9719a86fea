package persistence

import "fmt"

// SignedTransactionRecord is one entry of the signing journal.
type SignedTransactionRecord struct {
	// Id is a unique identifier for this signing event
	Id string `json:"id"`

	// Digest is the hex encoded Blake2b-256 digest of the intent message.
	// This serves as the primary key.
	Digest string `json:"digest"`

	SponsorAddress string `json:"sponsorAddress"`

	Scheme string `json:"scheme"`

	// Signature is the base64 serialized signature (flag || sig || pubkey)
	Signature string `json:"signature"`

	// Signer names the backend that produced the signature
	Signer string `json:"signer"`

	// SignedAt is the Unix timestamp in milliseconds
	SignedAt int64 `json:"signedAt"`
}

func (r *SignedTransactionRecord) Validate() error {
	if r.Digest == "" {
		return fmt.Errorf("record digest cannot be empty")
	}
	if r.Signature == "" {
		return fmt.Errorf("record signature cannot be empty")
	}
	return nil
}

func (r *SignedTransactionRecord) Copy() *SignedTransactionRecord {
	c := *r
	return &c
}
