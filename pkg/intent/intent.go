package intent

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ErrSerialization is returned when a payload cannot be canonically encoded.
var ErrSerialization = errors.New("payload serialization failed")

// TransactionPayload is the unsigned transaction. The codec never inspects it,
// it only asks for its canonical BCS bytes.
type TransactionPayload interface {
	MarshalBCS() ([]byte, error)
}

// RawTransaction is a transaction that is already BCS encoded, which is how
// sponsored transactions arrive over RPC.
type RawTransaction []byte

func (rt RawTransaction) MarshalBCS() ([]byte, error) {
	if len(rt) == 0 {
		return nil, fmt.Errorf("empty transaction bytes")
	}
	return append([]byte{}, rt...), nil
}

type IntentScope uint8

const (
	IntentScopeTransactionData     IntentScope = 0
	IntentScopeTransactionEffects  IntentScope = 1
	IntentScopeCheckpointSummary   IntentScope = 2
	IntentScopePersonalMessage     IntentScope = 3
	IntentScopeSenderSignedTx      IntentScope = 4
	IntentScopeProofOfPossession   IntentScope = 5
	IntentScopeHeaderDigest        IntentScope = 6
	IntentScopeBridgeEventUnused   IntentScope = 7
	IntentScopeConsensusBlock      IntentScope = 8
	IntentScopeDiscoveryPeers      IntentScope = 9
	IntentScopeAuthorityCapability IntentScope = 10
)

type IntentVersion uint8

const IntentVersionV0 IntentVersion = 0

type AppId uint8

const (
	AppIdSui       AppId = 0
	AppIdNarwhal   AppId = 1
	AppIdConsensus AppId = 2
)

// Intent is the domain separation prefix mixed into every signed message.
type Intent struct {
	Scope   IntentScope
	Version IntentVersion
	AppId   AppId
}

// SponsorTransactionIntent is the intent every sponsor signature is produced under.
func SponsorTransactionIntent() Intent {
	return Intent{
		Scope:   IntentScopeTransactionData,
		Version: IntentVersionV0,
		AppId:   AppIdSui,
	}
}

func (i Intent) Bytes() []byte {
	return []byte{byte(i.Scope), byte(i.Version), byte(i.AppId)}
}

// IntentMessage pairs a payload with its intent. Built per signing call.
type IntentMessage struct {
	Intent  Intent
	Payload TransactionPayload
}

// Wrap places payload under the sponsor transaction intent.
func Wrap(payload TransactionPayload) IntentMessage {
	return IntentMessage{
		Intent:  SponsorTransactionIntent(),
		Payload: payload,
	}
}

// EncodedMessage is the canonical signing input: intent bytes followed by the
// BCS encoding of the payload.
type EncodedMessage []byte

// Encode produces the canonical bytes for msg. The encoding is a pure function
// of the payload bytes.
func Encode(msg IntentMessage) (EncodedMessage, error) {
	if msg.Payload == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrSerialization)
	}
	payloadBytes, err := msg.Payload.MarshalBCS()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	intentBytes := msg.Intent.Bytes()
	out := make([]byte, 0, len(intentBytes)+len(payloadBytes))
	out = append(out, intentBytes...)
	out = append(out, payloadBytes...)
	return out, nil
}

// WrapAndEncode is Encode(Wrap(payload)).
func WrapAndEncode(payload TransactionPayload) (EncodedMessage, error) {
	return Encode(Wrap(payload))
}

// Digest is the Blake2b-256 hash of the encoded message. All signature schemes
// sign this digest rather than the raw message.
func (em EncodedMessage) Digest() [32]byte {
	return blake2b.Sum256(em)
}

// Intent returns the intent prefix of the message, if present.
func (em EncodedMessage) Intent() (Intent, error) {
	if len(em) < 3 {
		return Intent{}, fmt.Errorf("encoded message too short: %d bytes", len(em))
	}
	return Intent{
		Scope:   IntentScope(em[0]),
		Version: IntentVersion(em[1]),
		AppId:   AppId(em[2]),
	}, nil
}
