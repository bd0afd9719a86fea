package keyGenerator

import (
	"context"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// GeneratedKey describes a newly provisioned sponsor key.
type GeneratedKey struct {
	Scheme signature.Scheme
	// PublicKey is in the form embedded in signatures
	PublicKey []byte
	Address   address.SponsorAddress
	KeyId     string
}

func (gk *GeneratedKey) GetPublicKeyHex() string {
	return hexutil.Encode(gk.PublicKey)
}

type IKeyGenerator interface {
	GenerateKey(ctx context.Context, scheme signature.Scheme, aliasName string) (*GeneratedKey, error)
	GetKeyById(ctx context.Context, keyId string) (*GeneratedKey, error)
}
