package testutil

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/aws/smithy-go"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// FakeKms emulates the KMS calls used for sponsor keys: asymmetric ECC keys,
// aliases, DER public keys and DER ECDSA signatures over a digest.
type FakeKms struct {
	mu      sync.Mutex
	keys    map[string]*fakeKmsKey
	aliases map[string]string

	// HighS makes Sign return the high-S twin of every signature.
	HighS bool
	// SignErr is returned by Sign when set.
	SignErr error
	// SignCalls counts Sign invocations.
	SignCalls int
}

type fakeKmsKey struct {
	spec types.KeySpec
	priv *ecdsa.PrivateKey
}

func NewFakeKms() *FakeKms {
	return &FakeKms{
		keys:    make(map[string]*fakeKmsKey),
		aliases: make(map[string]string),
	}
}

// AddKey creates a key of spec and returns its id.
func (f *FakeKms) AddKey(spec types.KeySpec) (string, error) {
	var priv *ecdsa.PrivateKey
	var err error
	switch spec {
	case types.KeySpecEccSecgP256k1:
		priv, err = ethcrypto.GenerateKey()
	case types.KeySpecEccNistP256:
		priv, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	default:
		return "", fmt.Errorf("fake kms: unsupported key spec %s", spec)
	}
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[id] = &fakeKmsKey{spec: spec, priv: priv}
	return id, nil
}

func (f *FakeKms) resolve(keyId *string) (*fakeKmsKey, string, error) {
	if keyId == nil {
		return nil, "", fmt.Errorf("fake kms: key id is required")
	}
	id := *keyId
	if strings.HasPrefix(id, "alias/") {
		target, ok := f.aliases[id]
		if !ok {
			return nil, "", &types.NotFoundException{Message: aws.String("alias not found: " + id)}
		}
		id = target
	}
	key, ok := f.keys[id]
	if !ok {
		return nil, "", &types.NotFoundException{Message: aws.String("key not found: " + id)}
	}
	return key, id, nil
}

func (f *FakeKms) CreateKey(_ context.Context, params *kms.CreateKeyInput, _ ...func(*kms.Options)) (*kms.CreateKeyOutput, error) {
	id, err := f.AddKey(params.KeySpec)
	if err != nil {
		return nil, err
	}
	return &kms.CreateKeyOutput{
		KeyMetadata: &types.KeyMetadata{
			KeyId:    aws.String(id),
			KeySpec:  params.KeySpec,
			KeyUsage: params.KeyUsage,
		},
	}, nil
}

func (f *FakeKms) CreateAlias(_ context.Context, params *kms.CreateAliasInput, _ ...func(*kms.Options)) (*kms.CreateAliasOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, _, err := f.resolve(params.TargetKeyId); err != nil {
		return nil, err
	}
	name := aws.ToString(params.AliasName)
	if _, exists := f.aliases[name]; exists {
		return nil, &types.AlreadyExistsException{Message: aws.String("alias exists: " + name)}
	}
	f.aliases[name] = aws.ToString(params.TargetKeyId)
	return &kms.CreateAliasOutput{}, nil
}

func (f *FakeKms) GetPublicKey(_ context.Context, params *kms.GetPublicKeyInput, _ ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key, id, err := f.resolve(params.KeyId)
	if err != nil {
		return nil, err
	}

	var curve string
	var uncompressed []byte
	if key.spec == types.KeySpecEccSecgP256k1 {
		curve = "secp256k1"
		uncompressed = ethcrypto.FromECDSAPub(&key.priv.PublicKey)
	} else {
		curve = "secp256r1"
		pub, err := key.priv.PublicKey.ECDH()
		if err != nil {
			return nil, err
		}
		uncompressed = pub.Bytes()
	}
	der, err := crypto.MarshalSubjectPublicKeyInfo(curve, uncompressed)
	if err != nil {
		return nil, err
	}
	return &kms.GetPublicKeyOutput{
		KeyId:     aws.String(id),
		KeySpec:   key.spec,
		KeyUsage:  types.KeyUsageTypeSignVerify,
		PublicKey: der,
	}, nil
}

func (f *FakeKms) Sign(_ context.Context, params *kms.SignInput, _ ...func(*kms.Options)) (*kms.SignOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SignCalls++
	if f.SignErr != nil {
		return nil, f.SignErr
	}
	key, id, err := f.resolve(params.KeyId)
	if err != nil {
		return nil, err
	}
	if params.MessageType != types.MessageTypeDigest || len(params.Message) != 32 {
		return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "expected a 32 byte DIGEST message"}
	}

	var r, s, order *big.Int
	if key.spec == types.KeySpecEccSecgP256k1 {
		sig, err := ethcrypto.Sign(params.Message, key.priv)
		if err != nil {
			return nil, err
		}
		r = new(big.Int).SetBytes(sig[:32])
		s = new(big.Int).SetBytes(sig[32:64])
		order = ethcrypto.S256().Params().N
	} else {
		r, s, err = ecdsa.Sign(rand.Reader, key.priv, params.Message)
		if err != nil {
			return nil, err
		}
		order = elliptic.P256().Params().N
	}

	s = crypto.NormalizeLowS(s, order)
	if f.HighS {
		s = new(big.Int).Sub(order, s)
	}
	der, err := crypto.MarshalDERSignature(r, s)
	if err != nil {
		return nil, err
	}
	return &kms.SignOutput{
		KeyId:            aws.String(id),
		Signature:        der,
		SigningAlgorithm: params.SigningAlgorithm,
	}, nil
}
