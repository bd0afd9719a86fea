package awsKms

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/gas-station-signer/internal/keyGenerator"
	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// KmsKeyAPI is the subset of the KMS client used to provision keys.
type KmsKeyAPI interface {
	CreateKey(ctx context.Context, params *kms.CreateKeyInput, optFns ...func(*kms.Options)) (*kms.CreateKeyOutput, error)
	CreateAlias(ctx context.Context, params *kms.CreateAliasInput, optFns ...func(*kms.Options)) (*kms.CreateAliasOutput, error)
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
}

var _ KmsKeyAPI = (*kms.Client)(nil)

type AWSKMSKeyGenerator struct {
	logger      *zap.Logger
	kmsClient   KmsKeyAPI
	awsRegion   string
	environment string
}

var _ keyGenerator.IKeyGenerator = (*AWSKMSKeyGenerator)(nil)

func NewAWSKMSKeyGenerator(awsCfg aws.Config, environment string, logger *zap.Logger) *AWSKMSKeyGenerator {
	return NewAWSKMSKeyGeneratorWithClient(kms.NewFromConfig(awsCfg), awsCfg.Region, environment, logger)
}

func NewAWSKMSKeyGeneratorWithClient(client KmsKeyAPI, awsRegion string, environment string, logger *zap.Logger) *AWSKMSKeyGenerator {
	return &AWSKMSKeyGenerator{
		logger:      logger,
		kmsClient:   client,
		awsRegion:   awsRegion,
		environment: environment,
	}
}

// KeySpecForScheme maps a signature scheme to the KMS key spec backing it.
// KMS has no ed25519 signing keys.
func KeySpecForScheme(scheme signature.Scheme) (types.KeySpec, error) {
	switch scheme {
	case signature.SchemeSecp256k1:
		return types.KeySpecEccSecgP256k1, nil
	case signature.SchemeSecp256r1:
		return types.KeySpecEccNistP256, nil
	default:
		return "", fmt.Errorf("scheme %s cannot be backed by a KMS key", scheme)
	}
}

func (a *AWSKMSKeyGenerator) GenerateKey(ctx context.Context, scheme signature.Scheme, aliasName string) (*keyGenerator.GeneratedKey, error) {
	keySpec, err := KeySpecForScheme(scheme)
	if err != nil {
		return nil, err
	}

	keyRes, err := a.createSponsorSigningKey(ctx, keySpec, scheme, aliasName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s key %s in region %s", scheme, aliasName, a.awsRegion)
	}
	keyId := aws.ToString(keyRes.KeyMetadata.KeyId)

	if aliasName != "" {
		if err := a.createKeyAlias(ctx, keyId, aliasName); err != nil {
			return nil, errors.Wrapf(err, "failed to create alias %s for key %s in region %s", aliasName, keyId, a.awsRegion)
		}
	}

	return a.GetKeyById(ctx, keyId)
}

func (a *AWSKMSKeyGenerator) GetKeyById(ctx context.Context, keyId string) (*keyGenerator.GeneratedKey, error) {
	out, err := a.kmsClient.GetPublicKey(ctx, &kms.GetPublicKeyInput{KeyId: aws.String(keyId)})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get public key for key %s in region %s", keyId, a.awsRegion)
	}

	curve, uncompressed, err := crypto.ParseSubjectPublicKeyInfo(out.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse public key for key %s in region %s", keyId, a.awsRegion)
	}
	scheme, err := signature.ParseScheme(curve)
	if err != nil {
		return nil, err
	}
	compressed, err := crypto.CompressPublicKey(uncompressed)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compress public key for key %s", keyId)
	}

	return &keyGenerator.GeneratedKey{
		Scheme:    scheme,
		PublicKey: compressed,
		Address:   address.FromPublicKey(scheme.Flag(), compressed),
		KeyId:     aws.ToString(out.KeyId),
	}, nil
}

func (a *AWSKMSKeyGenerator) createSponsorSigningKey(ctx context.Context, keySpec types.KeySpec, scheme signature.Scheme, keyName string) (*kms.CreateKeyOutput, error) {
	input := &kms.CreateKeyInput{
		KeyUsage:    types.KeyUsageTypeSignVerify,
		KeySpec:     keySpec,
		Description: aws.String(fmt.Sprintf("Gas station sponsor signing key - %s", keyName)),
		Tags: []types.Tag{
			{
				TagKey:   aws.String("Name"),
				TagValue: aws.String(keyName),
			},
			{
				TagKey:   aws.String("Environment"),
				TagValue: aws.String(a.environment),
			},
			{
				TagKey:   aws.String("Purpose"),
				TagValue: aws.String("sponsor-signing-key"),
			},
			{
				TagKey:   aws.String("Scheme"),
				TagValue: aws.String(scheme.String()),
			},
		},
	}

	result, err := a.kmsClient.CreateKey(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create KMS key: %w", err)
	}
	return result, nil
}

func (a *AWSKMSKeyGenerator) createKeyAlias(ctx context.Context, keyId, aliasName string) error {
	input := &kms.CreateAliasInput{
		AliasName:   aws.String(fmt.Sprintf("alias/%s", aliasName)),
		TargetKeyId: aws.String(keyId),
	}

	if _, err := a.kmsClient.CreateAlias(ctx, input); err != nil {
		return fmt.Errorf("failed to create key alias: %w", err)
	}

	a.logger.Sugar().Infow("Created KMS key alias", "alias", "alias/"+aliasName, "keyId", keyId)
	return nil
}
