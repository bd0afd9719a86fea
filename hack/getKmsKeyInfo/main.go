package main

import (
	"context"
	"os"

	"github.com/Layr-Labs/gas-station-signer/internal/aws"
	"github.com/Layr-Labs/gas-station-signer/internal/keyGenerator/awsKms"
	"github.com/Layr-Labs/gas-station-signer/pkg/logger"
)

// Prints the scheme, public key and sponsor address of an existing KMS key.
func main() {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	awsCfg, err := aws.LoadAWSConfig(context.Background(), os.Getenv("AWS_REGION"))
	if err != nil {
		panic(err)
	}

	keyId := os.Getenv("KEY_ID")
	if keyId == "" {
		l.Sugar().Fatal("KEY_ID environment variable is not set")
	}

	keyGen := awsKms.NewAWSKMSKeyGenerator(awsCfg, os.Getenv("ENVIRONMENT"), l)
	key, err := keyGen.GetKeyById(context.Background(), keyId)
	if err != nil {
		l.Sugar().Fatalw("Failed to get key", "keyId", keyId, "error", err)
	}

	l.Sugar().Infow("KMS sponsor key",
		"keyId", key.KeyId,
		"scheme", key.Scheme.String(),
		"publicKey", key.GetPublicKeyHex(),
		"sponsorAddress", key.Address.String(),
	)
}
