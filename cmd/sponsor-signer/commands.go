package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Layr-Labs/gas-station-signer/internal/aws"
	"github.com/Layr-Labs/gas-station-signer/internal/keyGenerator"
	"github.com/Layr-Labs/gas-station-signer/internal/keyGenerator/awsKms"
	"github.com/Layr-Labs/gas-station-signer/internal/keyGenerator/localKeyGenerator"
	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/config"
	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	"github.com/Layr-Labs/gas-station-signer/pkg/keystore"
	"github.com/Layr-Labs/gas-station-signer/pkg/logger"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"github.com/Layr-Labs/gas-station-signer/pkg/transactionSigner"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newLogger(c *cli.Context) (*zap.Logger, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}

// buildSigner constructs the configured signer. The caller must release it
// with transactionSigner.Close.
func buildSigner(c *cli.Context, l *zap.Logger) (transactionSigner.ITransactionSigner, error) {
	cfg := parseSignerConfig(c)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return transactionSigner.NewTransactionSigner(c.Context, cfg, nil, l)
}

func addressCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	signer, err := buildSigner(c, l)
	if err != nil {
		return err
	}
	defer func() { _ = transactionSigner.Close(signer) }()

	fmt.Println(signer.GetAddress().String())
	return nil
}

func signCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	txBytes, err := decodeBytes(c.String("tx-bytes"))
	if err != nil {
		return fmt.Errorf("invalid tx-bytes: %w", err)
	}

	signer, err := buildSigner(c, l)
	if err != nil {
		return err
	}
	defer func() { _ = transactionSigner.Close(signer) }()

	if expected := c.String("expected-sponsor"); expected != "" {
		candidate, err := address.Parse(expected)
		if err != nil {
			return fmt.Errorf("invalid expected-sponsor: %w", err)
		}
		if err := transactionSigner.Authorize(signer, candidate); err != nil {
			return err
		}
	}

	tx := intent.RawTransaction(txBytes)
	sig, err := signer.SignTransaction(c.Context, tx)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	msg, err := intent.WrapAndEncode(tx)
	if err != nil {
		return err
	}
	digest := msg.Digest()

	fmt.Printf("sponsor:   %s\n", signer.GetAddress())
	fmt.Printf("scheme:    %s\n", sig.Scheme)
	fmt.Printf("digest:    %s\n", hexutil.Encode(digest[:]))
	fmt.Printf("signature: %s\n", sig.Base64())
	return nil
}

func verifyCommand(c *cli.Context) error {
	txBytes, err := decodeBytes(c.String("tx-bytes"))
	if err != nil {
		return fmt.Errorf("invalid tx-bytes: %w", err)
	}
	sig, err := signature.FromBase64(c.String("signature"))
	if err != nil {
		return err
	}
	addr, err := address.Parse(c.String("address"))
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	msg, err := intent.WrapAndEncode(intent.RawTransaction(txBytes))
	if err != nil {
		return err
	}
	if err := sig.Verify(msg, addr); err != nil {
		return err
	}
	fmt.Printf("valid %s signature by %s\n", sig.Scheme, addr)
	return nil
}

func keygenCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	scheme, err := signature.ParseScheme(c.String("scheme"))
	if err != nil {
		return err
	}

	switch c.String("backend") {
	case "local":
		return keygenLocal(c, l, scheme)
	case "kms":
		return keygenKms(c, l, scheme)
	default:
		return fmt.Errorf("unsupported keygen backend: %s", c.String("backend"))
	}
}

func keygenLocal(c *cli.Context, l *zap.Logger, scheme signature.Scheme) error {
	gen := localKeyGenerator.NewLocalKeyGenerator(l)
	key, err := gen.GenerateKey(c.Context, scheme, c.String("alias"))
	if err != nil {
		return err
	}
	kp, err := gen.KeyPair(key.KeyId)
	if err != nil {
		return err
	}

	path := c.String("keystore-path")
	if path == "" {
		printKey(key)
		fmt.Printf("keystore entry: %s\n", crypto.KeystoreEntry(kp))
		return nil
	}

	ks := keystore.NewKeyStore()
	if _, statErr := os.Stat(path); statErr == nil {
		if ks, err = keystore.LoadFile(path); err != nil {
			return err
		}
	}
	ks.Add(kp)
	if err := ks.WriteFile(path); err != nil {
		return err
	}
	printKey(key)
	fmt.Printf("keystore:  %s (%d keys)\n", path, ks.Len())
	return nil
}

func keygenKms(c *cli.Context, l *zap.Logger, scheme signature.Scheme) error {
	awsCfg, err := aws.LoadAWSConfig(c.Context, c.String("aws-region"))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	identity, err := aws.GetCallerIdentity(c.Context, awsCfg)
	if err != nil {
		return fmt.Errorf("failed to resolve AWS identity: %w", err)
	}
	l.Sugar().Infow("Creating KMS sponsor key",
		"account", *identity.Account,
		"arn", *identity.Arn,
		"region", awsCfg.Region,
		"scheme", scheme.String(),
	)

	gen := awsKms.NewAWSKMSKeyGenerator(awsCfg, c.String("environment"), l)
	key, err := gen.GenerateKey(c.Context, scheme, c.String("alias"))
	if err != nil {
		return err
	}
	printKey(key)
	return nil
}

func printKey(key *keyGenerator.GeneratedKey) {
	fmt.Printf("key id:    %s\n", key.KeyId)
	fmt.Printf("scheme:    %s\n", key.Scheme)
	fmt.Printf("publicKey: %s\n", key.GetPublicKeyHex())
	fmt.Printf("address:   %s\n", key.Address)
}

func journalListCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	cfg := parseJournalConfig(c)
	if cfg == nil || cfg.Type == config.JournalTypeMemory {
		return fmt.Errorf("journal-type must be badger or redis")
	}
	journal, err := transactionSigner.NewJournal(cfg, l)
	if err != nil {
		return err
	}
	defer func() { _ = journal.Close() }()

	records, err := journal.ListSignedTransactions()
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Printf("%d\t%s\t%s\t%s\t%s\n", r.SignedAt, r.Digest, r.SponsorAddress, r.Signer, r.Signature)
	}
	return nil
}

// decodeBytes accepts 0x-prefixed hex or standard base64.
func decodeBytes(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") {
		return hexutil.Decode(s)
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return hex.DecodeString(s)
}
