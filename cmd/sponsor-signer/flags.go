package main

import (
	"github.com/Layr-Labs/gas-station-signer/pkg/config"
	"github.com/urfave/cli/v2"
)

func signerFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "signer-type",
			Usage:   "Signing backend: sidecar, local or kms",
			Value:   config.SignerTypeSidecar.String(),
			EnvVars: []string{config.EnvSignerType},
		},
		&cli.StringFlag{
			Name:    "sponsor-address",
			Usage:   "Sponsor address (required for sidecar, selects the keystore key for local)",
			EnvVars: []string{config.EnvSignerSponsorAddress},
		},
		&cli.StringFlag{
			Name:    "sidecar-url",
			Usage:   "Sidecar sign endpoint",
			EnvVars: []string{config.EnvSignerSidecarUrl},
		},
		&cli.BoolFlag{
			Name:    "verify-sidecar-responses",
			Usage:   "Verify sidecar signatures against the sponsor address",
			EnvVars: []string{config.EnvSignerVerifySidecar},
		},
		&cli.StringFlag{
			Name:    "private-key",
			Usage:   "Keystore entry base64(flag || private key) for the local signer",
			EnvVars: []string{config.EnvSignerPrivateKey},
		},
		&cli.StringFlag{
			Name:    "keystore-path",
			Usage:   "Keystore file for the local signer",
			EnvVars: []string{config.EnvSignerKeystorePath},
		},
		&cli.StringFlag{
			Name:    "kms-key-id",
			Usage:   "AWS KMS key id, ARN or alias/<name>",
			EnvVars: []string{config.EnvSignerKmsKeyId},
		},
		&cli.StringFlag{
			Name:    "aws-region",
			Usage:   "AWS region override",
			EnvVars: []string{config.EnvSignerAwsRegion},
		},
	}
	return append(flags, journalFlags()...)
}

func journalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "journal-type",
			Usage:   "Signing journal backend: memory, badger or redis (empty disables)",
			EnvVars: []string{config.EnvSignerJournalType},
		},
		&cli.StringFlag{
			Name:    "journal-path",
			Usage:   "Badger journal directory",
			EnvVars: []string{config.EnvSignerJournalPath},
		},
		&cli.StringFlag{
			Name:    "redis-address",
			Usage:   "Redis journal address (host:port)",
			EnvVars: []string{config.EnvSignerRedisAddress},
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis journal password",
			EnvVars: []string{config.EnvSignerRedisPassword},
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Usage:   "Redis journal database number",
			EnvVars: []string{config.EnvSignerRedisDB},
		},
	}
}

func parseSignerConfig(c *cli.Context) *config.SignerConfig {
	cfg := &config.SignerConfig{
		Type:    config.SignerType(c.String("signer-type")),
		Journal: parseJournalConfig(c),
	}
	switch cfg.Type {
	case config.SignerTypeSidecar:
		cfg.Sidecar = &config.SidecarSignerConfig{
			Url:             c.String("sidecar-url"),
			SponsorAddress:  c.String("sponsor-address"),
			VerifyResponses: c.Bool("verify-sidecar-responses"),
		}
	case config.SignerTypeLocal:
		cfg.Local = &config.LocalSignerConfig{
			PrivateKey:     c.String("private-key"),
			KeystorePath:   c.String("keystore-path"),
			SponsorAddress: c.String("sponsor-address"),
		}
	case config.SignerTypeKms:
		cfg.Kms = &config.KmsSignerConfig{
			KeyId:  c.String("kms-key-id"),
			Region: c.String("aws-region"),
		}
	}
	return cfg
}

func parseJournalConfig(c *cli.Context) *config.JournalConfig {
	journalType := config.JournalType(c.String("journal-type"))
	if journalType == config.JournalTypeNone {
		return nil
	}
	return &config.JournalConfig{
		Type:          journalType,
		DataPath:      c.String("journal-path"),
		RedisAddress:  c.String("redis-address"),
		RedisPassword: c.String("redis-password"),
		RedisDB:       c.Int("redis-db"),
	}
}
