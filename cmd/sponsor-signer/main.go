package main

import (
	"log"
	"os"

	"github.com/Layr-Labs/gas-station-signer/pkg/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "sponsor-signer",
		Usage: "Gas station sponsor signing tool",
		Description: `Signs sponsored transactions with the configured backend and manages sponsor keys.

Backends:
- sidecar: remote signing service, the key never enters this process
- local: in-memory key from a keystore file or inline entry
- kms: AWS KMS asymmetric key (secp256k1 or secp256r1)`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvSignerVerbose},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "address",
				Usage:  "Print the sponsor address of the configured signer",
				Flags:  signerFlags(),
				Action: addressCommand,
			},
			{
				Name:  "sign",
				Usage: "Sign BCS transaction bytes as the sponsor",
				Flags: append(signerFlags(),
					&cli.StringFlag{
						Name:     "tx-bytes",
						Usage:    "BCS encoded TransactionData, base64 or 0x-prefixed hex",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "expected-sponsor",
						Usage: "Refuse to sign unless the signer holds this address",
					},
				),
				Action: signCommand,
			},
			{
				Name:  "verify",
				Usage: "Verify a serialized signature over transaction bytes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tx-bytes",
						Usage:    "BCS encoded TransactionData, base64 or 0x-prefixed hex",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "signature",
						Usage:    "Base64 serialized signature (flag || sig || pubkey)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "address",
						Usage:    "Sponsor address the signature must belong to",
						Required: true,
					},
				},
				Action: verifyCommand,
			},
			{
				Name:  "keygen",
				Usage: "Generate a sponsor key locally or in AWS KMS",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "scheme",
						Usage:   "Signature scheme: ed25519, secp256k1 or secp256r1",
						Value:   "ed25519",
						EnvVars: []string{config.EnvSignerKeygenScheme},
					},
					&cli.StringFlag{
						Name:  "backend",
						Usage: "Where to create the key: local or kms",
						Value: "local",
					},
					&cli.StringFlag{
						Name:    "keystore-path",
						Usage:   "Keystore file the local key is appended to",
						EnvVars: []string{config.EnvSignerKeystorePath},
					},
					&cli.StringFlag{
						Name:  "alias",
						Usage: "Key alias (KMS alias/<alias>)",
					},
					&cli.StringFlag{
						Name:  "environment",
						Usage: "Environment tag for KMS keys",
						Value: "devnet",
					},
					&cli.StringFlag{
						Name:    "aws-region",
						Usage:   "AWS region for KMS keys",
						EnvVars: []string{config.EnvSignerAwsRegion},
					},
				},
				Action: keygenCommand,
			},
			{
				Name:  "journal",
				Usage: "Inspect the signing journal",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List journaled signatures in signing order",
						Flags:  journalFlags(),
						Action: journalListCommand,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
