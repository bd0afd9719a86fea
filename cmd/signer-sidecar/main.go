package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Layr-Labs/gas-station-signer/internal/aws"
	"github.com/Layr-Labs/gas-station-signer/pkg/config"
	"github.com/Layr-Labs/gas-station-signer/pkg/logger"
	"github.com/Layr-Labs/gas-station-signer/pkg/metrics"
	"github.com/Layr-Labs/gas-station-signer/pkg/sidecarServer"
	"github.com/Layr-Labs/gas-station-signer/pkg/transactionSigner"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "signer-sidecar",
		Usage: "Remote signing sidecar for the gas station sponsor key",
		Description: `Holds the sponsor key and signs transaction intent messages over HTTP.

The key is loaded from a keystore file, an inline keystore entry, or an AWS KMS key.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Port to listen on",
				Value:   8080,
				EnvVars: []string{config.EnvSidecarPort},
			},
			&cli.Float64Flag{
				Name:    "max-sign-rate",
				Usage:   "Sustained sign requests per second (0 disables limiting)",
				EnvVars: []string{config.EnvSidecarMaxSignRate},
			},
			&cli.IntFlag{
				Name:    "sign-burst",
				Usage:   "Sign request burst size when rate limiting",
				Value:   10,
				EnvVars: []string{config.EnvSidecarSignBurst},
			},
			&cli.StringFlag{
				Name:    "private-key",
				Usage:   "Keystore entry base64(flag || private key)",
				EnvVars: []string{config.EnvSignerPrivateKey},
			},
			&cli.StringFlag{
				Name:    "keystore-path",
				Usage:   "Keystore file holding the sponsor key",
				EnvVars: []string{config.EnvSignerKeystorePath},
			},
			&cli.StringFlag{
				Name:    "sponsor-address",
				Usage:   "Selects the keystore key; must match the loaded key when set",
				EnvVars: []string{config.EnvSignerSponsorAddress},
			},
			&cli.StringFlag{
				Name:    "kms-key-id",
				Usage:   "AWS KMS key id, ARN or alias/<name> (instead of a local key)",
				EnvVars: []string{config.EnvSignerKmsKeyId},
			},
			&cli.StringFlag{
				Name:    "aws-region",
				Usage:   "AWS region override",
				EnvVars: []string{config.EnvSignerAwsRegion},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvSignerVerbose},
			},
		},
		Action: runSidecar,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runSidecar(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	serverCfg := &config.SidecarServerConfig{
		Port:        c.Int("port"),
		MaxSignRate: c.Float64("max-sign-rate"),
		SignBurst:   c.Int("sign-burst"),
		Debug:       c.Bool("verbose"),
	}
	if err := serverCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	signer, signerName, err := loadSigner(ctx, c, l)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewSignerMetrics(registry, l)

	server := sidecarServer.NewServer(serverCfg, signer, signerName, m, registry, l)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start sidecar: %w", err)
	}

	<-ctx.Done()
	l.Sugar().Infow("Shutting down signer sidecar")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}

func loadSigner(ctx context.Context, c *cli.Context, l *zap.Logger) (sidecarServer.IMessageSigner, string, error) {
	if keyId := c.String("kms-key-id"); keyId != "" {
		kmsCfg := &config.KmsSignerConfig{KeyId: keyId, Region: c.String("aws-region")}
		if err := kmsCfg.Validate(); err != nil {
			return nil, "", fmt.Errorf("invalid configuration: %w", err)
		}
		awsCfg, err := aws.LoadAWSConfig(ctx, kmsCfg.Region)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load AWS config: %w", err)
		}
		signer, err := transactionSigner.NewKmsTransactionSigner(ctx, kms.NewFromConfig(awsCfg), kmsCfg.KeyId, l)
		if err != nil {
			return nil, "", err
		}
		return signer, config.SignerTypeKms.String(), nil
	}

	localCfg := &config.LocalSignerConfig{
		PrivateKey:     c.String("private-key"),
		KeystorePath:   c.String("keystore-path"),
		SponsorAddress: c.String("sponsor-address"),
	}
	if err := localCfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}
	kp, err := transactionSigner.LoadLocalKeyPair(localCfg)
	if err != nil {
		return nil, "", err
	}
	return transactionSigner.NewInMemoryTransactionSigner(kp, l), config.SignerTypeLocal.String(), nil
}
