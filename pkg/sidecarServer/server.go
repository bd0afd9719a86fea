package sidecarServer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Layr-Labs/gas-station-signer/pkg/address"
	"github.com/Layr-Labs/gas-station-signer/pkg/config"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	"github.com/Layr-Labs/gas-station-signer/pkg/metrics"
	"github.com/Layr-Labs/gas-station-signer/pkg/signature"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

/*
Reference signing sidecar.

Endpoints:
  POST /sign     {"txBytes":[...]} -> [flag, sig..., pubkey...]
  GET  /address  {"sponsorAddress":"0x..","scheme":".."}
  GET  /metrics  prometheus exposition

txBytes is the encoded intent message. Only transaction intents are signed;
anything else is rejected so the sidecar cannot be used as a general purpose
signing oracle.
*/

// IMessageSigner is the key holder behind the sidecar.
type IMessageSigner interface {
	SignEncodedMessage(ctx context.Context, msg intent.EncodedMessage) (*signature.Signature, error)
	GetAddress() address.SponsorAddress
	Scheme() signature.Scheme
}

const maxRequestBytes = 1 << 20

type Server struct {
	signer     IMessageSigner
	signerName string
	metrics    *metrics.SignerMetrics
	limiter    *rate.Limiter
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer wires the handlers. gatherer backs /metrics and should be the
// registry m was registered with. A nil m gets a private registry, which
// also backs /metrics when gatherer is nil.
func NewServer(
	cfg *config.SidecarServerConfig,
	signer IMessageSigner,
	signerName string,
	m *metrics.SignerMetrics,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	if m == nil {
		registry := prometheus.NewRegistry()
		m = metrics.NewSignerMetrics(registry, logger)
		if gatherer == nil {
			gatherer = registry
		}
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		signer:     signer,
		signerName: signerName,
		metrics:    m,
		logger:     logger,
	}
	if cfg.MaxSignRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxSignRate), cfg.SignBurst)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/sign", s.handleSign)
	mux.HandleFunc("/address", s.handleAddress)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves in the background.
func (s *Server) Start() error {
	go func() {
		s.logger.Sugar().Infow("Starting signer sidecar",
			"port", s.httpServer.Addr,
			"sponsor", s.signer.GetAddress().String(),
			"scheme", s.signer.Scheme().String(),
		)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Sugar().Errorw("Signer sidecar HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// GetHandler returns the HTTP handler (for testing)
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}
