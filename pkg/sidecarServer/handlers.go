package sidecarServer

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Layr-Labs/gas-station-signer/pkg/clients/sidecar"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
	"github.com/google/uuid"
)

// failure reasons used as metric labels
const (
	reasonRateLimited = "rate_limited"
	reasonBadRequest  = "bad_request"
	reasonWrongIntent = "wrong_intent"
	reasonSignFailed  = "sign_failed"
)

func (s *Server) handleSign(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	requestId := uuid.New().String()
	w.Header().Set("X-Request-Id", requestId)
	log := s.logger.Sugar().With("requestId", requestId)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		s.metrics.ObserveSign(s.signerName, started, reasonRateLimited)
		log.Warnw("Sign request rate limited")
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var req sidecar.SignRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.metrics.ObserveSign(s.signerName, started, reasonBadRequest)
		log.Debugw("Malformed sign request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg := intent.EncodedMessage(req.TxBytes)
	msgIntent, err := msg.Intent()
	if err != nil {
		s.metrics.ObserveSign(s.signerName, started, reasonBadRequest)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msgIntent != intent.SponsorTransactionIntent() || len(msg) == len(msgIntent.Bytes()) {
		s.metrics.ObserveSign(s.signerName, started, reasonWrongIntent)
		log.Warnw("Refusing to sign non transaction intent", "intent", msgIntent.Bytes())
		http.Error(w, "txBytes must be a transaction intent message", http.StatusBadRequest)
		return
	}

	sig, err := s.signer.SignEncodedMessage(r.Context(), msg)
	if err != nil {
		s.metrics.ObserveSign(s.signerName, started, reasonSignFailed)
		log.Errorw("Failed to sign transaction", "error", err)
		status := http.StatusInternalServerError
		if r.Context().Err() != nil {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, "signing failed", status)
		return
	}

	digest := msg.Digest()
	s.metrics.ObserveSign(s.signerName, started, "")
	log.Infow("Signed transaction",
		"sponsor", s.signer.GetAddress().String(),
		"digest", hex.EncodeToString(digest[:]),
		"duration", time.Since(started),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sidecar.ByteArray(sig.Bytes()))
}

func (s *Server) handleAddress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := sidecar.AddressResponse{
		SponsorAddress: s.signer.GetAddress().String(),
		Scheme:         s.signer.Scheme().String(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
