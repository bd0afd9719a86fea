package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/Layr-Labs/gas-station-signer/pkg/clients/sidecar"
	"github.com/Layr-Labs/gas-station-signer/pkg/crypto"
	"github.com/Layr-Labs/gas-station-signer/pkg/intent"
)

// MockSidecar is an httptest server speaking the sidecar wire contract. By
// default it signs with KeyPair; the Respond* fields override the response.
type MockSidecar struct {
	Server *httptest.Server

	mu           sync.Mutex
	keyPair      crypto.KeyPair
	fixedBody    []byte
	statusCode   int
	requests     [][]byte
	contentTypes []string
}

// NewMockSidecar starts a sidecar that signs with keyPair. Close it with
// Server.Close.
func NewMockSidecar(keyPair crypto.KeyPair) *MockSidecar {
	m := &MockSidecar{
		keyPair:    keyPair,
		statusCode: http.StatusOK,
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL is the sign endpoint.
func (m *MockSidecar) URL() string {
	return m.Server.URL + "/sign"
}

func (m *MockSidecar) Close() {
	m.Server.Close()
}

// RespondWithBody makes the sidecar return body verbatim with a 200.
func (m *MockSidecar) RespondWithBody(body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixedBody = body
}

// RespondWithSignatureBytes makes the sidecar return sig as a JSON byte array.
func (m *MockSidecar) RespondWithSignatureBytes(sig []byte) {
	body, _ := json.Marshal(sidecar.ByteArray(sig))
	m.RespondWithBody(body)
}

// RespondWithStatus makes the sidecar fail every request with code.
func (m *MockSidecar) RespondWithStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCode = code
}

// Requests returns the txBytes of every request received so far.
func (m *MockSidecar) Requests() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockSidecar) ContentTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.contentTypes...)
}

func (m *MockSidecar) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req sidecar.SignRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.requests = append(m.requests, []byte(req.TxBytes))
	m.contentTypes = append(m.contentTypes, r.Header.Get("Content-Type"))
	statusCode := m.statusCode
	fixedBody := m.fixedBody
	m.mu.Unlock()

	if statusCode != http.StatusOK {
		http.Error(w, "sidecar unavailable", statusCode)
		return
	}
	if fixedBody != nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixedBody)
		return
	}

	sig, err := m.keyPair.SignDigest(intent.EncodedMessage(req.TxBytes).Digest())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sidecar.ByteArray(sig.Bytes()))
}
