package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

var (
	// ErrRequestFailed covers transport failures and non-2xx responses.
	ErrRequestFailed = errors.New("sidecar request failed")

	// ErrInvalidResponse is returned when the body is not a JSON byte array.
	ErrInvalidResponse = errors.New("invalid sidecar response")
)

const maxResponseBytes = 1 << 20

type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the sidecar sign endpoint at signUrl. The
// default HTTP client has no timeout; deadlines come from the caller's context.
func NewClient(signUrl string, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(signUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid sidecar url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("sidecar url must be http or https, got %q", signUrl)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:        signUrl,
		httpClient: &http.Client{},
		logger:     logger,
	}, nil
}

// SetHttpClient sets a custom HTTP client
func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

// Url returns the sign endpoint
func (c *Client) Url() string {
	return c.url
}

// SignTransactionBytes posts txBytes to the sidecar and returns the raw signature bytes
func (c *Client) SignTransactionBytes(ctx context.Context, txBytes []byte) ([]byte, error) {
	body, err := json.Marshal(&SignRequest{TxBytes: txBytes})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Sugar().Debugw("Sending sign request to sidecar",
		"url", c.url,
		"tx_bytes_len", len(txBytes),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, truncate(respBody, 256))
	}

	var sigBytes ByteArray
	if err := json.Unmarshal(respBody, &sigBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	c.logger.Sugar().Debugw("Received signature from sidecar",
		"url", c.url,
		"signature_len", len(sigBytes),
	)
	return sigBytes, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
