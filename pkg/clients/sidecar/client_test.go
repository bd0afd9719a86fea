package sidecar

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func Test_ByteArray_JSON(t *testing.T) {
	data, err := json.Marshal(&SignRequest{TxBytes: []byte{0, 1, 255}})
	require.NoError(t, err)
	assert.Equal(t, `{"txBytes":[0,1,255]}`, string(data))

	empty, err := json.Marshal(ByteArray{})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(empty))

	var decoded ByteArray
	require.NoError(t, json.Unmarshal([]byte(`[3, 2, 1]`), &decoded))
	assert.Equal(t, ByteArray{3, 2, 1}, decoded)

	for _, bad := range []string{`"AAEC"`, `[256]`, `[-1]`, `[1.5]`, `{"a":1}`, `null`} {
		var b ByteArray
		assert.Error(t, json.Unmarshal([]byte(bad), &b), bad)
	}
}

func Test_Client_SignTransactionBytes(t *testing.T) {
	t.Run("wire contract", func(t *testing.T) {
		var gotContentType string
		var gotBody []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			gotContentType = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`[0,9,8,7]`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, zaptest.NewLogger(t))
		require.NoError(t, err)

		sig, err := client.SignTransactionBytes(context.Background(), []byte{0, 0, 0, 42})
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 9, 8, 7}, sig)
		assert.Equal(t, "application/json", gotContentType)
		assert.JSONEq(t, `{"txBytes":[0,0,0,42]}`, string(gotBody))
	})

	t.Run("non success status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "key locked", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client, err := NewClient(server.URL, zaptest.NewLogger(t))
		require.NoError(t, err)

		_, err = client.SignTransactionBytes(context.Background(), []byte{1})
		require.ErrorIs(t, err, ErrRequestFailed)
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, err.Error(), "key locked")
	})

	t.Run("unexpected shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"signature":"AAAA"}`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, zaptest.NewLogger(t))
		require.NoError(t, err)

		_, err = client.SignTransactionBytes(context.Background(), []byte{1})
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		client, err := NewClient(url, zaptest.NewLogger(t))
		require.NoError(t, err)

		_, err = client.SignTransactionBytes(context.Background(), []byte{1})
		assert.ErrorIs(t, err, ErrRequestFailed)
	})

	t.Run("caller deadline is honoured", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		client, err := NewClient(server.URL, zaptest.NewLogger(t))
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err = client.SignTransactionBytes(ctx, []byte{1})
		require.ErrorIs(t, err, ErrRequestFailed)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func Test_NewClient_InvalidUrl(t *testing.T) {
	_, err := NewClient("ftp://signer", zaptest.NewLogger(t))
	assert.Error(t, err)

	_, err = NewClient("://", zaptest.NewLogger(t))
	assert.Error(t, err)
}

func Test_ClientImplementsInterface(t *testing.T) {
	client, err := NewClient("http://localhost:7000/sign", zaptest.NewLogger(t))
	require.NoError(t, err)

	var s ISidecar = client
	s.SetHttpClient(&http.Client{Timeout: time.Second})
	assert.Equal(t, time.Second, client.httpClient.Timeout)
	assert.Equal(t, "http://localhost:7000/sign", client.Url())
}
