package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sola/internal/adapters/config"
	"sola/pkg/errors"
)

const testWallet = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

func testClient(rpcURL string) *Client {
	return NewClient(config.SolanaConfig{
		RPCURL:         rpcURL,
		RequestTimeout: 2 * time.Second,
		RateLimit:      100,
		RateBurst:      100,
	})
}

func TestValidAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"typical wallet", testWallet, true},
		{"wrapped sol mint", "So11111111111111111111111111111111111111112", true},
		{"too short", "abc123", false},
		{"empty", "", false},
		{"contains zero", "0xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", false},
		{"contains uppercase o", "OxKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAs", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAddress(tt.addr))
		})
	}
}

func TestClient_GetSolBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getBalance", req.Method)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]interface{}{"value": 2_500_000_000},
		})
	}))
	defer srv.Close()

	balance, err := testClient(srv.URL).GetSolBalance(context.Background(), testWallet)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, balance, 1e-9)
}

func TestClient_GetSolBalance_InvalidAddress(t *testing.T) {
	_, err := testClient("http://unused").GetSolBalance(context.Background(), "garbage")
	assert.ErrorIs(t, err, errors.ErrInvalidAddress)
}

func TestClient_GetTokenBalance_SumsAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getTokenAccountsByOwner", req.Method)

		account := func(amount float64) map[string]interface{} {
			return map[string]interface{}{
				"account": map[string]interface{}{
					"data": map[string]interface{}{
						"parsed": map[string]interface{}{
							"info": map[string]interface{}{
								"mint":        "SoLAmint11111111111111111111111111111111111",
								"tokenAmount": map[string]interface{}{"uiAmount": amount},
							},
						},
					},
				},
			}
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"value": []interface{}{account(60_000), account(45_000)},
			},
		})
	}))
	defer srv.Close()

	balance, err := testClient(srv.URL).GetTokenBalance(
		context.Background(), testWallet, "SoLAmint11111111111111111111111111111111111")
	require.NoError(t, err)
	assert.InDelta(t, 105_000, balance, 1e-9)
}

func TestClient_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]interface{}{"code": -32005, "message": "node is behind"},
		})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetSolBalance(context.Background(), testWallet)
	assert.ErrorIs(t, err, errors.ErrRPCUnavailable)
}

func TestClient_SlowRPCMapsToTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(config.SolanaConfig{
		RPCURL:         srv.URL,
		RequestTimeout: 50 * time.Millisecond,
		RateLimit:      100,
		RateBurst:      100,
	})

	_, err := client.GetSolBalance(context.Background(), testWallet)
	assert.ErrorIs(t, err, errors.ErrTimeout)
}

func TestClient_HTTP429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetSolBalance(context.Background(), testWallet)
	assert.ErrorIs(t, err, errors.ErrRateLimitExceeded)
}
