package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"golang.org/x/time/rate"

	"sola/internal/adapters/config"
	"sola/pkg/errors"
	"sola/pkg/logger"
)

const lamportsPerSol = 1_000_000_000

// Client is a minimal Solana JSON-RPC client covering the read-only calls
// the assistant needs: native balance and SPL token balances.
type Client struct {
	rpcURL  string
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
	reqID   atomic.Int64
}

// NewClient creates a new Solana RPC client
func NewClient(cfg config.SolanaConfig) *Client {
	return &Client{
		rpcURL:  cfg.RPCURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		log:     logger.Get().With("component", "solana_rpc"),
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs a single JSON-RPC request, honoring the client rate limit
func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(errors.ErrRateLimitExceeded, err.Error())
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.reqID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.Wrapf(errors.ErrTimeout, "%s: %v", method, err)
		}
		return errors.Wrapf(errors.ErrRPCUnavailable, "%s: %v", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.Wrapf(errors.ErrRateLimitExceeded, "%s: http 429", method)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrRPCUnavailable, "%s: http %d", method, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrRPCUnavailable, err.Error())
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return errors.Wrapf(errors.ErrRPCUnavailable, "%s: malformed response: %v", method, err)
	}
	if rpcResp.Error != nil {
		if rpcResp.Error.Code == -32602 {
			return errors.Wrapf(errors.ErrInvalidAddress, "%s: %s", method, rpcResp.Error.Message)
		}
		return errors.Wrapf(errors.ErrRPCUnavailable, "%s: rpc error %d: %s",
			method, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return json.Unmarshal(rpcResp.Result, result)
}

// GetSolBalance returns the native SOL balance of a wallet
func (c *Client) GetSolBalance(ctx context.Context, wallet string) (float64, error) {
	if !ValidAddress(wallet) {
		return 0, errors.Wrapf(errors.ErrInvalidAddress, "wallet %q", wallet)
	}

	var result struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, "getBalance", []interface{}{wallet}, &result); err != nil {
		return 0, err
	}

	return float64(result.Value) / lamportsPerSol, nil
}

type tokenAccountsResult struct {
	Value []struct {
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						Mint        string `json:"mint"`
						TokenAmount struct {
							UIAmount float64 `json:"uiAmount"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

// GetTokenBalance returns the wallet's total balance of an SPL token,
// summed across all token accounts holding that mint
func (c *Client) GetTokenBalance(ctx context.Context, wallet string, mint string) (float64, error) {
	if !ValidAddress(wallet) {
		return 0, errors.Wrapf(errors.ErrInvalidAddress, "wallet %q", wallet)
	}

	var result tokenAccountsResult
	params := []interface{}{
		wallet,
		map[string]string{"mint": mint},
		map[string]string{"encoding": "jsonParsed"},
	}
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return 0, err
	}

	total := 0.0
	for _, acc := range result.Value {
		total += acc.Account.Data.Parsed.Info.TokenAmount.UIAmount
	}

	c.log.Debugf("Token balance for %s: %.4f (mint=%s, accounts=%d)",
		wallet, total, mint, len(result.Value))
	return total, nil
}

// ValidAddress performs a cheap shape check on a base58 Solana address.
// Real validation happens on the RPC side; this only rejects obvious garbage.
func ValidAddress(addr string) bool {
	if len(addr) < 32 || len(addr) > 44 {
		return false
	}
	for _, r := range addr {
		switch {
		case r >= '1' && r <= '9':
		case r >= 'A' && r <= 'H':
		case r >= 'J' && r <= 'N':
		case r >= 'P' && r <= 'Z':
		case r >= 'a' && r <= 'k':
		case r >= 'm' && r <= 'z':
		default:
			return false
		}
	}
	return true
}

func (c *Client) String() string {
	return fmt.Sprintf("solana.Client(%s)", c.rpcURL)
}
