// Package chainscan verifies transaction status against Etherscan-style
// explorer APIs.
package chainscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Status of a transaction receipt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

var defaultEndpoints = map[string]string{
	"ethereum": "https://api.etherscan.io/api",
	"goerli":   "https://api-goerli.etherscan.io/api",
	"sepolia":  "https://api-sepolia.etherscan.io/api",
}

type Client struct {
	client    *http.Client
	apiKey    string
	endpoints map[string]string
}

func New(apiKey string) *Client {
	return &Client{
		client:    &http.Client{Timeout: 10 * time.Second},
		apiKey:    apiKey,
		endpoints: defaultEndpoints,
	}
}

// TxStatus looks up the receipt status of a transaction hash. The explorer
// returns result.status "1" for success, "0" for failure; an absent status
// means the transaction is still pending.
func (c *Client) TxStatus(ctx context.Context, txHash, network string) (Status, error) {
	endpoint, ok := c.endpoints[strings.ToLower(network)]
	if !ok {
		return "", fmt.Errorf("unsupported network: %s", network)
	}

	params := url.Values{
		"module": {"transaction"},
		"action": {"gettxreceiptstatus"},
		"txhash": {txHash},
		"apikey": {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("explorer request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch tx status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("explorer status %d", resp.StatusCode)
	}

	var payload struct {
		Result struct {
			Status string `json:"status"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode explorer payload: %w", err)
	}

	switch payload.Result.Status {
	case "1":
		return StatusSuccess, nil
	case "0":
		return StatusFailed, nil
	default:
		return StatusPending, nil
	}
}

// Verify reports whether a transaction has been confirmed successfully.
func (c *Client) Verify(ctx context.Context, txHash, network string) (bool, error) {
	status, err := c.TxStatus(ctx, txHash, network)
	if err != nil {
		return false, err
	}
	return status == StatusSuccess, nil
}
