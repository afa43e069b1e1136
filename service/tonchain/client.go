// Package tonchain is a thin JSON-RPC-over-HTTP client for the TON gateway
// the service reads contract state through and submits wallet transactions
// to. The gateway API is treated as opaque RPC: this package only moves
// JSON in and out, the contract semantics live in service/app.
package tonchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Gateway error code for a query targeting a non-existent record.
const CodeNotFound = -32004

type Client interface {
	// Call performs a single RPC round trip, decoding the result into
	// result when it is non-nil.
	Call(ctx context.Context, method string, params interface{}, result interface{}) error
}

// RPCError is an error response from the gateway.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// HTTPClient is the production Client. It holds no mutable state beyond a
// request counter and is safe for concurrent use.
type HTTPClient struct {
	url    string
	apiKey string
	client *http.Client
	nextID uint64
}

func NewHTTPClient(url, apiKey string) *HTTPClient {
	return &HTTPClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&c.nextID, 1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d: %s", res.StatusCode, body)
	}

	var rpcRes rpcResponse
	if err := json.Unmarshal(body, &rpcRes); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if rpcRes.Error != nil {
		return rpcRes.Error
	}

	if result != nil {
		if err := json.Unmarshal(rpcRes.Result, result); err != nil {
			return fmt.Errorf("failed to decode rpc result: %w", err)
		}
	}

	return nil
}
