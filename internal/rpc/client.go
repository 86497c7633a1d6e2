package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/usereml/lightecho-stellar-oracle/internal/crypto"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc/rpc_types"
)

// Client calls a remote Server over HTTP, signing requests with its keys
type Client struct {
	URL  string
	HTTP *http.Client
	Keys []*crypto.KeyPair
}

// NewClient creates a client for the JSON-RPC endpoint at url
func NewClient(url string, keys ...*crypto.KeyPair) *Client {
	return &Client{URL: url, HTTP: http.DefaultClient, Keys: keys}
}

// Call invokes method and returns the result object. An error status is
// returned as a *rpc_types.RpcError. When the client has keys and params
// carry no sequence, the next sequence of the first key is fetched first;
// concurrent signed calls from one key must therefore set it themselves.
func (c *Client) Call(ctx context.Context, method string, params map[string]interface{}) (map[string]interface{}, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	if _, ok := params[rpc_types.SequenceField]; !ok && len(c.Keys) > 0 {
		addr, err := c.Keys[0].Address()
		if err != nil {
			return nil, err
		}
		seq, err := c.NextSequence(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch sequence for %s: %w", addr, err)
		}
		params[rpc_types.SequenceField] = seq
	}
	if err := rpc_types.Sign(method, params, c.Keys...); err != nil {
		return nil, fmt.Errorf("failed to sign %s: %w", method, err)
	}
	return c.post(ctx, method, params)
}

// NextSequence asks the server for the sequence address must sign with next
func (c *Client) NextSequence(ctx context.Context, address string) (uint64, error) {
	result, err := c.post(ctx, "account_sequence", map[string]interface{}{"address": address})
	if err != nil {
		return 0, err
	}
	seq, ok := result["sequence"].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid response: no sequence in %v", result)
	}
	return uint64(seq), nil
}

func (c *Client) post(ctx context.Context, method string, params map[string]interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(map[string]interface{}{
		"method": method,
		"params": []interface{}{params},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected HTTP status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var response struct {
		Result map[string]interface{} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	if response.Result["status"] == "error" {
		rpcErr := &rpc_types.RpcError{}
		rpcErr.ErrorString, _ = response.Result["error"].(string)
		rpcErr.Message, _ = response.Result["error_message"].(string)
		if code, ok := response.Result["error_code"].(float64); ok {
			rpcErr.Code = int(code)
		}
		return response.Result, rpcErr
	}
	return response.Result, nil
}
