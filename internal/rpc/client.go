package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a minimal JSON-RPC client for the escrowd server
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a client for the server at url
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Call invokes method with params and decodes the result object into out.
// An error result is returned as *RpcError.
func (c *Client) Call(ctx context.Context, method string, params interface{}, out interface{}) error {
	request := map[string]interface{}{"method": method}
	if params != nil {
		request["params"] = []interface{}{params}
	}
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calling %s: http status %d", method, resp.StatusCode)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	var status struct {
		Status       string `json:"status"`
		Error        string `json:"error"`
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(envelope.Result, &status); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	if status.Status != "success" {
		return &RpcError{Code: status.ErrorCode, ErrorString: status.Error, Type: status.Error, Message: status.ErrorMessage}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(envelope.Result, out)
}

// SubmitResult is the result of the submit method
type SubmitResult struct {
	EngineResult        string          `json:"engine_result"`
	EngineResultCode    int             `json:"engine_result_code"`
	EngineResultMessage string          `json:"engine_result_message"`
	Error               string          `json:"error,omitempty"`
	Applied             bool            `json:"applied"`
	Hash                string          `json:"hash"`
	Meta                json.RawMessage `json:"meta,omitempty"`
}

// Submit sends a signed transaction
func (c *Client) Submit(ctx context.Context, transaction interface{}) (*SubmitResult, error) {
	var result SubmitResult
	if err := c.Call(ctx, "submit", map[string]interface{}{"tx_json": transaction}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
