// Package mcpclient provides outbound adapters that forward tools/call to
// the upstream MCP server a tool's logic actually lives on. Running the
// tool is out of scope for MCPP itself (spec.md's Non-goals) — this
// package is the one boundary port a deployment points at something real.
package mcpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"

	"github.com/mcpp-project/mcpp-core/internal/domain/cache"
	"github.com/mcpp-project/mcpp-core/internal/service"
)

// maxResponseBodySize bounds how much of the upstream's response is read,
// preventing OOM from a malicious or misbehaving upstream.
const maxResponseBodySize = 10 * 1024 * 1024 // 10MB

// HTTPExecutor implements service.ToolExecutor by forwarding tools/call as
// a JSON-RPC request to an upstream MCP server's Streamable HTTP endpoint.
// Grounded in the teacher's outbound HTTP MCP client: same TLS floor, same
// idle-connection tuning, same response-size ceiling, reduced from a
// duplex streaming client to a single request/response call because
// Execute has no notion of a session to keep alive across calls.
type HTTPExecutor struct {
	endpoint   string
	httpClient *http.Client
}

// Option is a functional option for configuring HTTPExecutor.
type Option func(*HTTPExecutor)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *HTTPExecutor) {
		e.httpClient = client
	}
}

// WithTimeout sets the request timeout for the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(e *HTTPExecutor) {
		if e.httpClient != nil {
			e.httpClient.Timeout = d
		}
	}
}

// NewHTTPExecutor creates an executor forwarding to the given upstream
// MCP server endpoint.
func NewHTTPExecutor(endpoint string, opts ...Option) *HTTPExecutor {
	e := &HTTPExecutor{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute forwards name/arguments to the upstream as a tools/call request
// and classifies the result's Kind from its shape: a {"columns": [...],
// "rows": [...]} object becomes a cache.TablePayload, a JSON string
// becomes KindText, and anything else is passed through as KindJSON.
func (e *HTTPExecutor) Execute(ctx context.Context, name string, arguments json.RawMessage) (service.ToolExecutionResult, error) {
	id, err := jsonrpc.MakeID(name + ":" + time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return service.ToolExecutionResult{}, fmt.Errorf("building request id: %w", err)
	}

	params, err := json.Marshal(struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}{Name: name, Arguments: arguments})
	if err != nil {
		return service.ToolExecutionResult{}, fmt.Errorf("marshal tools/call params: %w", err)
	}

	req := &jsonrpc.Request{ID: id, Method: "tools/call", Params: params}
	body, err := jsonrpc.EncodeMessage(req)
	if err != nil {
		return service.ToolExecutionResult{}, fmt.Errorf("encode tools/call request: %w", err)
	}

	respBody, err := e.send(ctx, body)
	if err != nil {
		return service.ToolExecutionResult{}, err
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return service.ToolExecutionResult{}, fmt.Errorf("decode upstream response: %w", err)
	}
	if envelope.Error != nil {
		return service.ToolExecutionResult{}, fmt.Errorf("upstream tool error %d: %s", envelope.Error.Code, envelope.Error.Message)
	}

	return classifyResult(envelope.Result)
}

// send performs the HTTP POST and returns the raw response body.
func (e *HTTPExecutor) send(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// classifyResult shapes a raw JSON result into a ToolExecutionResult,
// recognizing the table shape the Data Cache and Reference Finder expect.
func classifyResult(raw json.RawMessage) (service.ToolExecutionResult, error) {
	if len(raw) == 0 {
		return service.ToolExecutionResult{Kind: cache.KindJSON, Payload: nil}, nil
	}

	var table struct {
		Columns []string        `json:"columns"`
		Rows    [][]interface{} `json:"rows"`
	}
	if json.Unmarshal(raw, &table) == nil && table.Columns != nil {
		return service.ToolExecutionResult{
			Kind: cache.KindTable,
			Payload: cache.TablePayload{
				Columns: table.Columns,
				Rows:    table.Rows,
			},
		}, nil
	}

	var text string
	if json.Unmarshal(raw, &text) == nil {
		return service.ToolExecutionResult{Kind: cache.KindText, Payload: text}, nil
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return service.ToolExecutionResult{}, fmt.Errorf("decode tool result: %w", err)
	}
	return service.ToolExecutionResult{Kind: cache.KindJSON, Payload: payload}, nil
}

var _ service.ToolExecutor = (*HTTPExecutor)(nil)
