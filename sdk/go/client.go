package sentinelgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Client is the MCPP SDK client. It speaks the gateway's JSON-RPC 2.0 wire
// contract (spec.md §6) over HTTP: tools/list, tools/call, and the four
// mcpp/* data-mediation methods.
type Client struct {
	serverAddr     string
	timeout        time.Duration
	httpClient     *http.Client
	requesterName  string
	requesterRoles []string

	nextID int64
}

// NewClient creates a new MCPP SDK client.
// It reads configuration from MCPP_* environment variables by default.
// Options can be used to override the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		serverAddr:     os.Getenv("MCPP_SERVER_ADDR"),
		timeout:        parseDurationEnv("MCPP_TIMEOUT", 5*time.Second),
		requesterName:  os.Getenv("MCPP_REQUESTER_NAME"),
		requesterRoles: parseRolesEnv("MCPP_REQUESTER_ROLES"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c
}

// GetData fetches a cached tool call result, resolving it only if the
// supplied usage context satisfies the tool's data policy.
func (c *Client) GetData(ctx context.Context, p GetDataParams) (CachedEntry, error) {
	c.fillDefaultRequester(p.UsageContext)
	var result CachedEntry
	err := c.call(ctx, "mcpp/get_data", p, &result)
	return result, err
}

// FindReference mints a placeholder for data matching a keyword, without
// exposing the underlying value.
func (c *Client) FindReference(ctx context.Context, p FindReferenceParams) (FindReferenceResult, error) {
	var result FindReferenceResult
	err := c.call(ctx, "mcpp/find_reference", p, &result)
	return result, err
}

// ResolvePlaceholders walks a data structure and resolves any embedded
// placeholders the usage context's policy permits.
func (c *Client) ResolvePlaceholders(ctx context.Context, p ResolvePlaceholdersParams) (ResolvePlaceholdersResult, error) {
	c.fillDefaultRequester(p.UsageContext)
	var result ResolvePlaceholdersResult
	err := c.call(ctx, "mcpp/resolve_placeholders", p, &result)
	return result, err
}

// ProvideConsent answers a pending consent request raised by a prior
// GetData or ResolvePlaceholders call.
func (c *Client) ProvideConsent(ctx context.Context, p ProvideConsentParams) (ProvideConsentResult, error) {
	var result ProvideConsentResult
	err := c.call(ctx, "mcpp/provide_consent", p, &result)
	return result, err
}

// CallTool invokes a registered tool. Sensitive output is cached server-side
// and returned as a summary carrying its dataRefId rather than inline.
func (c *Client) CallTool(ctx context.Context, p CallToolParams) (interface{}, error) {
	var result interface{}
	err := c.call(ctx, "tools/call", p, &result)
	return result, err
}

// ListTools returns the tool catalog the gateway currently exposes.
func (c *Client) ListTools(ctx context.Context) (ToolListResult, error) {
	var result ToolListResult
	err := c.call(ctx, "tools/list", struct{}{}, &result)
	return result, err
}

// fillDefaultRequester fills in the client's default requester identity
// when a usage context is present but doesn't name one.
func (c *Client) fillDefaultRequester(u *UsageContext) {
	if u == nil {
		return
	}
	if u.Requester.Name == "" {
		u.Requester.Name = c.requesterName
	}
	if len(u.Requester.Roles) == 0 {
		u.Requester.Roles = c.requesterRoles
	}
}

// jsonRPCRequest is the wire envelope for an outgoing call.
type jsonRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	ID      int64       `json:"id"`
	Params  interface{} `json:"params,omitempty"`
}

// jsonRPCResponse is the wire envelope for an incoming reply.
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
	} `json:"error"`
}

// call performs a single JSON-RPC request/response round trip against the
// gateway's /rpc endpoint and decodes the result into dst.
func (c *Client) call(ctx context.Context, method string, params interface{}, dst interface{}) error {
	c.nextID++
	reqBody := jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		ID:      c.nextID,
		Params:  params,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(c.serverAddr, "/") + "/rpc"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &ServerUnreachableError{Cause: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return &RPCError{Code: httpResp.StatusCode, Message: fmt.Sprintf("unexpected HTTP status: %s", string(body))}
	}

	var resp jsonRPCResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if resp.Error != nil {
		var data interface{}
		if len(resp.Error.Data) > 0 {
			_ = json.Unmarshal(resp.Error.Data, &data)
		}
		return errorFromRPC(resp.Error.Code, resp.Error.Message, data)
	}

	if dst != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, dst); err != nil {
			return fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	return nil
}

// Helper functions for env var parsing.

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}

func parseRolesEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}
