// Package stdio provides the stdio transport adapter for the Method Dispatcher.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/mcpp-project/mcpp-core/internal/adapter/inbound/rpcdispatch"
	"github.com/mcpp-project/mcpp-core/internal/domain/mcpperr"
	"github.com/mcpp-project/mcpp-core/internal/service"
)

// maxLineSize bounds a single JSON-RPC request line, mirroring the HTTP
// transport's request body cap.
const maxLineSize = 1 << 20

const (
	codeParseError     mcpperr.Code = -32700
	codeInvalidRequest mcpperr.Code = -32600
)

// jsonRPCErrorEnvelope mirrors the wire error shape produced by the HTTP transport.
type jsonRPCErrorEnvelope struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      interface{}      `json:"id"`
	Error   jsonRPCErrorBody `json:"error"`
}

type jsonRPCErrorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type jsonRPCResultEnvelope struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result"`
}

// StdioTransport is the inbound adapter that reads newline-delimited JSON-RPC
// requests from stdin and writes newline-delimited JSON-RPC responses to
// stdout, dispatching each to the Method Dispatcher.
type StdioTransport struct {
	dispatcher *service.DispatcherService
	logger     *slog.Logger
}

// NewStdioTransport creates a stdio transport adapter wrapping the given dispatcher.
func NewStdioTransport(dispatcher *service.DispatcherService, logger *slog.Logger) *StdioTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdioTransport{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start reads one JSON-RPC request per line from stdin, dispatches it, and
// writes the response to stdout. It blocks until stdin is closed or the
// context is cancelled.
func (t *StdioTransport) Start(ctx context.Context) error {
	done := make(chan struct{})

	var writeMu sync.Mutex
	writeResponse := func(v interface{}) {
		writeMu.Lock()
		defer writeMu.Unlock()
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(v); err != nil {
			t.logger.Error("failed to write response", "error", err)
		}
	}

	go func() {
		defer close(done)

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			t.handleLine(ctx, append([]byte(nil), line...), writeResponse)
		}
		if err := scanner.Err(); err != nil {
			t.logger.Error("stdin read error", "error", err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case <-done:
		return nil
	}
}

// handleLine decodes and dispatches a single JSON-RPC request line.
func (t *StdioTransport) handleLine(ctx context.Context, line []byte, writeResponse func(interface{})) {
	if !json.Valid(line) {
		writeResponse(newErrorEnvelope(nil, codeParseError, "Parse error: invalid JSON", nil))
		return
	}

	var req struct {
		JSONRPC string          `json:"jsonrpc"`
		Method  string          `json:"method"`
		ID      json.RawMessage `json:"id"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(line, &req); err != nil {
		writeResponse(newErrorEnvelope(nil, codeInvalidRequest, "Invalid Request: request must be a JSON object", nil))
		return
	}
	if req.JSONRPC != "2.0" {
		writeResponse(newErrorEnvelope(nil, codeInvalidRequest, `Invalid Request: missing or invalid jsonrpc version (must be "2.0")`, nil))
		return
	}
	if req.Method == "" {
		writeResponse(newErrorEnvelope(nil, codeInvalidRequest, "Invalid Request: missing method field", nil))
		return
	}

	var id interface{}
	if len(req.ID) > 0 {
		_ = json.Unmarshal(req.ID, &id)
	}
	isNotification := req.ID == nil

	result, mErr := rpcdispatch.Dispatch(ctx, t.dispatcher, req.Method, req.Params)
	if isNotification {
		return
	}
	if mErr != nil {
		t.logger.Debug("dispatch error", "method", req.Method, "code", mErr.Code, "message", mErr.Message)
		writeResponse(newErrorEnvelope(id, mErr.Code, mErr.Message, mErr.Details))
		return
	}
	writeResponse(jsonRPCResultEnvelope{JSONRPC: "2.0", ID: id, Result: result})
}

func newErrorEnvelope(id interface{}, code mcpperr.Code, message string, details interface{}) jsonRPCErrorEnvelope {
	return jsonRPCErrorEnvelope{
		JSONRPC: "2.0",
		ID:      id,
		Error:   jsonRPCErrorBody{Code: int(code), Message: message, Data: details},
	}
}

// Close gracefully shuts down the transport. For stdio, there are no
// resources to clean up beyond the process's own stdin/stdout.
func (t *StdioTransport) Close() error {
	return nil
}
