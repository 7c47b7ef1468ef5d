// Package http provides the HTTP transport adapter for the Method Dispatcher.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcpp-project/mcpp-core/internal/adapter/inbound/rpcdispatch"
	"github.com/mcpp-project/mcpp-core/internal/service"
)

// maxRequestBodySize is the maximum allowed request body size (1 MB).
const maxRequestBodySize = 1 << 20

// rpcHandler creates the HTTP handler for the Method Dispatcher's JSON-RPC
// surface. A single POST endpoint serves all six methods: tools/list,
// tools/call, mcpp/get_data, mcpp/find_reference, mcpp/resolve_placeholders,
// mcpp/provide_consent.
func rpcHandler(dispatcher *service.DispatcherService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlePost(w, r, dispatcher, logger)
		case http.MethodOptions:
			handleOptions(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
}

// handlePost decodes a JSON-RPC request, dispatches it to the matching
// DispatcherService method, and writes back a JSON-RPC response.
func handlePost(w http.ResponseWriter, r *http.Request, dispatcher *service.DispatcherService, logger *slog.Logger) {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/json" {
		writeJSONRPCError(w, nil, -32700, "Parse error: content type must be application/json")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer func() { _ = r.Body.Close() }()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSONRPCError(w, nil, -32700, "Parse error: request body too large (max 1MB)")
			return
		}
		writeJSONRPCError(w, nil, -32700, "Parse error: failed to read request body")
		return
	}

	if len(body) == 0 {
		writeJSONRPCError(w, nil, -32700, "Parse error: empty request body")
		return
	}
	if !json.Valid(body) {
		writeJSONRPCError(w, nil, -32700, "Parse error: invalid JSON")
		return
	}

	var rpcRequest struct {
		JSONRPC string          `json:"jsonrpc"`
		Method  string          `json:"method"`
		ID      json.RawMessage `json:"id"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(body, &rpcRequest); err != nil {
		writeJSONRPCError(w, nil, -32600, "Invalid Request: request must be a JSON object")
		return
	}
	if rpcRequest.JSONRPC != "2.0" {
		writeJSONRPCError(w, nil, -32600, `Invalid Request: missing or invalid jsonrpc version (must be "2.0")`)
		return
	}
	if rpcRequest.Method == "" {
		writeJSONRPCError(w, nil, -32600, "Invalid Request: missing method field")
		return
	}

	var id interface{}
	if len(rpcRequest.ID) > 0 {
		_ = json.Unmarshal(rpcRequest.ID, &id)
	}
	isNotification := rpcRequest.ID == nil

	ctx := r.Context()
	result, mErr := rpcdispatch.Dispatch(ctx, dispatcher, rpcRequest.Method, rpcRequest.Params)
	if mErr != nil {
		if isNotification {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		logger.Debug("dispatch error", "method", rpcRequest.Method, "code", mErr.Code, "message", mErr.Message)
		writeJSONRPCErrorWithDetails(w, id, int(mErr.Code), mErr.Message, mErr.Details)
		return
	}

	if isNotification {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	writeJSONRPCResult(w, id, result)
}

// handleOptions handles CORS preflight requests.
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours
	w.WriteHeader(http.StatusNoContent)
}

// jsonRPCSuccess represents a JSON-RPC 2.0 success response.
type jsonRPCSuccess struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result"`
}

// jsonRPCError represents a JSON-RPC 2.0 error response.
type jsonRPCError struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      interface{}       `json:"id"`
	Error   jsonRPCErrorField `json:"error"`
}

type jsonRPCErrorField struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// writeJSONRPCResult writes a JSON-RPC success response.
func writeJSONRPCResult(w http.ResponseWriter, id interface{}, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(jsonRPCSuccess{JSONRPC: "2.0", ID: id, Result: result})
}

// writeJSONRPCError writes a JSON-RPC error response with no data field.
func writeJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string) {
	writeJSONRPCErrorWithDetails(w, id, code, message, nil)
}

// writeJSONRPCErrorWithDetails writes a JSON-RPC error response, per
// spec.md §7's propagation policy every dispatcher error carries a stable
// code plus an optional structured data payload (e.g. a pending
// ConsentRequest).
func writeJSONRPCErrorWithDetails(w http.ResponseWriter, id interface{}, code int, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // JSON-RPC errors still return 200 OK

	errResp := jsonRPCError{
		JSONRPC: "2.0",
		ID:      id,
		Error: jsonRPCErrorField{
			Code:    code,
			Message: message,
			Data:    details,
		},
	}

	_ = json.NewEncoder(w).Encode(errResp)
}

// healthHandler returns an HTTP handler that responds with 200 OK for health checks.
func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}
