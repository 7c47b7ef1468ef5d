// Package http provides the HTTP transport for the Method Dispatcher.
//
// This package exposes the Model Context Privacy Protocol's wire contract
// (spec.md §6) over a single JSON-RPC 2.0 endpoint, for clients that would
// rather speak HTTP than stdio.
//
// # Usage
//
// Create and start an HTTP transport:
//
//	transport := http.NewHTTPTransport(dispatcher,
//	    http.WithAddr(":8080"),
//	    http.WithLogger(logger),
//	    http.WithHealthChecker(healthChecker),
//	)
//	err := transport.Start(ctx)
//
// # Endpoints
//
//	POST /rpc     - Send a JSON-RPC request, receive a JSON-RPC response
//	OPTIONS /rpc  - CORS preflight handling
//	GET /health   - Component health check (200 healthy, 503 degraded)
//	GET /metrics  - Prometheus metrics
//
// # Methods
//
// /rpc accepts the six methods the Method Dispatcher answers:
//
//	tools/list                  - list registered tools
//	tools/call                  - invoke a tool; sensitive output is cached,
//	                               not returned inline
//	mcpp/get_data                - fetch a cached tool call's data
//	mcpp/find_reference           - mint a placeholder from a keyword match
//	mcpp/resolve_placeholders      - resolve placeholders embedded in data
//	mcpp/provide_consent          - answer a pending consent request
//
// # Middleware Chain
//
// Requests pass through middleware in this order (outermost first):
//
//  1. MetricsMiddleware  - records request duration and status
//  2. RequestIDMiddleware - extracts/generates a request ID, enriches the logger
//  3. Handler             - decodes the JSON-RPC envelope and dispatches
//
// Unlike the upstream MCP transport this gateway sits in front of, there is
// no session concept, no server-initiated push, and no authentication layer:
// the gateway mediates data access, not identity.
package http
