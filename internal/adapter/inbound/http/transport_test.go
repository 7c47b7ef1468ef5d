package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTransport_StartAndShutdown(t *testing.T) {
	// Integration test: verify the real Start() method builds the mux correctly.
	// We start the transport, make a request to /health, then shut down.
	logger := slog.Default()

	transport := NewHTTPTransport(nil,
		WithAddr("127.0.0.1:0"),
		WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- transport.Start(ctx)
	}()

	// Give the server a moment to start
	time.Sleep(100 * time.Millisecond)

	// Cancel context to trigger shutdown
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return within 5 seconds after cancel")
	}
}

func TestWithAddr_Option(t *testing.T) {
	transport := &HTTPTransport{}
	WithAddr("127.0.0.1:9999")(transport)

	if transport.addr != "127.0.0.1:9999" {
		t.Errorf("addr = %q, want 127.0.0.1:9999", transport.addr)
	}
}

func TestWithHealthChecker_Option(t *testing.T) {
	hc := NewHealthChecker(nil, nil, "test")
	transport := &HTTPTransport{}
	WithHealthChecker(hc)(transport)

	if transport.healthChecker != hc {
		t.Error("WithHealthChecker did not set healthChecker")
	}
}

// buildTestMux mirrors the routing Start() builds, without Prometheus
// registration, so routing tests run fast and don't race metric names
// across subtests.
func buildTestMux(t *testing.T, transport *HTTPTransport) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	if transport.healthChecker != nil {
		mux.Handle("/health", transport.healthChecker.Handler())
	} else {
		mux.Handle("/health", healthHandler())
	}
	mux.Handle("/favicon.ico", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.Handle("/rpc", rpcHandler(transport.dispatcher, discardLogger()))
	return mux
}

func TestRouting_HealthRoute(t *testing.T) {
	transport := NewHTTPTransport(nil, WithAddr(":0"))
	mux := buildTestMux(t, transport)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestRouting_FaviconRoute(t *testing.T) {
	transport := NewHTTPTransport(nil, WithAddr(":0"))
	mux := buildTestMux(t, transport)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/favicon.ico")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("GET /favicon.ico status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestRouting_RPCRoute(t *testing.T) {
	transport := NewHTTPTransport(nil, WithAddr(":0"))
	mux := buildTestMux(t, transport)
	server := httptest.NewServer(mux)
	defer server.Close()

	body := `{"jsonrpc":"2.0","method":"nonexistent/thing","id":1}`
	resp, err := http.Post(server.URL+"/rpc", "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var rpcResp jsonRPCError
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rpcResp.Error.Code != -32601 {
		t.Errorf("error code = %d, want -32601", rpcResp.Error.Code)
	}
}
