// Package rpcdispatch routes a decoded JSON-RPC method call to the Method
// Dispatcher (spec.md §6). Both the HTTP and stdio transports share this
// routing table so the wire contract stays identical across adapters.
package rpcdispatch

import (
	"context"
	"encoding/json"

	"github.com/mcpp-project/mcpp-core/internal/domain/mcpperr"
	"github.com/mcpp-project/mcpp-core/internal/service"
)

// Dispatch decodes params for the named JSON-RPC method and invokes the
// matching DispatcherService call.
func Dispatch(ctx context.Context, d *service.DispatcherService, method string, params json.RawMessage) (interface{}, *mcpperr.Error) {
	switch method {
	case "tools/list":
		return d.ListTools(ctx)

	case "tools/call":
		var p service.CallToolParams
		if mErr := decodeParams(params, &p); mErr != nil {
			return nil, mErr
		}
		return d.CallTool(ctx, p)

	case "mcpp/get_data":
		var p service.GetDataParams
		if mErr := decodeParams(params, &p); mErr != nil {
			return nil, mErr
		}
		return d.GetData(ctx, p)

	case "mcpp/find_reference":
		var p service.FindReferenceParams
		if mErr := decodeParams(params, &p); mErr != nil {
			return nil, mErr
		}
		return d.FindReference(ctx, p)

	case "mcpp/resolve_placeholders":
		var p service.ResolvePlaceholdersParams
		if mErr := decodeParams(params, &p); mErr != nil {
			return nil, mErr
		}
		return d.ResolvePlaceholders(ctx, p)

	case "mcpp/provide_consent":
		var p service.ProvideConsentParams
		if mErr := decodeParams(params, &p); mErr != nil {
			return nil, mErr
		}
		return d.ProvideConsent(ctx, p)

	default:
		return nil, mcpperr.Newf(mcpperr.CodeMethodNotFound, "unknown method %q", method)
	}
}

// decodeParams unmarshals raw JSON-RPC params into dst, treating an absent
// params field as a zero value rather than an error.
func decodeParams(raw json.RawMessage, dst interface{}) *mcpperr.Error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return mcpperr.New(mcpperr.CodeInvalidParams, "failed to decode params: "+err.Error())
	}
	return nil
}
