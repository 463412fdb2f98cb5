package protocol

import "encoding/json"

type JSONRPCRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      interface{}            `json:"id,omitempty"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id,omitempty"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Tool is the wire shape of a tool descriptor as advertised by tools/list.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Annotations map[string]bool        `json:"annotations,omitempty"`
}

type ToolCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Error kinds carried in ToolError.Kind. The set is closed: every failure a
// caller can observe maps onto exactly one of these.
const (
	ErrKindUnknownTool       = "unknown_tool"
	ErrKindValidation        = "validation_error"
	ErrKindServerStopped     = "server_stopped"
	ErrKindTimeout           = "timeout"
	ErrKindRateLimited       = "rate_limited"
	ErrKindUnreachable       = "unreachable"
	ErrKindMalformedResponse = "malformed_response"
	ErrKindUnknownSymbol     = "unknown_symbol"
)

// ToolError describes why a tool call produced no usable value.
type ToolError struct {
	Kind       string   `json:"kind"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

// ToolResult is the outcome of a single tool invocation. OK=true carries
// Value (possibly stale), OK=false carries Error. Cached and Stale are
// observability flags; a consumer may discount stale results but must not
// treat them as errors.
type ToolResult struct {
	OK     bool            `json:"ok"`
	Value  json.RawMessage `json:"value,omitempty"`
	Cached bool            `json:"cached,omitempty"`
	Stale  bool            `json:"stale,omitempty"`
	Error  *ToolError      `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Uptime int64  `json:"uptime"`
}
