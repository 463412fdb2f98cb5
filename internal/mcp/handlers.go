package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/quantmesh/finmcp/internal/dispatch"
	"github.com/quantmesh/finmcp/internal/logger"
	"github.com/quantmesh/finmcp/internal/tools"
	"github.com/quantmesh/finmcp/pkg/protocol"
	"github.com/quantmesh/finmcp/pkg/version"
)

var log = logger.ForComponent("mcp")

type Handler struct {
	registry   *tools.Registry
	dispatcher *dispatch.Dispatcher
	startTime  time.Time

	// mu guards the session fields below. In daemon mode one Handler is
	// shared by every connection and requests arrive on concurrent
	// goroutines.
	mu          sync.Mutex
	initialized bool
	clientInfo  ClientInfo
}

type ClientInfo struct {
	Name    string
	Version string
}

func NewHandler(registry *tools.Registry, dispatcher *dispatch.Dispatcher) *Handler {
	return &Handler{
		registry:   registry,
		dispatcher: dispatcher,
		startTime:  time.Now(),
	}
}

func (h *Handler) Handle(ctx context.Context, req *Request) *Response {
	resp := &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
	}

	switch req.Method {
	case "initialize":
		result, err := h.handleInitialize(req)
		if err != nil {
			resp.Error = &protocol.JSONRPCError{
				Code:    -32603,
				Message: err.Error(),
			}
		} else {
			resp.Result = result
		}
	case "ping":
		resp.Result = protocol.HealthResponse{
			Status: "ok",
			Uptime: int64(time.Since(h.startTime).Seconds()),
		}
	case "tools/list":
		resp.Result = h.handleListTools()
	case "tools/call":
		result, err := h.handleCallTool(ctx, req)
		if err != nil {
			resp.Error = &protocol.JSONRPCError{
				Code:    -32603,
				Message: err.Error(),
			}
		} else {
			resp.Result = result
		}
	case "notifications/initialized":
		h.mu.Lock()
		h.initialized = true
		h.mu.Unlock()
		resp.Result = map[string]interface{}{}
	default:
		resp.Error = &protocol.JSONRPCError{
			Code:    -32601,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
	}

	return resp
}

func (h *Handler) handleInitialize(req *Request) (interface{}, error) {
	initReq := struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo"`
	}{}

	paramsData, err := json.Marshal(req.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	if err := json.Unmarshal(paramsData, &initReq); err != nil {
		return nil, fmt.Errorf("failed to parse initialize request: %w", err)
	}

	h.mu.Lock()
	h.clientInfo.Name = initReq.ClientInfo.Name
	h.clientInfo.Version = initReq.ClientInfo.Version
	h.mu.Unlock()

	log.Info("client initialized", "client", initReq.ClientInfo.Name, "version", initReq.ClientInfo.Version)

	return map[string]interface{}{
		"protocolVersion": negotiateProtocolVersion(initReq.ProtocolVersion),
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    "FinMCP Server",
			"version": version.Version,
		},
	}, nil
}

func negotiateProtocolVersion(clientVersion string) string {
	for _, v := range version.SupportedProtocolVersions {
		if clientVersion == v {
			return v
		}
	}

	return version.ProtocolVersion
}

func (h *Handler) handleListTools() interface{} {
	toolsList := h.registry.List()
	toolsData := make([]Tool, len(toolsList))

	for i, t := range toolsList {
		descriptor := Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: tools.Schema(t),
		}

		if annotated, ok := t.(tools.AnnotatedTool); ok {
			descriptor.Annotations = annotated.Annotations()
		}

		toolsData[i] = descriptor
	}

	return map[string]interface{}{
		"tools": toolsData,
	}
}

// handleCallTool delegates to the dispatcher and embeds the structured
// result as MCP text content. Tool-level failures are not transport
// errors: the result travels in-band with isError set.
func (h *Handler) handleCallTool(ctx context.Context, req *Request) (interface{}, error) {
	var callReq ToolCall

	paramsData, err := json.Marshal(req.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	if err := json.Unmarshal(paramsData, &callReq); err != nil {
		return nil, fmt.Errorf("failed to parse tool call request: %w", err)
	}

	if callReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	h.mu.Lock()
	ready := h.initialized
	h.mu.Unlock()
	if !ready {
		log.Debug("tools/call before initialized notification", "tool", callReq.Name)
	}

	result := h.dispatcher.Handle(ctx, callReq.Name, callReq.Arguments)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": string(resultJSON),
			},
		},
		"isError": !result.OK,
	}, nil
}
