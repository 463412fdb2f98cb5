package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/quantmesh/finmcp/internal/adapter"
	"github.com/quantmesh/finmcp/internal/cache"
	"github.com/quantmesh/finmcp/internal/lifecycle"
	"github.com/quantmesh/finmcp/internal/logger"
	"github.com/quantmesh/finmcp/internal/tools"
	"github.com/quantmesh/finmcp/pkg/protocol"
)

var log = logger.ForComponent("dispatch")

// Dispatcher is the single path every tool call takes: catalog lookup,
// argument validation, cache probe, provider readiness, execution, and the
// stale-fallback degradation when the provider fails.
type Dispatcher struct {
	registry    *tools.Registry
	store       cache.Store
	provider    adapter.Adapter
	manager     *lifecycle.Manager
	policy      atomic.Pointer[cache.Policy]
	callTimeout time.Duration
}

func NewDispatcher(registry *tools.Registry, store cache.Store, provider adapter.Adapter, manager *lifecycle.Manager, policy *cache.Policy, callTimeout time.Duration) *Dispatcher {
	d := &Dispatcher{
		registry:    registry,
		store:       store,
		provider:    provider,
		manager:     manager,
		callTimeout: callTimeout,
	}
	d.policy.Store(policy)
	return d
}

// SetPolicy swaps the TTL policy. Calls in flight keep the policy they
// started with.
func (d *Dispatcher) SetPolicy(policy *cache.Policy) {
	d.policy.Store(policy)
}

// Handle runs one tool call end to end. It always returns a structured
// result; transport-level failures are the caller's concern.
func (d *Dispatcher) Handle(ctx context.Context, name string, args map[string]interface{}) *protocol.ToolResult {
	callID := uuid.NewString()

	tool, ok := d.registry.Get(name)
	if !ok {
		log.Debug("unknown tool requested", "call_id", callID, "tool", name)
		return errorResult(protocol.ErrKindUnknownTool, fmt.Sprintf("unknown tool: %s", name), nil)
	}

	validated, verr := tools.Validate(tool, args)
	if verr != nil {
		log.Debug("argument validation failed", "call_id", callID, "tool", name, "violations", len(verr.Violations))
		return errorResult(protocol.ErrKindValidation, verr.Error(), verr.Violations)
	}

	key := cache.Key(name, validated)
	if entry, ok := d.store.Get(key); ok {
		log.Debug("cache hit", "call_id", callID, "tool", name)
		return &protocol.ToolResult{OK: true, Value: entry.Value, Cached: true}
	}

	if err := d.manager.EnsureReady(ctx); err != nil {
		if errors.Is(err, lifecycle.ErrStopped) {
			return errorResult(protocol.ErrKindServerStopped, "server is stopped", nil)
		}
		// Init failure is indistinguishable from an unreachable provider
		// as far as the caller cares; a stale answer beats no answer.
		log.Warn("provider unavailable", "call_id", callID, "tool", name, "error", err)
		return d.degrade(key, adapter.NewError(adapter.FailUnreachable, err.Error(), err))
	}

	value, exErr := d.execute(ctx, tool, validated)
	if exErr != nil {
		aerr := adapter.Classify(exErr, exErr.Error())
		log.Warn("tool execution failed", "call_id", callID, "tool", name, "kind", string(aerr.Kind), "error", exErr)
		if aerr.Kind == adapter.FailUnknownSymbol {
			return errorResult(protocol.ErrKindUnknownSymbol, aerr.Message, nil)
		}
		return d.degrade(key, aerr)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Error("tool result not serializable", "call_id", callID, "tool", name, "error", err)
		return errorResult(protocol.ErrKindMalformedResponse, "tool produced unserializable result", nil)
	}

	ttl := d.policy.Load().For(name)
	d.store.Put(key, raw, ttl)
	log.Debug("tool call completed", "call_id", callID, "tool", name, "ttl", ttl)

	return &protocol.ToolResult{OK: true, Value: raw}
}

// execute runs the tool handler under the call timeout, converting panics
// into malformed-response failures so one bad handler cannot take down the
// server.
func (d *Dispatcher) execute(ctx context.Context, tool tools.Tool, args tools.ValidatedArgs) (value interface{}, err error) {
	callCtx := ctx
	if d.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.callTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("tool handler panicked", "tool", tool.Name(), "panic", r)
			value = nil
			err = adapter.NewError(adapter.FailMalformed, fmt.Sprintf("tool handler panic: %v", r), nil)
		}
	}()

	return tool.Execute(callCtx, d.provider, args)
}

// degrade serves the expired cache entry for key when one exists, marked
// stale; otherwise it surfaces the provider failure.
func (d *Dispatcher) degrade(key string, aerr *adapter.Error) *protocol.ToolResult {
	if entry, ok := d.store.GetStale(key); ok {
		log.Info("serving stale cache entry after provider failure", "key", key, "kind", string(aerr.Kind))
		return &protocol.ToolResult{OK: true, Value: entry.Value, Cached: true, Stale: true}
	}
	return errorResult(failureKind(aerr.Kind), aerr.Message, nil)
}

func failureKind(kind adapter.FailureKind) string {
	switch kind {
	case adapter.FailTimeout:
		return protocol.ErrKindTimeout
	case adapter.FailRateLimited:
		return protocol.ErrKindRateLimited
	case adapter.FailUnreachable:
		return protocol.ErrKindUnreachable
	case adapter.FailMalformed:
		return protocol.ErrKindMalformedResponse
	case adapter.FailUnknownSymbol:
		return protocol.ErrKindUnknownSymbol
	}
	return protocol.ErrKindUnreachable
}

func errorResult(kind, message string, violations []string) *protocol.ToolResult {
	return &protocol.ToolResult{
		OK: false,
		Error: &protocol.ToolError{
			Kind:       kind,
			Message:    message,
			Violations: violations,
		},
	}
}
