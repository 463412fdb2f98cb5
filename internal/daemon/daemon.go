package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/quantmesh/finmcp/internal/logger"
	"github.com/quantmesh/finmcp/internal/mcp"
)

var log = logger.ForComponent("daemon")

// Daemon serves the MCP surface over a unix socket, one JSON-RPC
// connection per client. Requests ride the plain newline-delimited codec
// so raw clients can still talk to the socket with nc.
type Daemon struct {
	socketPath     string
	maxConnections int
	listener       net.Listener
	server         *mcp.Server
	conns          map[*jsonrpc2.Conn]bool
	connMu         sync.Mutex
	shutdown       chan struct{}
	shutdownOnce   sync.Once
	startTime      time.Time
}

func NewDaemon(socketPath string, maxConnections int, server *mcp.Server) *Daemon {
	return &Daemon{
		socketPath:     socketPath,
		maxConnections: maxConnections,
		server:         server,
		conns:          make(map[*jsonrpc2.Conn]bool),
		shutdown:       make(chan struct{}),
		startTime:      time.Now(),
	}
}

// Start binds the socket and serves until Shutdown. It blocks.
func (d *Daemon) Start(ctx context.Context) error {
	socketDir := filepath.Dir(d.socketPath)
	if err := os.MkdirAll(socketDir, 0700); err != nil {
		return fmt.Errorf("failed to create socket dir: %w", err)
	}

	if err := os.Remove(d.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", d.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	d.listener = listener

	if err := os.Chmod(d.socketPath, 0700); err != nil {
		listener.Close()
		return fmt.Errorf("failed to chmod socket: %w", err)
	}

	log.Info("daemon listening", "socket", d.socketPath, "tools", len(d.server.Registry().Names()))
	d.acceptConnections(ctx)
	return nil
}

func (d *Daemon) acceptConnections(ctx context.Context) {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				return
			default:
				log.Warn("accept failed", "error", err)
				continue
			}
		}

		d.connMu.Lock()
		over := d.maxConnections > 0 && len(d.conns) >= d.maxConnections
		d.connMu.Unlock()
		if over {
			log.Warn("connection limit reached, rejecting client", "limit", d.maxConnections)
			conn.Close()
			continue
		}

		d.serveConn(ctx, conn)
	}
}

func (d *Daemon) serveConn(ctx context.Context, conn net.Conn) {
	stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.PlainObjectCodec{})
	rpcConn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.AsyncHandler(&connHandler{server: d.server}))

	d.connMu.Lock()
	d.conns[rpcConn] = true
	d.connMu.Unlock()

	go func() {
		<-rpcConn.DisconnectNotify()
		d.connMu.Lock()
		delete(d.conns, rpcConn)
		d.connMu.Unlock()
	}()
}

// connHandler bridges jsonrpc2 requests into the MCP handler.
type connHandler struct {
	server *mcp.Server
}

func (h *connHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	mcpReq := &mcp.Request{
		JSONRPC: "2.0",
		Method:  req.Method,
	}
	if !req.Notif {
		mcpReq.ID = req.ID.String()
	}
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &mcpReq.Params); err != nil {
			if !req.Notif {
				conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
					Code:    jsonrpc2.CodeInvalidParams,
					Message: "params must be an object",
				})
			}
			return
		}
	}

	resp := h.server.HandleRequest(ctx, mcpReq)
	if req.Notif {
		return
	}

	if resp.Error != nil {
		conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
			Code:    int64(resp.Error.Code),
			Message: resp.Error.Message,
		})
		return
	}
	if err := conn.Reply(ctx, req.ID, resp.Result); err != nil {
		log.Debug("reply failed", "method", req.Method, "error", err)
	}
}

func (d *Daemon) Shutdown() {
	d.shutdownOnce.Do(func() {
		close(d.shutdown)

		if d.listener != nil {
			d.listener.Close()
		}

		d.connMu.Lock()
		for conn := range d.conns {
			conn.Close()
		}
		d.connMu.Unlock()

		os.Remove(d.socketPath)
		log.Info("daemon stopped", "uptime", d.Uptime())
	})
}

func (d *Daemon) SocketPath() string {
	return d.socketPath
}

func (d *Daemon) Uptime() time.Duration {
	return time.Since(d.startTime)
}
