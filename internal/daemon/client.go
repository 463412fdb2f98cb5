package daemon

import (
	"context"
	"net"
	"time"

	"github.com/sourcegraph/jsonrpc2"
)

// Client talks to a running daemon over its unix socket.
type Client struct {
	conn *jsonrpc2.Conn
}

func Dial(ctx context.Context, socketPath string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, err
	}

	stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.PlainObjectCodec{})
	return &Client{
		conn: jsonrpc2.NewConn(ctx, stream, noopHandler{}),
	}, nil
}

type noopHandler struct{}

func (noopHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {}

func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	return c.conn.Call(ctx, method, params, result)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping reports whether the daemon behind socketPath answers within the
// timeout.
func Ping(socketPath string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := Dial(ctx, socketPath)
	if err != nil {
		return false
	}
	defer client.Close()

	var result map[string]interface{}
	return client.Call(ctx, "ping", map[string]interface{}{}, &result) == nil
}
