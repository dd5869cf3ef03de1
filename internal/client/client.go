package client

import (
	"fmt"
	"time"

	"github.com/yourusername/naaw/internal/protocol"
)

const (
	DefaultSocketPath = "/tmp/naaw.sock"
	DefaultTimeout    = 5 * time.Second
)

// Client is the one-shot naaw daemon client. Each invocation sends a
// single command and exits; client and server share only the wire
// protocol.
type Client struct {
	conn *Connection
}

// NewClient creates a new naaw client
func NewClient(socketPath string, timeout time.Duration) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		conn: NewConnection(socketPath, timeout),
	}
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) connect() error {
	if c.conn.IsConnected() {
		return nil
	}
	return c.conn.Connect()
}

// Tag toggles tag membership for a node.
func (c *Client) Tag(id string) error {
	if err := c.connect(); err != nil {
		return err
	}
	return c.conn.Send(protocol.Command{Kind: protocol.KindTag, NodeID: id})
}

// Show toggles visibility of the tagged group.
func (c *Client) Show() error {
	if err := c.connect(); err != nil {
		return err
	}
	return c.conn.Send(protocol.Command{Kind: protocol.KindShow})
}

// Status reports the group visibility flag and the tagged node ids.
func (c *Client) Status() (bool, []string, error) {
	if err := c.connect(); err != nil {
		return false, nil, err
	}

	lines, err := c.conn.Request(protocol.Command{Kind: protocol.KindStatus})
	if err != nil {
		return false, nil, err
	}
	if len(lines) == 0 {
		return false, nil, fmt.Errorf("empty status response")
	}

	var shown bool
	switch lines[0] {
	case "shown":
		shown = true
	case "hidden":
		shown = false
	default:
		return false, nil, fmt.Errorf("unexpected status header %q", lines[0])
	}
	return shown, lines[1:], nil
}
