package client

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/yourusername/naaw/internal/protocol"
)

// Connection manages the one-shot Unix domain socket connection to
// the naaw daemon.
type Connection struct {
	socketPath string
	conn       net.Conn
	timeout    time.Duration
}

// NewConnection creates a new connection instance
func NewConnection(socketPath string, timeout time.Duration) *Connection {
	return &Connection{
		socketPath: socketPath,
		timeout:    timeout,
	}
}

// Connect establishes the Unix domain socket connection
func (c *Connection) Connect() error {
	var err error
	c.conn, err = net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to %s (is the naaw server running?): %w", c.socketPath, err)
	}
	return nil
}

// Close closes the connection
func (c *Connection) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Send encodes and writes a single command. The protocol is
// fire-and-forget: no reply is awaited.
func (c *Connection) Send(cmd protocol.Command) error {
	data, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to write command: %w", err)
	}
	return nil
}

// Request sends a command and reads the reply lines until the server
// closes the connection. Only the status command replies.
func (c *Connection) Request(cmd protocol.Command) ([]string, error) {
	if err := c.Send(cmd); err != nil {
		return nil, err
	}
	if uc, ok := c.conn.(*net.UnixConn); ok {
		uc.CloseWrite()
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	var lines []string
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return lines, nil
}

// IsConnected returns true if the connection is established
func (c *Connection) IsConnected() bool {
	return c.conn != nil
}
