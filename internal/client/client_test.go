package client

import (
	"path/filepath"
	"testing"
	"time"
)

func TestTagFailsWhenServerAbsent(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "absent.sock"), time.Second)
	defer c.Close()

	if err := c.Tag("0x1"); err == nil {
		t.Fatal("Tag should fail when no server is listening")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 0)
	defer c.Close()

	if c.conn.socketPath != DefaultSocketPath {
		t.Errorf("socketPath = %q, want %q", c.conn.socketPath, DefaultSocketPath)
	}
	if c.conn.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.conn.timeout, DefaultTimeout)
	}
}
