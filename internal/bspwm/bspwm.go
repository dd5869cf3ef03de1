package bspwm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// WM is the narrow control surface the daemon needs from the window
// manager. The server depends on this interface rather than on bspc
// directly so core logic can be tested with a fake.
type WM interface {
	// QueryNodes returns the ids of all nodes bspwm currently knows.
	QueryNodes(ctx context.Context) ([]string, error)
	// QueryFocused returns the id of the focused node.
	QueryFocused(ctx context.Context) (string, error)
	// SetBorderWidth sets the per-node border width in pixels.
	SetBorderWidth(ctx context.Context, id string, width int) error
	// SetNodeVisibility shows or hides a single node.
	SetNodeVisibility(ctx context.Context, id string, visible bool) error
}

// WmError wraps a failed bspc round trip. It never terminates the
// server; callers log it and carry on.
type WmError struct {
	Op   string
	Args []string
	Err  error
}

func (e *WmError) Error() string {
	return fmt.Sprintf("bspc %s (bspc %s): %v", e.Op, strings.Join(e.Args, " "), e.Err)
}

func (e *WmError) Unwrap() error { return e.Err }

// DefaultTimeout bounds a single bspc round trip so a wedged window
// manager cannot hang the server.
const DefaultTimeout = 2 * time.Second

// Bspc talks to bspwm through the bspc command line tool.
type Bspc struct {
	timeout time.Duration
}

// New creates a bspc-backed WM with the given per-call timeout.
func New(timeout time.Duration) *Bspc {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bspc{timeout: timeout}
}

func (b *Bspc) run(ctx context.Context, op string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "bspc", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return "", &WmError{Op: op, Args: args, Err: err}
	}
	return stdout.String(), nil
}

// QueryNodes lists every node id, one per output line of
// "bspc query -N".
func (b *Bspc) QueryNodes(ctx context.Context) ([]string, error) {
	out, err := b.run(ctx, "query nodes", "query", "-N")
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			ids = append(ids, line)
		}
	}
	return ids, nil
}

// QueryFocused resolves the currently focused node id.
func (b *Bspc) QueryFocused(ctx context.Context) (string, error) {
	args := []string{"query", "-N", "-n", "focused"}
	out, err := b.run(ctx, "query focused", args...)
	if err != nil {
		return "", err
	}

	id := strings.TrimSpace(out)
	if id == "" {
		return "", &WmError{Op: "query focused", Args: args, Err: fmt.Errorf("no focused node")}
	}
	return id, nil
}

// SetBorderWidth issues "bspc config -n <id> border_width <width>".
func (b *Bspc) SetBorderWidth(ctx context.Context, id string, width int) error {
	_, err := b.run(ctx, "set border width", "config", "-n", id, "border_width", strconv.Itoa(width))
	return err
}

// SetNodeVisibility sets the hidden flag absolutely. The original
// toggle form ("-g hidden") would double-toggle on retry.
func (b *Bspc) SetNodeVisibility(ctx context.Context, id string, visible bool) error {
	flag := "hidden=on"
	if visible {
		flag = "hidden=off"
	}
	_, err := b.run(ctx, "set visibility", "node", id, "--flag", flag)
	return err
}
