package watcher

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/yourusername/naaw/internal/logging"
	"github.com/yourusername/naaw/internal/tagstore"
)

// nodeRemoveField is the whitespace field carrying the node id in a
// "node_remove <monitor> <desktop> <node>" event line.
const nodeRemoveField = 3

const restartDelay = time.Second

// Watcher follows "bspc subscribe node_remove" and evicts closed
// nodes from the tag store as windows close, complementing the
// reconciliation pass that runs before each visibility toggle.
type Watcher struct {
	store  *tagstore.Store
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a watcher over the given store.
func New(store *tagstore.Store) *Watcher {
	return &Watcher{store: store}
}

// Start launches the subscription loop. The bspc subprocess is
// restarted with a short delay if it exits while the watcher runs.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx)
}

// Stop terminates the subscription subprocess and waits for the loop
// to exit.
func (w *Watcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		if err := w.subscribe(ctx); err != nil && ctx.Err() == nil {
			logging.Warn().Err(err).Msg("node_remove subscription ended, restarting")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(restartDelay):
		}
	}
}

func (w *Watcher) subscribe(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "bspc", "subscribe", "node_remove")
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		id, ok := ParseNodeRemove(scanner.Text())
		if !ok {
			logging.Warn().Str("line", scanner.Text()).Msg("unparseable node_remove event")
			continue
		}
		if w.store.Remove(id) {
			logging.Info().Str("node", id).Msg("tagged node closed, evicted")
		}
	}
	return cmd.Wait()
}

// ParseNodeRemove extracts the node id from a node_remove event
// line.
func ParseNodeRemove(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) <= nodeRemoveField {
		return "", false
	}
	return fields[nodeRemoveField], true
}
