package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yourusername/naaw/internal/bspwm"
	"github.com/yourusername/naaw/internal/config"
	"github.com/yourusername/naaw/internal/logging"
	"github.com/yourusername/naaw/internal/protocol"
	"github.com/yourusername/naaw/internal/tagstore"
)

// connTimeout bounds a single client connection; each carries exactly
// one command, so anything slower is a stuck peer.
const connTimeout = 5 * time.Second

// Server owns the listening socket and applies client commands
// against the tag store and the window manager. No per-connection
// state survives beyond the store.
type Server struct {
	cfg   *config.Config
	store *tagstore.Store
	wm    bspwm.WM
	ln    net.Listener

	// wmMu serializes window manager application so adapter calls
	// for the same node never race. The store has its own lock and
	// is never held across a bspc round trip.
	wmMu sync.Mutex
}

// New creates a server over the given store and window manager.
func New(cfg *config.Config, store *tagstore.Store, wm bspwm.WM) *Server {
	return &Server{cfg: cfg, store: store, wm: wm}
}

// Listen binds the unix socket. A socket owned by a live daemon is a
// fatal startup error; a stale socket file left behind by a crashed
// daemon is removed.
func (s *Server) Listen() error {
	if _, err := os.Stat(s.cfg.Socket); err == nil {
		if conn, err := net.DialTimeout("unix", s.cfg.Socket, time.Second); err == nil {
			conn.Close()
			return fmt.Errorf("socket %s is in use by a running server", s.cfg.Socket)
		}
		if err := os.Remove(s.cfg.Socket); err != nil {
			return fmt.Errorf("failed to remove stale socket %s: %w", s.cfg.Socket, err)
		}
		logging.Warn().Str("socket", s.cfg.Socket).Msg("removed stale socket")
	}

	ln, err := net.Listen("unix", s.cfg.Socket)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Socket, err)
	}
	s.ln = ln

	logging.Info().
		Str("socket", s.cfg.Socket).
		Int("borderWidth", s.cfg.BorderWidth).
		Msg("listening")
	return nil
}

// Serve accepts connections until the listener is closed. Accept
// errors are logged and retried; they never terminate the server.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logging.Error().Err(err).Msg("accept failed")
			continue
		}
		go s.handle(conn)
	}
}

// Close shuts down the listener; the unix socket file is unlinked
// with it.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	log := logging.Logger.With().Str("conn", uuid.New().String()[:8]).Logger()
	if uid, pid, err := peerCredentials(conn); err == nil {
		log = log.With().Uint32("uid", uid).Int32("pid", pid).Logger()
	}

	conn.SetReadDeadline(time.Now().Add(connTimeout))
	cmd, err := protocol.ReadCommand(conn)
	if err != nil {
		var perr *protocol.ProtocolError
		if errors.As(err, &perr) {
			log.Warn().Err(perr).Msg("malformed command")
		} else {
			log.Error().Err(err).Msg("failed to read command")
		}
		return
	}

	ctx := context.Background()
	switch cmd.Kind {
	case protocol.KindTag:
		s.handleTag(ctx, log, cmd.NodeID)
	case protocol.KindShow:
		s.handleShow(ctx, log)
	case protocol.KindStatus:
		s.handleStatus(log, conn)
	}
}

// handleTag toggles tag membership and realizes the visual effect.
// The toggle is committed before the bspc round trip; a failed
// border application is logged, not rolled back, and the next toggle
// of the node re-converges.
func (s *Server) handleTag(ctx context.Context, log zerolog.Logger, id string) {
	result := s.store.ToggleTag(id)
	log.Info().Str("node", id).Str("result", result.String()).Msg("tag toggled")

	s.wmMu.Lock()
	defer s.wmMu.Unlock()

	// Read the flag only under wmMu: a show racing ahead of this
	// handler flips it, and the node must follow the group's final
	// state.
	shown := s.store.Shown()

	switch result {
	case tagstore.Tagged:
		if err := s.wm.SetBorderWidth(ctx, id, s.cfg.BorderWidth); err != nil {
			log.Error().Err(err).Str("node", id).Msg("failed to set border width")
		}
		if !shown {
			// The group is hidden; a freshly tagged node joins it
			// hidden.
			if err := s.wm.SetNodeVisibility(ctx, id, false); err != nil {
				log.Error().Err(err).Str("node", id).Msg("failed to hide node")
			}
		}
	case tagstore.Untagged:
		if err := s.wm.SetBorderWidth(ctx, id, s.cfg.UntaggedBorderWidth); err != nil {
			log.Error().Err(err).Str("node", id).Msg("failed to reset border width")
		}
		if !shown {
			// Leaving the hidden group restores the node so it is
			// not orphaned invisible.
			if err := s.wm.SetNodeVisibility(ctx, id, true); err != nil {
				log.Error().Err(err).Str("node", id).Msg("failed to show node")
			}
		}
	}
}

// handleShow reconciles the tag set against the window manager, flips
// the visibility flag, and applies it to every tagged node.
func (s *Server) handleShow(ctx context.Context, log zerolog.Logger) {
	s.wmMu.Lock()
	defer s.wmMu.Unlock()

	// bspwm is the ground truth for which nodes still exist; windows
	// close independently of this daemon.
	if ids, err := s.wm.QueryNodes(ctx); err != nil {
		log.Warn().Err(err).Msg("node query failed, skipping reconciliation")
	} else {
		existing := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			existing[id] = struct{}{}
		}
		if dropped := s.store.DropMissing(existing); len(dropped) > 0 {
			log.Info().Strs("nodes", dropped).Msg("dropped closed nodes")
		}
	}

	shown := s.store.ToggleVisibility()
	tagged := s.store.AllTagged()
	log.Info().Bool("shown", shown).Int("tagged", len(tagged)).Msg("visibility toggled")

	failed := 0
	for _, id := range tagged {
		if err := s.wm.SetNodeVisibility(ctx, id, shown); err != nil {
			failed++
			log.Error().Err(err).Str("node", id).Bool("shown", shown).Msg("failed to apply visibility")
		}
	}
	if failed > 0 && failed == len(tagged) {
		// Nothing was applied; keep the flag matching what the
		// window manager last saw.
		s.store.SetShown(!shown)
		log.Error().Int("nodes", failed).Msg("visibility toggle not applied, flag restored")
	}
}

// handleStatus is the one command with a reply: the visibility flag
// on the first line, then the sorted tagged ids.
func (s *Server) handleStatus(log zerolog.Logger, conn net.Conn) {
	tagged := s.store.AllTagged()
	sort.Strings(tagged)

	var b strings.Builder
	if s.store.Shown() {
		b.WriteString("shown\n")
	} else {
		b.WriteString("hidden\n")
	}
	for _, id := range tagged {
		b.WriteString(id)
		b.WriteByte('\n')
	}

	conn.SetWriteDeadline(time.Now().Add(connTimeout))
	if _, err := conn.Write([]byte(b.String())); err != nil {
		log.Error().Err(err).Msg("failed to write status")
	}
}
