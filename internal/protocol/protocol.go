package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Kind identifies a client command.
type Kind string

const (
	// KindTag toggles tag membership for a single node.
	KindTag Kind = "tag"
	// KindShow toggles visibility of the tagged group.
	KindShow Kind = "show"
	// KindStatus requests the visibility flag and the tagged node ids.
	KindStatus Kind = "status"
)

// MaxLineLen bounds a single command line. Node ids are short
// hex tokens, so anything longer is garbage.
const MaxLineLen = 256

// Command is a single client-to-server message. NodeID is set only
// for KindTag.
type Command struct {
	Kind   Kind
	NodeID string
}

// ProtocolError reports malformed input from a client. The server
// closes the offending connection without mutating any state.
type ProtocolError struct {
	Input string
	Msg   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %s: %q", e.Msg, e.Input)
}

// Encode renders a command as a single newline-terminated line.
// Every command accepted by Decode round-trips through Encode
// unchanged.
func Encode(cmd Command) ([]byte, error) {
	switch cmd.Kind {
	case KindTag:
		if err := validateNodeID(cmd.NodeID); err != nil {
			return nil, err
		}
		return []byte(string(KindTag) + " " + cmd.NodeID + "\n"), nil
	case KindShow, KindStatus:
		if cmd.NodeID != "" {
			return nil, &ProtocolError{Input: cmd.NodeID, Msg: "unexpected node id for " + string(cmd.Kind)}
		}
		return []byte(string(cmd.Kind) + "\n"), nil
	default:
		return nil, &ProtocolError{Input: string(cmd.Kind), Msg: "unknown command"}
	}
}

// Decode parses one command line, with or without its trailing
// newline. It is the exact inverse of Encode.
func Decode(line []byte) (Command, error) {
	s := strings.TrimSuffix(string(line), "\n")

	word, rest, hasRest := strings.Cut(s, " ")
	switch Kind(word) {
	case KindTag:
		if !hasRest {
			return Command{}, &ProtocolError{Input: s, Msg: "missing node id"}
		}
		if err := validateNodeID(rest); err != nil {
			return Command{}, err
		}
		return Command{Kind: KindTag, NodeID: rest}, nil
	case KindShow, KindStatus:
		if hasRest {
			return Command{}, &ProtocolError{Input: s, Msg: "unexpected argument"}
		}
		return Command{Kind: Kind(word)}, nil
	default:
		return Command{}, &ProtocolError{Input: s, Msg: "unknown command"}
	}
}

// ReadCommand reads exactly one command line from r. A line
// terminated by EOF instead of a newline is accepted, matching
// clients that close the connection after a single write. Input is
// cut off at MaxLineLen so a newline-less flood never accumulates.
func ReadCommand(r io.Reader) (Command, error) {
	br := bufio.NewReaderSize(io.LimitReader(r, MaxLineLen+1), MaxLineLen)
	line, err := br.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return Command{}, fmt.Errorf("failed to read command: %w", err)
	}
	if len(line) >= MaxLineLen {
		return Command{}, &ProtocolError{Input: string(line[:32]) + "...", Msg: "command too long"}
	}
	return Decode(line)
}

func validateNodeID(id string) error {
	if id == "" {
		return &ProtocolError{Input: id, Msg: "empty node id"}
	}
	if strings.ContainsAny(id, " \t\r\n") {
		return &ProtocolError{Input: id, Msg: "node id contains whitespace"}
	}
	return nil
}
