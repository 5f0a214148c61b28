// Package json encodes rendered trees and patch batches in a versioned
// envelope for the HTTP mirror and snapshot files.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/preview"
)

// Version is the envelope version written by this package.
const Version = 1

// Frame is one message of the patch stream.
type Frame struct {
	Generation uint64
	// Reset frames carry Root and replace the receiver's tree.
	Reset bool
	Root  *preview.Node
	Ops   []preview.PatchOp
	// Formatted frames report that post-render formatting finished.
	Formatted bool
}

// envelope is the v1 wire format for a frame.
type envelope struct {
	Version    int      `json:"version"`
	Kind       string   `json:"kind"`
	Generation uint64   `json:"generation"`
	Root       *nodeDTO `json:"root,omitempty"`
	Ops        []opDTO  `json:"ops,omitempty"`
}

// snapshotEnvelope is the v1 wire format for a persisted snapshot.
type snapshotEnvelope struct {
	Version    int      `json:"version"`
	Generation uint64   `json:"generation"`
	Root       *nodeDTO `json:"root"`
}

// Frame kinds.
const (
	kindPatch     = "patch"
	kindReset     = "reset"
	kindFormatted = "formatted"
)

// Kind returns the wire name of f, also used as the SSE event name.
func (f Frame) Kind() string {
	switch {
	case f.Reset:
		return kindReset
	case f.Formatted:
		return kindFormatted
	default:
		return kindPatch
	}
}

// MarshalFrame serializes a Frame in v1 envelope format.
func MarshalFrame(f Frame) ([]byte, error) {
	env := envelope{Version: Version, Kind: f.Kind(), Generation: f.Generation}
	switch env.Kind {
	case kindReset:
		root, err := marshalNode(f.Root)
		if err != nil {
			return nil, fmt.Errorf("root: %w", err)
		}
		env.Root = root
	case kindPatch:
		ops, err := marshalOps(f.Ops)
		if err != nil {
			return nil, err
		}
		env.Ops = ops
	}
	return json.Marshal(env)
}

// UnmarshalFrame deserializes a Frame from v1 envelope format.
func UnmarshalFrame(data []byte) (Frame, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Frame{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != Version {
		return Frame{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	f := Frame{Generation: env.Generation}
	switch env.Kind {
	case kindReset:
		root, err := unmarshalNode(env.Root)
		if err != nil {
			return Frame{}, fmt.Errorf("root: %w", err)
		}
		f.Reset, f.Root = true, root
	case kindPatch:
		ops, err := unmarshalOps(env.Ops)
		if err != nil {
			return Frame{}, err
		}
		f.Ops = ops
	case kindFormatted:
		f.Formatted = true
	default:
		return Frame{}, fmt.Errorf("unknown frame kind: %q", env.Kind)
	}
	return f, nil
}

// MarshalSnapshot serializes a Snapshot in v1 envelope format.
func MarshalSnapshot(s *preview.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil snapshot: %w", preview.ErrValidation)
	}
	root, err := marshalNode(s.Root)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	return json.MarshalIndent(snapshotEnvelope{Version: Version, Generation: s.Generation, Root: root}, "", "  ")
}

// UnmarshalSnapshot deserializes a Snapshot from v1 envelope format.
func UnmarshalSnapshot(data []byte) (*preview.Snapshot, error) {
	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	root, err := unmarshalNode(env.Root)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	return &preview.Snapshot{Root: root, Generation: env.Generation}, nil
}

// Save writes a Snapshot to a JSON file, creating parent directories as needed.
func Save(path string, s *preview.Snapshot) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Snapshot from a JSON file.
func Load(path string) (*preview.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSnapshot(data)
}
