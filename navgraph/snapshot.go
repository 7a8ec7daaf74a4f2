package navgraph

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/klauspost/compress/zstd"

	"github.com/automoto/doomerang-nav/config"
	"github.com/automoto/doomerang-nav/geometry"
)

const snapshotVersion = 1

// ErrSnapshotVersion is returned when a snapshot was written by an
// incompatible version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

type snapshot struct {
	Version  int
	Config   config.NavConfig
	Surfaces []geometry.Surface
	Skipped  []geometry.GeometryError
	Nodes    []Node
	Links    []Link
}

var msgpackHandle = &codec.MsgpackHandle{}

// EncodeSnapshot serializes g as zstd-compressed msgpack.
func EncodeSnapshot(g *Graph) ([]byte, error) {
	snap := snapshot{
		Version:  snapshotVersion,
		Config:   g.Config,
		Surfaces: g.Surfaces,
		Skipped:  g.Skipped,
		Nodes:    g.Nodes,
		Links:    g.Links,
	}

	var raw []byte
	if err := codec.NewEncoderBytes(&raw, msgpackHandle).Encode(&snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// DecodeSnapshot restores a graph written by EncodeSnapshot. The result is a
// new graph with its own generation.
func DecodeSnapshot(data []byte) (*Graph, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	var snap snapshot
	if err := codec.NewDecoderBytes(raw, msgpackHandle).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	if err := checkSnapshot(&snap); err != nil {
		return nil, err
	}

	g := &Graph{
		Nodes:    snap.Nodes,
		Links:    snap.Links,
		Surfaces: snap.Surfaces,
		Skipped:  snap.Skipped,
		Config:   snap.Config,
	}
	if err := g.finish(); err != nil {
		return nil, fmt.Errorf("rebuild snapshot index: %w", err)
	}
	return g, nil
}

func checkSnapshot(snap *snapshot) error {
	for i, n := range snap.Nodes {
		if n.ID != i {
			return fmt.Errorf("snapshot node %d has id %d", i, n.ID)
		}
		if n.SurfaceID < 0 || n.SurfaceID >= len(snap.Surfaces) {
			return fmt.Errorf("snapshot node %d references surface %d", i, n.SurfaceID)
		}
	}
	for i, l := range snap.Links {
		if l.From < 0 || l.From >= len(snap.Nodes) || l.To < 0 || l.To >= len(snap.Nodes) {
			return fmt.Errorf("snapshot link %d references missing node", i)
		}
	}
	return nil
}
