// Package vxl implements the VXL schematic codec: a VarLong-framed
// header (magic, version, inclusive-corner boundary, axis order)
// followed by a command stream that defines palette entries (as a
// literal block-state string or as a diff against an already-defined
// entry) and emits them - singly or run-length-encoded - across the
// boundary's positions in the declared axis order.
package vxl

import (
	"fmt"
	"io"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/store"
	"github.com/oriumgames/voxschem/stream"
	"github.com/oriumgames/voxschem/varint"
)

// magic is the format's 48-bit signature, ASCII "VXLDRM" packed into a
// VarLong.
const magic int64 = 0x56584C44524D

const formatVersion = 1

// cmdDefineLiteral introduces a new palette entry from a full
// block-state string; cmdDefineDiff introduces one as an edit of an
// already-defined entry. Every other command value is an emit: its low
// bit selects run-length-encoded vs. single placement, and clearing
// that bit yields the palette id to place.
const (
	cmdDefineLiteral = 0
	cmdDefineDiff    = 1
)

// Read decodes a complete VXL schematic from r.
func Read(r io.Reader) (*stream.StoreReader, error) {
	got, err := varint.ReadVarLong(r)
	if err != nil {
		return nil, fmt.Errorf("vxl: read magic: %w", err)
	}
	if got != magic {
		return nil, fmt.Errorf("vxl: bad magic %#x", got)
	}
	version, err := varint.ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("vxl: read version: %w", err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("vxl: unsupported version %d", version)
	}

	coords := make([]int64, 6)
	for i := range coords {
		v, err := varint.ReadVarLong(r)
		if err != nil {
			return nil, fmt.Errorf("vxl: read boundary[%d]: %w", i, err)
		}
		coords[i] = v
	}
	boundary := block.NewBoundaryFromMinMax(
		int32(coords[0]), int32(coords[1]), int32(coords[2]),
		int32(coords[3]), int32(coords[4]), int32(coords[5]),
	)

	var axisByte [1]byte
	if _, err := io.ReadFull(r, axisByte[:]); err != nil {
		return nil, fmt.Errorf("vxl: read axis order: %w", err)
	}
	order, err := block.AxisOrderFromByte(axisByte[0])
	if err != nil {
		return nil, fmt.Errorf("vxl: %w", err)
	}

	s := store.NewPagedBlockStoreForBoundary(boundary, store.DefaultPageSize)
	palette := make(map[int]*block.BlockState)
	states := []*block.BlockState{}
	defCount := 0

	it := boundary.Iter(order)
	for it.Remaining() > 0 {
		cmd, err := varint.ReadVarInt(r)
		if err != nil {
			return nil, fmt.Errorf("vxl: read command: %w", err)
		}

		switch cmd {
		case cmdDefineLiteral:
			if _, err := varint.ReadVarInt(r); err != nil {
				return nil, fmt.Errorf("vxl: read literal marker: %w", err)
			}
			str, err := varint.ReadString(r)
			if err != nil {
				return nil, fmt.Errorf("vxl: read literal state: %w", err)
			}
			state, err := block.Parse(str)
			if err != nil {
				return nil, fmt.Errorf("vxl: parse literal state %q: %w", str, err)
			}
			id := (defCount + 1) * 2
			defCount++
			palette[id] = state
			states = append(states, state)

		case cmdDefineDiff:
			refID, err := varint.ReadVarInt(r)
			if err != nil {
				return nil, fmt.Errorf("vxl: read diff ref id: %w", err)
			}
			base, ok := palette[refID]
			if !ok {
				return nil, fmt.Errorf("vxl: diff references undefined id %d", refID)
			}
			diff, err := varint.ReadString(r)
			if err != nil {
				return nil, fmt.Errorf("vxl: read diff string: %w", err)
			}
			state, err := base.Update(diff)
			if err != nil {
				return nil, fmt.Errorf("vxl: apply diff %q: %w", diff, err)
			}
			id := (defCount + 1) * 2
			defCount++
			palette[id] = state
			states = append(states, state)

		default:
			rle := cmd&1 != 0
			lookupID := cmd
			if rle {
				lookupID = cmd - 1
			}
			state, ok := palette[lookupID]
			if !ok {
				return nil, fmt.Errorf("vxl: emit references undefined id %d", lookupID)
			}
			count := 1
			if rle {
				count, err = varint.ReadVarInt(r)
				if err != nil {
					return nil, fmt.Errorf("vxl: read rle length: %w", err)
				}
			}
			for i := 0; i < count; i++ {
				pos, ok := it.Next()
				if !ok {
					return nil, fmt.Errorf("vxl: emit run overruns the boundary")
				}
				if state.IsAir() {
					continue
				}
				if err := s.SetBlockAt(pos, state); err != nil {
					return nil, fmt.Errorf("vxl: set block at %v: %w", pos, err)
				}
			}
		}
	}

	return stream.FromStore(s), nil
}

// Writer accumulates written blocks, then serialises them as a VXL
// command stream on Complete, run-length-encoding consecutive cells
// that share a state (air included) and introducing each newly seen
// state as a diff against whichever already-defined state differs from
// it the least - the same greedy nearest-neighbour policy the rest of
// the domain's palette-diffing favours for compactness.
type Writer struct {
	w        io.Writer
	order    block.AxisOrder
	accum    store.BlockStore
	complete bool
}

// NewWriter returns a Writer that emits positions in the given axis
// order.
func NewWriter(w io.Writer, order block.AxisOrder) *Writer {
	return &Writer{w: w, order: order, accum: store.NewPagedBlockStore(store.DefaultPageSize)}
}

// Write records blocks, growing the writer's bounding box as needed.
func (vw *Writer) Write(blocks []block.Block) (int, error) {
	if vw.complete {
		return 0, fmt.Errorf("vxl: write after complete")
	}
	for _, b := range blocks {
		if err := vw.accum.SetBlockAt(b.Position, b.State); err != nil {
			return 0, fmt.Errorf("vxl: write: %w", err)
		}
	}
	return len(blocks), nil
}

type paletteWriter struct {
	ids      map[string]int
	states   []*block.BlockState
	defCount int
}

func newPaletteWriter() *paletteWriter {
	return &paletteWriter{ids: make(map[string]int)}
}

// idFor returns state's assigned id, defining it first (as a literal if
// this is the very first state, else as a diff against its closest
// already-known neighbour) and writing that definition command if it
// hasn't been seen before.
func (pw *paletteWriter) idFor(w io.Writer, state *block.BlockState) (int, error) {
	key := state.String()
	if id, ok := pw.ids[key]; ok {
		return id, nil
	}
	id := (pw.defCount + 1) * 2
	pw.defCount++
	pw.ids[key] = id

	if len(pw.states) == 0 {
		if err := varint.WriteVarInt(w, cmdDefineLiteral); err != nil {
			return 0, err
		}
		if err := varint.WriteVarInt(w, 0); err != nil {
			return 0, err
		}
		if err := varint.WriteString(w, key); err != nil {
			return 0, err
		}
	} else {
		best := pw.states[0]
		bestDiff := best.Difference(state)
		for _, candidate := range pw.states[1:] {
			d := candidate.Difference(state)
			if len(d) < len(bestDiff) {
				best, bestDiff = candidate, d
			}
		}
		refID := pw.ids[best.String()]
		if err := varint.WriteVarInt(w, cmdDefineDiff); err != nil {
			return 0, err
		}
		if err := varint.WriteVarInt(w, refID); err != nil {
			return 0, err
		}
		if err := varint.WriteString(w, bestDiff); err != nil {
			return 0, err
		}
	}
	pw.states = append(pw.states, state)
	return id, nil
}

// Complete writes the header and command stream for everything
// recorded so far.
func (vw *Writer) Complete() error {
	if vw.complete {
		return fmt.Errorf("vxl: complete called twice")
	}
	vw.complete = true

	boundary := vw.accum.Boundary()
	if err := varint.WriteVarLong(vw.w, magic); err != nil {
		return err
	}
	if err := varint.WriteVarInt(vw.w, formatVersion); err != nil {
		return err
	}
	corners := []int64{
		int64(boundary.MinX), int64(boundary.MinY), int64(boundary.MinZ),
		int64(boundary.MaxX()), int64(boundary.MaxY()), int64(boundary.MaxZ()),
	}
	for _, c := range corners {
		if err := varint.WriteVarLong(vw.w, c); err != nil {
			return err
		}
	}
	if _, err := vw.w.Write([]byte{vw.order.ByteValue()}); err != nil {
		return err
	}

	pw := newPaletteWriter()

	var runState *block.BlockState
	runLen := 0
	flush := func() error {
		if runLen == 0 {
			return nil
		}
		id, err := pw.idFor(vw.w, runState)
		if err != nil {
			return err
		}
		if runLen == 1 {
			return varint.WriteVarInt(vw.w, id)
		}
		if err := varint.WriteVarInt(vw.w, id+1); err != nil {
			return err
		}
		return varint.WriteVarInt(vw.w, runLen)
	}

	for _, state := range vw.accum.IterateBlocks(vw.order) {
		if state == nil {
			state = block.Air()
		}
		if runState != nil && state.Equal(runState) {
			runLen++
			continue
		}
		if err := flush(); err != nil {
			return fmt.Errorf("vxl: write run: %w", err)
		}
		runState, runLen = state, 1
	}
	if err := flush(); err != nil {
		return fmt.Errorf("vxl: write final run: %w", err)
	}
	return nil
}

var _ stream.Writer = (*Writer)(nil)
