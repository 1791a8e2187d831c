// Package store holds the canonical in-memory block stores: a paged,
// palettised store for bulk/dense data and a sparse map-based store for
// thin inputs, plus the lazy-palette wrapper that lets a decoder write
// numeric placeholder IDs before their meaning is known.
package store

import (
	"fmt"
	"iter"

	"github.com/oriumgames/voxschem/block"
)

// MaxPageExpansion caps how far a resizable store's boundary may grow
// along any single axis in response to an out-of-bounds write.
const MaxPageExpansion = 1024

// BlockStore is the capability set every concrete store (and the
// lazy-palette wrapper) implements. It composes rather than being
// downcast: the any-format multiplexer and codecs only ever see this
// interface.
type BlockStore interface {
	BlockAt(p block.Position) (*block.BlockState, error)
	SetBlockAt(p block.Position, state *block.BlockState) error
	RemoveBlockAt(p block.Position) error
	Boundary() block.Boundary
	SetBoundary(b block.Boundary)
	Resizable() bool
	Insert(blocks []block.Block, offset, length int) error
	IterateBlocks(order block.AxisOrder) iter.Seq2[block.Position, *block.BlockState]
}

// Insert is the default bulk-insert behaviour shared by every
// BlockStore implementation: a loop of SetBlockAt over a sub-slice.
func Insert(s BlockStore, blocks []block.Block, offset, length int) error {
	end := offset + length
	if end > len(blocks) {
		end = len(blocks)
	}
	for i := offset; i < end; i++ {
		if err := s.SetBlockAt(blocks[i].Position, blocks[i].State); err != nil {
			return fmt.Errorf("insert block %d: %w", i, err)
		}
	}
	return nil
}

// ExpandOrFail implements the shared "grow-or-reject" policy used by
// both store kinds: a non-resizable store rejects an out-of-bounds
// write; a resizable one grows its boundary, capped at MaxPageExpansion
// per axis.
func ExpandOrFail(boundary block.Boundary, p block.Position, resizable bool) (block.Boundary, error) {
	if boundary.Contains(p) {
		return boundary, nil
	}
	if !resizable {
		return boundary, fmt.Errorf("store: position %v is outside the non-resizable boundary %v", p, boundary)
	}
	expanded := boundary.ExpandToInclude(p)
	if int(expanded.DX) > MaxPageExpansion || int(expanded.DY) > MaxPageExpansion || int(expanded.DZ) > MaxPageExpansion {
		return boundary, fmt.Errorf("store: expansion to include %v would exceed the %d-per-axis cap", p, MaxPageExpansion)
	}
	return expanded, nil
}
