package store

import (
	"iter"

	"github.com/oriumgames/voxschem/block"
)

// SparseBlockStore holds blocks in a direct position-to-palette-index
// map instead of pages. It trades page-granularity bulk performance for
// simplicity and is the right choice for thin, scattered inputs (a
// handful of blocks in an otherwise enormous boundary) where allocating
// a page per touched region would waste far more than it saves.
type SparseBlockStore struct {
	palette   *Palette
	cells     map[block.Position]int
	boundary  block.Boundary
	resizable bool
}

// NewSparseBlockStore returns an empty, resizable sparse store.
func NewSparseBlockStore() *SparseBlockStore {
	return &SparseBlockStore{
		palette:   NewPalette(),
		cells:     make(map[block.Position]int),
		resizable: true,
	}
}

// NewSparseBlockStoreForBoundary returns a non-resizable sparse store
// pre-sized to exactly cover b.
func NewSparseBlockStoreForBoundary(b block.Boundary) *SparseBlockStore {
	s := NewSparseBlockStore()
	s.boundary = b
	s.resizable = false
	return s
}

// BlockAt returns the state at p, or nil if the cell is empty.
func (s *SparseBlockStore) BlockAt(p block.Position) (*block.BlockState, error) {
	idx, ok := s.cells[p]
	if !ok {
		return nil, nil
	}
	return s.palette.Get(idx), nil
}

// SetBlockAt writes state at p, expanding the boundary first if the
// store is resizable and p falls outside it.
func (s *SparseBlockStore) SetBlockAt(p block.Position, state *block.BlockState) error {
	expanded, err := ExpandOrFail(s.boundary, p, s.resizable)
	if err != nil {
		return err
	}
	s.boundary = expanded
	s.cells[p] = s.palette.Add(state)
	return nil
}

// RemoveBlockAt clears the cell at p; a no-op if it was already empty.
func (s *SparseBlockStore) RemoveBlockAt(p block.Position) error {
	delete(s.cells, p)
	return nil
}

// Boundary returns the store's current bounding box.
func (s *SparseBlockStore) Boundary() block.Boundary { return s.boundary }

// SetBoundary overrides the store's declared boundary.
func (s *SparseBlockStore) SetBoundary(b block.Boundary) { s.boundary = b }

// Resizable reports whether out-of-bounds writes grow the boundary.
func (s *SparseBlockStore) Resizable() bool { return s.resizable }

// Insert bulk-loads a slice of (position, state) pairs.
func (s *SparseBlockStore) Insert(blocks []block.Block, offset, length int) error {
	return Insert(s, blocks, offset, length)
}

// IterateBlocks walks every position of the store's boundary in the
// given axis order, yielding air for any cell with no recorded state.
func (s *SparseBlockStore) IterateBlocks(order block.AxisOrder) iter.Seq2[block.Position, *block.BlockState] {
	return func(yield func(block.Position, *block.BlockState) bool) {
		it := s.boundary.Iter(order)
		for {
			p, ok := it.Next()
			if !ok {
				return
			}
			state, err := s.BlockAt(p)
			if err != nil || state == nil {
				state = block.Air()
			}
			if !yield(p, state) {
				return
			}
		}
	}
}

// Len returns the number of recorded cells (an explicitly written air
// state counts as recorded).
func (s *SparseBlockStore) Len() int { return len(s.cells) }

var _ BlockStore = (*SparseBlockStore)(nil)
