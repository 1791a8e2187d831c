package store

import (
	"fmt"
	"iter"

	"github.com/oriumgames/voxschem/block"
)

// DefaultPageSize is the page edge length used when a caller has no
// particular density in mind. 16 mirrors the chunk-section size most
// wire formats already group their data into.
const DefaultPageSize = 16

// pageKeyMask is the bit width given to the Y and Z page-coordinate
// components when they are packed into a single map key. Page
// coordinates that differ by a multiple of 2^20 along Y or Z alias onto
// the same key; see DESIGN.md for why this module accepts that limit rather
// than widening the key to a 128-bit type.
const pageKeyMask = 0xFFFFF

func roundToPowerOfTwo(n int32) int32 {
	if n <= 1 {
		return 1
	}
	p := int32(1)
	for p < n {
		p <<= 1
	}
	return p
}

func pageKey(px, py, pz int32) int64 {
	return (int64(px) << 40) | ((int64(py) & pageKeyMask) << 20) | (int64(pz) & pageKeyMask)
}

// PagedBlockStore is a palettised store backed by fixed-size dense pages,
// keyed by their packed (px, py, pz) page coordinate. It is the right
// choice for bulk schematic data: most of a schematic is contiguous, so
// paging amortises the per-block bookkeeping a sparse map would pay.
type PagedBlockStore struct {
	pageSize  int32
	bits      uint
	mask      int32
	palette   *Palette
	pages     map[int64]Page
	boundary  block.Boundary
	resizable bool
}

// NewPagedBlockStore builds an empty, resizable store with the given
// (rounded up to a power of two) page size.
func NewPagedBlockStore(pageSize int32) *PagedBlockStore {
	size := roundToPowerOfTwo(pageSize)
	bits := uint(0)
	for (int32(1) << bits) < size {
		bits++
	}
	return &PagedBlockStore{
		pageSize:  size,
		bits:      bits,
		mask:      size - 1,
		palette:   NewPalette(),
		pages:     make(map[int64]Page),
		resizable: true,
	}
}

// NewPagedBlockStoreForBoundary builds a non-resizable store pre-sized to
// exactly cover b, the shape every fixed-size decoder (MCEDIT, SPONGE,
// MOJANG) uses once it has read a header.
func NewPagedBlockStoreForBoundary(b block.Boundary, pageSize int32) *PagedBlockStore {
	s := NewPagedBlockStore(pageSize)
	s.boundary = b
	s.resizable = false
	return s
}

func (s *PagedBlockStore) pageCoordAndLocal(v int32) (page, local int32) {
	page = v >> s.bits
	local = v & s.mask
	// Go's >> on a negative int32 is arithmetic (floors toward -inf) and
	// & with a positive mask is still well defined, so both components
	// come out correct for negative coordinates without special-casing.
	return
}

func (s *PagedBlockStore) pageFor(p block.Position, create bool) (Page, int32, int32, int32, bool) {
	px, lx := s.pageCoordAndLocal(p.X)
	py, ly := s.pageCoordAndLocal(p.Y)
	pz, lz := s.pageCoordAndLocal(p.Z)
	key := pageKey(px, py, pz)
	pg, ok := s.pages[key]
	if !ok {
		if !create {
			return nil, lx, ly, lz, false
		}
		pg = NewArrayPage(s.pageSize, s.pageSize, s.pageSize, block.XYZ)
		s.pages[key] = pg
	}
	return pg, lx, ly, lz, true
}

// BlockAt returns the state at p, or nil if the cell is empty.
func (s *PagedBlockStore) BlockAt(p block.Position) (*block.BlockState, error) {
	if !s.boundary.Contains(p) {
		return nil, nil
	}
	pg, lx, ly, lz, ok := s.pageFor(p, false)
	if !ok {
		return nil, nil
	}
	idx, present := pg.Load(lx, ly, lz)
	if !present {
		return nil, nil
	}
	return s.palette.Get(idx), nil
}

// SetBlockAt writes state at p, expanding the boundary first if the
// store is resizable and p falls outside it.
func (s *PagedBlockStore) SetBlockAt(p block.Position, state *block.BlockState) error {
	expanded, err := ExpandOrFail(s.boundary, p, s.resizable)
	if err != nil {
		return err
	}
	s.boundary = expanded
	pg, lx, ly, lz, _ := s.pageFor(p, true)
	idx := s.palette.Add(state)
	return pg.Store(lx, ly, lz, idx)
}

// RemoveBlockAt clears the cell at p; a no-op if it was already empty.
func (s *PagedBlockStore) RemoveBlockAt(p block.Position) error {
	pg, lx, ly, lz, ok := s.pageFor(p, false)
	if !ok {
		return nil
	}
	if _, present := pg.Load(lx, ly, lz); !present {
		return nil
	}
	return pg.Erase(lx, ly, lz)
}

// Boundary returns the store's current bounding box.
func (s *PagedBlockStore) Boundary() block.Boundary { return s.boundary }

// SetBoundary overrides the store's declared boundary, used by codecs
// that learn the size from a header before any block is written.
func (s *PagedBlockStore) SetBoundary(b block.Boundary) { s.boundary = b }

// Resizable reports whether out-of-bounds writes grow the boundary.
func (s *PagedBlockStore) Resizable() bool { return s.resizable }

// Insert bulk-loads a slice of (position, state) pairs.
func (s *PagedBlockStore) Insert(blocks []block.Block, offset, length int) error {
	return Insert(s, blocks, offset, length)
}

// IterateBlocks walks every position of the store's boundary in the
// given axis order, yielding air for any cell with no recorded state.
func (s *PagedBlockStore) IterateBlocks(order block.AxisOrder) iter.Seq2[block.Position, *block.BlockState] {
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

// NNZ returns the total number of recorded cells across all pages (an
// explicitly written air state counts as recorded), used
// by tests and diagnostics rather than any codec.
func (s *PagedBlockStore) NNZ() int {
	total := 0
	for _, pg := range s.pages {
		total += pg.NNZ()
	}
	return total
}

var _ BlockStore = (*PagedBlockStore)(nil)

func init() {
	// Guard against a future change silently breaking the page-size
	// invariant every index formula assumes.
	if DefaultPageSize&(DefaultPageSize-1) != 0 {
		panic(fmt.Sprintf("store: DefaultPageSize %d is not a power of two", DefaultPageSize))
	}
}
