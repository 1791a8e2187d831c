package store

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/oriumgames/voxschem/block"
)

// unknownName is the placeholder type name written for a block whose
// numeric palette entry hasn't been decoded yet. It deliberately lives
// outside the "minecraft" namespace block.Parse enforces, since
// block.New bypasses that validation for exactly this kind of internal
// bookkeeping state.
const unknownName = "voxschem:unknown"

const unknownIDProperty = "id"

// LazyPaletteBlockStoreWrapper lets a streaming decoder record blocks by
// a numeric palette index before it has actually decoded the palette
// itself - the MOJANG and SPONGE wire formats both emit their block
// array before (or interleaved with) their palette section. Blocks are
// written through to the inner store as placeholder states carrying the
// numeric index; once the real palette is known, SetActualPalette makes
// every subsequent read transparently resolve placeholders to their
// real state.
type LazyPaletteBlockStoreWrapper struct {
	inner   BlockStore
	palette map[int]*block.BlockState
}

// NewLazyPaletteBlockStoreWrapper wraps inner, which starts out with no
// actual palette bound.
func NewLazyPaletteBlockStoreWrapper(inner BlockStore) *LazyPaletteBlockStoreWrapper {
	return &LazyPaletteBlockStoreWrapper{inner: inner}
}

// SetUnknownBlockAt records that p holds palette index tempID, whose
// meaning is not yet known.
func (w *LazyPaletteBlockStoreWrapper) SetUnknownBlockAt(p block.Position, tempID int) error {
	placeholder := block.New(unknownName, []block.Property{
		{Key: unknownIDProperty, Value: strconv.Itoa(tempID)},
	})
	return w.inner.SetBlockAt(p, placeholder)
}

// SetActualPalette binds the numeric index -> real state mapping. Every
// BlockAt/IterateBlocks call made afterwards resolves placeholders
// through it.
func (w *LazyPaletteBlockStoreWrapper) SetActualPalette(palette map[int]*block.BlockState) {
	w.palette = palette
}

func (w *LazyPaletteBlockStoreWrapper) resolve(state *block.BlockState) (*block.BlockState, error) {
	if state == nil || state.Name() != unknownName {
		return state, nil
	}
	if w.palette == nil {
		return nil, fmt.Errorf("lazy palette: block read before the actual palette was bound")
	}
	idStr := ""
	for _, p := range state.Properties() {
		if p.Key == unknownIDProperty {
			idStr = p.Value
			break
		}
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, fmt.Errorf("lazy palette: malformed placeholder id %q", idStr)
	}
	resolved, ok := w.palette[id]
	if !ok {
		return nil, fmt.Errorf("lazy palette: no palette entry for index %d", id)
	}
	return resolved, nil
}

// BlockAt returns the resolved state at p.
func (w *LazyPaletteBlockStoreWrapper) BlockAt(p block.Position) (*block.BlockState, error) {
	state, err := w.inner.BlockAt(p)
	if err != nil {
		return nil, err
	}
	return w.resolve(state)
}

// SetBlockAt writes an already-resolved state through to the inner
// store, bypassing the placeholder machinery.
func (w *LazyPaletteBlockStoreWrapper) SetBlockAt(p block.Position, state *block.BlockState) error {
	return w.inner.SetBlockAt(p, state)
}

// RemoveBlockAt delegates to the inner store.
func (w *LazyPaletteBlockStoreWrapper) RemoveBlockAt(p block.Position) error {
	return w.inner.RemoveBlockAt(p)
}

// Boundary delegates to the inner store.
func (w *LazyPaletteBlockStoreWrapper) Boundary() block.Boundary { return w.inner.Boundary() }

// SetBoundary delegates to the inner store.
func (w *LazyPaletteBlockStoreWrapper) SetBoundary(b block.Boundary) { w.inner.SetBoundary(b) }

// Resizable delegates to the inner store.
func (w *LazyPaletteBlockStoreWrapper) Resizable() bool { return w.inner.Resizable() }

// Insert delegates to the inner store.
func (w *LazyPaletteBlockStoreWrapper) Insert(blocks []block.Block, offset, length int) error {
	return w.inner.Insert(blocks, offset, length)
}

// IterateBlocks walks the inner store's boundary, resolving each
// placeholder through the bound palette. A cell that fails to resolve
// (palette not yet bound, or an index with no entry) degrades to air
// rather than aborting the whole walk.
func (w *LazyPaletteBlockStoreWrapper) IterateBlocks(order block.AxisOrder) iter.Seq2[block.Position, *block.BlockState] {
	return func(yield func(block.Position, *block.BlockState) bool) {
		for p, state := range w.inner.IterateBlocks(order) {
			resolved, err := w.resolve(state)
			if err != nil || resolved == nil {
				resolved = block.Air()
			}
			if !yield(p, resolved) {
				return
			}
		}
	}
}

var _ BlockStore = (*LazyPaletteBlockStoreWrapper)(nil)
