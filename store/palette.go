package store

import "github.com/oriumgames/voxschem/block"

// Palette is a bijection between small integer IDs and interned block
// states, local to a single store or stream.
type Palette struct {
	states  []*block.BlockState
	reverse map[string]int
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{reverse: make(map[string]int)}
}

// NewPaletteWithAir returns a palette with air pre-seeded at index 0,
// the convention SPONGE writers use.
func NewPaletteWithAir() *Palette {
	p := NewPalette()
	p.Add(block.Air())
	return p
}

// Add interns state, returning its existing index if already present.
func (p *Palette) Add(state *block.BlockState) int {
	key := state.String()
	if idx, ok := p.reverse[key]; ok {
		return idx
	}
	idx := len(p.states)
	p.states = append(p.states, state)
	p.reverse[key] = idx
	return idx
}

// Get returns the state at idx, or nil if out of range.
func (p *Palette) Get(idx int) *block.BlockState {
	if idx < 0 || idx >= len(p.states) {
		return nil
	}
	return p.states[idx]
}

// Index returns the index of state, or -1 if it has never been added.
func (p *Palette) Index(state *block.BlockState) int {
	if idx, ok := p.reverse[state.String()]; ok {
		return idx
	}
	return -1
}

// Size returns the number of interned states.
func (p *Palette) Size() int { return len(p.states) }

// States returns the palette contents in index order.
func (p *Palette) States() []*block.BlockState { return p.states }
