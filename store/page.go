package store

import "fmt"

import "github.com/oriumgames/voxschem/block"

// Page is a dense 3-D tile of palette indices covering a power-of-two
// sub-box. It stores index+1 so that the zero value denotes "absent"
// and tracks its own non-zero count (nnz) so a PagedBlockStore never
// has to rescan a page to answer Boundary()-adjacent questions.
type Page interface {
	Load(x, y, z int32) (int, bool)
	Store(x, y, z int32, state int) error
	Erase(x, y, z int32) error
	NNZ() int
}

// ArrayPage is the sole Page implementation: a flat slice indexed by
// one of the six axis-order formulas, local to the page (not the wider
// store's boundary).
type ArrayPage struct {
	sizeX, sizeY, sizeZ int32
	order               block.AxisOrder
	data                []int
	nnz                 int
}

// NewArrayPage allocates a page of size (sizeX, sizeY, sizeZ) using the
// given local indexing order.
func NewArrayPage(sizeX, sizeY, sizeZ int32, order block.AxisOrder) *ArrayPage {
	return &ArrayPage{
		sizeX: sizeX, sizeY: sizeY, sizeZ: sizeZ,
		order: order,
		data:  make([]int, int(sizeX)*int(sizeY)*int(sizeZ)),
	}
}

func (p *ArrayPage) index(x, y, z int32) (int, bool) {
	var idx int32
	switch p.order {
	case block.XYZ:
		idx = x + y*p.sizeX + z*p.sizeX*p.sizeY
	case block.XZY:
		idx = x + z*p.sizeX + y*p.sizeX*p.sizeZ
	case block.YXZ:
		idx = y + x*p.sizeY + z*p.sizeY*p.sizeX
	case block.YZX:
		idx = y + z*p.sizeY + x*p.sizeY*p.sizeZ
	case block.ZXY:
		idx = z + x*p.sizeZ + y*p.sizeZ*p.sizeX
	default: // ZYX
		idx = z + y*p.sizeZ + x*p.sizeZ*p.sizeY
	}
	total := p.sizeX * p.sizeY * p.sizeZ
	if idx < 0 || idx >= total {
		return 0, false
	}
	return int(idx), true
}

// Load returns the interned palette index at the local coordinate, or
// ok=false if the cell is empty or out of range.
func (p *ArrayPage) Load(x, y, z int32) (int, bool) {
	idx, ok := p.index(x, y, z)
	if !ok {
		return 0, false
	}
	v := p.data[idx]
	if v == 0 {
		return 0, false
	}
	return v - 1, true
}

// Store writes the palette index at the local coordinate.
func (p *ArrayPage) Store(x, y, z int32, state int) error {
	idx, ok := p.index(x, y, z)
	if !ok {
		return fmt.Errorf("page: local coordinate (%d,%d,%d) out of range", x, y, z)
	}
	if p.data[idx] == 0 {
		p.nnz++
	}
	p.data[idx] = state + 1
	return nil
}

// Erase clears the cell, failing if it was already empty.
func (p *ArrayPage) Erase(x, y, z int32) error {
	idx, ok := p.index(x, y, z)
	if !ok {
		return fmt.Errorf("page: local coordinate (%d,%d,%d) out of range", x, y, z)
	}
	if p.data[idx] == 0 {
		return fmt.Errorf("page: no block to erase at (%d,%d,%d)", x, y, z)
	}
	p.nnz--
	p.data[idx] = 0
	return nil
}

// NNZ returns the page's non-zero cell count.
func (p *ArrayPage) NNZ() int { return p.nnz }
