package block

import "fmt"

// Axis tags one of the three spatial axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// AxisOrder is one of the six permutations of {X, Y, Z}. It defines both
// a linearisation (the first element is outermost/slowest) and a
// traversal order used by every codec and page in this module.
type AxisOrder int

const (
	XYZ AxisOrder = iota
	XZY
	YXZ
	YZX
	ZXY
	ZYX
)

// Axes returns the three axes in outermost-to-innermost order.
func (o AxisOrder) Axes() [3]Axis {
	switch o {
	case XYZ:
		return [3]Axis{AxisX, AxisY, AxisZ}
	case XZY:
		return [3]Axis{AxisX, AxisZ, AxisY}
	case YXZ:
		return [3]Axis{AxisY, AxisX, AxisZ}
	case YZX:
		return [3]Axis{AxisY, AxisZ, AxisX}
	case ZXY:
		return [3]Axis{AxisZ, AxisX, AxisY}
	case ZYX:
		return [3]Axis{AxisZ, AxisY, AxisX}
	default:
		return [3]Axis{AxisX, AxisY, AxisZ}
	}
}

// Preferred is the default axis order used when a caller has no
// wire-format opinion on traversal.
func Preferred() AxisOrder { return XYZ }

// ByteValue is the single-byte wire encoding VXL headers use.
func (o AxisOrder) ByteValue() byte { return byte(o) }

// AxisOrderFromByte decodes the VXL header byte back into an AxisOrder.
func AxisOrderFromByte(b byte) (AxisOrder, error) {
	switch b {
	case 0:
		return XYZ, nil
	case 1:
		return XZY, nil
	case 2:
		return YXZ, nil
	case 3:
		return YZX, nil
	case 4:
		return ZXY, nil
	case 5:
		return ZYX, nil
	default:
		return 0, fmt.Errorf("axis order: invalid wire value %d", b)
	}
}

// Boundary is a half-open axis-aligned 3-D box: min <= coord < min+d.
type Boundary struct {
	MinX, MinY, MinZ int32
	DX, DY, DZ       int32
}

// NewBoundary builds a boundary from an origin and non-negative extents.
func NewBoundary(minX, minY, minZ, dX, dY, dZ int32) Boundary {
	return Boundary{MinX: minX, MinY: minY, MinZ: minZ, DX: dX, DY: dY, DZ: dZ}
}

// NewBoundaryFromSize builds a boundary at the origin with the given
// extents.
func NewBoundaryFromSize(dX, dY, dZ int32) Boundary {
	return Boundary{DX: dX, DY: dY, DZ: dZ}
}

// NewBoundaryFromMinMax builds a boundary from inclusive min/max corners,
// as used by the VXL header.
func NewBoundaryFromMinMax(minX, minY, minZ, maxX, maxY, maxZ int32) Boundary {
	return Boundary{
		MinX: minX, MinY: minY, MinZ: minZ,
		DX: maxX - minX + 1, DY: maxY - minY + 1, DZ: maxZ - minZ + 1,
	}
}

// Empty returns the zero-volume boundary at the origin.
func Empty() Boundary { return Boundary{} }

// MaxX, MaxY and MaxZ return the inclusive upper corner.
func (b Boundary) MaxX() int32 { return b.MinX + b.DX - 1 }
func (b Boundary) MaxY() int32 { return b.MinY + b.DY - 1 }
func (b Boundary) MaxZ() int32 { return b.MinZ + b.DZ - 1 }

// Volume returns dx*dy*dz.
func (b Boundary) Volume() int {
	return int(b.DX) * int(b.DY) * int(b.DZ)
}

// Contains reports whether p lies within the half-open box.
func (b Boundary) Contains(p Position) bool {
	return p.X >= b.MinX && p.X < b.MinX+b.DX &&
		p.Y >= b.MinY && p.Y < b.MinY+b.DY &&
		p.Z >= b.MinZ && p.Z < b.MinZ+b.DZ
}

// ExpandToInclude returns the smallest boundary containing self ∪ {p},
// or self unchanged if p is already contained.
func (b Boundary) ExpandToInclude(p Position) Boundary {
	if b.Contains(p) {
		return b
	}
	minX, maxX := min32(b.MinX, p.X), max32(b.MaxX(), p.X)
	minY, maxY := min32(b.MinY, p.Y), max32(b.MaxY(), p.Y)
	minZ, maxZ := min32(b.MinZ, p.Z), max32(b.MaxZ(), p.Z)
	if b.Volume() == 0 {
		minX, maxX = p.X, p.X
		minY, maxY = p.Y, p.Y
		minZ, maxZ = p.Z, p.Z
	}
	return NewBoundaryFromMinMax(minX, minY, minZ, maxX, maxY, maxZ)
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// dims returns (min, dim) triples for the three axes in a's declared
// outer-to-inner order.
func (b Boundary) dims(order AxisOrder) (mins, dims [3]int32) {
	axes := order.Axes()
	byAxis := func(a Axis) (int32, int32) {
		switch a {
		case AxisX:
			return b.MinX, b.DX
		case AxisY:
			return b.MinY, b.DY
		default:
			return b.MinZ, b.DZ
		}
	}
	for i, a := range axes {
		mins[i], dims[i] = byAxis(a)
	}
	return
}

// Index computes the linear offset of p under the given axis order:
// ((p_a-m_a)*d_b + (p_b-m_b))*d_c + (p_c-m_c), with a,b,c outer-to-inner.
func (b Boundary) Index(p Position, order AxisOrder) int {
	axes := order.Axes()
	coordOf := func(a Axis) int32 {
		switch a {
		case AxisX:
			return p.X
		case AxisY:
			return p.Y
		default:
			return p.Z
		}
	}
	mins, dims := b.dims(order)
	idx := int(coordOf(axes[0]) - mins[0])
	idx = idx*int(dims[1]) + int(coordOf(axes[1])-mins[1])
	idx = idx*int(dims[2]) + int(coordOf(axes[2])-mins[2])
	return idx
}

// PositionAt reconstructs the n-th position (0-indexed) visited by
// Iter(order) via mixed-radix division - the same arithmetic Index
// uses in reverse. This is what makes Skip O(1): no position between
// 0 and n is ever actually visited.
func (b Boundary) PositionAt(order AxisOrder, n int) Position {
	axes := order.Axes()
	mins, dims := b.dims(order)

	c := int32(n % int(dims[2]))
	rem := n / int(dims[2])
	bb := int32(rem % int(dims[1]))
	a := int32(rem / int(dims[1]))

	coords := [3]int32{mins[0] + a, mins[1] + bb, mins[2] + c}
	var out Position
	for i, axis := range axes {
		switch axis {
		case AxisX:
			out.X = coords[i]
		case AxisY:
			out.Y = coords[i]
		case AxisZ:
			out.Z = coords[i]
		}
	}
	return out
}

// Iterator walks every position of a Boundary exactly once in a
// declared AxisOrder, innermost axis varying fastest.
type Iterator struct {
	boundary Boundary
	order    AxisOrder
	volume   int
	next     int
}

// Iter returns a fresh iterator over b in the given axis order.
func (b Boundary) Iter(order AxisOrder) *Iterator {
	return &Iterator{boundary: b, order: order, volume: b.Volume()}
}

// Next returns the next position, or ok=false once the boundary is
// exhausted.
func (it *Iterator) Next() (Position, bool) {
	if it.next >= it.volume {
		return Position{}, false
	}
	p := it.boundary.PositionAt(it.order, it.next)
	it.next++
	return p, true
}

// Skip advances the iterator by n positions in O(1) and returns it for
// chaining. This is the hot path readers use to resume mid-stream after
// a partial read.
func (it *Iterator) Skip(n int) *Iterator {
	it.next += n
	return it
}

// Remaining reports how many positions are left to visit.
func (it *Iterator) Remaining() int {
	if it.next >= it.volume {
		return 0
	}
	return it.volume - it.next
}
