// Package axiom implements the Axiom blueprint codec: a small
// length-prefixed binary envelope (magic, NBT header, thumbnail PNG,
// gzip-compressed NBT block data) wrapping a sparse grid of 16x16x16
// chunks, each with its own local palette and standard (non-tight)
// packed long array. Framing here is NOT the caller's job - unlike the
// other codecs in this module, the envelope's length prefixes and inner
// gzip stage are intrinsic to the format itself, not a layering the
// caller chooses.
package axiom

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/oriumgames/nbt"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/store"
	"github.com/oriumgames/voxschem/stream"
	"github.com/oriumgames/voxschem/varint"
)

// Magic is the blueprint envelope's 4-byte signature.
const Magic uint32 = 0x0AE5BB36

const (
	chunkSize   int32 = 16
	chunkArea         = chunkSize * chunkSize
	chunkVolume       = chunkSize * chunkArea
	emptyBlock        = "minecraft:structure_void"
)

type headerNBT struct {
	Version         int32    `nbt:"Version"`
	Name            string   `nbt:"Name,omitempty"`
	Author          string   `nbt:"Author,omitempty"`
	Tags            []string `nbt:"Tags,omitempty"`
	ThumbnailYaw    float32  `nbt:"ThumbnailYaw,omitempty"`
	ThumbnailPitch  float32  `nbt:"ThumbnailPitch,omitempty"`
	LockedThumbnail bool     `nbt:"LockedThumbnail,omitempty"`
	BlockCount      int32    `nbt:"BlockCount,omitempty"`
	ContainsAir     bool     `nbt:"ContainsAir,omitempty"`
}

type blockDataNBT struct {
	DataVersion int32      `nbt:"DataVersion"`
	BlockRegion []chunkNBT `nbt:"BlockRegion"`
}

type chunkNBT struct {
	X           int32               `nbt:"X"`
	Y           int32               `nbt:"Y"`
	Z           int32               `nbt:"Z"`
	BlockStates chunkBlockStatesNBT `nbt:"BlockStates"`
}

type chunkBlockStatesNBT struct {
	Palette []paletteEntryNBT `nbt:"palette"`
	Data    []int64           `nbt:"data,array"`
}

type paletteEntryNBT struct {
	Name       string            `nbt:"Name"`
	Properties map[string]string `nbt:"Properties,omitempty"`
}

type chunkKey struct{ X, Y, Z int32 }

type chunkBuilder struct {
	ids   map[string]int32
	names []*block.BlockState
	data  []int
}

func newChunkBuilder() *chunkBuilder {
	return &chunkBuilder{
		ids:  map[string]int32{emptyBlock: 0},
		data: make([]int, int(chunkVolume)),
	}
}

func (cb *chunkBuilder) indexOf(state *block.BlockState) int32 {
	if state == nil || state.IsAir() {
		return 0
	}
	key := state.String()
	if idx, ok := cb.ids[key]; ok {
		return idx
	}
	idx := int32(len(cb.names) + 1)
	cb.names = append(cb.names, state)
	cb.ids[key] = idx
	return idx
}

func (cb *chunkBuilder) set(localX, localY, localZ int32, state *block.BlockState) {
	idx := int(localY*chunkArea + localZ*chunkSize + localX)
	cb.data[idx] = int(cb.indexOf(state))
}

func (cb *chunkBuilder) toNBT(x, y, z int32) chunkNBT {
	entries := make([]paletteEntryNBT, len(cb.names)+1)
	entries[0] = paletteEntryNBT{Name: emptyBlock}
	for i, state := range cb.names {
		entries[i+1].Name = state.Name()
		if props := state.Properties(); len(props) > 0 {
			m := make(map[string]string, len(props))
			for _, p := range props {
				m[p.Key] = p.Value
			}
			entries[i+1].Properties = m
		}
	}
	bits := bitsPerBlock(len(entries))
	packed := varint.PackLongArray(cb.data, bits)
	return chunkNBT{X: x, Y: y, Z: z, BlockStates: chunkBlockStatesNBT{Palette: entries, Data: packed}}
}

// Read decodes a complete Axiom blueprint envelope from r.
func Read(r io.Reader) (*stream.StoreReader, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("axiom: read magic: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("axiom: bad magic %#x", magic)
	}

	var headerLen uint32
	if err := binary.Read(r, binary.BigEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("axiom: read header length: %w", err)
	}
	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, fmt.Errorf("axiom: read header: %w", err)
	}
	var header headerNBT
	if err := nbt.NewDecoderWithEncoding(bytes.NewReader(headerBuf), nbt.BigEndian).Decode(&header); err != nil {
		return nil, fmt.Errorf("axiom: decode header nbt: %w", err)
	}

	var thumbLen uint32
	if err := binary.Read(r, binary.BigEndian, &thumbLen); err != nil {
		return nil, fmt.Errorf("axiom: read thumbnail length: %w", err)
	}
	if thumbLen > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(thumbLen)); err != nil {
			return nil, fmt.Errorf("axiom: skip thumbnail: %w", err)
		}
	}

	var dataLen uint32
	if err := binary.Read(r, binary.BigEndian, &dataLen); err != nil {
		return nil, fmt.Errorf("axiom: read data length: %w", err)
	}
	dataBuf := make([]byte, dataLen)
	if _, err := io.ReadFull(r, dataBuf); err != nil {
		return nil, fmt.Errorf("axiom: read block data: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(dataBuf))
	if err != nil {
		return nil, fmt.Errorf("axiom: gzip decompress: %w", err)
	}
	defer gz.Close()

	var blockData blockDataNBT
	if err := nbt.NewDecoderWithEncoding(gz, nbt.BigEndian).Decode(&blockData); err != nil {
		return nil, fmt.Errorf("axiom: decode block data nbt: %w", err)
	}

	s := store.NewSparseBlockStore()
	for _, chunk := range blockData.BlockRegion {
		palette := make([]*block.BlockState, len(chunk.BlockStates.Palette))
		for i, entry := range chunk.BlockStates.Palette {
			properties := make([]block.Property, 0, len(entry.Properties))
			for k, v := range entry.Properties {
				properties = append(properties, block.Property{Key: k, Value: v})
			}
			sort.Slice(properties, func(a, b int) bool { return properties[a].Key < properties[b].Key })
			palette[i] = block.New(entry.Name, properties)
		}
		bits := bitsPerBlock(len(palette))
		values := varint.UnpackLongArray(chunk.BlockStates.Data, bits, int(chunkVolume))

		for idx, paletteIdx := range values {
			if paletteIdx < 0 || paletteIdx >= len(palette) {
				continue
			}
			state := palette[paletteIdx]
			if state == nil || state.IsAir() || state.Name() == emptyBlock {
				continue
			}
			localY := int32(idx) / chunkArea
			rem := int32(idx) % chunkArea
			localZ := rem / chunkSize
			localX := rem % chunkSize
			pos := block.Position{
				X: chunk.X*chunkSize + localX,
				Y: chunk.Y*chunkSize + localY,
				Z: chunk.Z*chunkSize + localZ,
			}
			if err := s.SetBlockAt(pos, state); err != nil {
				return nil, fmt.Errorf("axiom: set block at %v: %w", pos, err)
			}
		}
	}

	return stream.FromStore(s), nil
}

// Writer serialises accumulated blocks as an Axiom blueprint envelope on
// Complete, bucketing positions into 16x16x16 chunks.
type Writer struct {
	w        io.Writer
	accum    store.BlockStore
	complete bool
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, accum: store.NewSparseBlockStore()}
}

// Write records blocks, growing the writer's bounding box as needed.
func (aw *Writer) Write(blocks []block.Block) (int, error) {
	if aw.complete {
		return 0, fmt.Errorf("axiom: write after complete")
	}
	for _, b := range blocks {
		if err := aw.accum.SetBlockAt(b.Position, b.State); err != nil {
			return 0, fmt.Errorf("axiom: write: %w", err)
		}
	}
	return len(blocks), nil
}

// Complete serialises the accumulated store as a blueprint envelope.
func (aw *Writer) Complete() error {
	if aw.complete {
		return fmt.Errorf("axiom: complete called twice")
	}
	aw.complete = true

	boundary := aw.accum.Boundary()
	chunks := make(map[chunkKey]*chunkBuilder)
	blockCount := 0
	containsAir := false

	for pos, state := range aw.accum.IterateBlocks(block.Preferred()) {
		if state == nil || state.IsAir() {
			containsAir = true
			continue
		}
		chunkX, localX := floorDiv(pos.X, chunkSize)
		chunkY, localY := floorDiv(pos.Y, chunkSize)
		chunkZ, localZ := floorDiv(pos.Z, chunkSize)
		key := chunkKey{X: chunkX, Y: chunkY, Z: chunkZ}
		builder, ok := chunks[key]
		if !ok {
			builder = newChunkBuilder()
			chunks[key] = builder
		}
		builder.set(localX, localY, localZ, state)
		blockCount++
	}

	keys := make([]chunkKey, 0, len(chunks))
	for key := range chunks {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Y != keys[j].Y {
			return keys[i].Y < keys[j].Y
		}
		if keys[i].Z != keys[j].Z {
			return keys[i].Z < keys[j].Z
		}
		return keys[i].X < keys[j].X
	})
	chunkList := make([]chunkNBT, 0, len(keys))
	for _, key := range keys {
		chunkList = append(chunkList, chunks[key].toNBT(key.X, key.Y, key.Z))
	}
	if len(chunkList) == 0 {
		chunkList = append(chunkList, newChunkBuilder().toNBT(0, 0, 0))
		containsAir = true
	}

	header := headerNBT{
		Version:     1,
		Name:        "Converted Blueprint",
		Tags:        []string{"converted"},
		BlockCount:  int32(blockCount),
		ContainsAir: containsAir || blockCount < boundary.Volume(),
	}

	blockData := blockDataNBT{
		DataVersion: 3465,
		BlockRegion: chunkList,
	}

	var headerBuf bytes.Buffer
	if err := nbt.NewEncoderWithEncoding(&headerBuf, nbt.BigEndian).Encode(header); err != nil {
		return fmt.Errorf("axiom: encode header nbt: %w", err)
	}
	if headerBuf.Len() > math.MaxUint32 {
		return fmt.Errorf("axiom: header too large: %d bytes", headerBuf.Len())
	}

	var dataBuf bytes.Buffer
	gz := gzip.NewWriter(&dataBuf)
	if err := nbt.NewEncoderWithEncoding(gz, nbt.BigEndian).Encode(blockData); err != nil {
		gz.Close()
		return fmt.Errorf("axiom: encode block data nbt: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("axiom: close gzip: %w", err)
	}

	if err := binary.Write(aw.w, binary.BigEndian, Magic); err != nil {
		return fmt.Errorf("axiom: write magic: %w", err)
	}
	if err := binary.Write(aw.w, binary.BigEndian, uint32(headerBuf.Len())); err != nil {
		return fmt.Errorf("axiom: write header length: %w", err)
	}
	if _, err := aw.w.Write(headerBuf.Bytes()); err != nil {
		return fmt.Errorf("axiom: write header: %w", err)
	}
	if err := binary.Write(aw.w, binary.BigEndian, uint32(0)); err != nil {
		return fmt.Errorf("axiom: write thumbnail length: %w", err)
	}
	if err := binary.Write(aw.w, binary.BigEndian, uint32(dataBuf.Len())); err != nil {
		return fmt.Errorf("axiom: write data length: %w", err)
	}
	if _, err := aw.w.Write(dataBuf.Bytes()); err != nil {
		return fmt.Errorf("axiom: write block data: %w", err)
	}
	return nil
}

var _ stream.Writer = (*Writer)(nil)

func floorDiv(v, size int32) (q, r int32) {
	q = v / size
	r = v % size
	if r < 0 {
		r += size
		q--
	}
	return q, r
}

func bitsPerBlock(paletteSize int) int {
	if paletteSize <= 0 {
		return 0
	}
	n := varint.BitsPerEntry(paletteSize)
	if n < 4 {
		n = 4
	}
	return n
}
