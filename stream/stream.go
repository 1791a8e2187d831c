// Package stream defines the reader/writer contracts every schematic
// codec implements, plus the bulk helpers (ReadToEnd, WriteAll) built on
// top of them. Codecs only ever have to implement the small per-chunk
// methods; the bulk helpers are shared, not reimplemented per format.
package stream

import (
	"fmt"
	"iter"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/store"
)

// chunkSize is how many blocks ReadToEnd/WriteAll move per call to the
// underlying Reader/Writer.
const chunkSize = 4096

// Reader is the incremental decoding contract every input codec
// implements. Read fills buffer[offset:offset+length] and returns how
// many entries it actually produced; it returns (0, nil) once the
// stream is exhausted. Boundary may return an error before the header
// has been parsed far enough to know the schematic's extent.
type Reader interface {
	Read(buffer []block.Block, offset, length int) (int, error)
	Boundary() (block.Boundary, error)
}

// Writer is the incremental encoding contract every output codec
// implements. Complete flushes any buffered state (palette, header,
// trailing padding) and must be called exactly once, after the last
// Write.
type Writer interface {
	Write(blocks []block.Block) (int, error)
	Complete() error
}

// ReadToEnd drains r in chunkSize-sized batches, inserting each batch
// into store via its bulk Insert method.
func ReadToEnd(r Reader, dst store.BlockStore) error {
	buffer := make([]block.Block, chunkSize)
	for {
		n, err := r.Read(buffer, 0, chunkSize)
		if err != nil {
			return fmt.Errorf("read to end: %w", err)
		}
		if n == 0 {
			return nil
		}
		if err := dst.Insert(buffer, 0, n); err != nil {
			return fmt.Errorf("read to end: insert: %w", err)
		}
	}
}

// ReadAll drains r into a slice, without needing a BlockStore.
func ReadAll(r Reader) ([]block.Block, error) {
	var all []block.Block
	buffer := make([]block.Block, chunkSize)
	for {
		n, err := r.Read(buffer, 0, chunkSize)
		if err != nil {
			return nil, fmt.Errorf("read all: %w", err)
		}
		if n == 0 {
			return all, nil
		}
		all = append(all, buffer[:n]...)
	}
}

// WriteAll walks src's non-air blocks in XYZ order and pushes them
// through w in chunkSize-sized batches, then calls Complete.
func WriteAll(w Writer, src store.BlockStore) error {
	batch := make([]block.Block, 0, chunkSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := w.Write(batch); err != nil {
			return fmt.Errorf("write all: %w", err)
		}
		batch = batch[:0]
		return nil
	}
	for pos, state := range src.IterateBlocks(block.XYZ) {
		if state == nil || state.IsAir() {
			continue
		}
		batch = append(batch, block.Block{Position: pos, State: state})
		if len(batch) == chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	return w.Complete()
}

// StoreReader adapts an already-populated BlockStore into a Reader, the
// shape every whole-document codec (MOJANG, SPONGE, MCEDIT all decode a
// complete NBT/byte-array document before exposing anything) needs to
// satisfy the streaming contract the any-format multiplexer expects.
type StoreReader struct {
	seq  iter.Seq2[block.Position, *block.BlockState]
	next func() (block.Position, *block.BlockState, bool)
	stop func()
	b    block.Boundary
}

// FromStore builds a StoreReader that walks s's boundary in XYZ order.
func FromStore(s store.BlockStore) *StoreReader {
	return &StoreReader{b: s.Boundary(), seq: s.IterateBlocks(block.XYZ)}
}

// Read yields the next length entries from the underlying store,
// skipping air, exactly once each.
func (sr *StoreReader) Read(buffer []block.Block, offset, length int) (int, error) {
	if sr.next == nil {
		sr.next, sr.stop = iter.Pull2(sr.seq)
	}
	n := 0
	for n < length {
		pos, state, ok := sr.next()
		if !ok {
			sr.stop()
			return n, nil
		}
		if state == nil || state.IsAir() {
			continue
		}
		buffer[offset+n] = block.Block{Position: pos, State: state}
		n++
	}
	return n, nil
}

// Boundary returns the wrapped store's boundary.
func (sr *StoreReader) Boundary() (block.Boundary, error) { return sr.b, nil }

var _ Reader = (*StoreReader)(nil)
