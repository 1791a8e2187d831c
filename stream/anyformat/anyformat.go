// Package anyformat multiplexes several codec readers over one shared
// byte stream and narrows down to whichever one actually parses,
// without requiring the caller to know the format in advance or the
// stream to be seekable.
package anyformat

import (
	"fmt"
	"io"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/stream"
	"github.com/oriumgames/voxschem/stream/sharedstream"
)

// probeChunk is how many blocks each still-live candidate is asked to
// produce per narrowing round.
const probeChunk = 64

// Constructor builds a stream.Reader over r, failing fast (before any
// block is read) if the header it sees doesn't match its format.
type Constructor func(r io.Reader) (stream.Reader, error)

type candidate struct {
	reader   stream.Reader
	buffered []block.Block
	dead     bool
}

// Reader races a set of Constructors against forks of a single shared
// stream, dropping candidates as they fail to parse and proxying to
// whichever one remains once only one does.
type Reader struct {
	candidates []*candidate
	closed     bool
}

// New forks src once per constructor and builds a Reader that narrows
// among them as it is read. A constructor that errors immediately
// (header mismatch) is dropped before New even returns.
func New(src io.Reader, constructors []Constructor) (*Reader, error) {
	shared := sharedstream.New(src)
	m := &Reader{}
	for _, ctor := range constructors {
		r, err := ctor(shared.Fork())
		if err != nil {
			continue
		}
		m.candidates = append(m.candidates, &candidate{reader: r})
	}
	if len(m.candidates) == 0 {
		return nil, fmt.Errorf("anyformat: no matching format found")
	}
	return m, nil
}

func (m *Reader) live() []*candidate {
	var out []*candidate
	for _, c := range m.candidates {
		if !c.dead {
			out = append(out, c)
		}
	}
	return out
}

// Read narrows the candidate set on each call until exactly one
// survives, then proxies directly to it (first draining whatever that
// survivor had already buffered during narrowing).
func (m *Reader) Read(buffer []block.Block, offset, length int) (int, error) {
	survivors := m.live()
	if len(survivors) == 0 {
		if m.closed {
			return 0, fmt.Errorf("anyformat: no matching format found")
		}
		return 0, fmt.Errorf("anyformat: all candidate formats failed to parse")
	}
	if len(survivors) == 1 {
		sole := survivors[0]
		n := copy(buffer[offset:offset+length], sole.buffered)
		sole.buffered = sole.buffered[n:]
		if n == length {
			return n, nil
		}
		more, err := sole.reader.Read(buffer, offset+n, length-n)
		if err != nil {
			return n, err
		}
		return n + more, nil
	}
	if m.closed {
		return 0, fmt.Errorf("anyformat: no matching format found")
	}

	probe := make([]block.Block, probeChunk)
	for _, c := range survivors {
		n, err := c.reader.Read(probe, 0, probeChunk)
		if err != nil {
			c.dead = true
			continue
		}
		if n > 0 {
			c.buffered = append(c.buffered, probe[:n]...)
		}
	}
	if len(m.live()) == 0 {
		return 0, fmt.Errorf("anyformat: no matching format found")
	}
	// Narrowing round: report no definitive output yet, caller keeps
	// pumping until only one candidate is left.
	return 0, nil
}

// Boundary returns the boundary reported by the first surviving
// candidate (the sole one once narrowing is done), narrowing the
// candidate set on candidates whose Boundary call itself fails.
func (m *Reader) Boundary() (block.Boundary, error) {
	for _, c := range m.live() {
		if _, err := c.reader.Boundary(); err != nil {
			c.dead = true
		}
	}
	survivors := m.live()
	switch len(survivors) {
	case 0:
		return block.Boundary{}, fmt.Errorf("anyformat: no matching format found")
	case 1:
		return survivors[0].reader.Boundary()
	default:
		return survivors[0].reader.Boundary()
	}
}

// Close marks the stream closed; a subsequent Read with more than one
// surviving candidate is then treated as "no matching format found"
// rather than "keep narrowing".
func (m *Reader) Close() error {
	m.closed = true
	return nil
}

var _ stream.Reader = (*Reader)(nil)
