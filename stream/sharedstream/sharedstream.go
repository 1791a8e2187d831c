// Package sharedstream lets several independent readers peek the same
// underlying byte stream without consuming it for one another. It
// exists for format autodetection: several codec constructors each want
// to try parsing the same header, and only one of them actually "wins"
// and keeps reading past that point.
package sharedstream

import (
	"io"
	"sync"
	"weak"
)

const readChunk = 4096

// cursor is a virtual reader's private read offset into the shared
// cache. It is tracked by SharedStream only through a weak pointer, the
// same relationship Rc<RefCell<usize>>/Weak has in the reference
// implementation: an abandoned VirtualReader's cursor can be collected
// and simply drops out of the min-offset computation on its next prune.
type cursor struct {
	offset int
}

// SharedStream wraps an io.Reader, caching every byte it has pulled so
// far so that forked VirtualReaders can each replay from their own
// offset into that cache.
type SharedStream struct {
	mu      sync.Mutex
	inner   io.Reader
	cache   []byte
	eof     bool
	readers []weak.Pointer[cursor]
}

// New wraps r for forking.
func New(r io.Reader) *SharedStream {
	return &SharedStream{inner: r}
}

// Fork returns a new VirtualReader starting at the current head of the
// cache (offset 0 relative to everything still retained).
func (s *SharedStream) Fork() *VirtualReader {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &cursor{}
	s.readers = append(s.readers, weak.Make(c))
	return &VirtualReader{shared: s, cursor: c}
}

// fill pulls more bytes from the inner reader until the cache holds at
// least n total bytes or the inner reader is exhausted. Caller must
// hold s.mu.
func (s *SharedStream) fill(n int) error {
	buf := make([]byte, readChunk)
	for len(s.cache) < n && !s.eof {
		k, err := s.inner.Read(buf)
		if k > 0 {
			s.cache = append(s.cache, buf[:k]...)
		}
		if err == io.EOF {
			s.eof = true
			return nil
		}
		if err != nil {
			return err
		}
		if k == 0 {
			return nil
		}
	}
	return nil
}

// autoPrune drops the cache bytes no live cursor can still need and
// shifts every live cursor's offset down to match. Caller must hold
// s.mu.
func (s *SharedStream) autoPrune() {
	minOffset := -1
	live := s.readers[:0]
	for _, w := range s.readers {
		c := w.Value()
		if c == nil {
			continue
		}
		live = append(live, w)
		if minOffset < 0 || c.offset < minOffset {
			minOffset = c.offset
		}
	}
	s.readers = live
	if minOffset <= 0 || minOffset > len(s.cache) {
		return
	}
	s.cache = append([]byte(nil), s.cache[minOffset:]...)
	for _, w := range s.readers {
		if c := w.Value(); c != nil {
			c.offset -= minOffset
		}
	}
}

// VirtualReader is one cursor into a SharedStream's cache. It satisfies
// io.Reader, so it can be handed directly to any codec constructor.
type VirtualReader struct {
	shared *SharedStream
	cursor *cursor
}

// Read implements io.Reader by serving from the shared cache, pulling
// more from the underlying stream only when this cursor's request runs
// past the end of what is already cached.
func (v *VirtualReader) Read(p []byte) (int, error) {
	s := v.shared
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.cursor.offset+len(p) > len(s.cache) && !s.eof {
		if err := s.fill(v.cursor.offset + len(p)); err != nil {
			return 0, err
		}
	}
	avail := len(s.cache) - v.cursor.offset
	if avail <= 0 {
		if s.eof {
			return 0, io.EOF
		}
		return 0, nil
	}
	n := copy(p, s.cache[v.cursor.offset:])
	v.cursor.offset += n
	s.autoPrune()
	return n, nil
}
