package anyformat

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/stream"
)

// fakeReader is a minimal stream.Reader that only accepts sources
// beginning with a fixed magic prefix, yielding a single fixed block
// once and then exhausting.
type fakeReader struct {
	prefix string
	served bool
}

func newFakeConstructor(prefix string) Constructor {
	return func(r io.Reader) (stream.Reader, error) {
		buf := make([]byte, len(prefix))
		if _, err := io.ReadFull(r, buf); err != nil || string(buf) != prefix {
			return nil, fmt.Errorf("header mismatch")
		}
		return &fakeReader{prefix: prefix}, nil
	}
}

func (f *fakeReader) Read(buffer []block.Block, offset, length int) (int, error) {
	if f.served {
		return 0, nil
	}
	f.served = true
	buffer[offset] = block.Block{State: block.Air()}
	return 1, nil
}

func (f *fakeReader) Boundary() (block.Boundary, error) {
	return block.NewBoundaryFromSize(1, 1, 1), nil
}

func TestNewDropsImmediatelyFailingConstructors(t *testing.T) {
	m, err := New(strings.NewReader("BBBB"), []Constructor{
		newFakeConstructor("AAAA"),
		newFakeConstructor("BBBB"),
	})
	require.NoError(t, err)
	assert.Len(t, m.live(), 1)
}

func TestNewErrorsWhenNoConstructorMatches(t *testing.T) {
	_, err := New(strings.NewReader("ZZZZ"), []Constructor{
		newFakeConstructor("AAAA"),
		newFakeConstructor("BBBB"),
	})
	assert.Error(t, err)
}

func TestReadProbeRoundKeepsNonFailingCandidatesAlive(t *testing.T) {
	// Both candidates share the "AA" prefix, so both are constructed; the
	// probe round then narrows based on what each one's Read actually does.
	m, err := New(strings.NewReader("AA"), []Constructor{
		newFakeConstructor("AA"),
		newFakeConstructor("AA"),
	})
	require.NoError(t, err)
	assert.Len(t, m.live(), 2)

	buffer := make([]block.Block, 64)
	n, err := m.Read(buffer, 0, len(buffer))
	require.NoError(t, err)
	// Both candidates are still alive after one narrowing round since
	// neither one's fake Read ever errors.
	assert.Equal(t, 0, n)
	assert.Len(t, m.live(), 2)
}
