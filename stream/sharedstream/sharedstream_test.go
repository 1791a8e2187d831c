package sharedstream

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForksReadIndependentCopies(t *testing.T) {
	s := New(strings.NewReader("hello world"))
	a := s.Fork()
	b := s.Fork()

	bufA := make([]byte, 5)
	n, err := a.Read(bufA)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(bufA[:n]))

	bufB := make([]byte, 11)
	n, err = io.ReadFull(b, bufB)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(bufB[:n]))

	// a resumes from its own offset, unaffected by b having read ahead.
	rest, err := io.ReadAll(a)
	require.NoError(t, err)
	assert.Equal(t, " world", string(rest))
}

func TestForkAtEOFReturnsEOF(t *testing.T) {
	s := New(strings.NewReader("hi"))
	a := s.Fork()
	_, err := io.ReadAll(a)
	require.NoError(t, err)

	buf := make([]byte, 1)
	_, err = a.Read(buf)
	assert.Equal(t, io.EOF, err)
}

func TestAbandonedForkDoesNotBlockPruning(t *testing.T) {
	s := New(strings.NewReader(strings.Repeat("x", 10000)))
	_ = s.Fork() // abandoned; never read from, eligible for GC

	live := s.Fork()
	_, err := io.ReadAll(live)
	require.NoError(t, err)
}
