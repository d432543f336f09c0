package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferWriteReset(t *testing.T) {
	bb := NewByteBuffer(16)
	n, err := bb.Write([]byte("rowdata"))
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, 7, bb.Len())
	require.Equal(t, []byte("rowdata"), bb.Bytes())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.GreaterOrEqual(t, cap(bb.B), 16)
}

func TestByteBufferGrow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.Grow(1024)
	require.GreaterOrEqual(t, cap(bb.B), 1024)

	// growing within capacity is a no-op
	before := cap(bb.B)
	bb.Grow(8)
	require.Equal(t, before, cap(bb.B))
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(32, 64)

	bb := p.Get()
	require.NotNil(t, bb)
	_, _ = bb.Write([]byte("abc"))
	p.Put(bb)

	bb2 := p.Get()
	require.Equal(t, 0, bb2.Len())

	// oversized buffers are dropped
	big := NewByteBuffer(128)
	big.B = big.B[:0]
	p.Put(big)

	p.Put(nil) // must not panic
}

func TestDefaultScratchPool(t *testing.T) {
	bb := GetScratchBuffer()
	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())
	PutScratchBuffer(bb)
}
