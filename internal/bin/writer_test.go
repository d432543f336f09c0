package bin

import (
	"testing"

	"github.com/arloliu/bdat/endian"
	"github.com/stretchr/testify/require"
)

func TestWriterRoundTrip(t *testing.T) {
	le := endian.GetLittleEndianEngine()

	w := NewWriter(0, le)
	w.PutUint32(0xF6F6F6F6)
	w.PutInt16(-28672)
	w.PutFloat64(3.5)
	w.PutString("DATASTEP", 8)
	w.PutString("ab", 4)
	w.PutSpaces(2)

	r := NewReader(w.Bytes(), le)
	require.Equal(t, uint32(0xF6F6F6F6), r.Uint32())
	require.Equal(t, int16(-28672), r.Int16())
	require.Equal(t, 3.5, r.Float64())
	require.Equal(t, "DATASTEP", r.String(8))
	require.Equal(t, "ab\x00\x00", r.String(4))
	require.Equal(t, "  ", r.String(2))
	require.NoError(t, r.Err())
}

func TestWriterPatch(t *testing.T) {
	le := endian.GetLittleEndianEngine()

	w := NewWriter(16, le)
	w.PutUint32(0)
	end := w.Pos()
	w.Seek(0)
	w.PutUint32(99)
	w.Seek(end)
	w.PutUint32(7)

	r := NewReader(w.Bytes(), le)
	require.Equal(t, uint32(99), r.Uint32())
	require.Equal(t, uint32(7), r.Uint32())
}

func TestWriterExtends(t *testing.T) {
	w := NewWriter(2, endian.GetLittleEndianEngine())
	w.PutUint64(1)
	require.Len(t, w.Bytes(), 8)

	w.Seek(100)
	w.PutUint8(5)
	require.Len(t, w.Bytes(), 101)
	require.Equal(t, uint8(5), w.Bytes()[100])
}

func TestWriterWord(t *testing.T) {
	le := endian.GetLittleEndianEngine()

	w := NewWriter(0, le)
	w.PutWord(true, 0xFFFFFFFFFFFFFC00)
	w.PutWord(false, 0xFFFFFC00)
	require.Len(t, w.Bytes(), 12)

	r := NewReader(w.Bytes(), le)
	require.Equal(t, uint64(0xFFFFFFFFFFFFFC00), r.Word(true))
	require.Equal(t, uint64(0xFFFFFC00), r.Word(false))
}
