package codec

import (
	"testing"

	"github.com/arloliu/bdat/errs"
	"github.com/stretchr/testify/require"
)

func TestDecompressRDC(t *testing.T) {
	t.Run("literal only", func(t *testing.T) {
		payload := []byte("0123456789abcdef")
		src := append([]byte{0x00, 0x00}, payload...)

		out, err := DecompressRDC(src, len(payload))
		require.NoError(t, err)
		require.Equal(t, payload, out)
	})

	t.Run("short run", func(t *testing.T) {
		// control word 0x8000: first step is a command
		out, err := DecompressRDC([]byte{0x80, 0x00, 0x02, 'q'}, 5)
		require.NoError(t, err)
		require.Equal(t, []byte("qqqqq"), out)
	})

	t.Run("long run", func(t *testing.T) {
		out, err := DecompressRDC([]byte{0x80, 0x00, 0x10, 0x01, 'r'}, 20)
		require.NoError(t, err)
		require.Equal(t, []byte("rrrrrrrrrrrrrrrrrrrr"), out)
	})

	t.Run("short back-reference", func(t *testing.T) {
		// three literals then a 3-byte back-copy at distance 3
		src := []byte{0x10, 0x00, 'a', 'b', 'c', 0x30, 0x00}
		out, err := DecompressRDC(src, 6)
		require.NoError(t, err)
		require.Equal(t, []byte("abcabc"), out)
	})

	t.Run("overlapping back-reference", func(t *testing.T) {
		// distance 3, length 5: the copy runs into its own output
		src := []byte{0x10, 0x00, 'a', 'b', 'c', 0x50, 0x00}
		out, err := DecompressRDC(src, 8)
		require.NoError(t, err)
		require.Equal(t, []byte("abcabcab"), out)
	})

	t.Run("long back-reference", func(t *testing.T) {
		// distance 3, length 16
		src := []byte{0x10, 0x00, 'a', 'b', 'c', 0x20, 0x00, 0x00}
		out, err := DecompressRDC(src, 19)
		require.NoError(t, err)
		require.Equal(t, []byte("abcabcabcabcabcabca"), out)
	})
}

func TestDecompressRDC_Errors(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		out, err := DecompressRDC([]byte{0x00, 0x00, 'a'}, 2)
		require.ErrorIs(t, err, errs.ErrCorruptRow)
		require.Equal(t, []byte("a"), out)
	})

	t.Run("back-reference before start", func(t *testing.T) {
		// back-copy at distance 3 with only one byte of output
		src := []byte{0x40, 0x00, 'a', 0x30, 0x00}
		_, err := DecompressRDC(src, 4)
		require.ErrorIs(t, err, errs.ErrCorruptRow)
	})

	t.Run("empty input empty row", func(t *testing.T) {
		out, err := DecompressRDC(nil, 0)
		require.NoError(t, err)
		require.Empty(t, out)
	})
}
