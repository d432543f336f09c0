package section

import (
	"testing"

	"github.com/arloliu/bdat/endian"
	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/internal/bin"
	"github.com/stretchr/testify/require"
)

func sampleHeader(u64 bool) *FileHeader {
	h := &FileHeader{
		U64:          u64,
		Platform:     PlatformUnix,
		EncodingByte: 20,
		SASFile:      "SAS FILE",
		DataSet:      "TEST",
		FileType:     "DATA",
		Created:      123456.5,
		Modified:     123456.5,
		HeaderSize:   1024,
		PageSize:     4096,
		PageCount:    3,
		SASRelease:   "9.0401M7",
		SASServer:    "Linux",
		OSVersion:    "5.6.15-arch1-1",
		OSName:       "x86_64",
	}

	return h
}

func TestFileHeaderRoundTrip(t *testing.T) {
	for _, u64 := range []bool{true, false} {
		h := sampleHeader(u64)
		w := bin.NewWriter(int64(h.HeaderSize), endian.GetLittleEndianEngine())
		EncodeFileHeader(w, h)

		r := bin.NewReader(w.Bytes(), endian.GetLittleEndianEngine())
		parsed, warns, err := ParseFileHeader(r)
		require.NoError(t, err, "u64=%v", u64)
		require.Empty(t, warns)

		require.Equal(t, u64, parsed.U64)
		require.False(t, parsed.BigEndian)
		require.Equal(t, PlatformUnix, parsed.Platform)
		require.Equal(t, "UTF-8", parsed.Encoding)
		require.Equal(t, "SAS FILE", parsed.SASFile)
		require.Equal(t, "TEST", parsed.DataSet)
		require.Equal(t, "DATA", parsed.FileType)
		require.Equal(t, 123456.5, parsed.Created)
		require.Equal(t, 123456.5, parsed.Modified)
		require.Equal(t, uint32(1024), parsed.HeaderSize)
		require.Equal(t, uint32(4096), parsed.PageSize)
		require.Equal(t, int64(3), parsed.PageCount)
		require.Equal(t, "9.0401M7", parsed.SASRelease)
		require.Equal(t, "x86_64", parsed.OSName)

		if u64 {
			require.Equal(t, 8, parsed.AlignVal)
			require.Equal(t, 32, parsed.PageBitOffset)
			require.Equal(t, 24, parsed.SubheaderPointerLength)
		} else {
			require.Equal(t, 4, parsed.AlignVal)
			require.Equal(t, 16, parsed.PageBitOffset)
			require.Equal(t, 12, parsed.SubheaderPointerLength)
		}
	}
}

func TestFileHeaderBigEndian(t *testing.T) {
	h := sampleHeader(true)
	h.BigEndian = true

	w := bin.NewWriter(int64(h.HeaderSize), endian.GetBigEndianEngine())
	EncodeFileHeader(w, h)

	// the reader always starts little-endian and switches on the
	// endianness byte
	r := bin.NewReader(w.Bytes(), endian.GetLittleEndianEngine())
	parsed, warns, err := ParseFileHeader(r)
	require.NoError(t, err)
	require.Empty(t, warns)
	require.True(t, parsed.BigEndian)
	require.Equal(t, uint32(4096), parsed.PageSize)
	require.Equal(t, int64(3), parsed.PageCount)
}

func TestFileHeaderMagicWarning(t *testing.T) {
	h := sampleHeader(true)
	w := bin.NewWriter(int64(h.HeaderSize), endian.GetLittleEndianEngine())
	EncodeFileHeader(w, h)

	image := w.Bytes()
	image[0] = 1  // first word non-zero
	image[13] = 0 // corrupt a signature word

	r := bin.NewReader(image, endian.GetLittleEndianEngine())
	_, warns, err := ParseFileHeader(r)
	require.NoError(t, err)
	require.Len(t, warns, 2)
	for _, wn := range warns {
		require.ErrorIs(t, wn.Err, errs.ErrMagicMismatch)
	}
}

func TestFileHeaderUnreasonable(t *testing.T) {
	h := sampleHeader(true)
	h.PageSize = 0
	w := bin.NewWriter(int64(h.HeaderSize), endian.GetLittleEndianEngine())
	EncodeFileHeader(w, h)

	r := bin.NewReader(w.Bytes(), endian.GetLittleEndianEngine())
	_, _, err := ParseFileHeader(r)
	require.ErrorIs(t, err, errs.ErrHeaderUnreasonable)
}

func TestFileHeaderTruncated(t *testing.T) {
	r := bin.NewReader(make([]byte, 64), endian.GetLittleEndianEngine())
	_, _, err := ParseFileHeader(r)
	require.ErrorIs(t, err, errs.ErrTruncated)
}
