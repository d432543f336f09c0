package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/arloliu/bdat/endian"
	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/frame"
	"github.com/arloliu/bdat/internal/bin"
	"github.com/arloliu/bdat/section"
	"github.com/stretchr/testify/require"
)

const (
	testHeaderSize = 65536
	testPageSize   = 65536

	// field offsets within the 64-bit row-size subheader body
	rowSizeDeletedOff  = 56
	rowSizeComprLenOff = 694
	rowSizeProcLenOff  = 706
)

// page1Pointers parses the page-one subheader directory of a written image.
func page1Pointers(t *testing.T, image []byte, count int) []section.SubheaderPointer {
	t.Helper()
	rd := bin.NewReader(image, endian.GetLittleEndianEngine())
	rd.Seek(testHeaderSize + 32 + 8)
	ptrs := section.ParseSubheaderPointers(rd, true, count)
	require.NoError(t, rd.Err())

	return ptrs
}

func put16(image []byte, off int64, v uint16) {
	image[off] = byte(v)
	image[off+1] = byte(v >> 8)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.sas7bdat"))
	require.ErrorIs(t, err, errs.ErrOpenFailed)
}

func TestReadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sas7bdat")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := Read(path)
	require.ErrorIs(t, err, errs.ErrOpenFailed)
}

func TestReadGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.sas7bdat")
	require.NoError(t, os.WriteFile(path, []byte("not a sas file"), 0o644))

	_, err := Read(path)
	require.ErrorIs(t, err, errs.ErrTruncated)
}

func TestReadGzipInput(t *testing.T) {
	in := sampleFrame()
	plain := writeSample(t, in)

	raw, err := os.ReadFile(plain)
	require.NoError(t, err)

	zipped := filepath.Join(t.TempDir(), "sample.sas7bdat.gz")
	out, err := os.Create(zipped)
	require.NoError(t, err)
	gz := gzip.NewWriter(out)
	_, err = gz.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, out.Close())

	f, err := Read(zipped)
	require.NoError(t, err)
	requireSameValues(t, in, f)
}

func TestReadInterrupt(t *testing.T) {
	path := writeSample(t, sampleFrame())

	stop := errors.New("interrupted")
	_, err := Read(path, WithInterrupt(func() error { return stop }))
	require.ErrorIs(t, err, stop)
}

// deletedFixture writes a ten-row dataset and rewrites page one as a
// PAGE_DATA_TYPE_2 page with rows 3 and 7 flagged in the deletion bitmap.
func deletedFixture(t *testing.T) string {
	t.Helper()

	const n = 10
	f := &frame.Frame{
		Columns: []frame.Column{
			{Name: "a", Type: format.ColumnNumeric, Width: 8, Floats: make([]float64, n)},
			{Name: "s", Type: format.ColumnCharacter, Width: 2, Strings: make([]string, n)},
		},
	}
	for i := 0; i < n; i++ {
		f.Columns[0].Floats[i] = float64(i)
		f.Columns[1].Strings[i] = "rr"
	}

	path := writeSample(t, f)
	image, err := os.ReadFile(path)
	require.NoError(t, err)

	// page type 512 -> 384
	put16(image, testHeaderSize+32, uint16(format.PageData2))

	// deletion bitmap sits past the pointer table and the inline rows;
	// the alignment correction is zero for this geometry
	shc := 10
	tableLen := int64(shc * 24)
	rowlen := int64(10)
	bitmapPos := testHeaderSize + 32 + 8 + tableLen + int64(n)*rowlen
	image[bitmapPos] = 0x11 // rows 3 and 7
	image[bitmapPos+1] = 0x00

	// deleted-row counter in the row-size subheader
	ptrs := page1Pointers(t, image, shc)
	caseRowSize := testHeaderSize + ptrs[0].Offset
	put16(image, caseRowSize+rowSizeDeletedOff, 2)

	require.NoError(t, os.WriteFile(path, image, 0o644))

	return path
}

func TestDeletedRows(t *testing.T) {
	f, err := Read(deletedFixture(t))
	require.NoError(t, err)

	want := []bool{false, false, false, true, false, false, false, true, false, false}
	require.Equal(t, want, f.Deleted)
	require.Equal(t, uint64(2), f.Info.DeletedRows)

	// the bitmap population matches the declared counter
	count := uint64(0)
	for _, d := range f.Deleted {
		if d {
			count++
		}
	}
	require.Equal(t, f.Info.DeletedRows, count)

	// values decode unchanged
	require.Equal(t, float64(3), f.Columns[0].Floats[3])
	require.Equal(t, "rr", f.Columns[1].Strings[7])
}

// compressedFixture writes a two-row single-column dataset, then rewrites it
// as a natively compressed file: the codec name is patched into the text
// pool, page one loses its inline rows, and a compressed-meta page carrying
// one row payload per subheader is appended.
func compressedFixture(t *testing.T, name string, payloads [][]byte) string {
	t.Helper()

	f := &frame.Frame{
		Columns: []frame.Column{
			{Name: "c", Type: format.ColumnCharacter, Width: 8,
				Strings: []string{"AAAAAAAA", "BBBBBBBB"}},
		},
	}

	path := writeSample(t, f)
	image, err := os.ReadFile(path)
	require.NoError(t, err)

	shc := 8 // single column: no column-list subheader
	ptrs := page1Pointers(t, image, shc)

	caseRowSize := testHeaderSize + ptrs[0].Offset
	put16(image, caseRowSize+rowSizeComprLenOff, 8)
	put16(image, caseRowSize+rowSizeProcLenOff, 0)

	// codec name replaces the blank compression region of the first chunk
	caseColText := testHeaderSize + ptrs[3].Offset
	copy(image[caseColText+8+section.DeviateStringsOffset:], name)

	// page one keeps only its subheaders
	put16(image, testHeaderSize+32+2, uint16(shc))

	// appended page: compressed-meta with one payload per subheader
	w := bin.NewWriter(0, endian.GetLittleEndianEngine())
	section.EncodePageHeader(w, true, &section.PageHeader{
		SeqNum:         2,
		Type:           format.PageCMeta,
		BlockCount:     int16(len(payloads)),
		SubheaderCount: int16(len(payloads)),
	})
	body := int64(40 + len(payloads)*24)
	for _, p := range payloads {
		section.EncodeSubheaderPointer(w, true, section.SubheaderPointer{
			Offset:      body,
			Length:      int64(len(p)),
			Compression: section.PointerPlainData,
			Type:        1,
		})
		body += int64(len(p))
	}
	for _, p := range payloads {
		w.PutBytes(p)
	}
	page := w.Bytes()
	page = append(page, make([]byte, testPageSize-len(page))...)
	image = append(image, page...)

	// page count lives at offset 208 of the 64-bit header
	image[208] = 2

	require.NoError(t, os.WriteFile(path, image, 0o644))

	return path
}

func TestCompressedRLE(t *testing.T) {
	// 0xC5 expands to eight copies of the next byte
	path := compressedFixture(t, "SASYZCRL", [][]byte{
		{0xC5, 'A'},
		{0xC5, 'B'},
	})

	f, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, "SASYZCRL", f.Info.Compression)
	require.Equal(t, []string{"AAAAAAAA", "BBBBBBBB"}, f.Columns[0].Strings)
	require.Equal(t, []bool{true, true}, f.Valid)
}

func TestCompressedRDC(t *testing.T) {
	// zero control words: sixteen literal slots, eight used per row
	path := compressedFixture(t, "SASYZCR2", [][]byte{
		append([]byte{0x00, 0x00}, "AAAAAAAA"...),
		append([]byte{0x00, 0x00}, "BBBBBBBB"...),
	})

	f, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, "SASYZCR2", f.Info.Compression)
	require.Equal(t, []string{"AAAAAAAA", "BBBBBBBB"}, f.Columns[0].Strings)
}

func TestCompressedMatchesUncompressedTwin(t *testing.T) {
	twin := &frame.Frame{
		Columns: []frame.Column{
			{Name: "c", Type: format.ColumnCharacter, Width: 8,
				Strings: []string{"AAAAAAAA", "BBBBBBBB"}},
		},
	}
	plain, err := Read(writeSample(t, twin))
	require.NoError(t, err)

	compressed, err := Read(compressedFixture(t, "SASYZCRL", [][]byte{
		{0xC5, 'A'},
		{0xC5, 'B'},
	}))
	require.NoError(t, err)

	require.Equal(t, plain.Fingerprint(), compressed.Fingerprint())
}

func TestScratchSpoolCodecs(t *testing.T) {
	path := compressedFixture(t, "SASYZCRL", [][]byte{
		{0xC5, 'A'},
		{0xC5, 'B'},
	})

	for _, ct := range []format.CompressionType{
		format.CompressionLZ4,
		format.CompressionS2,
		format.CompressionZstd,
	} {
		f, err := Read(path, WithScratchCompression(ct))
		require.NoError(t, err, ct.String())
		require.Equal(t, []string{"AAAAAAAA", "BBBBBBBB"}, f.Columns[0].Strings)
	}
}

func TestUnsupportedCompression(t *testing.T) {
	path := compressedFixture(t, "SASYZC99", [][]byte{
		{0xC5, 'A'},
		{0xC5, 'B'},
	})

	f, err := Read(path)
	require.NoError(t, err)

	// metadata survives, rows do not
	require.Equal(t, 0, f.NumRows())
	require.Equal(t, uint64(2), f.Info.RowCount)
	require.Equal(t, "SASYZC99", f.Info.Compression)

	found := false
	for _, w := range f.Warnings {
		if errors.Is(w.Err, errs.ErrUnsupportedCompression) {
			found = true
		}
	}
	require.True(t, found)
}

func TestReaderHeaderAccess(t *testing.T) {
	path := writeSample(t, sampleFrame())

	r, err := NewReader(path)
	require.NoError(t, err)
	require.True(t, r.Header().U64)
	require.False(t, r.Header().BigEndian)
	require.Equal(t, int64(1), r.Header().PageCount)
	require.Empty(t, r.Warnings())
}
