package section

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/bdat/endian"
	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/internal/bin"
)

// Magic number words 4..8 of the leading header block (words 1..3 are zero).
// Read and compared in little-endian order regardless of the declared file
// endianness; emitted literally by the writer.
const (
	Magic4 uint32 = 1619126978
	Magic5 uint32 = 3474003123
	Magic6 uint32 = 561853
	Magic7 uint32 = 2352072457
	Magic8 uint32 = 286269208
)

// Platform bytes declared in the header.
const (
	PlatformUnix    uint8 = 49
	PlatformWindows uint8 = 50
)

// alignment checker byte values
const (
	alignChecker64 = 51
	alignChecker32 = 34
	u64Checker64   = 51
	u64Checker32   = 50
)

// FileHeader is the parsed leading header block of a SAS7BDAT file.
//
// The header fixes the word size, byte order and page geometry that every
// later structure depends on; the derived values (AlignVal, PageBitOffset,
// SubheaderPointerLength) are filled in during Parse.
type FileHeader struct {
	U64       bool  // 8-byte pointer words and page counters
	Align2    int   // extra 4-byte pad after the filetype field when 4
	BigEndian bool  // multi-byte integers are stored big-endian
	Platform  uint8 // 49 unix, 50 windows

	EncodingByte uint8
	Encoding     string // IANA name resolved from EncodingByte

	SASFile  string
	DataSet  string
	FileType string

	Created   float64 // seconds since the SAS epoch
	Modified  float64
	Created2  float64
	Modified2 float64
	ThirdTS   float64 // semantics unconfirmed, carried verbatim

	HeaderSize uint32
	PageSize   uint32
	PageCount  int64
	PageSeqNum uint32

	SASRelease string
	SASServer  string
	OSVersion  string
	OSMaker    string
	OSName     string

	// Derived layout constants.
	AlignVal               int
	PageBitOffset          int
	SubheaderPointerLength int
}

// derive fills the layout constants from the U64 flag.
func (h *FileHeader) derive() {
	if h.U64 {
		h.AlignVal = 8
		h.PageBitOffset = 32
		h.SubheaderPointerLength = 24
	} else {
		h.AlignVal = 4
		h.PageBitOffset = 16
		h.SubheaderPointerLength = 12
	}
}

// Engine returns the byte order engine declared by the header.
func (h *FileHeader) Engine() endian.EndianEngine {
	return endian.EngineFor(h.BigEndian)
}

// ParseFileHeader parses the leading header block. The reader must be
// positioned at offset 0 with a little-endian engine; the engine is switched
// once the endianness byte has been read.
//
// Returns:
//   - *FileHeader: Parsed header with derived layout constants
//   - []errs.Warning: Tolerated deviations (magic mismatch, trailing garbage)
//   - error: errs.ErrTruncated or errs.ErrHeaderUnreasonable
func ParseFileHeader(r *bin.Reader) (*FileHeader, []errs.Warning, error) {
	var warns []errs.Warning

	h := &FileHeader{}

	// magic number: eight words, always compared little-endian
	var magic [8]uint32
	for i := range magic {
		magic[i] = r.Uint32()
	}
	if magic[0] != 0 {
		warns = append(warns, errs.Warning{Err: errs.ErrMagicMismatch, Offset: 0,
			Detail: fmt.Sprintf("first word is %d, expected 0", magic[0])})
	}
	want := [5]uint32{Magic4, Magic5, Magic6, Magic7, Magic8}
	for i, w := range want {
		if magic[3+i] != w {
			warns = append(warns, errs.Warning{Err: errs.ErrMagicMismatch, Offset: int64(12 + 4*i),
				Detail: fmt.Sprintf("word %d is %d, expected %d", 4+i, magic[3+i], w)})
			break
		}
	}

	// alignment checkers
	if r.Uint8() == alignChecker64 {
		h.U64 = true
	}
	r.Skip(2)
	if r.Uint8() == u64Checker64 {
		h.Align2 = 4
	}

	r.Skip(1)
	h.BigEndian = r.Uint8() == 0
	r.SetEngine(h.Engine())
	r.Skip(1)
	h.Platform = r.Uint8()

	// four unknown blocks of 4, then the repeated checker blocks
	r.Skip(16)
	r.Skip(8)
	r.Skip(4)

	// release/representation block carrying the encoding byte
	r.Skip(2)
	h.EncodingByte = r.Uint8()
	h.Encoding = format.EncodingName(h.EncodingByte)
	r.Skip(1)

	// page-bit-offset block and two zero words
	r.Skip(4)
	r.Skip(8)

	h.SASFile = r.String(8)
	h.DataSet = r.TrimmedString(64)
	h.FileType = r.TrimmedString(8)

	if h.Align2 == 4 {
		r.Skip(4)
	}

	h.Created = r.Float64()
	h.Modified = r.Float64()
	h.Created2 = r.Float64()
	h.Modified2 = r.Float64()

	h.HeaderSize = r.Uint32()
	h.PageSize = r.Uint32()
	if h.U64 {
		h.PageCount = r.Int64()
	} else {
		h.PageCount = int64(r.Int32())
	}

	r.Skip(8) // pad double

	h.SASRelease = r.TrimmedString(8)
	h.SASServer = r.TrimmedString(16)
	h.OSVersion = r.TrimmedString(16)
	h.OSMaker = r.TrimmedString(16)
	h.OSName = r.TrimmedString(16)

	r.Skip(16) // four unknown words
	r.Skip(16) // two pad doubles

	h.PageSeqNum = r.Uint32()
	r.Skip(4)
	h.ThirdTS = r.Float64()

	if err := r.Err(); err != nil {
		return nil, warns, err
	}

	if h.HeaderSize == 0 || h.PageSize == 0 {
		return nil, warns, errs.AtOffset(errs.ErrHeaderUnreasonable, r.Pos())
	}

	// the rest of the header block is zero filled; scan it anyway
	trailing := int64(h.HeaderSize) - r.Pos()
	if trailing < 0 {
		return nil, warns, errs.AtOffset(errs.ErrHeaderUnreasonable, r.Pos())
	}
	nonzero := 0
	for _, b := range r.Bytes(int(trailing)) {
		if b != 0 {
			nonzero++
		}
	}
	if nonzero > 0 {
		warns = append(warns, errs.Warning{Err: errs.ErrMagicMismatch, Offset: r.Pos(),
			Detail: fmt.Sprintf("%d non-zero bytes in header padding", nonzero)})
	}

	if err := r.Err(); err != nil {
		return nil, warns, err
	}

	h.derive()

	return h, warns, nil
}

// EncodeFileHeader emits the fixed header block for the writer profile and
// returns the offset of the page-count field so the writer can patch it once
// the page layout is final. Unknown fields carry the byte values observed in
// SAS output.
func EncodeFileHeader(w *bin.Writer, h *FileHeader) int64 {
	writeMagic(w)

	align1 := uint8(alignChecker64)
	u64Check := uint8(u64Checker64)
	wordByte := uint8(alignChecker64)
	if !h.U64 {
		align1 = alignChecker32
		u64Check = u64Checker32
		wordByte = u64Checker32
	}

	endianByte := uint8(1)
	if h.BigEndian {
		endianByte = 0
	}

	w.PutBytes([]byte{align1, 34, 0, u64Check})
	w.PutBytes([]byte{wordByte, endianByte, 2, h.Platform})
	w.PutBytes([]byte{1, 0, 0, 0})
	w.PutBytes([]byte{0, 0, 0, 20})
	w.PutBytes([]byte{0, 0, 3, 1})
	w.PutBytes([]byte{24, 31, 16, 17})

	// SAS repeats the checker blocks
	w.PutBytes([]byte{align1, 34, 0, u64Check})
	w.PutBytes([]byte{wordByte, endianByte, 2, h.Platform})
	w.PutBytes([]byte{1, wordByte, 1, 35})
	w.PutBytes([]byte{wordByte, 0, h.EncodingByte, 20})
	w.PutBytes([]byte{0, 32, 3, 1})

	w.PutUint32(0)
	w.PutUint32(0)

	w.PutString(h.SASFile, 8)
	w.PutString(h.DataSet, 64)
	w.PutString(h.FileType, 8)

	if h.U64 {
		w.PutUint32(0)
	}

	w.PutFloat64(h.Created)
	w.PutFloat64(h.Modified)
	w.PutFloat64(h.Created2)
	w.PutFloat64(h.Modified2)

	w.PutUint32(h.HeaderSize)
	w.PutUint32(h.PageSize)

	pageCountPos := w.Pos()
	if h.U64 {
		w.PutInt64(h.PageCount)
	} else {
		w.PutInt32(int32(h.PageCount))
	}

	w.PutFloat64(0)

	w.PutString(h.SASRelease, 8)
	w.PutString(h.SASServer, 16)
	w.PutString(h.OSVersion, 16)
	w.PutString(h.OSMaker, 16)
	w.PutString(h.OSName, 16)

	w.PutUint32(1157289805)
	w.PutUint32(563452161)
	w.PutUint32(563452161)
	w.PutUint32(563452161)

	w.PutFloat64(0)
	w.PutFloat64(0)

	w.PutUint32(h.PageSeqNum)
	w.PutUint32(0)
	w.PutFloat64(h.ThirdTS)

	w.PutZeros(int(int64(h.HeaderSize) - w.Pos()))

	return pageCountPos
}

// writeMagic emits the magic words. They are fixed bytes on disk, compared
// little-endian on read, so they bypass the file byte order.
func writeMagic(w *bin.Writer) {
	var buf []byte
	for _, m := range []uint32{0, 0, 0, Magic4, Magic5, Magic6, Magic7, Magic8} {
		buf = binary.LittleEndian.AppendUint32(buf, m)
	}
	w.PutBytes(buf)
}
