package dataset

import (
	"fmt"
	"math"
	"os"

	"github.com/arloliu/bdat/endian"
	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/frame"
	"github.com/arloliu/bdat/internal/bin"
	"github.com/arloliu/bdat/internal/options"
	"github.com/arloliu/bdat/section"
)

// Missing numeric cells are stored as the SAS missing-value pattern,
// 00 00 00 00 00 FE FF FF on little-endian files. Emitting the bit pattern
// through the engine keeps the bytes correct in either order.
const missingBits uint64 = 0xFFFFFE0000000000

// Writer emits a SAS7BDAT file for the restricted profile: uncompressed
// pages, numeric (8-byte) and character columns; little-endian unless
// WithBigEndian is given.
type Writer struct {
	path string
	cfg  writerConfig
}

// NewWriter creates a Writer for path.
func NewWriter(path string, opts ...WriterOption) (*Writer, error) {
	w := &Writer{path: path, cfg: defaultWriterConfig()}
	if err := options.Apply(&w.cfg, opts...); err != nil {
		return nil, err
	}
	w.cfg.resolve()

	return w, nil
}

// Write lays out and writes the frame.
//
// Returns:
//   - error: errs.ErrWriterUnsupported for compression requests or columns
//     outside the profile, otherwise the underlying I/O error
func (w *Writer) Write(f *frame.Frame) error {
	if w.cfg.compression != format.RowCompressionNone {
		return fmt.Errorf("%w: native row compression", errs.ErrWriterUnsupported)
	}

	st, err := newWriterState(f, &w.cfg)
	if err != nil {
		return err
	}

	image, err := st.build()
	if err != nil {
		return err
	}

	return os.WriteFile(w.path, image, 0o644)
}

// WriteFrame creates the file and writes f in one call.
func WriteFrame(path string, f *frame.Frame, opts ...WriterOption) error {
	w, err := NewWriter(path, opts...)
	if err != nil {
		return err
	}

	return w.Write(f)
}

// writerState carries the validated frame and the padded text pool entries
// through the layout passes.
type writerState struct {
	cfg *writerConfig
	u64 bool
	eng endian.EndianEngine
	hs  int64
	ps  int64

	k int
	n int

	cols    []frame.Column
	widths  []int
	names   []string // pool entries, padded to multiples of four
	labels  []string
	formats []string
	nameLen []int16 // actual name lengths, capped at 32

	rowlen int64

	w *bin.Writer
}

func newWriterState(f *frame.Frame, cfg *writerConfig) (*writerState, error) {
	st := &writerState{
		cfg: cfg,
		u64: !cfg.bit32,
		eng: endian.EngineFor(cfg.bigEndian),
		hs:  int64(cfg.headerSize),
		ps:  int64(cfg.pageSize),
		k:   len(f.Columns),
		n:   f.NumRows(),
	}

	if st.k == 0 {
		return nil, fmt.Errorf("%w: frame has no columns", errs.ErrWriterUnsupported)
	}

	st.cols = f.Columns
	st.widths = make([]int, st.k)
	st.names = make([]string, st.k)
	st.labels = make([]string, st.k)
	st.formats = make([]string, st.k)
	st.nameLen = make([]int16, st.k)

	for i := range f.Columns {
		c := &f.Columns[i]
		if c.Len() != st.n {
			return nil, fmt.Errorf("%w: column %q has %d values, frame has %d rows",
				errs.ErrWriterUnsupported, c.Name, c.Len(), st.n)
		}

		switch c.Type {
		case format.ColumnNumeric:
			if c.Width != 0 && c.Width != 8 {
				return nil, fmt.Errorf("%w: numeric column %q width %d (only 8 supported)",
					errs.ErrWriterUnsupported, c.Name, c.Width)
			}
			st.widths[i] = 8

		case format.ColumnCharacter:
			width := c.Width
			if width == 0 {
				for _, s := range c.Strings {
					if len(s) > width {
						width = len(s)
					}
				}
				if width == 0 {
					width = 1
				}
			}
			if width < 1 || width > 32767 {
				return nil, fmt.Errorf("%w: character column %q width %d",
					errs.ErrWriterUnsupported, c.Name, width)
			}
			st.widths[i] = width

		default:
			return nil, fmt.Errorf("%w: column %q has unsupported type %d",
				errs.ErrWriterUnsupported, c.Name, c.Type)
		}

		st.names[i] = padPoolName(c.Name)
		st.nameLen[i] = int16(min(len(c.Name), 32))
		st.labels[i] = padPoolName(c.Label)
		st.formats[i] = padPoolFormat(c.Format)

		st.rowlen += int64(st.widths[i])
	}

	return st, nil
}

// padPoolName pads a name or label to a multiple of four bytes with NULs and
// caps it at 32 bytes, the pool layout SAS emits.
func padPoolName(s string) string {
	if len(s) > 32 {
		return s[:32]
	}
	if rem := len(s) % 4; rem != 0 {
		return s + string(make([]byte, 4-rem))
	}

	return s
}

// padPoolFormat pads a format to four bytes, or eight when longer.
func padPoolFormat(s string) string {
	switch {
	case len(s) == 0:
		return ""
	case len(s) <= 4:
		return s + string(make([]byte, 4-len(s)))
	case len(s) < 8:
		return s + string(make([]byte, 8-len(s)))
	default:
		return s[:8]
	}
}

func (st *writerState) debugf(msg string, args ...any) {
	if st.cfg.debug != nil {
		fmt.Fprintf(st.cfg.debug, msg, args...)
	}
}

func (st *writerState) poolSizes() (names, labels, formats int) {
	for i := 0; i < st.k; i++ {
		names += len(st.names[i])
		labels += len(st.labels[i])
		formats += len(st.formats[i])
	}

	return names, labels, formats
}

// subheaderCount returns the page-one directory size: terminator, one
// format/label subheader per column, the column list for multi-column
// datasets, and the six fixed metadata subheaders.
func (st *writerState) subheaderCount() int {
	shc := 7 + st.k
	if st.k > 1 {
		shc++
	}

	return shc
}

// build lays out the whole file image.
func (st *writerState) build() ([]byte, error) {
	st.w = bin.NewWriter(st.hs+st.ps, st.eng)

	created := 0.0
	if !st.cfg.created.IsZero() {
		created = format.ToSASTime(st.cfg.created)
	}

	hdr := &section.FileHeader{
		U64:          st.u64,
		BigEndian:    st.cfg.bigEndian,
		Platform:     section.PlatformUnix,
		EncodingByte: format.EncodingUTF8,
		SASFile:      "SAS FILE",
		DataSet:      st.cfg.dataSetName,
		FileType:     "DATA",
		Created:      created,
		Modified:     created,
		Created2:     created,
		Modified2:    created,
		HeaderSize:   uint32(st.hs),
		PageSize:     uint32(st.ps),
		PageCount:    1,
		SASRelease:   "9.0401M7",
		SASServer:    "Linux",
		OSVersion:    "5.6.15-arch1-1",
		OSMaker:      "",
		OSName:       "x86_64",
	}
	pageCountPos1 := section.EncodeFileHeader(st.w, hdr)

	shc := st.subheaderCount()
	pageBitArea := int64(pageBitOffset(st.u64)) + 8
	ptrTablePos := st.hs + pageBitArea
	dataPos1 := ptrTablePos + section.PointerTableLength(st.u64, shc)

	// size pass fixes the subheader area; values patched later do not change
	// body lengths
	sizing := st.renderBodies(0, 1, 0)
	subSize := int64(0)
	for _, b := range sizing {
		subSize += int64(len(b.bytes))
	}
	subStart := st.hs + st.ps - (subSize+7)&^7

	if subStart < dataPos1 {
		return nil, fmt.Errorf("%w: page size %d cannot hold the metadata for %d columns",
			errs.ErrWriterUnsupported, st.ps, st.k)
	}

	rowsOnPage1 := int64(0)
	if st.rowlen > 0 {
		rowsOnPage1 = (subStart - dataPos1) / st.rowlen
	}
	if rowsOnPage1 > int64(st.n) {
		rowsOnPage1 = int64(st.n)
	}
	if limit := int64(32767 - shc); rowsOnPage1 > limit {
		rowsOnPage1 = limit // the block count is a 16-bit field
	}
	blockCount := rowsOnPage1 + int64(shc)
	st.debugf("page 1: %d rows, %d subheaders, subheader area %d..%d\n",
		rowsOnPage1, shc, subStart, st.hs+st.ps)

	st.w.Seek(st.hs)
	section.EncodePageHeader(st.w, st.u64, &section.PageHeader{
		SeqNum:         1,
		Type:           format.PageMix1,
		BlockCount:     int16(blockCount),
		SubheaderCount: int16(shc),
	})

	st.w.Seek(dataPos1)
	for i := int64(0); i < rowsOnPage1; i++ {
		st.writeRow(int(i))
	}

	// subheader bodies run forward from subStart; the pointer table is
	// patched once their positions are known
	bodies := st.renderBodies(rowsOnPage1, 1, blockCount)
	ptrs := make([]section.SubheaderPointer, shc)
	ptrs[shc-1] = section.SubheaderPointer{
		Offset:      subStart - st.hs,
		Length:      0,
		Compression: section.PointerTruncated,
	}

	pos := subStart
	pageCountPos2 := int64(-1)
	for j, b := range bodies {
		st.w.Seek(pos)
		st.w.PutBytes(b.bytes)
		ptrs[shc-2-j] = section.SubheaderPointer{
			Offset:      pos - st.hs,
			Length:      int64(len(b.bytes)),
			Compression: 0,
			Type:        b.typ,
		}
		if b.pageCountRel >= 0 {
			pageCountPos2 = pos + b.pageCountRel
		}
		pos += int64(len(b.bytes))
	}

	st.w.Seek(ptrTablePos)
	for _, p := range ptrs {
		section.EncodeSubheaderPointer(st.w, st.u64, p)
	}

	pageCount, err := st.writeExtraPages(rowsOnPage1)
	if err != nil {
		return nil, err
	}

	st.w.Seek(pageCountPos1)
	st.w.PutWord(st.u64, uint64(pageCount))
	if pageCountPos2 >= 0 {
		st.w.Seek(pageCountPos2)
		st.w.PutWord(st.u64, uint64(pageCount))
	}

	return st.w.Bytes(), nil
}

// writeExtraPages spills the remaining rows onto plain data pages.
func (st *writerState) writeExtraPages(rowsWritten int64) (int64, error) {
	pageCount := int64(1)
	seq := uint32(1)

	pageBitArea := int64(pageBitOffset(st.u64)) + 8
	capacity := int64(0)
	if st.rowlen > 0 {
		capacity = (st.ps - pageBitArea) / st.rowlen
	}
	if capacity > 32767 {
		capacity = 32767 // the block count is a 16-bit field
	}

	for rowsWritten < int64(st.n) {
		if capacity <= 0 {
			return 0, fmt.Errorf("%w: row length %d exceeds page size %d",
				errs.ErrWriterUnsupported, st.rowlen, st.ps)
		}

		base := st.hs + pageCount*st.ps
		pageCount++
		seq++

		rowsThis := int64(st.n) - rowsWritten
		if rowsThis > capacity {
			rowsThis = capacity
		}

		st.w.Seek(base)
		st.w.PutZeros(int(st.ps))
		st.w.Seek(base)
		section.EncodePageHeader(st.w, st.u64, &section.PageHeader{
			SeqNum:         seq,
			Type:           format.PageData,
			BlockCount:     int16(rowsThis),
			SubheaderCount: 0,
		})

		for i := rowsWritten; i < rowsWritten+rowsThis; i++ {
			st.writeRow(int(i))
		}
		rowsWritten += rowsThis
		st.debugf("page %d: %d rows\n", pageCount, rowsThis)
	}

	return pageCount, nil
}

// writeRow emits one fixed-width record at the current position.
func (st *writerState) writeRow(i int) {
	for j := range st.cols {
		c := &st.cols[j]
		if c.Type == format.ColumnNumeric {
			v := c.Floats[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				st.w.PutUint64(missingBits)
			} else {
				st.w.PutFloat64(v)
			}

			continue
		}

		s := c.Strings[i]
		if len(s) > st.widths[j] {
			s = s[:st.widths[j]]
		}
		st.w.PutBytes([]byte(s))
		st.w.PutSpaces(st.widths[j] - len(s))
	}
}

func pageBitOffset(u64 bool) int {
	if u64 {
		return 32
	}

	return 16
}
