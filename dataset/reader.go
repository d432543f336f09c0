package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/arloliu/bdat/codec"
	"github.com/arloliu/bdat/compress"
	"github.com/arloliu/bdat/endian"
	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/frame"
	"github.com/arloliu/bdat/internal/bin"
	"github.com/arloliu/bdat/internal/options"
	"github.com/arloliu/bdat/internal/pool"
	"github.com/arloliu/bdat/section"
)

// Reader decodes one SAS7BDAT file into a frame.Frame.
//
// Note: The Reader is NOT safe for concurrent use and is not reusable; after
// Read returns, create a new Reader for further decoding.
type Reader struct {
	cfg readerConfig

	image []byte
	rd    *bin.Reader
	hdr   *section.FileHeader

	warns []errs.Warning

	// metadata collected during the page walk
	rowSize  *section.RowSize
	colCount int64
	chunks   []section.ColText
	namePtrs []section.ColNamePointer
	attrs    []section.ColAttr
	fmtLbls  []*section.ColFormatLabel
	colList  *section.ColList
	subCount *section.SubCount

	// per-page row geometry
	dataPos     []int64
	rowsPerPage []int64
	delBitmaps  [][]byte

	compression    format.RowCompression
	comprName      string
	proc           string
	sw             string
	firstChunkSeen bool

	spool *scratchSpool
}

// Read opens, reads and decodes path in one call.
func Read(path string, opts ...ReaderOption) (*frame.Frame, error) {
	r, err := NewReader(path, opts...)
	if err != nil {
		return nil, err
	}

	return r.Read()
}

// NewReader opens path and parses the file header. Gzip-compressed input
// (sniffed by magic) is decompressed transparently.
//
// Returns:
//   - *Reader: Reader positioned to walk pages
//   - error: errs.ErrOpenFailed, errs.ErrTruncated or errs.ErrHeaderUnreasonable
func NewReader(path string, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{cfg: defaultReaderConfig()}
	if err := options.Apply(&r.cfg, opts...); err != nil {
		return nil, err
	}

	image, err := readImage(path)
	if err != nil {
		return nil, err
	}
	r.image = image

	r.rd = bin.NewReader(r.image, endian.GetLittleEndianEngine())
	hdr, warns, err := section.ParseFileHeader(r.rd)
	if err != nil {
		return nil, err
	}
	r.hdr = hdr
	r.warns = warns
	r.debugf("header: u64=%v bigendian=%v headersize=%d pagesize=%d pagecount=%d\n",
		hdr.U64, hdr.BigEndian, hdr.HeaderSize, hdr.PageSize, hdr.PageCount)

	r.spool = newScratchSpool(r.cfg.scratch)

	return r, nil
}

func readImage(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrOpenFailed, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", errs.ErrOpenFailed, path)
	}

	if len(raw) >= 2 && raw[0] == 0x1F && raw[1] == 0x8B {
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrOpenFailed, err)
		}
		defer gz.Close()

		inflated, err := io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrOpenFailed, err)
		}

		return inflated, nil
	}

	return raw, nil
}

// Header returns the parsed file header.
func (r *Reader) Header() *section.FileHeader {
	return r.hdr
}

// Warnings returns the deviations tolerated so far.
func (r *Reader) Warnings() []errs.Warning {
	return r.warns
}

// Read walks all pages, assembles the schema and materialises the selected
// rows and columns.
func (r *Reader) Read() (*frame.Frame, error) {
	defer r.spool.release()

	if err := r.walkPages(); err != nil {
		return nil, err
	}

	cols, kk := r.assembleSchema()

	f, err := r.decodeRows(cols, kk)
	if err != nil {
		return nil, err
	}

	r.fillInfo(f, kk)
	f.Warnings = r.warns

	return f, nil
}

func (r *Reader) debugf(msg string, args ...any) {
	if r.cfg.debug != nil {
		fmt.Fprintf(r.cfg.debug, msg, args...)
	}
}

func (r *Reader) warn(err error, offset int64, detail string) {
	r.warns = append(r.warns, errs.Warning{Err: err, Offset: offset, Detail: detail})
	r.debugf("warning: %v at %d: %s\n", err, offset, detail)
}

// walkPages iterates all pages, parsing each directory and dispatching its
// subheaders. Deleted-row bitmaps are captured for the page types that carry
// them.
func (r *Reader) walkPages() error {
	hdr := r.hdr
	r.dataPos = make([]int64, hdr.PageCount)
	r.rowsPerPage = make([]int64, hdr.PageCount)
	r.delBitmaps = make([][]byte, hdr.PageCount)

	prevBase := int64(-1)
	for pg := int64(0); pg < hdr.PageCount; pg++ {
		if r.cfg.interrupt != nil {
			if err := r.cfg.interrupt(); err != nil {
				return err
			}
		}

		base := int64(hdr.HeaderSize) + pg*int64(hdr.PageSize)
		if base <= prevBase {
			return errs.AtOffset(errs.ErrNonMonotonicPage, base)
		}
		prevBase = base

		r.rd.Seek(base)
		ph := section.ParsePageHeader(r.rd, hdr.U64)
		if err := r.rd.Err(); err != nil {
			return err
		}

		r.rowsPerPage[pg] = ph.RowsOnPage()
		r.debugf("page %d: type=%d blocks=%d subheaders=%d\n",
			pg, ph.Type, ph.BlockCount, ph.SubheaderCount)

		if !ph.Type.Known() {
			continue
		}

		ptrs := section.ParseSubheaderPointers(r.rd, hdr.U64, int(ph.SubheaderCount))
		if err := r.rd.Err(); err != nil {
			return err
		}

		if ph.Type != format.PageMeta {
			r.dataPos[pg] = r.rd.Pos()
		}

		for sc, ptr := range ptrs {
			if ptr.Empty() {
				break
			}
			if err := r.dispatch(pg, sc, base, ph, ptr); err != nil {
				return err
			}
		}

		if ph.Type.HasDeletedBitmap() {
			if err := r.readDeletedBitmap(pg, base, &ph); err != nil {
				return err
			}
		}
	}

	return nil
}

// dispatch routes one subheader directory entry to its parser.
func (r *Reader) dispatch(pg int64, sc int, base int64, ph section.PageHeader, ptr section.SubheaderPointer) error {
	abs := base + ptr.Offset
	if abs+ptr.Length > r.rd.Size() {
		return errs.AtOffset(errs.ErrTruncated, abs)
	}
	r.rd.Seek(abs)

	// a metadata page-zero entry whose length equals the row length holds a
	// raw uncompressed row rather than a signed subheader
	rawRow := pg == 0 && sc != 3 && ph.Type == format.PageMeta &&
		r.rowSize != nil && uint64(ptr.Length) == r.rowSize.RowLength

	switch {
	case rawRow:
		return r.rawRowSubheader(abs, ptr)
	case ptr.Compression == section.PointerPlainData:
		return r.dataSubheader(abs, ptr)
	}

	sig := r.rd.Word(r.hdr.U64)
	if err := r.rd.Err(); err != nil {
		return err
	}

	kind := section.Classify(sig)
	r.debugf("page %d subheader %d: sig=%x kind=%s len=%d\n", pg, sc, sig, kind, ptr.Length)

	switch kind {
	case section.KindRowSize:
		rs, warns, err := section.ParseRowSize(r.rd, r.hdr.U64)
		if err != nil {
			return err
		}
		r.warns = append(r.warns, warns...)
		r.rowSize = rs

	case section.KindColSize:
		r.colCount = section.ParseColSize(r.rd, r.hdr.U64)

	case section.KindSubCount:
		sub, warns := section.ParseSubCount(r.rd, r.hdr.U64)
		r.warns = append(r.warns, warns...)
		r.subCount = sub

	case section.KindColText:
		r.colTextSubheader()

	case section.KindColName:
		ptrsN, err := section.ParseColName(r.rd)
		if err != nil {
			return err
		}
		r.namePtrs = append(r.namePtrs, ptrsN...)

	case section.KindColAttr:
		attrs, err := section.ParseColAttr(r.rd, r.hdr.U64)
		if err != nil {
			return err
		}
		for _, a := range attrs {
			if a.Plausible(r.hdr.PageSize) {
				r.attrs = append(r.attrs, a)
			}
		}

	case section.KindColFormatLabel:
		fl, warns, err := section.ParseColFormatLabel(r.rd, r.hdr.U64)
		if err != nil {
			return err
		}
		r.warns = append(r.warns, warns...)
		r.fmtLbls = append(r.fmtLbls, fl)

	case section.KindColList:
		cl, err := section.ParseColList(r.rd, r.hdr.U64)
		if err != nil {
			return err
		}
		r.colList = cl

	default:
		r.warn(errs.ErrUnknownSubheader, abs, fmt.Sprintf("signature %016x", sig))
	}

	if err := r.rd.Err(); err != nil {
		return err
	}

	return nil
}

// colTextSubheader records a pool chunk and, for the first chunk of the
// file, extracts the deviate strings embedded at its fixed sub-offsets.
func (r *Reader) colTextSubheader() {
	ct := section.ParseColText(r.rd)
	r.chunks = append(r.chunks, ct)

	if r.firstChunkSeen || r.rowSize == nil {
		return
	}
	r.firstChunkSeen = true

	rs := r.rowSize
	pos := ct.Pos + section.DeviateStringsOffset
	r.rd.Seek(pos)

	if rs.ComprLen > 0 {
		r.comprName = r.rd.String(int(rs.ComprLen))
	}
	if rs.HasProc() {
		pad := r.rd.String(section.DeviatePadLength)
		if bin.TrimPadding(pad) != "" && r.rd.Err() == nil {
			r.warn(errs.ErrCorruptSubheader, pos, "text pool pad region is not blank")
		}
	}
	if rs.ProcLen > 0 {
		r.proc = bin.TrimPadding(r.rd.String(int(rs.ProcLen)))
	}
	if rs.SWLen > 0 {
		r.sw = bin.TrimPadding(r.rd.String(int(rs.SWLen)))
	}

	r.compression = format.ParseRowCompression(r.comprName)
	r.debugf("compression=%q proc=%q sw=%q\n", r.comprName, r.proc, r.sw)
}

// dataSubheader handles a directory entry flagged as plain data: the payload
// is one compressed row when the file declares a codec, otherwise raw rows.
func (r *Reader) dataSubheader(abs int64, ptr section.SubheaderPointer) error {
	payload := r.rd.Bytes(int(ptr.Length))
	if err := r.rd.Err(); err != nil {
		return err
	}

	switch r.compression {
	case format.RowCompressionRLE:
		return r.spoolDecoded(codec.DecompressRLE, payload, abs)
	case format.RowCompressionRDC:
		return r.spoolDecoded(codec.DecompressRDC, payload, abs)
	default:
		return r.spool.append(payload)
	}
}

func (r *Reader) spoolDecoded(dec func([]byte, int) ([]byte, error), payload []byte, abs int64) error {
	if r.rowSize == nil {
		r.warn(errs.ErrCorruptRow, abs, "data subheader before row-size subheader")
		return nil
	}

	row, err := dec(payload, int(r.rowSize.RowLength))
	if err != nil {
		if errors.Is(err, errs.ErrTruncated) {
			return errs.AtOffset(err, abs)
		}
		r.warn(errs.ErrCorruptRow, abs, err.Error())
	}

	return r.spool.append(row)
}

// rawRowSubheader handles the page-zero heuristic: an unsigned subheader
// holding one raw row.
func (r *Reader) rawRowSubheader(abs int64, ptr section.SubheaderPointer) error {
	if ptr.Length <= int64(r.hdr.AlignVal) || ptr.Length >= int64(r.hdr.PageSize) {
		return nil
	}

	payload := r.rd.Bytes(int(ptr.Length))
	if err := r.rd.Err(); err != nil {
		return err
	}

	return r.spool.append(payload)
}

// readDeletedBitmap captures the page's deleted-row bitmap, located past the
// inline rows with 8-byte alignment correction.
func (r *Reader) readDeletedBitmap(pg, base int64, ph *section.PageHeader) error {
	if r.rowSize == nil || r.rowsPerPage[pg] == 0 {
		return nil
	}

	hdr := r.hdr
	bitArea := int64(hdr.PageBitOffset) + 8
	tableLen := section.PointerTableLength(hdr.U64, int(ph.SubheaderCount))

	alignCorrection := (bitArea + section.SubheaderPointersOffset + tableLen) % 8

	offset := bitArea + ph.DeletedPointerLength + alignCorrection + tableLen +
		r.rowsPerPage[pg]*int64(r.rowSize.RowLength)

	length := (r.rowsPerPage[pg] + 7) / 8

	r.rd.Seek(base + offset)
	bitmap := r.rd.Bytes(int(length))
	if err := r.rd.Err(); err != nil {
		return err
	}

	r.delBitmaps[pg] = bitmap
	r.debugf("page %d: deleted bitmap %d bytes at +%d\n", pg, length, offset)

	return nil
}

// scratchSpool accumulates the decompressed row stream, optionally spilling
// it through a spool codec to bound memory while pages are walked.
type scratchSpool struct {
	codec      compress.Codec
	compressed bool
	raw        *pool.ByteBuffer
	chunks     []spoolChunk
}

// spoolChunk is one spilled segment. Segments the codec cannot shrink (tiny
// rows are often incompressible) are stored verbatim so nothing is lost.
type spoolChunk struct {
	data   []byte
	stored bool
}

func newScratchSpool(ct format.CompressionType) *scratchSpool {
	s := &scratchSpool{raw: pool.GetScratchBuffer()}
	if ct != format.CompressionNone {
		s.codec, _ = compress.GetCodec(ct)
		s.compressed = s.codec != nil
	}

	return s
}

func (s *scratchSpool) append(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if !s.compressed {
		_, _ = s.raw.Write(data)
		return nil
	}

	chunk, err := s.codec.Compress(data)
	if err != nil {
		return err
	}
	if len(chunk) == 0 || len(chunk) >= len(data) {
		stored := make([]byte, len(data))
		copy(stored, data)
		s.chunks = append(s.chunks, spoolChunk{data: stored, stored: true})

		return nil
	}
	s.chunks = append(s.chunks, spoolChunk{data: chunk})

	return nil
}

// stream returns the full decompressed row stream.
func (s *scratchSpool) stream() ([]byte, error) {
	if !s.compressed {
		return s.raw.Bytes(), nil
	}

	out := make([]byte, 0)
	for _, chunk := range s.chunks {
		if chunk.stored {
			out = append(out, chunk.data...)
			continue
		}

		data, err := s.codec.Decompress(chunk.data)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}

	return out, nil
}

// size returns the amount of spooled content: raw bytes, or chunk count when
// the spool codec is active.
func (s *scratchSpool) size() int {
	if !s.compressed {
		return s.raw.Len()
	}

	return len(s.chunks)
}

func (s *scratchSpool) release() {
	pool.PutScratchBuffer(s.raw)
	s.raw = nil
	s.chunks = nil
}
