package dataset

import (
	"math"

	"github.com/arloliu/bdat/endian"
	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/frame"
	"github.com/arloliu/bdat/internal/bin"
)

// decodeRows materialises the selected rows and columns into a frame.
func (r *Reader) decodeRows(cols []frame.Column, kk int) (*frame.Frame, error) {
	f := &frame.Frame{}

	var n uint64
	if r.rowSize != nil {
		n = r.rowSize.RowCount
	}

	if r.compression == format.RowCompressionUnknown {
		r.warn(errs.ErrUnsupportedCompression, 0, r.comprName)
		n = 0
	}

	nmin, nmax := r.rowWindow(n)
	nn := 0
	if n > 0 && nmax >= nmin {
		nn = int(nmax - nmin + 1)
	}

	// allocate output vectors for the kept columns and map schema index to
	// output column
	keep := r.selectColumns(cols)
	kept := 0
	for i := range keep {
		if keep[i] {
			kept++
		}
	}
	f.Columns = make([]frame.Column, 0, kept)
	outByCol := make(map[int]*frame.Column, kept)
	for i := range cols {
		if !keep[i] {
			continue
		}
		c := cols[i]
		if c.Type == format.ColumnNumeric {
			c.Floats = make([]float64, nn)
		} else {
			c.Strings = make([]string, nn)
		}
		f.Columns = append(f.Columns, c)
		outByCol[i] = &f.Columns[len(f.Columns)-1]
	}

	f.Deleted = make([]bool, nn)
	f.Valid = make([]bool, nn)

	if nn == 0 || kk == 0 {
		return f, nil
	}

	if r.compression == format.RowCompressionNone && !r.spooled() {
		return f, r.decodeInlineRows(f, cols, outByCol, nmin, nmax)
	}

	return f, r.decodeSpooledRows(f, cols, outByCol, nmin, nmax)
}

// rowWindow clamps the configured 1-based row range to the dataset.
func (r *Reader) rowWindow(n uint64) (uint64, uint64) {
	nmin, nmax := r.cfg.rowMin, r.cfg.rowMax
	if nmin == 0 {
		nmin, nmax = 1, n
	}
	if nmax > n {
		nmax = n
	}
	if nmin > n {
		nmin = n
	}

	return nmin, nmax
}

// spooled reports whether rows were routed through the scratch stream.
func (r *Reader) spooled() bool {
	return r.spool.size() > 0
}

// decodeInlineRows walks the per-page inline row areas of an uncompressed
// file. The cursor switches pages when the per-page row counter reaches the
// page's declared row count; an alignment word is added on the first page
// when the row-size data offset flag asks for it.
func (r *Reader) decodeInlineRows(f *frame.Frame, cols []frame.Column,
	outByCol map[int]*frame.Column, nmin, nmax uint64,
) error {
	rowlen := int64(r.rowSize.RowLength)
	order := decodeOrder(cols)
	engine := r.hdr.Engine()

	adjustFirst := r.rowSize.DataOffset != 1 && r.rowSize.DataOffset != 256

	page := 0
	pastFirst := false
	ii := int64(0)

	for iii := uint64(0); iii < nmax; iii++ {
		for page < len(r.rowsPerPage) && ii >= r.rowsPerPage[page] {
			page++
			ii = 0
			pastFirst = true
		}
		if page >= len(r.rowsPerPage) {
			return nil // fewer rows on pages than declared; the rest stay invalid
		}

		pos := r.dataPos[page] + ii*rowlen
		if adjustFirst && !pastFirst {
			pos += int64(r.hdr.AlignVal)
		}

		if pos < 0 || pos+rowlen > r.rd.Size() {
			return nil // end of file reached
		}
		row := r.image[pos : pos+rowlen]

		if iii+1 >= nmin {
			i := int(iii + 1 - nmin)
			f.Valid[i] = true
			f.Deleted[i] = r.deletedBit(page, ii)
			decodeRow(row, cols, order, outByCol, i, engine)
		}

		ii++
	}

	return nil
}

// decodeSpooledRows decodes rows from the contiguous scratch stream produced
// by the native codecs. Spooled rows carry no deletion bitmap.
func (r *Reader) decodeSpooledRows(f *frame.Frame, cols []frame.Column,
	outByCol map[int]*frame.Column, nmin, nmax uint64,
) error {
	stream, err := r.spool.stream()
	if err != nil {
		return err
	}

	rowlen := int64(r.rowSize.RowLength)
	order := decodeOrder(cols)
	engine := r.hdr.Engine()

	for iii := uint64(0); iii < nmax; iii++ {
		pos := int64(iii) * rowlen
		if pos+rowlen > int64(len(stream)) {
			return nil // stream exhausted; the rest stay invalid
		}
		row := stream[pos : pos+rowlen]

		if iii+1 >= nmin {
			i := int(iii + 1 - nmin)
			f.Valid[i] = true
			decodeRow(row, cols, order, outByCol, i, engine)
		}
	}

	return nil
}

// deletedBit tests the page-local deletion bitmap; bit 7 of byte 0 maps to
// page-local row 0.
func (r *Reader) deletedBit(page int, ii int64) bool {
	bitmap := r.delBitmaps[page]
	byteIdx := ii / 8
	if byteIdx >= int64(len(bitmap)) {
		return false
	}

	return bitmap[byteIdx]>>(7-uint(ii%8))&1 == 1
}

// decodeRow materialises one fixed-width record into the output columns.
// Cells are extracted at their declared offsets in row-offset order; numeric
// cells narrower than 8 bytes are truncated doubles, and NaN stays the
// missing sentinel.
func decodeRow(row []byte, cols []frame.Column, order []int,
	outByCol map[int]*frame.Column, i int, engine endian.EndianEngine,
) {
	for _, j := range order {
		c := &cols[j]
		oc := outByCol[j]
		if oc == nil {
			continue
		}

		off, wid := c.Offset, c.Width
		if off < 0 || wid <= 0 || off+wid > len(row) {
			continue
		}
		cell := row[off : off+wid]

		if c.Type == format.ColumnNumeric {
			if wid == 8 {
				oc.Floats[i] = math.Float64frombits(engine.Uint64(cell))
			} else {
				oc.Floats[i] = bin.TruncatedFloat64(cell, engine)
			}
		} else {
			oc.Strings[i] = bin.TrimPadding(string(cell))
		}
	}
}
