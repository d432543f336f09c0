package dataset

import (
	"fmt"
	"sort"

	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/frame"
	"github.com/arloliu/bdat/internal/bin"
	"github.com/arloliu/bdat/section"
)

// resolveRef slices the string pool at a (chunk, offset, length) pointer.
// Out-of-range pointers resolve to the empty string with a warning.
func (r *Reader) resolveRef(ref section.TextRef) string {
	if ref.Empty() {
		return ""
	}
	if int(ref.Idx) < 0 || int(ref.Idx) >= len(r.chunks) {
		r.warn(errs.ErrCorruptSubheader, 0,
			fmt.Sprintf("pool pointer chunk %d out of range (%d chunks)", ref.Idx, len(r.chunks)))
		return ""
	}

	abs := r.chunks[ref.Idx].Pos + int64(ref.Off)
	end := abs + int64(ref.Len)
	if abs < 0 || end > r.rd.Size() {
		r.warn(errs.ErrCorruptSubheader, abs, "pool pointer outside file")
		return ""
	}

	return string(r.image[abs:end])
}

// assembleSchema joins the name, attribute and format/label pointer vectors
// into per-column metadata. The joined column count is the declared column
// count clamped to what the pointer vectors actually delivered.
func (r *Reader) assembleSchema() ([]frame.Column, int) {
	kk := int(r.colCount)
	if len(r.namePtrs) < kk {
		if kk > 0 {
			r.warn(errs.ErrCorruptSubheader, 0,
				fmt.Sprintf("%d name pointers for %d columns", len(r.namePtrs), kk))
		}
		kk = len(r.namePtrs)
	}
	if len(r.attrs) < kk {
		r.warn(errs.ErrCorruptSubheader, 0,
			fmt.Sprintf("%d attribute entries for %d columns", len(r.attrs), kk))
		kk = len(r.attrs)
	}

	cols := make([]frame.Column, kk)
	for i := 0; i < kk; i++ {
		c := &cols[i]
		c.Name = bin.TrimPadding(r.resolveRef(r.namePtrs[i].Ref))
		c.Type = r.attrs[i].Type
		c.Width = int(r.attrs[i].Width)
		c.Offset = int(r.attrs[i].Offset)

		if i < len(r.fmtLbls) {
			fl := r.fmtLbls[i]
			c.Format = bin.TrimPadding(r.resolveRef(fl.Format))
			c.Label = bin.TrimPadding(r.resolveRef(fl.Label))
			c.Fmt32 = fl.Fmt32Value()
			c.IFmt32 = fl.IFmt32Value()
			c.FmtKey = fl.FmtKeyValue()
		}
	}

	return cols, kk
}

// decodeOrder returns column indexes sorted by their byte offset within a
// row; this is the order cells appear in the record.
func decodeOrder(cols []frame.Column) []int {
	order := make([]int, len(cols))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cols[order[a]].Offset < cols[order[b]].Offset
	})

	return order
}

// selectColumns resolves the configured column selection to a keep-mask over
// the assembled schema. An empty selection keeps everything.
func (r *Reader) selectColumns(cols []frame.Column) []bool {
	keep := make([]bool, len(cols))
	if len(r.cfg.columns) == 0 {
		for i := range keep {
			keep[i] = true
		}

		return keep
	}

	wanted := make(map[string]bool, len(r.cfg.columns))
	for _, name := range r.cfg.columns {
		wanted[name] = true
	}
	for i := range cols {
		keep[i] = wanted[cols[i].Name]
	}

	return keep
}

// fillInfo populates the frame's metadata attributes from the header and the
// collected subheaders.
func (r *Reader) fillInfo(f *frame.Frame, kk int) {
	hdr := r.hdr
	info := &f.Info

	info.SASFile = hdr.SASFile
	info.DataSet = hdr.DataSet
	info.FileType = hdr.FileType
	info.SASRelease = hdr.SASRelease
	info.SASServer = hdr.SASServer
	info.OSVersion = hdr.OSVersion
	info.OSMaker = hdr.OSMaker
	info.OSName = hdr.OSName
	info.Encoding = hdr.Encoding
	info.Created = hdr.Created
	info.Created2 = hdr.Created2
	info.Modified = hdr.Modified
	info.Modified2 = hdr.Modified2
	info.ThirdTS = hdr.ThirdTS
	info.HeaderSize = hdr.HeaderSize
	info.PageSize = hdr.PageSize

	info.Compression = bin.TrimPadding(r.comprName)
	info.Proc = r.proc
	info.SW = r.sw

	if r.rowSize != nil {
		info.RowCount = r.rowSize.RowCount
		info.RowLength = r.rowSize.RowLength
		info.DeletedRows = r.rowSize.DeletedRowCount
	}

	if r.colList != nil {
		info.ColumnList = r.colList.Values
	}

	// keep the full name list when a selection narrowed the frame
	if len(f.Columns) < kk {
		names := make([]string, 0, kk)
		for i := 0; i < kk; i++ {
			names = append(names, bin.TrimPadding(r.resolveRef(r.namePtrs[i].Ref)))
		}
		info.VarNames = names
	}
}
