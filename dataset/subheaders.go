package dataset

import (
	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/internal/bin"
	"github.com/arloliu/bdat/section"
)

// shBody is one rendered subheader body, signature included.
type shBody struct {
	bytes []byte
	typ   int8
	// pageCountRel is the body-relative offset of the page-count field, -1
	// when the body has none. Only the row-size body carries one.
	pageCountRel int64
}

// renderBodies renders the page-one subheaders in the order SAS lays them
// out on disk: per-column format/label entries back-to-front, the column
// list for multi-column datasets, column attributes, column names, the text
// pool, the subheader-count table, the column size and finally the row size.
// The pointer table indexes them in the reverse of this order.
func (st *writerState) renderBodies(rowsOnPage1, pageCount, blockCount int64) []shBody {
	bodies := make([]shBody, 0, st.subheaderCount()-1)

	for i := st.k - 1; i >= 0; i-- {
		bodies = append(bodies, st.renderFmtLbl(i))
	}
	if st.k > 1 {
		bodies = append(bodies, st.renderColList())
	}
	bodies = append(bodies, st.renderColAttr())
	bodies = append(bodies, st.renderColName())
	bodies = append(bodies, st.renderColText())
	bodies = append(bodies, st.renderSubCount())
	bodies = append(bodies, st.renderColSize())
	bodies = append(bodies, st.renderRowSize(rowsOnPage1, pageCount, blockCount))

	return bodies
}

func (st *writerState) newBody() *bin.Writer {
	return bin.NewWriter(0, st.eng)
}

// putSignature writes the 4-byte signature or, on the 64-bit layout, one
// 8-byte word with second in the high half and sig in the low half.
func (st *writerState) putSignature(w *bin.Writer, sig, second uint32) {
	if st.u64 {
		w.PutUint64(uint64(second)<<32 | uint64(sig))
		return
	}
	w.PutUint32(sig)
}

func (st *writerState) putWord(w *bin.Writer, v uint64) {
	w.PutWord(st.u64, v)
}

// poolTextStart is the offset of the first column name within a text pool
// chunk: the length field area, the compression region and the proc string.
const poolTextStart = section.DeviateStringsOffset + section.DeviatePadLength + 8

// renderFmtLbl renders the format/label subheader for column idx with pool
// offsets computed from the actual text pool layout.
func (st *writerState) renderFmtLbl(idx int) shBody {
	w := st.newBody()
	st.putSignature(w, uint32(section.SigColFormatLabel), 0xFFFFFFFF)

	base := int16(poolTextStart)
	for z := 0; z < idx; z++ {
		base += int16(len(st.names[z]) + len(st.labels[z]) + len(st.formats[z]))
	}
	lblOff := base + int16(len(st.names[idx]))
	fmtOff := lblOff + int16(len(st.labels[idx]))

	w.PutZeros(8) // four unknown words

	numeric := st.cols[idx].Type == format.ColumnNumeric
	var fmt32, fmt322, fmtkey int16
	if numeric {
		fmt32 = int16(st.cols[idx].DisplayWidth)
		fmt322 = 1
	} else {
		fmtkey = int16(st.cols[idx].DisplayWidth)
	}
	w.PutInt16(fmt32)
	w.PutInt16(fmt322)
	w.PutInt16(0) // informat width
	w.PutInt16(0) // informat decimals
	w.PutInt16(fmtkey)
	w.PutInt16(0)

	w.PutZeros(10)
	if st.u64 {
		w.PutZeros(8)
	}

	fmtLen := int16(len(st.formats[idx]))
	if fmtLen == 0 {
		fmtOff = 0
	}
	w.PutInt16(0)
	w.PutInt16(fmtOff)
	w.PutInt16(fmtLen)

	lblLen := int16(len(st.labels[idx]))
	if lblLen == 0 {
		lblOff = 0
	}
	w.PutInt16(0)
	w.PutInt16(lblOff)
	w.PutInt16(lblLen)

	w.PutZeros(6) // trailing pool pointer, always zero

	return shBody{bytes: w.Bytes(), pageCountRel: -1}
}

// renderColList renders the auxiliary column-list subheader emitted for
// multi-column datasets. Its payload carries the byte values observed in SAS
// output; the meaning of most of them is unknown.
func (st *writerState) renderColList() shBody {
	w := st.newBody()
	st.putSignature(w, uint32(section.SigColList), 0xFFFFFFFF)

	w.PutUint32(2143813666)
	w.PutZeros(4)

	lenremain := int64(14 + st.k*2 + 8 + 12)
	st.putWord(w, uint64(lenremain))

	w.PutInt16(int16(st.k))
	w.PutInt16(int16(st.k)) // entry counter
	w.PutInt16(1)
	w.PutInt16(int16(st.k))
	w.PutZeros(6)

	w.PutInt16(-1)
	w.PutInt16(int16(st.k))
	w.PutInt16(0)
	w.PutInt16(0)

	w.PutFloat64(0)
	w.PutInt16(0)

	return shBody{bytes: w.Bytes(), typ: 1, pageCountRel: -1}
}

// renderColAttr renders the column attribute subheader: per-column row
// offset, width and storage type.
func (st *writerState) renderColAttr() shBody {
	w := st.newBody()
	st.putSignature(w, uint32(section.SigColAttr), 0xFFFFFFFF)

	div := 12
	if st.u64 {
		div = 16
	}
	w.PutInt16(int16(st.k*div + 8))
	w.PutZeros(6)

	offset := int64(0)
	for i := 0; i < st.k; i++ {
		st.putWord(w, uint64(offset))
		w.PutInt32(int32(st.widths[i]))
		w.PutInt16(1024)
		w.PutInt8(int8(st.cols[i].Type))
		w.PutInt8(0)
		offset += int64(st.widths[i])
	}

	w.PutZeros(12)

	return shBody{bytes: w.Bytes(), typ: 1, pageCountRel: -1}
}

// renderColName renders the column name pointer subheader. Offsets address
// the text pool; lengths are the unpadded name lengths.
func (st *writerState) renderColName() shBody {
	w := st.newBody()
	st.putSignature(w, uint32(section.SigColName), 0xFFFFFFFF)

	w.PutInt16(int16(st.k*8 + 8))
	w.PutZeros(6)

	off := int16(poolTextStart)
	for i := 0; i < st.k; i++ {
		w.PutInt16(0) // chunk index: everything lives in the first chunk
		w.PutInt16(off)
		w.PutInt16(st.nameLen[i])
		w.PutInt16(0)
		off += int16(len(st.names[i]) + len(st.labels[i]) + len(st.formats[i]))
	}

	w.PutFloat64(0)
	w.PutZeros(4)

	return shBody{bytes: w.Bytes(), typ: 1, pageCountRel: -1}
}

// renderColText renders the single text pool chunk: compression region,
// proc string, then the name/label/format runs of every column.
func (st *writerState) renderColText() shBody {
	w := st.newBody()
	st.putSignature(w, uint32(section.SigColText), 0xFFFFFFFF)

	names, labels, formats := st.poolSizes()
	payload := int16(6 + section.DeviatePadLength + 8 + names + labels + formats + 2)
	if st.k > 1 {
		payload += 4
	}

	w.PutInt16(payload)
	w.PutZeros(6)

	w.PutInt16(0)
	w.PutInt16(5120)

	w.PutSpaces(section.DeviatePadLength) // no compression: blank region
	w.PutString("DATASTEP", 8)

	for i := 0; i < st.k; i++ {
		w.PutString(st.names[i], len(st.names[i]))
		w.PutString(st.labels[i], len(st.labels[i]))
		w.PutString(st.formats[i], len(st.formats[i]))
	}

	w.PutZeros(12)

	return shBody{bytes: w.Bytes(), typ: 1, pageCountRel: -1}
}

// renderSubCount renders the subheader-count table with the signature rows
// observed in SAS output: -1 through -7 with their fixed positions.
func (st *writerState) renderSubCount() shBody {
	w := st.newBody()
	st.putSignature(w, uint32(section.SigSubCount), 0xFFFFFFFF)

	inioff := 32
	if st.u64 {
		inioff = 36
	}
	names, _, formats := st.poolSizes()
	st.putWord(w, uint64(int64(inioff+names+formats)))

	if st.u64 {
		second := int64(3)
		if st.k > 1 {
			second++
		}
		st.putWord(w, uint64(second))
	} else {
		w.PutUint32(0)
	}

	w.PutInt16(7) // populated entries

	zeros := 25
	if st.u64 {
		zeros = 47
	}
	w.PutZeros(zeros * 2)

	entries := [12]section.SCVEntry{
		{Sig: -4, First: 1, FPos: 6, Last: 1, LPos: 6},
		{Sig: -3, First: 1, FPos: 4, Last: 1, LPos: 4},
		{Sig: -1, First: 1, FPos: 5, Last: 1, LPos: 5},
		{Sig: -2, First: 1, FPos: 7, Last: 1, LPos: 7},
		{Sig: -5},
		{Sig: -6},
		{Sig: -7},
	}

	for _, e := range entries {
		if st.u64 {
			w.PutInt64(e.Sig)
			w.PutInt64(e.First)
			w.PutInt16(e.FPos)
			w.PutZeros(6)
			w.PutInt64(e.Last)
			w.PutInt16(e.LPos)
			w.PutZeros(6)
		} else {
			w.PutInt32(int32(e.Sig))
			w.PutInt32(int32(e.First))
			w.PutInt16(e.FPos)
			w.PutZeros(2)
			w.PutInt32(int32(e.Last))
			w.PutInt16(e.LPos)
			w.PutZeros(2)
		}
	}

	return shBody{bytes: w.Bytes(), pageCountRel: -1}
}

// renderColSize renders the column-count subheader.
func (st *writerState) renderColSize() shBody {
	w := st.newBody()
	st.putSignature(w, uint32(section.SigColSize), 0)

	st.putWord(w, uint64(st.k))
	st.putWord(w, 0)

	return shBody{bytes: w.Bytes(), pageCountRel: -1}
}

// renderRowSize renders the row-size subheader. The field sequence mirrors
// the reader's checklist; values without a known meaning carry the bytes
// observed in SAS output.
func (st *writerState) renderRowSize(rowsOnPage1, pageCount, blockCount int64) shBody {
	w := st.newBody()
	st.putSignature(w, uint32(section.SigRowSize), 0)

	if st.u64 {
		for _, v := range []int64{240, 21, 0, 2240529} {
			w.PutInt64(v)
		}
	} else {
		w.PutZeros(16)
	}

	st.putWord(w, st.rowlen64())
	st.putWord(w, uint64(st.n))
	st.putWord(w, 0) // deleted rows
	st.putWord(w, 0)

	st.putWord(w, uint64(st.k)) // colf_p1
	st.putWord(w, 0)            // colf_p2
	if st.u64 {
		st.putWord(w, 0)
		st.putWord(w, 34)
	} else {
		st.putWord(w, 0)
		st.putWord(w, 0)
	}

	st.putWord(w, uint64(st.ps))
	st.putWord(w, 0)
	st.putWord(w, uint64(rowsOnPage1)) // rcmix

	if st.u64 {
		w.PutInt64(-1)
		w.PutInt64(-1)
	} else {
		w.PutZeros(8)
	}

	for z := 0; z < 37; z++ {
		st.putWord(w, 0)
	}
	w.PutUint32(0) // page index

	if st.u64 {
		for z := 0; z < 8; z++ {
			w.PutUint64(0)
		}
		w.PutUint32(0)
	} else {
		for z := 0; z < 10; z++ {
			w.PutUint32(0)
		}
	}

	// page-walk region: known values, unknown meaning
	v04, v06, v10 := int64(7), int64(9), int64(7)
	if st.k > 1 {
		v04 = int64(7 + st.k)
		v06 = int64(9 + st.k)
		v10 = 8
	}

	var pageCountRel int64
	for i, v := range []int64{1, 2, 1, v04, 1, v06, pageCount, blockCount, 1, v10} {
		if i == 6 {
			pageCountRel = w.Pos()
		}
		st.putWord(w, uint64(v))
	}

	for z := 0; z < 10; z++ {
		st.putWord(w, 0)
	}

	for _, v := range []int16{0, 8, 4, 0} {
		w.PutInt16(v)
	}
	w.PutInt16(0) // todata

	w.PutInt16(0) // software string length
	for _, v := range []int16{0, 20, 8} {
		w.PutInt16(v)
	}

	w.PutZeros(8) // compression name length region, zero for uncompressed

	for _, v := range []int16{12, 8, 0} {
		w.PutInt16(v)
	}
	w.PutInt16(28) // text offset
	w.PutInt16(8)  // proc length

	w.PutZeros(32)
	w.PutZeros(4)

	w.PutInt16(4) // subheader kinds
	w.PutInt16(1) // name chunk span
	w.PutInt16(1) // label chunk span

	w.PutUint32(8) // SAS version marker
	w.PutZeros(8)

	w.PutInt16(0) // rows on page, patched by SAS, zero in our profile

	// validated tail around the data offset flag
	w.PutInt16(0)
	w.PutUint32(0)
	w.PutZeros(6)
	w.PutUint32(uint32(st.n))
	w.PutInt16(0)
	w.PutUint32(0)
	w.PutZeros(8)
	w.PutInt16(256) // data offset flag
	w.PutZeros(8)

	if st.u64 {
		w.PutUint32(0)
	}

	return shBody{bytes: w.Bytes(), pageCountRel: pageCountRel}
}

func (st *writerState) rowlen64() uint64 {
	return uint64(st.rowlen)
}
