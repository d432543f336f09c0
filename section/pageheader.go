package section

import (
	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/internal/bin"
)

// SubheaderPointersOffset is the gap between the page bit area and the
// pointer table, identical in both layouts.
const SubheaderPointersOffset = 8

// Subheader pointer compression markers.
const (
	// PointerCompressed is the marker value 0. The reader classifies such
	// entries by their signature word, and the writer uses it for every
	// metadata subheader.
	PointerCompressed int8 = 0
	// PointerTruncated marks the terminator entry the writer emits ahead of
	// the metadata subheaders.
	PointerTruncated int8 = 1
	// PointerPlainData marks a data subheader: one row payload compressed
	// with the file codec when the file declares one, raw rows otherwise.
	PointerPlainData int8 = 4
)

// PageHeader is the fixed-size header at the start of every page.
type PageHeader struct {
	SeqNum               uint32
	DeletedPointerLength int64
	Type                 format.PageType
	BlockCount           int16
	SubheaderCount       int16
}

// RowsOnPage returns the number of inline rows the page declares.
func (p *PageHeader) RowsOnPage() int64 {
	rows := int64(p.BlockCount) - int64(p.SubheaderCount)
	if rows < 0 {
		return 0
	}

	return rows
}

// ParsePageHeader parses one page header. The reader must be positioned at
// the page base; afterwards it sits at the start of the pointer table.
func ParsePageHeader(r *bin.Reader, u64 bool) PageHeader {
	var p PageHeader

	p.SeqNum = r.Uint32()
	if u64 {
		r.Skip(4)
		r.Skip(16) // two unknown words
		p.DeletedPointerLength = r.Int64()
	} else {
		r.Skip(8) // two unknown words
		p.DeletedPointerLength = int64(r.Int32())
	}

	p.Type = format.PageType(r.Int16())
	p.BlockCount = r.Int16()
	p.SubheaderCount = r.Int16()
	r.Skip(2)

	return p
}

// EncodePageHeader emits a page header in the writer profile.
func EncodePageHeader(w *bin.Writer, u64 bool, p *PageHeader) {
	w.PutUint32(p.SeqNum)
	if u64 {
		w.PutUint32(0)
		w.PutUint64(0)
		w.PutUint64(0)
		w.PutInt64(p.DeletedPointerLength)
	} else {
		w.PutUint32(0)
		w.PutUint32(0)
		w.PutInt32(int32(p.DeletedPointerLength))
	}

	w.PutInt16(int16(p.Type))
	w.PutInt16(p.BlockCount)
	w.PutInt16(p.SubheaderCount)
	w.PutInt16(0)
}

// SubheaderPointer is one entry of the page's subheader directory.
type SubheaderPointer struct {
	Offset      int64 // page-relative byte offset of the subheader body
	Length      int64
	Compression int8
	Type        int8
}

// Empty reports whether the entry points at nothing; empty entries end the
// useful part of a directory.
func (p SubheaderPointer) Empty() bool {
	return p.Offset == 0 || p.Length == 0
}

// ParseSubheaderPointers parses count directory entries.
func ParseSubheaderPointers(r *bin.Reader, u64 bool, count int) []SubheaderPointer {
	ptrs := make([]SubheaderPointer, count)
	for i := range ptrs {
		if u64 {
			ptrs[i].Offset = r.Int64()
			ptrs[i].Length = r.Int64()
			ptrs[i].Compression = r.Int8()
			ptrs[i].Type = r.Int8()
			r.Skip(6)
		} else {
			ptrs[i].Offset = int64(r.Uint32())
			ptrs[i].Length = int64(r.Uint32())
			ptrs[i].Compression = r.Int8()
			ptrs[i].Type = r.Int8()
			r.Skip(2)
		}
	}

	return ptrs
}

// EncodeSubheaderPointer emits one directory entry.
func EncodeSubheaderPointer(w *bin.Writer, u64 bool, p SubheaderPointer) {
	if u64 {
		w.PutInt64(p.Offset)
		w.PutInt64(p.Length)
		w.PutInt8(p.Compression)
		w.PutInt8(p.Type)
		w.PutZeros(6)
	} else {
		w.PutInt32(int32(p.Offset))
		w.PutInt32(int32(p.Length))
		w.PutInt8(p.Compression)
		w.PutInt8(p.Type)
		w.PutZeros(2)
	}
}

// PointerTableLength returns the byte length of a directory of count entries.
func PointerTableLength(u64 bool, count int) int64 {
	if u64 {
		return int64(count) * 24
	}

	return int64(count) * 12
}
