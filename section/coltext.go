package section

import (
	"github.com/arloliu/bdat/internal/bin"
)

// TextRef is a pointer into the shared string pool: chunk index, byte offset
// within the chunk, and length.
type TextRef struct {
	Idx int16
	Off int16
	Len int16
}

// Empty reports whether the reference resolves to no text.
func (t TextRef) Empty() bool {
	return t.Len == 0
}

// ParseTextRef reads one pool pointer.
func ParseTextRef(r *bin.Reader) TextRef {
	return TextRef{Idx: r.Int16(), Off: r.Int16(), Len: r.Int16()}
}

// ColText records one chunk of the shared string pool (signature FFFFFFFD).
//
// Pool pointers address chunks by their order of appearance; resolution needs
// the absolute file position of the chunk body, so that position is captured
// at parse time. The chunk content itself stays in the file image and is
// sliced lazily.
type ColText struct {
	// Pos is the absolute file offset of the chunk body, immediately past
	// the signature word. Pool pointers are relative to this position.
	Pos int64
	// Len is the chunk's declared payload length.
	Len int16
}

// ParseColText parses a column-text subheader body.
func ParseColText(r *bin.Reader) ColText {
	ct := ColText{Pos: r.Pos()}
	ct.Len = r.Int16()
	r.Skip(6)

	return ct
}

// DeviateStringsOffset is the fixed offset within the first pool chunk at
// which the compression name region begins.
const DeviateStringsOffset = 12

// DeviatePadLength is the pad between the compression name and the proc
// string, present only when the row-size subheader reserves the proc region.
const DeviatePadLength = 16
