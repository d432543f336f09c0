// Package bin provides cursor-style primitives for reading and writing the
// fixed binary layouts of SAS7BDAT files.
//
// Reader is a sticky-error cursor: typed reads return values directly and the
// first failure is latched, so section parsers can read long field checklists
// and test Err once at the end. Writer is the emit-side counterpart with
// support for patching previously written positions, which the page writer
// needs because subheader offsets are only known after their bodies are laid
// out.
package bin

import (
	"math"

	"github.com/arloliu/bdat/endian"
	"github.com/arloliu/bdat/errs"
)

// Reader is a typed cursor over an in-memory file image.
//
// All reads advance the cursor. On the first out-of-bounds read the reader
// latches errs.ErrTruncated (with the offending offset) and every subsequent
// read returns the zero value; callers check Err after a parse block.
//
// Note: The Reader is NOT safe for concurrent use.
type Reader struct {
	buf    []byte
	pos    int64
	err    error
	engine endian.EndianEngine
}

// NewReader creates a Reader over buf using the given byte order.
func NewReader(buf []byte, engine endian.EndianEngine) *Reader {
	return &Reader{buf: buf, engine: engine}
}

// SetEngine replaces the byte order engine. The file header declares the
// order partway through parsing, so the header parser starts little-endian
// and switches once the endianness byte has been read.
func (r *Reader) SetEngine(engine endian.EndianEngine) {
	r.engine = engine
}

// Engine returns the active byte order engine.
func (r *Reader) Engine() endian.EndianEngine {
	return r.engine
}

// Err returns the latched error, if any.
func (r *Reader) Err() error {
	return r.err
}

// Pos returns the current byte offset.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Size returns the total size of the underlying image.
func (r *Reader) Size() int64 {
	return int64(len(r.buf))
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int64 {
	if r.pos >= int64(len(r.buf)) {
		return 0
	}

	return int64(len(r.buf)) - r.pos
}

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(off int64) {
	if r.err != nil {
		return
	}
	if off < 0 || off > int64(len(r.buf)) {
		r.fail(off)
		return
	}
	r.pos = off
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int64) {
	r.Seek(r.pos + n)
}

func (r *Reader) fail(off int64) {
	if r.err == nil {
		r.err = errs.AtOffset(errs.ErrTruncated, off)
	}
}

func (r *Reader) take(n int64) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > int64(len(r.buf)) {
		r.fail(r.pos)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n

	return b
}

// Bytes reads n raw bytes.
func (r *Reader) Bytes(n int) []byte {
	return r.take(int64(n))
}

func (r *Reader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *Reader) Int8() int8 {
	return int8(r.Uint8())
}

func (r *Reader) Uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}

	return r.engine.Uint16(b)
}

func (r *Reader) Int16() int16 {
	return int16(r.Uint16())
}

func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return r.engine.Uint32(b)
}

func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

func (r *Reader) Uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}

	return r.engine.Uint64(b)
}

func (r *Reader) Int64() int64 {
	return int64(r.Uint64())
}

// Float64 reads an 8-byte IEEE-754 double in the file byte order.
func (r *Reader) Float64() float64 {
	return math.Float64frombits(r.Uint64())
}

// Word reads one pointer word: 8 bytes on 64-bit layouts, 4 bytes otherwise.
// 4-byte words are zero-extended, never sign-extended, so signature matching
// can compare against the 32-bit sentinel values directly.
func (r *Reader) Word(u64 bool) uint64 {
	if u64 {
		return r.Uint64()
	}

	return uint64(r.Uint32())
}

// SignedWord reads one pointer word as a signed quantity.
func (r *Reader) SignedWord(u64 bool) int64 {
	if u64 {
		return r.Int64()
	}

	return int64(r.Int32())
}

// String reads n raw bytes as a string without transcoding.
func (r *Reader) String(n int) string {
	b := r.take(int64(n))
	if b == nil {
		return ""
	}

	return string(b)
}

// TrimmedString reads n bytes and right-trims trailing blanks and NULs.
// Used at call sites that semantically expect a trimmed name.
func (r *Reader) TrimmedString(n int) string {
	return TrimPadding(r.String(n))
}

// TruncatedFloat64 reads width bytes of a short-stored numeric and rebuilds
// the full double. SAS keeps the high-order bytes of the 8-byte value and
// drops the low-order end, so the missing low bytes are zero-filled and the
// word is interpreted in the file byte order.
func (r *Reader) TruncatedFloat64(width int) float64 {
	if width >= 8 {
		return r.Float64()
	}
	b := r.take(int64(width))
	if b == nil {
		return 0
	}

	return TruncatedFloat64(b, r.engine)
}

// TruncatedFloat64 rebuilds a double from its width high-order bytes as
// stored in the file byte order.
func TruncatedFloat64(b []byte, engine endian.EndianEngine) float64 {
	var buf [8]byte
	if engine == endian.GetBigEndianEngine() {
		copy(buf[:len(b)], b)
	} else {
		copy(buf[8-len(b):], b)
	}

	return math.Float64frombits(engine.Uint64(buf[:]))
}

// TrimPadding right-trims trailing 0x20 and 0x00 bytes.
func TrimPadding(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == 0) {
		end--
	}

	return s[:end]
}
