package bin

import (
	"math"

	"github.com/arloliu/bdat/endian"
)

// Writer builds a file image in memory with random-access patching.
//
// The SAS page layout is written front-to-back while the subheader bodies are
// laid out back-to-front, and several counters (page count, block count) are
// only known after the fact, so the writer keeps the whole image in memory
// and allows seeking back to patch earlier fields.
type Writer struct {
	buf    []byte
	pos    int64
	engine endian.EndianEngine
}

// NewWriter creates a Writer with the given byte order and a pre-sized,
// zero-filled image of size bytes. Writing past size extends the image.
func NewWriter(size int64, engine endian.EndianEngine) *Writer {
	return &Writer{buf: make([]byte, size), engine: engine}
}

// Bytes returns the current image.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Pos returns the current byte offset.
func (w *Writer) Pos() int64 {
	return w.pos
}

// Seek moves the cursor to an absolute offset within the image.
func (w *Writer) Seek(off int64) {
	w.pos = off
}

// Skip advances the cursor by n zero bytes.
func (w *Writer) Skip(n int64) {
	w.reserve(n)
	w.pos += n
}

func (w *Writer) reserve(n int64) {
	if need := w.pos + n - int64(len(w.buf)); need > 0 {
		w.buf = append(w.buf, make([]byte, need)...)
	}
}

// PutBytes writes b at the cursor.
func (w *Writer) PutBytes(b []byte) {
	w.reserve(int64(len(b)))
	copy(w.buf[w.pos:], b)
	w.pos += int64(len(b))
}

// PutString writes s padded with NULs (or truncated) to exactly n bytes.
func (w *Writer) PutString(s string, n int) {
	w.reserve(int64(n))
	copied := copy(w.buf[w.pos:w.pos+int64(n)], s)
	for i := copied; i < n; i++ {
		w.buf[w.pos+int64(i)] = 0
	}
	w.pos += int64(n)
}

// PutSpaces writes n blank bytes.
func (w *Writer) PutSpaces(n int) {
	w.reserve(int64(n))
	for i := 0; i < n; i++ {
		w.buf[w.pos+int64(i)] = ' '
	}
	w.pos += int64(n)
}

func (w *Writer) PutUint8(v uint8) {
	w.reserve(1)
	w.buf[w.pos] = v
	w.pos++
}

func (w *Writer) PutInt8(v int8) {
	w.PutUint8(uint8(v))
}

func (w *Writer) PutUint16(v uint16) {
	w.reserve(2)
	w.engine.PutUint16(w.buf[w.pos:], v)
	w.pos += 2
}

func (w *Writer) PutInt16(v int16) {
	w.PutUint16(uint16(v))
}

func (w *Writer) PutUint32(v uint32) {
	w.reserve(4)
	w.engine.PutUint32(w.buf[w.pos:], v)
	w.pos += 4
}

func (w *Writer) PutInt32(v int32) {
	w.PutUint32(uint32(v))
}

func (w *Writer) PutUint64(v uint64) {
	w.reserve(8)
	w.engine.PutUint64(w.buf[w.pos:], v)
	w.pos += 8
}

func (w *Writer) PutInt64(v int64) {
	w.PutUint64(uint64(v))
}

// PutFloat64 writes an 8-byte IEEE-754 double in the file byte order.
func (w *Writer) PutFloat64(v float64) {
	w.PutUint64(math.Float64bits(v))
}

// PutWord writes one pointer word: 8 bytes on 64-bit layouts, 4 bytes otherwise.
func (w *Writer) PutWord(u64 bool, v uint64) {
	if u64 {
		w.PutUint64(v)
	} else {
		w.PutUint32(uint32(v))
	}
}

// PutZeros writes n zero bytes.
func (w *Writer) PutZeros(n int) {
	w.reserve(int64(n))
	for i := 0; i < n; i++ {
		w.buf[w.pos+int64(i)] = 0
	}
	w.pos += int64(n)
}
