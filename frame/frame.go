// Package frame provides the rectangular result container produced by the
// reader and consumed by the writer.
//
// A Frame holds typed column vectors (float64 for numeric columns with NaN
// as the missing value, string for character columns), the per-row deletion
// and validity masks, and the file-level metadata attributes. Frames are
// plain data: they carry no file handles and are safe to retain after the
// reader has been discarded.
package frame

import (
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/format"
)

// Column is one column of a Frame: schema plus the materialised vector
// matching its Type.
type Column struct {
	Name   string
	Label  string
	Format string

	Type  format.ColumnType
	Width int
	// Offset is the column's byte offset within a row. Populated by the
	// reader; ignored by the writer, which packs columns in order.
	Offset int
	// DisplayWidth is the format display width the writer stores in the
	// format/label subheader.
	DisplayWidth int

	// Format attribute surface carried from the format/label subheader.
	Fmt32  float64
	IFmt32 float64
	FmtKey float64

	// Floats holds the values of a numeric column; NaN is the missing value.
	Floats []float64
	// Strings holds the values of a character column.
	Strings []string
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	if c.Type == format.ColumnNumeric {
		return len(c.Floats)
	}

	return len(c.Strings)
}

// Info carries the file-level metadata attributes of a dataset.
type Info struct {
	SASFile  string
	DataSet  string
	FileType string

	Compression string // codec name as stored in the file, blank-trimmed
	Proc        string
	SW          string

	SASRelease string
	SASServer  string
	OSVersion  string
	OSMaker    string
	OSName     string
	Encoding   string // IANA name of the declared encoding

	Created   float64 // seconds since the SAS epoch
	Created2  float64
	Modified  float64
	Modified2 float64
	ThirdTS   float64

	RowCount    uint64 // rows declared by the file, before any selection
	RowLength   uint64
	DeletedRows uint64
	HeaderSize  uint32
	PageSize    uint32

	// VarNames is the full column name list, retained when a column
	// selection narrowed the frame.
	VarNames []string
	// ColumnList is the auxiliary ordering vector when the file carries one.
	ColumnList []int16
}

// Frame is a rectangular dataset with per-column metadata.
type Frame struct {
	Columns []Column
	Info    Info

	// Deleted flags rows marked deleted in the page bitmaps.
	Deleted []bool
	// Valid flags rows that were actually materialised.
	Valid []bool

	// Warnings collects tolerated deviations observed while reading.
	Warnings []errs.Warning
}

// NumRows returns the number of materialised rows.
func (f *Frame) NumRows() int {
	if len(f.Columns) == 0 {
		return len(f.Deleted)
	}

	return f.Columns[0].Len()
}

// NumCols returns the number of columns.
func (f *Frame) NumCols() int {
	return len(f.Columns)
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i := range f.Columns {
		names[i] = f.Columns[i].Name
	}

	return names
}

// Column returns the column with the given name, or nil.
func (f *Frame) Column(name string) *Column {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			return &f.Columns[i]
		}
	}

	return nil
}

// Fingerprint returns a 64-bit xxHash digest over the frame's schema, cell
// values and deletion mask. Two frames with equal schema and data have equal
// fingerprints, which gives tests and callers a cheap equivalence check
// between datasets read from different encodings of the same data.
func (f *Frame) Fingerprint() uint64 {
	d := xxhash.New()

	var scratch [8]byte
	writeInt := func(v uint64) {
		for i := 0; i < 8; i++ {
			scratch[i] = byte(v >> (8 * i))
		}
		_, _ = d.Write(scratch[:])
	}

	writeInt(uint64(len(f.Columns)))
	for i := range f.Columns {
		c := &f.Columns[i]
		_, _ = d.WriteString(c.Name)
		_, _ = d.Write([]byte{0, byte(c.Type)})
		writeInt(uint64(c.Width))

		if c.Type == format.ColumnNumeric {
			for _, v := range c.Floats {
				if math.IsNaN(v) {
					v = math.NaN()
				}
				writeInt(math.Float64bits(v))
			}
		} else {
			for _, s := range c.Strings {
				writeInt(uint64(len(s)))
				_, _ = d.WriteString(s)
			}
		}
	}

	for _, del := range f.Deleted {
		if del {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{0})
		}
	}

	return d.Sum64()
}
