package section

import (
	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/internal/bin"
)

// ColAttr is one column attribute entry: where the column lives inside a
// row, how wide it is, and its storage type.
type ColAttr struct {
	Offset   int64
	Width    int32
	NameFlag int16
	Type     format.ColumnType
}

// Plausible reports whether the entry describes a decodable column: a known
// storage type and a width that fits a page. Implausible entries appear in
// attribute subheaders as padding and are dropped.
func (a ColAttr) Plausible(pageSize uint32) bool {
	return (a.Type == format.ColumnNumeric || a.Type == format.ColumnCharacter) &&
		a.Width >= 0 && uint32(a.Width) <= pageSize
}

// ParseColAttr parses a column-attribute subheader body. A file may spread
// attributes over several of these; entries arrive in column order.
func ParseColAttr(r *bin.Reader, u64 bool) ([]ColAttr, error) {
	lenremain := r.Int16()
	r.Skip(6)

	div := 12
	if u64 {
		div = 16
	}

	count := int(lenremain-8) / div
	if count < 0 {
		count = 0
	}

	attrs := make([]ColAttr, 0, count)
	for i := 0; i < count; i++ {
		var a ColAttr
		a.Offset = r.SignedWord(u64)
		a.Width = r.Int32()
		a.NameFlag = r.Int16()
		a.Type = format.ColumnType(r.Int8())
		r.Skip(1)
		attrs = append(attrs, a)
	}

	if err := r.Err(); err != nil {
		return nil, err
	}

	return attrs, nil
}
