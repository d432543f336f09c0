package section

import (
	"fmt"

	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/internal/bin"
)

// ColFormatLabel is the per-column format/label subheader (signature
// FFFFFBFE): format width/decimal pairs plus pool pointers for the format
// and label strings. One subheader appears per column.
type ColFormatLabel struct {
	Fmt32   int16
	Fmt322  int16
	IFmt32  int16
	IFmt322 int16
	FmtKey  int16
	FmtKey2 int16

	Format TextRef
	Label  TextRef
}

// Fmt32Value folds the width/decimal pair into the fractional form the
// metadata surface carries (width + decimals/10).
func (c *ColFormatLabel) Fmt32Value() float64 {
	return float64(c.Fmt32) + float64(c.Fmt322)/10
}

// IFmt32Value folds the informat pair the same way.
func (c *ColFormatLabel) IFmt32Value() float64 {
	return float64(c.IFmt32) + float64(c.IFmt322)/10
}

// FmtKeyValue folds the format-key pair the same way.
func (c *ColFormatLabel) FmtKeyValue() float64 {
	return float64(c.FmtKey) + float64(c.FmtKey2)/10
}

// ParseColFormatLabel parses one format/label subheader body.
func ParseColFormatLabel(r *bin.Reader, u64 bool) (*ColFormatLabel, []errs.Warning, error) {
	c := &ColFormatLabel{}
	var warns []errs.Warning

	r.Skip(8)
	c.Fmt32 = r.Int16()
	c.Fmt322 = r.Int16()
	c.IFmt32 = r.Int16()
	c.IFmt322 = r.Int16()
	c.FmtKey = r.Int16()
	c.FmtKey2 = r.Int16()
	r.Skip(10)
	if u64 {
		r.Skip(8)
	}

	c.Format = ParseTextRef(r)
	c.Label = ParseTextRef(r)

	unk := ParseTextRef(r)
	if unk.Idx != 0 || unk.Off != 0 || unk.Len != 0 {
		warns = append(warns, errs.Warning{Err: errs.ErrCorruptSubheader, Offset: r.Pos(),
			Detail: fmt.Sprintf("trailing pool pointer is %d %d %d, expected zeros",
				unk.Idx, unk.Off, unk.Len)})
	}

	if err := r.Err(); err != nil {
		return nil, warns, err
	}

	return c, warns, nil
}
