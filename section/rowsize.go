package section

import (
	"fmt"

	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/internal/bin"
)

// RowSize is the parsed row-size subheader (signature F7F7F7F7).
//
// Besides the row geometry it carries the lengths of the deviate strings
// stored in the first column-text chunk (compression name, proc, software)
// and a number of fields whose values are known but whose meaning is not;
// those are read, validated where the format requires zeros, and otherwise
// carried as-is.
type RowSize struct {
	RowLength       uint64
	RowCount        uint64
	DeletedRowCount uint64

	ColFP1 int64
	ColFP2 int64

	PageSize int64
	RCMix    int64
	PgIdx    int32

	PgwSH     int64
	PgwPosSH  int16
	PgwSH2    int64
	PgwPosSH2 int16
	Pgc       int64

	AddTextOff int16
	ToData     int16
	SWLen      int16
	ComprLen   int16
	TextOff    int16
	ProcLen    int16

	SHNum      int16
	CNMaxLen   int16
	LMaxLen    int16
	RowsOnPg   int16
	DataOffset int16
}

// HasProc reports whether the first text chunk reserves the proc-string
// region. A todata value of 12 disables it.
func (rs *RowSize) HasProc() bool {
	return rs.ToData != 12
}

// ParseRowSize parses a row-size subheader body. The reader must be
// positioned just past the signature word.
func ParseRowSize(r *bin.Reader, u64 bool) (*RowSize, []errs.Warning, error) {
	if u64 {
		return parseRowSize64(r)
	}

	return parseRowSize32(r)
}

// expectZero16 reads an int16 the format requires to be zero.
func expectZero16(r *bin.Reader, label string) error {
	pos := r.Pos()
	if v := r.Int16(); v != 0 {
		return errs.AtOffset(fmt.Errorf("%w: row-size field %s is %d, expected 0",
			errs.ErrCorruptSubheader, label, v), pos)
	}

	return nil
}

func warnNonzero(warns []errs.Warning, pos int64, v int64) []errs.Warning {
	if v == 0 {
		return warns
	}

	return append(warns, errs.Warning{Err: errs.ErrCorruptSubheader, Offset: pos,
		Detail: fmt.Sprintf("value %d in zero-filled region", v)})
}

// parseRowSizeTail parses the validated field run shared by both layouts:
// from the first zero-checked field through the trailing zero checks around
// the data offset.
func parseRowSizeTail(r *bin.Reader, rs *RowSize) error {
	if err := expectZero16(r, "01"); err != nil {
		return err
	}
	r.Skip(4)
	for _, label := range []string{"04", "05", "06"} {
		if err := expectZero16(r, label); err != nil {
			return err
		}
	}
	r.Skip(4) // row count repeated
	if err := expectZero16(r, "09"); err != nil {
		return err
	}
	r.Skip(4) // deleted row count repeated
	for _, label := range []string{"12", "13", "14", "15"} {
		if err := expectZero16(r, label); err != nil {
			return err
		}
	}
	rs.DataOffset = r.Int16()
	for _, label := range []string{"17", "18", "19", "20"} {
		if err := expectZero16(r, label); err != nil {
			return err
		}
	}

	return nil
}

func parseRowSize64(r *bin.Reader) (*RowSize, []errs.Warning, error) {
	rs := &RowSize{}
	var warns []errs.Warning

	r.Skip(32)
	rs.RowLength = r.Uint64()
	rs.RowCount = r.Uint64()
	rs.DeletedRowCount = r.Uint64()
	r.Skip(8)
	rs.ColFP1 = r.Int64()
	rs.ColFP2 = r.Int64()
	r.Skip(16)
	rs.PageSize = r.Int64()
	r.Skip(8)
	rs.RCMix = r.Int64()
	r.Skip(16) // two end-of-initial-header markers, both -1

	for z := 0; z < 37; z++ {
		pos := r.Pos()
		warns = warnNonzero(warns, pos, r.Int64())
	}

	rs.PgIdx = r.Int32()

	for z := 0; z < 8; z++ {
		pos := r.Pos()
		warns = warnNonzero(warns, pos, r.Int64())
	}
	r.Skip(4)

	r.Skip(8) // value, meaning unknown
	r.Skip(2)
	r.Skip(6)

	rs.PgwSH = r.Int64()
	rs.PgwPosSH = r.Int16()
	r.Skip(6)
	rs.PgwSH2 = r.Int64()
	rs.PgwPosSH2 = r.Int16()
	r.Skip(6)
	rs.Pgc = r.Int64()
	r.Skip(8)
	r.Skip(8)

	rs.AddTextOff = r.Int16()
	r.Skip(6)

	for z := 0; z < 10; z++ {
		pos := r.Pos()
		warns = warnNonzero(warns, pos, r.Int64())
	}

	r.Skip(8)
	rs.ToData = r.Int16()

	rs.SWLen = r.Int16()
	r.Skip(6)

	r.Skip(4)
	rs.ComprLen = r.Int16()
	r.Skip(2)

	r.Skip(6)
	rs.TextOff = r.Int16()
	rs.ProcLen = r.Int16()

	for z := 0; z < 8; z++ {
		pos := r.Pos()
		warns = warnNonzero(warns, pos, int64(r.Int32()))
	}

	r.Skip(4)
	rs.SHNum = r.Int16()
	rs.CNMaxLen = r.Int16()
	rs.LMaxLen = r.Int16()
	r.Skip(12)
	rs.RowsOnPg = r.Int16()

	if err := parseRowSizeTail(r, rs); err != nil {
		return nil, warns, err
	}
	if err := r.Err(); err != nil {
		return nil, warns, err
	}

	warns = warnDataOffset(warns, r.Pos(), rs.DataOffset)

	return rs, warns, nil
}

func parseRowSize32(r *bin.Reader) (*RowSize, []errs.Warning, error) {
	rs := &RowSize{}
	var warns []errs.Warning

	r.Skip(16)
	rs.RowLength = uint64(r.Uint32())
	rs.RowCount = uint64(r.Uint32())
	rs.DeletedRowCount = uint64(r.Uint32())
	r.Skip(4)
	rs.ColFP1 = int64(r.Int32())
	rs.ColFP2 = int64(r.Int32())
	r.Skip(8)
	rs.PageSize = int64(r.Int32())
	r.Skip(4)
	rs.RCMix = int64(r.Int32())
	r.Skip(8)

	for z := 0; z < 37; z++ {
		pos := r.Pos()
		warns = warnNonzero(warns, pos, int64(r.Int32()))
	}

	rs.PgIdx = r.Int32()

	r.Skip(32) // eight unknown words
	r.Skip(8)  // padding

	r.Skip(4) // value, meaning unknown
	r.Skip(2)
	r.Skip(2)

	rs.PgwSH = int64(r.Int32())
	rs.PgwPosSH = r.Int16()
	r.Skip(2)
	rs.PgwSH2 = int64(r.Int32())
	rs.PgwPosSH2 = r.Int16()
	r.Skip(2)
	rs.Pgc = int64(r.Int32())
	r.Skip(4)
	r.Skip(4)

	rs.AddTextOff = r.Int16()
	r.Skip(2)

	for z := 0; z < 10; z++ {
		pos := r.Pos()
		warns = warnNonzero(warns, pos, int64(r.Int32()))
	}

	r.Skip(8)
	rs.ToData = r.Int16()

	rs.SWLen = r.Int16()
	r.Skip(6)

	r.Skip(4)
	rs.ComprLen = r.Int16()
	r.Skip(2)

	r.Skip(6)
	rs.TextOff = r.Int16()
	rs.ProcLen = r.Int16()

	r.Skip(32) // eight unknown words
	r.Skip(4)
	rs.SHNum = r.Int16()
	rs.CNMaxLen = r.Int16()
	rs.LMaxLen = r.Int16()
	r.Skip(12)
	rs.RowsOnPg = r.Int16()

	if err := parseRowSizeTail(r, rs); err != nil {
		return nil, warns, err
	}
	if err := r.Err(); err != nil {
		return nil, warns, err
	}

	warns = warnDataOffset(warns, r.Pos(), rs.DataOffset)

	return rs, warns, nil
}

func warnDataOffset(warns []errs.Warning, pos int64, dataOffset int16) []errs.Warning {
	switch dataOffset {
	case 1, 256, 1280:
		return warns
	default:
		return append(warns, errs.Warning{Err: errs.ErrCorruptSubheader, Offset: pos,
			Detail: fmt.Sprintf("unexpected data offset flag %d", dataOffset)})
	}
}
