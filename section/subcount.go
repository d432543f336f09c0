package section

import (
	"fmt"

	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/internal/bin"
)

// SCVEntry is one row of the subheader-count vector: a signature and the
// first/last page (and position within the page) where it occurs. The
// signatures run from -1 to -7; their exact meaning is unresolved, so the
// entries are read and carried without interpretation.
type SCVEntry struct {
	Sig   int64
	First int64
	FPos  int16
	Last  int64
	LPos  int16
}

// SubCount is the parsed subheader-count subheader (signature FFFFFC00).
type SubCount struct {
	Off     int64
	NonZero int16
	Entries [12]SCVEntry
}

// ParseSubCount parses a subheader-count body.
func ParseSubCount(r *bin.Reader, u64 bool) (*SubCount, []errs.Warning) {
	sc := &SubCount{}
	var warns []errs.Warning

	sc.Off = r.SignedWord(u64)
	r.Skip(int64(wordSize(u64)))

	sc.NonZero = r.Int16()

	// run of unknown 16-bit values; the fourth from the end is sometimes 1804
	if u64 {
		r.Skip(94)
	} else {
		r.Skip(50)
	}

	for i := range sc.Entries {
		e := &sc.Entries[i]
		if u64 {
			e.Sig = r.Int64()
			e.First = r.Int64()
			e.FPos = r.Int16()
			r.Skip(6)
			e.Last = r.Int64()
			e.LPos = r.Int16()
			r.Skip(6)
		} else {
			e.Sig = int64(r.Int32())
			e.First = int64(r.Int32())
			e.FPos = r.Int16()
			r.Skip(2)
			e.Last = int64(r.Int32())
			e.LPos = r.Int16()
			r.Skip(2)
		}
	}

	if sc.Entries[0].Sig != -4 {
		warns = append(warns, errs.Warning{Err: errs.ErrCorruptSubheader, Offset: r.Pos(),
			Detail: fmt.Sprintf("first SCV signature is %d, expected -4", sc.Entries[0].Sig)})
	}

	return sc, warns
}
