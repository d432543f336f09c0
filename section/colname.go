package section

import (
	"fmt"

	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/internal/bin"
)

// ColNamePointer locates one column name in the string pool.
type ColNamePointer struct {
	Ref   TextRef
	Zeros int16
}

// ParseColName parses a column-name subheader body and returns the name
// pointers it carries. A file may spread names over several of these.
func ParseColName(r *bin.Reader) ([]ColNamePointer, error) {
	lenremain := r.Int16()

	for i := 0; i < 3; i++ {
		pos := r.Pos()
		if v := r.Int16(); v != 0 {
			return nil, errs.AtOffset(fmt.Errorf("%w: column-name pad word is %d, expected 0",
				errs.ErrCorruptSubheader, v), pos)
		}
	}

	count := int(lenremain-8) / 8
	if count < 0 {
		count = 0
	}

	ptrs := make([]ColNamePointer, 0, count)
	for i := 0; i < count; i++ {
		p := ColNamePointer{Ref: ParseTextRef(r)}
		p.Zeros = r.Int16()
		ptrs = append(ptrs, p)
	}

	if err := r.Err(); err != nil {
		return nil, err
	}

	return ptrs, nil
}
