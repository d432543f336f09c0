package section

import (
	"github.com/arloliu/bdat/internal/bin"
)

// ColList is the auxiliary column ordering subheader (signature FFFFFFFE).
// It appears only for datasets with more than one column and is sometimes
// absent; its int16 entries are carried without interpretation.
type ColList struct {
	LenRemain int64
	Values    []int16
}

// ParseColList parses a column-list subheader body.
func ParseColList(r *bin.Reader, u64 bool) (*ColList, error) {
	cl := &ColList{}

	r.Skip(4) // unknown large value
	r.Skip(4)

	if u64 {
		cl.LenRemain = r.Int64()
	} else {
		cl.LenRemain = int64(r.Int32())
	}

	r.Skip(2)
	count := int(r.Int16())
	r.Skip(4)
	r.Skip(6)

	if count < 0 || int64(count)*2 > r.Remaining() {
		count = 0
	}

	cl.Values = make([]int16, count)
	for i := range cl.Values {
		cl.Values[i] = r.Int16()
	}

	r.Skip(4)

	if err := r.Err(); err != nil {
		return nil, err
	}

	return cl, nil
}
