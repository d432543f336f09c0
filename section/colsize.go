package section

import (
	"github.com/arloliu/bdat/internal/bin"
)

// ParseColSize parses a column-size subheader body (signature F6F6F6F6) and
// returns the declared column count.
func ParseColSize(r *bin.Reader, u64 bool) int64 {
	k := r.SignedWord(u64)
	r.Skip(int64(wordSize(u64)))

	return k
}

func wordSize(u64 bool) int {
	if u64 {
		return 8
	}

	return 4
}
