package codec

import (
	"fmt"

	"github.com/arloliu/bdat/errs"
)

// DecompressRLE decodes one SASYZCRL-compressed row payload into a buffer of
// reslen bytes.
//
// Each step consumes a control byte whose high nibble selects the operation
// and whose low nibble parameterises it. Literal copies read their bytes from
// the payload; repeat operations expand a single byte or a fixed filler
// (space, NUL or '@').
//
// Returns:
//   - []byte: Decoded row, possibly shorter or longer than reslen on corrupt input
//   - error: errs.ErrCorruptRow when the decoded length differs from reslen,
//     errs.ErrTruncated when a control sequence reads past the payload
func DecompressRLE(src []byte, reslen int) ([]byte, error) {
	res := make([]byte, 0, reslen)
	rowlen := len(src)
	off := 0

	for off < rowlen {
		ctrl := src[off]
		cbyte := ctrl & 0xF0
		ebyte := int(ctrl & 0x0F)
		off++

		switch cbyte {
		case 0x00, 0x10, 0x20, 0x30: // large literal copy
			if off >= rowlen {
				return res, errs.AtOffset(errs.ErrTruncated, int64(off))
			}
			length := int(src[off]) + 64 + int(ctrl)<<8
			off++
			if off+length > rowlen {
				return res, errs.AtOffset(errs.ErrTruncated, int64(off))
			}
			res = append(res, src[off:off+length]...)
			off += length

		case 0x40: // long byte run
			if off >= rowlen {
				return res, errs.AtOffset(errs.ErrTruncated, int64(off))
			}
			count := ebyte<<8 + int(src[off]) + 18
			off++
			if off >= rowlen {
				return res, errs.AtOffset(errs.ErrTruncated, int64(off))
			}
			res = appendRun(res, src[off], count)
			off++

		case 0x60: // long blank run
			if off >= rowlen {
				return res, errs.AtOffset(errs.ErrTruncated, int64(off))
			}
			res = appendRun(res, ' ', ebyte<<8+int(src[off])+17)
			off++

		case 0x70: // long NUL run
			if off >= rowlen {
				return res, errs.AtOffset(errs.ErrTruncated, int64(off))
			}
			res = appendRun(res, 0, ebyte<<8+int(src[off])+17)
			off++

		case 0x80, 0x90, 0xA0, 0xB0: // small literal copy
			length := int(ctrl) - 0x7F
			if off+length > rowlen {
				return res, errs.AtOffset(errs.ErrTruncated, int64(off))
			}
			res = append(res, src[off:off+length]...)
			off += length

		case 0xC0: // short byte run
			if off >= rowlen {
				return res, errs.AtOffset(errs.ErrTruncated, int64(off))
			}
			res = appendRun(res, src[off], ebyte+3)
			off++

		case 0xD0: // short '@' run
			res = appendRun(res, '@', ebyte+2)

		case 0xE0: // short blank run
			res = appendRun(res, ' ', ebyte+2)

		case 0xF0: // short NUL run
			res = appendRun(res, 0, ebyte+2)

		default: // 0x50: no known meaning, skipped
		}
	}

	if len(res) != reslen {
		return res, fmt.Errorf("%w: got %d want %d", errs.ErrCorruptRow, len(res), reslen)
	}

	return res, nil
}

func appendRun(dst []byte, b byte, count int) []byte {
	for i := 0; i < count; i++ {
		dst = append(dst, b)
	}

	return dst
}
