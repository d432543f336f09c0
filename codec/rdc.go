package codec

import (
	"fmt"

	"github.com/arloliu/bdat/errs"
)

// DecompressRDC decodes one SASYZCR2-compressed row payload into a buffer of
// reslen bytes.
//
// A 16-bit control word is consumed bit by bit from the highest position. A
// clear bit emits one literal byte; a set bit consumes a command byte whose
// high nibble selects between short/long runs and short/long back-references.
// Back-references copy byte-wise, so a reference may overlap its own output
// and produce a run.
//
// Returns:
//   - []byte: Decoded row, possibly shorter or longer than reslen on corrupt input
//   - error: errs.ErrCorruptRow when the decoded length differs from reslen
//     or a back-reference points before the start of the output
func DecompressRDC(src []byte, reslen int) ([]byte, error) {
	res := make([]byte, 0, reslen)
	rowlen := len(src)
	off := 0

	var cbit, cmsk uint16

	for off < rowlen && len(res) < reslen {
		cmsk >>= 1
		if cmsk == 0 {
			if off+1 >= rowlen {
				break
			}
			cbit = uint16(src[off])<<8 | uint16(src[off+1])
			off += 2
			cmsk = 0x8000
		}

		if cbit&cmsk == 0 {
			if off < rowlen {
				res = append(res, src[off])
				off++
			}

			continue
		}

		if off >= rowlen {
			break
		}
		ctrl := src[off]
		off++
		cmd := int(ctrl>>4) & 0x0F
		n := int(ctrl & 0x0F)

		switch cmd {
		case 0: // short run
			if off < rowlen {
				res = appendRun(res, src[off], n+3)
				off++
			}

		case 1: // long run
			if off < rowlen {
				count := int(src[off]) + n<<8 + 19
				off++
				if off < rowlen {
					res = appendRun(res, src[off], count)
					off++
				}
			}

		case 2: // long back-reference
			if off+1 < rowlen {
				ofs := n + 3 + int(src[off])<<4
				off++
				count := int(src[off]) + 16
				off++
				var err error
				res, err = backCopy(res, ofs, count)
				if err != nil {
					return res, err
				}
			}

		default: // cmd >= 3: short back-reference of cmd bytes
			if off < rowlen {
				ofs := n + 3 + int(src[off])<<4
				off++
				var err error
				res, err = backCopy(res, ofs, cmd)
				if err != nil {
					return res, err
				}
			}
		}
	}

	if len(res) != reslen {
		return res, fmt.Errorf("%w: got %d want %d", errs.ErrCorruptRow, len(res), reslen)
	}

	return res, nil
}

// backCopy appends count bytes starting ofs bytes back from the end of dst.
// Copies proceed byte-wise so the source range may overlap the appended tail.
func backCopy(dst []byte, ofs, count int) ([]byte, error) {
	pos := len(dst) - ofs
	if pos < 0 {
		return dst, fmt.Errorf("%w: back-reference offset %d exceeds output length %d",
			errs.ErrCorruptRow, ofs, len(dst))
	}
	for i := 0; i < count; i++ {
		dst = append(dst, dst[pos+i])
	}

	return dst, nil
}
