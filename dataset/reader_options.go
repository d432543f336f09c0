package dataset

import (
	"fmt"
	"io"

	"github.com/arloliu/bdat/errs"
	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/internal/options"
)

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*readerConfig]

type readerConfig struct {
	debug     io.Writer
	rowMin    uint64 // 1-based, 0 means unset
	rowMax    uint64
	columns   []string
	scratch   format.CompressionType
	interrupt func() error
}

func defaultReaderConfig() readerConfig {
	return readerConfig{
		scratch: format.CompressionNone,
	}
}

// WithDebug directs verbose parse information to w.
func WithDebug(w io.Writer) ReaderOption {
	return options.NoError(func(cfg *readerConfig) {
		cfg.debug = w
	})
}

// WithRowRange restricts the decode to rows min..max, 1-based and inclusive.
// The range is clamped to the dataset's row count.
func WithRowRange(minRow, maxRow uint64) ReaderOption {
	return options.New(func(cfg *readerConfig) error {
		if minRow == 0 || maxRow < minRow {
			return fmt.Errorf("%w: row range [%d, %d]", errs.ErrInvalidSelection, minRow, maxRow)
		}
		cfg.rowMin = minRow
		cfg.rowMax = maxRow

		return nil
	})
}

// WithColumns restricts the decode to the named columns. Names not present
// in the dataset are ignored; the full name list stays available on the
// frame's Info.
func WithColumns(names ...string) ReaderOption {
	return options.NoError(func(cfg *readerConfig) {
		cfg.columns = append(cfg.columns, names...)
	})
}

// WithScratchCompression selects the spool codec for the decompressed row
// stream of natively compressed files. Defaults to format.CompressionNone.
func WithScratchCompression(ct format.CompressionType) ReaderOption {
	return options.New(func(cfg *readerConfig) error {
		switch ct {
		case format.CompressionNone, format.CompressionLZ4, format.CompressionS2, format.CompressionZstd:
			cfg.scratch = ct
			return nil
		default:
			return fmt.Errorf("invalid scratch compression: %s", ct)
		}
	})
}

// WithInterrupt installs a cancellation check polled once per page. A
// non-nil return aborts the read with that error.
func WithInterrupt(check func() error) ReaderOption {
	return options.NoError(func(cfg *readerConfig) {
		cfg.interrupt = check
	})
}
