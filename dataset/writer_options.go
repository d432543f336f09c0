package dataset

import (
	"fmt"
	"io"
	"time"

	"github.com/arloliu/bdat/format"
	"github.com/arloliu/bdat/internal/options"
)

// WriterOption configures a Writer.
type WriterOption = options.Option[*writerConfig]

type writerConfig struct {
	bit32       bool
	bigEndian   bool
	headerSize  uint32
	pageSize    uint32
	dataSetName string
	created     time.Time
	compression format.RowCompression
	debug       io.Writer
}

func defaultWriterConfig() writerConfig {
	return writerConfig{
		dataSetName: "TEST",
		compression: format.RowCompressionNone,
	}
}

// resolve fills the size defaults for the selected layout.
func (cfg *writerConfig) resolve() {
	if cfg.headerSize == 0 {
		if cfg.bit32 {
			cfg.headerSize = 1024
		} else {
			cfg.headerSize = 65536
		}
	}
	if cfg.pageSize == 0 {
		if cfg.bit32 {
			cfg.pageSize = 8192
		} else {
			cfg.pageSize = 65536
		}
	}
}

// WithBit32 selects the 32-bit layout with its smaller default header and
// page sizes. The default is the 64-bit layout.
func WithBit32() WriterOption {
	return options.NoError(func(cfg *writerConfig) {
		cfg.bit32 = true
	})
}

// WithBigEndian stores multi-byte fields big-endian, matching files written
// on big-endian hosts. The default is little-endian.
func WithBigEndian() WriterOption {
	return options.NoError(func(cfg *writerConfig) {
		cfg.bigEndian = true
	})
}

// WithHeaderSize overrides the header block size.
func WithHeaderSize(size uint32) WriterOption {
	return options.New(func(cfg *writerConfig) error {
		if size < 1024 {
			return fmt.Errorf("header size %d is below the 1024-byte minimum", size)
		}
		cfg.headerSize = size

		return nil
	})
}

// WithPageSize overrides the page size.
func WithPageSize(size uint32) WriterOption {
	return options.New(func(cfg *writerConfig) error {
		if size < 1024 {
			return fmt.Errorf("page size %d is below the 1024-byte minimum", size)
		}
		cfg.pageSize = size

		return nil
	})
}

// WithDataSetName sets the dataset name stored in the file header.
func WithDataSetName(name string) WriterOption {
	return options.NoError(func(cfg *writerConfig) {
		cfg.dataSetName = name
	})
}

// WithCreated sets the creation/modification timestamp written to the
// header. The zero time writes the SAS epoch.
func WithCreated(t time.Time) WriterOption {
	return options.NoError(func(cfg *writerConfig) {
		cfg.created = t
	})
}

// WithWriterCompression requests native row compression. Only
// format.RowCompressionNone is supported; anything else fails at Write time
// with errs.ErrWriterUnsupported.
func WithWriterCompression(c format.RowCompression) WriterOption {
	return options.NoError(func(cfg *writerConfig) {
		cfg.compression = c
	})
}

// WithWriterDebug directs verbose layout information to w.
func WithWriterDebug(w io.Writer) WriterOption {
	return options.NoError(func(cfg *writerConfig) {
		cfg.debug = w
	})
}
