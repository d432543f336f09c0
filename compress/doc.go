// Package compress provides the spool codecs used for the reader's scratch
// row stream.
//
// When a SAS7BDAT file uses native row compression, every row is decoded
// individually (see the codec package) and appended to a contiguous scratch
// stream of rowcount x rowlength bytes before cell values are materialised.
// For wide datasets this stream can dwarf the input file, so the reader can
// spill it through an in-memory compressed spool. This package supplies the
// codecs for that spool:
//
//   - None: keep the stream as raw bytes (default, fastest)
//   - LZ4: fast block compression, good for mostly-numeric rows
//   - S2: balanced speed and ratio
//   - Zstd: best ratio, for very large compressed datasets
//
// The spool codec is an internal memory/speed trade-off; it never changes
// decoded values and is unrelated to the file's native SASYZCRL/SASYZCR2
// codecs.
//
// # Interfaces
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Zstd has two implementations selected at build time: the default pure-Go
// encoder and, under the cgo_zstd build tag, the cgo libzstd binding.
package compress
