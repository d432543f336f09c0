// Package bdat reads and writes SAS7BDAT files, the proprietary
// page-structured binary tabular format produced by SAS.
//
// The reader handles both the 32-bit and 64-bit layouts in either byte
// order, reconstructs the full column schema (names, labels, formats, types,
// widths), decodes uncompressed and natively compressed rows (the SASYZCRL
// run-length and SASYZCR2 back-reference codecs), and surfaces the file's
// metadata attributes and per-row deletion mask. The writer emits a
// minimally valid file for a restricted profile: uncompressed pages with
// numeric and character columns.
//
// # Basic Usage
//
// Reading a file:
//
//	f, err := bdat.ReadFile("iris.sas7bdat")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(f.Names(), f.NumRows())
//	species := f.Column("Species").Strings
//
// Narrowing the decode to a row range and a column set:
//
//	f, err := bdat.ReadFile("iris.sas7bdat",
//	    dataset.WithRowRange(1, 10),
//	    dataset.WithColumns("Species"))
//
// Writing a frame back out:
//
//	err := bdat.WriteFile("out.sas7bdat", f)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the dataset
// package, simplifying the most common use cases. For advanced usage and
// fine-grained control, use the dataset package directly; the section,
// codec and format packages expose the lower layers.
package bdat

import (
	"github.com/arloliu/bdat/dataset"
	"github.com/arloliu/bdat/frame"
)

// Frame is the rectangular dataset container returned by the reader.
type Frame = frame.Frame

// Column is one column of a Frame.
type Column = frame.Column

// ReaderOption configures ReadFile.
type ReaderOption = dataset.ReaderOption

// WriterOption configures WriteFile.
type WriterOption = dataset.WriterOption

// ReadFile reads and decodes the SAS7BDAT file at path.
//
// Parameters:
//   - path: File to read; gzip-compressed input is handled transparently
//   - opts: Optional configuration (see dataset.ReaderOption)
//
// Returns:
//   - *Frame: Decoded dataset with schema, metadata and row masks
//   - error: Open, header or decode error
func ReadFile(path string, opts ...ReaderOption) (*Frame, error) {
	return dataset.Read(path, opts...)
}

// WriteFile writes f as a SAS7BDAT file at path.
//
// Parameters:
//   - path: Destination file
//   - f: Frame with numeric (float64) and character (string) columns
//   - opts: Optional configuration (see dataset.WriterOption)
//
// Returns:
//   - error: errs.ErrWriterUnsupported for requests outside the writer
//     profile, otherwise the underlying I/O error
func WriteFile(path string, f *Frame, opts ...WriterOption) error {
	return dataset.WriteFrame(path, f, opts...)
}
