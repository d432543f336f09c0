// Package dataset provides the SAS7BDAT reader and writer.
//
// The Reader walks the page structure of a file, reconstructs the column
// schema from the cross-referenced metadata subheaders, decodes rows
// (decompressing them when the file declares a native codec) and returns a
// frame.Frame. The Writer emits a minimally valid SAS7BDAT for a restricted
// profile: uncompressed pages, numeric (8-byte double) and character columns.
//
// # Reading
//
//	f, err := dataset.Read("iris.sas7bdat")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(f.Names(), f.NumRows())
//
// Row ranges and column selections narrow the decode without disturbing
// stream alignment:
//
//	f, err := dataset.Read("iris.sas7bdat",
//	    dataset.WithRowRange(1, 10),
//	    dataset.WithColumns("Species"))
//
// # Writing
//
//	w, err := dataset.NewWriter("out.sas7bdat")
//	if err != nil {
//	    return err
//	}
//	err = w.Write(f)
//
// The writer rejects requests outside its profile (compression, numeric
// widths other than 8) with errs.ErrWriterUnsupported.
package dataset
