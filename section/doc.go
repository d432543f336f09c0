// Package section implements the fixed binary layouts of a SAS7BDAT file:
// the file header, page headers, the subheader pointer table, and every typed
// subheader the reader dispatches on.
//
// Each subheader begins with a pointer-word signature; Classify maps the
// signature to a Kind and each Kind has a Parse function working against a
// bin.Reader positioned just past the signature. Field sequences follow the
// on-disk checklists, which differ between the 32-bit and 64-bit layouts;
// unknown fields are read to advance the cursor and validated as zero where
// the format requires.
//
// Parsers return collected warnings for tolerated deviations and hard errors
// only where a misparse would poison everything that follows.
package section
