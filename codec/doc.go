// Package codec implements the two native SAS row-compression codecs.
//
// Compressed pages store one row payload per subheader. The payload is
// decoded into a buffer of exactly the declared row length:
//
//   - RLE ("SASYZCRL"): run-length coding with literal copies and dedicated
//     opcodes for blank, NUL and '@' runs.
//   - RDC ("SASYZCR2"): a control-word driven codec mixing literals,
//     run-length repeats and overlapping back-references into the output.
//
// Both decoders validate the produced length against the expected row length
// and report errs.ErrCorruptRow on mismatch; the partially decoded row is
// still returned so the caller can emit it as-is. The RLE decoder reports a
// read past the end of the compressed payload as errs.ErrTruncated; the RDC
// decoder stops at the end of the payload and reports the resulting length
// mismatch as errs.ErrCorruptRow.
package codec
