package compress

// ZstdCompressor is the high-ratio spool codec, intended for very large
// compressed datasets where the scratch stream would otherwise dominate
// memory use.
//
// Two implementations exist behind build tags: the default pure-Go encoder
// from klauspost/compress and, under cgo_zstd, the libzstd binding from
// valyala/gozstd. Both produce interchangeable zstd frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
