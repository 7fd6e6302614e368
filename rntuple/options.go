package rntuple

// ReaderOption configures a Reader at construction time, following the
// functional-options shape used throughout this module's configuration
// surface.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	skipEnvelopeChecksum bool
	decompressor         Decompressor
}

func newReaderConfig(opts ...ReaderOption) *readerConfig {
	cfg := &readerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// SkipEnvelopeChecksum disables the CRC32 verification ReadEnvelope
// normally performs on every envelope. Intended for recovering data from
// files with a known-corrupt trailing checksum but otherwise intact
// payload.
func SkipEnvelopeChecksum() ReaderOption {
	return func(cfg *readerConfig) { cfg.skipEnvelopeChecksum = true }
}

// WithDecompressor configures the Decompressor used to expand compressed
// envelopes and pages. A Reader opened without one can still read a file
// whose locators are all uncompressed.
func WithDecompressor(d Decompressor) ReaderOption {
	return func(cfg *readerConfig) { cfg.decompressor = d }
}
