// Package zstd implements the zstd RNTuple/ROOT compression codec.
package zstd

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/lobis/uproot-go/compress"
	"github.com/lobis/uproot-go/format"
)

type Codec struct{}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Zstd
}

func (c *Codec) NewReader(r io.Reader) (compress.Reader, error) {
	z, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return reader{z}, nil
}

type reader struct{ *zstd.Decoder }

func (r reader) Close() error { r.Decoder.Close(); return nil }

func (r reader) Reset(rr io.Reader) error {
	if rr == nil {
		return r.Decoder.Reset(nil)
	}
	return r.Decoder.Reset(rr)
}
