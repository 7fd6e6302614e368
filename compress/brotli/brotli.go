// Package brotli implements an extra, non-ROOT-standard RNTuple compression
// codec; see compress/snappy for why the registry carries it anyway.
package brotli

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/lobis/uproot-go/compress"
	"github.com/lobis/uproot-go/format"
)

type Codec struct{}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Brotli
}

func (c *Codec) NewReader(r io.Reader) (compress.Reader, error) {
	return reader{brotli.NewReader(r)}, nil
}

type reader struct{ *brotli.Reader }

func (r reader) Close() error { return nil }

func (r reader) Reset(rr io.Reader) error {
	if rr == nil {
		return nil
	}
	r.Reader.Reset(rr)
	return nil
}
