// Package uncompressed implements the identity RNTuple compression codec,
// used when a Locator's num_bytes equals its uncompressed size.
package uncompressed

import (
	"io"

	"github.com/lobis/uproot-go/compress"
	"github.com/lobis/uproot-go/format"
)

type Codec struct{}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Uncompressed
}

func (c *Codec) NewReader(r io.Reader) (compress.Reader, error) {
	return &reader{r}, nil
}

type reader struct{ io.Reader }

func (r *reader) Close() error             { return nil }
func (r *reader) Reset(rr io.Reader) error { r.Reader = rr; return nil }
