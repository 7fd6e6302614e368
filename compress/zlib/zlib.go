// Package zlib implements ROOT's zlib RNTuple/TFile compression codec.
package zlib

import (
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/lobis/uproot-go/compress"
	"github.com/lobis/uproot-go/format"
)

type Codec struct{}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Zlib
}

func (c *Codec) NewReader(r io.Reader) (compress.Reader, error) {
	z, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}
	return reader{z}, nil
}

type reader struct{ io.ReadCloser }

func (r reader) Reset(rr io.Reader) error {
	if rr == nil {
		return nil
	}
	if resetter, ok := r.ReadCloser.(zlib.Resetter); ok {
		return resetter.Reset(rr, nil)
	}
	return nil
}
