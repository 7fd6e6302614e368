// Package snappy implements an extra, non-ROOT-standard RNTuple compression
// codec, registered alongside the zlib, lz4 and zstd codecs so the Registry
// isn't hard-coded to ROOT's own algorithms.
package snappy

import (
	"bytes"
	"io"

	"github.com/golang/snappy"
	"github.com/lobis/uproot-go/compress"
	"github.com/lobis/uproot-go/format"
)

type Codec struct{}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Snappy
}

// The snappy package implements a framing protocol in its Reader/Writer,
// but RNTuple locators address a single raw compressed region, so this codec
// ships its own reader around snappy.Decode.
func (c *Codec) NewReader(r io.Reader) (compress.Reader, error) {
	return &reader{input: r, offset: -1}, nil
}

type reader struct {
	input  io.Reader
	buffer bytes.Buffer
	offset int
	data   []byte
}

func (r *reader) Close() error {
	return r.Reset(r.input)
}

func (r *reader) Reset(rr io.Reader) error {
	r.input = rr
	r.buffer.Reset()
	r.offset = -1
	r.data = r.data[:0]
	return nil
}

func (r *reader) Read(b []byte) (int, error) {
	if r.offset < 0 {
		if r.input == nil {
			return 0, io.EOF
		}

		if _, err := r.buffer.ReadFrom(r.input); err != nil {
			return 0, err
		}

		data, err := snappy.Decode(r.data[:0], r.buffer.Bytes())
		if err != nil {
			return 0, err
		}
		r.data = data
		r.offset = 0
	}

	n := copy(b, r.data[r.offset:])
	r.offset += n
	if r.offset == len(r.data) {
		return n, io.EOF
	}
	return n, nil
}
