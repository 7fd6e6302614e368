// Package lz4 implements ROOT's lz4 RNTuple/TFile compression codec.
package lz4

import (
	"bytes"
	"io"

	"github.com/lobis/uproot-go/compress"
	"github.com/lobis/uproot-go/format"
	"github.com/pierrec/lz4/v4"
)

type Codec struct{}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.LZ4
}

func (c *Codec) NewReader(r io.Reader) (compress.Reader, error) {
	return &reader{reader: r}, nil
}

type reader struct {
	buffer bytes.Buffer
	data   []byte
	offset int
	reader io.Reader
}

func (r *reader) Close() error {
	r.offset = len(r.data)
	r.reader = nil
	return nil
}

func (r *reader) Reset(rr io.Reader) error {
	r.buffer.Reset()
	r.data = r.data[:0]
	r.offset = 0
	r.reader = rr
	return nil
}

func (r *reader) Read(b []byte) (n int, err error) {
	if r.offset == 0 && len(r.data) == 0 {
		if err := r.decompress(); err != nil {
			return 0, err
		}
	}
	n = copy(b, r.data[r.offset:])
	r.offset += n
	if r.offset == len(r.data) {
		err = io.EOF
	}
	return n, err
}

// decompress grows r.data until the raw LZ4 block fits; ROOT's lz4 envelopes
// carry their own uncompressed-size header at a higher layer (the RNTuple
// Locator), so the block itself is framed the same way parquet's LZ4_RAW
// codec is: no length prefix, decoded into a buffer sized by trial and error.
func (r *reader) decompress() error {
	if r.reader == nil {
		return io.EOF
	}

	if _, err := r.buffer.ReadFrom(r.reader); err != nil {
		return err
	}

	if size := 3 * r.buffer.Len(); cap(r.data) < size {
		r.data = make([]byte, size)
	} else {
		r.data = r.data[:cap(r.data)]
	}

	for {
		n, err := lz4.UncompressBlock(r.buffer.Bytes(), r.data)
		if err != nil {
			r.data = make([]byte, 2*len(r.data))
		} else {
			r.data = r.data[:n]
			return nil
		}
	}
}
