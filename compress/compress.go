// Package compress provides the generic APIs implemented by the
// decompression codecs consumed by the rntuple package, and a registry that
// selects one by format.CompressionCodec.
//
// RNTuple treats decompression as an external collaborator: the envelope
// and page decoders never compress, they only ask a Codec to expand bytes
// of a known uncompressed size.
package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/lobis/uproot-go/format"
)

// Codec is implemented by each compression algorithm subpackage.
//
// Codec instances must be safe to use concurrently from multiple
// goroutines, since independent envelope fetches and column decodes may
// run in parallel.
type Codec interface {
	// CompressionCodec returns the on-the-wire identifier of this codec.
	CompressionCodec() format.CompressionCodec

	// NewReader wraps r with a decompressing reader.
	NewReader(r io.Reader) (Reader, error)
}

type Reader interface {
	io.ReadCloser
	Reset(io.Reader) error
}

// Decompressor pools Reader instances created by a Codec, amortizing
// their allocation across Decode calls.
type Decompressor struct {
	codec   Codec
	readers sync.Pool
}

func NewDecompressor(codec Codec) *Decompressor {
	return &Decompressor{codec: codec}
}

// Decode decompresses src into dst, which is grown as needed, and returns
// exactly uncompressedSize bytes or an error.
func (d *Decompressor) Decode(dst []byte, src []byte, uncompressedSize int) ([]byte, error) {
	input := bytes.NewReader(src)

	r, _ := d.readers.Get().(Reader)
	var err error
	if r != nil {
		err = r.Reset(input)
	} else {
		r, err = d.codec.NewReader(input)
	}
	if err != nil {
		return dst, fmt.Errorf("resetting %s decompressor: %w", d.codec.CompressionCodec(), err)
	}

	defer func() {
		if rerr := r.Reset(nil); rerr == nil {
			d.readers.Put(r)
		}
	}()

	if cap(dst) < uncompressedSize {
		dst = make([]byte, uncompressedSize)
	} else {
		dst = dst[:uncompressedSize]
	}

	if _, err := io.ReadFull(r, dst); err != nil {
		return dst, fmt.Errorf("decompressing %s region: %w", d.codec.CompressionCodec(), err)
	}
	return dst, nil
}

// Registry dispatches decompression to the Codec registered for a given
// format.CompressionCodec. Its Decompress method takes the codec as an
// extra argument, so a Registry does not itself satisfy
// rntuple.Decompressor; a single *Decompressor does.
type Registry struct {
	mu           sync.Mutex
	decompressor map[format.CompressionCodec]*Decompressor
}

// NewRegistry builds a Registry with no codecs registered; callers register
// the codecs they need, e.g. with the zstd, lz4 and zlib subpackages.
func NewRegistry() *Registry {
	return &Registry{decompressor: make(map[format.CompressionCodec]*Decompressor)}
}

// Register installs codec under its own CompressionCodec identifier.
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decompressor[codec.CompressionCodec()] = NewDecompressor(codec)
}

// Decompress expands src (compressed under the named codec) into dst,
// growing it to exactly uncompressedSize bytes.
func (r *Registry) Decompress(dst []byte, src []byte, uncompressedSize int, codec format.CompressionCodec) ([]byte, error) {
	if codec == format.Uncompressed {
		if cap(dst) < len(src) {
			dst = make([]byte, len(src))
		} else {
			dst = dst[:len(src)]
		}
		copy(dst, src)
		return dst, nil
	}

	r.mu.Lock()
	d, ok := r.decompressor[codec]
	r.mu.Unlock()
	if !ok {
		return dst, fmt.Errorf("compress: no codec registered for %s", codec)
	}
	return d.Decode(dst, src, uncompressedSize)
}
