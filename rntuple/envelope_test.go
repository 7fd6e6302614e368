package rntuple_test

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lobis/uproot-go/rntuple"
)

func buildEnvelope(envVersion, minVersion uint16, payload []byte) []byte {
	withoutCRC := cat(u16b(envVersion), u16b(minVersion), payload)
	crc := crc32.ChecksumIEEE(withoutCRC)
	return cat(withoutCRC, u32b(crc))
}

func TestReadEnvelopeRoundTrip(t *testing.T) {
	raw := buildEnvelope(1, 0, []byte("schema-bytes"))
	version, payload, err := rntuple.ReadEnvelope(raw)
	require.NoError(t, err)
	require.Equal(t, uint16(1), version.EnvVersion)
	require.Equal(t, uint16(0), version.MinVersion)
	require.Equal(t, len("schema-bytes"), payload.Len())
}

func TestReadEnvelopeBadChecksum(t *testing.T) {
	raw := buildEnvelope(1, 0, []byte("schema-bytes"))
	raw[len(raw)-1] ^= 0xff
	_, _, err := rntuple.ReadEnvelope(raw)
	require.ErrorIs(t, err, rntuple.FormatError)
}

func TestReadEnvelopeSkipChecksumIgnoresCorruption(t *testing.T) {
	raw := buildEnvelope(1, 0, []byte("schema-bytes"))
	raw[len(raw)-1] ^= 0xff
	_, payload, err := rntuple.ReadEnvelopeSkipChecksum(raw)
	require.NoError(t, err)
	require.Equal(t, len("schema-bytes"), payload.Len())
}

func TestFetchEnvelopeUncompressed(t *testing.T) {
	raw := buildEnvelope(1, 0, []byte("abc"))
	src := &memorySource{data: raw}
	link := rntuple.EnvelopeLink{
		UncompressedSize: uint32(len(raw)),
		Locator:          rntuple.Locator{NumBytes: int32(len(raw)), Offset: 0},
	}
	got, err := rntuple.FetchEnvelope(src, link, nil)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

type stubDecompressor struct {
	calledWith int
	result     []byte
	err        error
}

func (s *stubDecompressor) Decode(dst, src []byte, uncompressedSize int) ([]byte, error) {
	s.calledWith = uncompressedSize
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestFetchEnvelopeCompressedRequiresDecompressor(t *testing.T) {
	src := &memorySource{data: []byte{1, 2, 3, 4}}
	link := rntuple.EnvelopeLink{
		UncompressedSize: 100,
		Locator:          rntuple.Locator{NumBytes: 4, Offset: 0},
	}
	_, err := rntuple.FetchEnvelope(src, link, nil)
	require.ErrorIs(t, err, rntuple.UnsupportedFeature)

	d := &stubDecompressor{result: make([]byte, 100)}
	got, err := rntuple.FetchEnvelope(src, link, d)
	require.NoError(t, err)
	require.Equal(t, 100, len(got))
	require.Equal(t, 100, d.calledWith)
}
