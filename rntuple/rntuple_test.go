package rntuple_test

import (
	"fmt"

	"github.com/lobis/uproot-go/rntuple"
)

// memorySource is a rntuple.Source backed by an in-memory byte slice, used
// across this package's tests in place of an on-disk ROOT file.
type memorySource struct {
	data []byte
}

func (s *memorySource) Chunk(begin, end uint64) (rntuple.Chunk, error) {
	if end > uint64(len(s.data)) || begin > end {
		return rntuple.Chunk{}, fmt.Errorf("out of range [%d,%d) for %d bytes", begin, end, len(s.data))
	}
	return rntuple.NewChunk(begin, s.data[begin:end]), nil
}
