package ttree

import (
	"fmt"
	"sort"
)

// freeRange is one released, reusable byte range [Start, Stop).
type freeRange struct {
	Start, Stop int64
}

// MemorySink is an in-process Sink backed by a single growable byte slice
// plus a sorted free list of released ranges: first-fit allocation,
// doubling growth. The free list exists because a tree record is
// relocated and its old region released rather than grown in place.
type MemorySink struct {
	buf  []byte
	free []freeRange
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Bytes returns the sink's current backing buffer. Callers must not
// mutate it.
func (s *MemorySink) Bytes() []byte { return s.buf }

// FreeBytes returns the total size of all released, not-yet-reused ranges.
func (s *MemorySink) FreeBytes() int64 {
	var n int64
	for _, r := range s.free {
		n += r.Stop - r.Start
	}
	return n
}

func (s *MemorySink) Write(offset int64, data []byte) error {
	end := offset + int64(len(data))
	if end > int64(len(s.buf)) {
		return fmt.Errorf("%w: write [%d,%d) exceeds sink length %d", IOError, offset, end, len(s.buf))
	}
	copy(s.buf[offset:end], data)
	return nil
}

// Allocate returns the offset of a contiguous, exclusively-owned region of
// n bytes, reused from the free list when a large-enough gap exists
// (first-fit), or carved from freshly doubled capacity otherwise.
func (s *MemorySink) Allocate(n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: allocate negative size %d", IOError, n)
	}

	for i, r := range s.free {
		if r.Stop-r.Start < n {
			continue
		}
		offset := r.Start
		if r.Stop-r.Start == n {
			s.free = append(s.free[:i], s.free[i+1:]...)
		} else {
			s.free[i].Start += n
		}
		return offset, nil
	}

	offset := int64(len(s.buf))
	if err := s.growTo(offset + n); err != nil {
		return 0, err
	}
	return offset, nil
}

// growTo extends the buffer's logical length to n, doubling capacity as
// needed.
func (s *MemorySink) growTo(n int64) error {
	if n <= int64(len(s.buf)) {
		return nil
	}
	if n <= int64(cap(s.buf)) {
		s.buf = s.buf[:n]
		return nil
	}
	newCap := int64(cap(s.buf))
	if newCap == 0 {
		newCap = 4096
	}
	for newCap < n {
		newCap *= 2
	}
	grown := make([]byte, n, newCap)
	copy(grown, s.buf)
	s.buf = grown
	return nil
}

// Release returns [start, stop) to the free list, merging with any
// adjacent free ranges.
func (s *MemorySink) Release(start, stop int64) error {
	if start >= stop {
		return fmt.Errorf("%w: release empty or inverted range [%d,%d)", IOError, start, stop)
	}
	s.free = append(s.free, freeRange{Start: start, Stop: stop})
	sort.Slice(s.free, func(i, j int) bool { return s.free[i].Start < s.free[j].Start })

	merged := s.free[:0]
	for _, r := range s.free {
		if len(merged) > 0 && merged[len(merged)-1].Stop == r.Start {
			merged[len(merged)-1].Stop = r.Stop
			continue
		}
		merged = append(merged, r)
	}
	s.free = merged
	return nil
}

func (s *MemorySink) SetFileLength(n int64) error {
	return s.growTo(n)
}

// Flush is a no-op for an in-memory sink; it exists to satisfy Sink.
func (s *MemorySink) Flush() error { return nil }
