package ttree

// Sink is the free-space and persistence collaborator the writer appends
// and patches through: "write(offset, bytes)",
// "allocate(n) -> offset", "release(start, stop)", "set_file_length(n)",
// "flush()". Single-writer, append+patch.
type Sink interface {
	Write(offset int64, data []byte) error
	Allocate(n int64) (offset int64, err error)
	Release(start, stop int64) error
	SetFileLength(n int64) error
	Flush() error
}
