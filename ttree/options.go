package ttree

// WriterOption configures a Writer at construction time (basket capacity,
// resize factor), following the functional-options shape used throughout
// this module.
type WriterOption func(*writerConfig)

type writerConfig struct {
	basketCapacity int
	resizeFactor   float64
}

// DefaultWriterConfig is the zero-value-safe baseline every WriterOption
// is applied on top of.
func DefaultWriterConfig() writerConfig {
	return writerConfig{
		basketCapacity: 10,
		resizeFactor:   1.5,
	}
}

func newWriterConfig(opts ...WriterOption) writerConfig {
	cfg := DefaultWriterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithBasketCapacity sets the tree's initial basket_capacity.
func WithBasketCapacity(n int) WriterOption {
	return func(cfg *writerConfig) { cfg.basketCapacity = n }
}

// WithResizeFactor sets the growth multiplier applied to basket_capacity
// when it is exhausted; growth always yields at least capacity+1.
func WithResizeFactor(f float64) WriterOption {
	return func(cfg *writerConfig) { cfg.resizeFactor = f }
}
