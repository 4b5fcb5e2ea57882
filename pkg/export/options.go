package export

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colexport/pkg/metrics"
)

type options struct {
	mem     memory.Allocator
	logger  *zap.Logger
	metrics *metrics.Collector
	source  string
}

// Option configures an Assembler.
type Option func(*options)

// WithAllocator sets the Arrow allocator used for column buffers.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) { o.mem = mem }
}

// WithLogger sets the logger. Batch emission is logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records emitted batches and rows on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithSource names the result source in logs and metric labels.
func WithSource(name string) Option {
	return func(o *options) { o.source = name }
}

func buildOptions(opts []Option) options {
	o := options{
		mem:    memory.DefaultAllocator,
		logger: zap.NewNop(),
		source: "cursor",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mem == nil {
		o.mem = memory.DefaultAllocator
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
