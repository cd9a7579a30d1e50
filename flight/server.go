// Package flight serves filter parsing, compilation and filtered scans over
// Arrow Flight.
package flight

import (
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/filterql/filter"
	"github.com/hugr-lab/filterql/query"
	"github.com/hugr-lab/filterql/schema"
)

// Compiler parses and compiles filters against a registry of entities.
// Implementations MUST be goroutine-safe.
type Compiler interface {
	// Registry returns the entities filters are compiled against.
	Registry() *schema.Registry

	// Parse parses a filter without resolving attribute paths.
	Parse(input string) (*filter.Filter, error)

	// Compile compiles input against the named entity.
	Compile(entity, input string) (*filter.Predicate, error)
}

// Options tunes the DoGet stream.
type Options struct {
	// DefaultLimit caps rows when a ticket has no limit. 0 is unlimited.
	DefaultLimit uint64
	// BatchSize is the number of rows per record batch.
	// OPTIONAL: query.DefaultBatchSize if 0.
	BatchSize int
}

// Server implements the Flight service handlers.
// Embeds BaseFlightServer for forward compatibility with protocol changes.
type Server struct {
	flight.BaseFlightServer

	compiler  Compiler
	runner    *query.Runner // nil disables DoGet
	allocator memory.Allocator
	logger    *slog.Logger
	opts      Options
}

// NewServer creates a Flight server. runner may be nil, in which case only
// the metadata RPCs and actions are served.
func NewServer(compiler Compiler, runner *query.Runner, allocator memory.Allocator, logger *slog.Logger, opts Options) *Server {
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = query.DefaultBatchSize
	}
	return &Server{
		compiler:  compiler,
		runner:    runner,
		allocator: allocator,
		logger:    logger,
		opts:      opts,
	}
}

// RegisterFlightServer registers the Flight service on the provided gRPC server.
func RegisterFlightServer(grpcServer *grpc.Server, flightServer *Server) {
	flight.RegisterFlightServiceServer(grpcServer, flightServer)
}
