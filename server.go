package filterql

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/filterql/auth"
	"github.com/hugr-lab/filterql/flight"
	"github.com/hugr-lab/filterql/query"
)

// NewServer registers the filter Flight service on the provided gRPC server.
//
// Returns error if config is invalid (e.g., nil Registry).
// Does NOT start the gRPC server - user controls lifecycle via grpcServer.Serve().
//
// For authentication, use ServerOptions() to create the gRPC server:
//
//	config := filterql.ServerConfig{
//	    Registry: reg,
//	    DB:       db,
//	    Auth:     filterql.TokenAuth(tokens),
//	}
//	grpcServer := grpc.NewServer(filterql.ServerOptions(config)...)
//	if err := filterql.NewServer(grpcServer, config); err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
func NewServer(grpcServer *grpc.Server, config ServerConfig) error {
	if config.Registry == nil {
		return fmt.Errorf("%w: registry is required", ErrInvalidConfig)
	}

	allocator := config.Allocator
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	logger := newLogger(config)

	engine, err := NewEngine(config.Registry, EngineOptions{
		Limits:    config.Limits,
		Overrides: config.Overrides,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	var runner *query.Runner
	if config.DB != nil {
		runner = query.NewRunner(config.DB, logger)
	}

	flightServer := flight.NewServer(engine, runner, allocator, logger, flight.Options{
		DefaultLimit: config.DefaultLimit,
		BatchSize:    config.BatchSize,
	})
	flight.RegisterFlightServer(grpcServer, flightServer)

	logger.Info("filterql Flight server registered",
		"entities", len(config.Registry.Entities()),
		"has_db", config.DB != nil,
		"has_auth", config.Auth != nil,
		"max_message_size", config.MaxMessageSize,
	)
	return nil
}

func newLogger(config ServerConfig) *slog.Logger {
	if config.Logger != nil {
		return config.Logger
	}
	if config.LogLevel != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *config.LogLevel}))
	}
	return slog.Default()
}

// ServerOptions returns gRPC server options with authentication interceptors
// and message size limits taken from config.
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	var opts []grpc.ServerOption

	if config.Auth != nil {
		opts = append(opts,
			grpc.UnaryInterceptor(auth.UnaryServerInterceptor(config.Auth)),
			grpc.StreamInterceptor(auth.StreamServerInterceptor(config.Auth)),
		)
	}

	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}
	return opts
}
