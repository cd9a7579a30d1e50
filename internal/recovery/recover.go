// Package recovery turns panics raised while serving a Flight request into
// codes.Internal status errors.
package recovery

import (
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoverToValue runs fn. A panic inside fn is logged with its stack and
// returned as a codes.Internal error together with the zero T.
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var zero T
		result, err = zero, panicError(logger, operation, r)
	}()
	return fn()
}

// RecoverToError is RecoverToValue for handlers that only return an error.
//
//	err := recovery.RecoverToError(logger, "DoGet", func() error {
//	    return s.stream(ctx, td, stream)
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) error {
	_, err := RecoverToValue(logger, operation, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func panicError(logger *slog.Logger, operation string, r any) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("Panic recovered",
		"operation", operation,
		"panic", r,
		"stack", string(debug.Stack()),
	)
	return status.Errorf(codes.Internal, "%s: internal error", operation)
}
