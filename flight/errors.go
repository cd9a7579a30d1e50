package flight

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/filterql/filter"
	"github.com/hugr-lab/filterql/query"
	"github.com/hugr-lab/filterql/schema"
)

// ErrNoDatabase is returned by DoGet when the server has no query runner.
var ErrNoDatabase = errors.New("no database configured")

// toStatus maps engine errors to gRPC status errors.
// Errors that already carry a status are returned unchanged.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, filter.ErrInvalidFilter), errors.Is(err, query.ErrUnknownColumn):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, schema.ErrEntityNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrNoDatabase):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
