package flight

import (
	"context"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/filterql/filter"
	"github.com/hugr-lab/filterql/internal/recovery"
	"github.com/hugr-lab/filterql/query"
)

// DoGet streams the rows of an entity matching the ticket filter as Arrow
// record batches.
//
// The ticket must be encoded using EncodeTicket. An empty filter selects
// every row. The ticket limit, or Options.DefaultLimit, caps the rows.
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	td, err := DecodeTicket(ticket.GetTicket())
	if err != nil {
		s.logger.Debug("Failed to decode ticket", "error", err)
		return status.Errorf(codes.InvalidArgument, "invalid ticket: %v", err)
	}

	s.logger.Debug("DoGet request",
		"entity", td.Entity,
		"filter", td.Filter,
		"columns", len(td.Columns),
		requestAttrs(ctx),
	)

	if s.runner == nil {
		return toStatus(ErrNoDatabase)
	}

	err = recovery.RecoverToError(s.logger, "DoGet", func() error {
		return s.stream(ctx, td, stream)
	})
	if err != nil {
		s.logger.Debug("DoGet failed", "entity", td.Entity, "error", err)
		return toStatus(err)
	}
	return nil
}

func (s *Server) stream(ctx context.Context, td *TicketData, stream flight.FlightService_DoGetServer) error {
	pred, err := s.predicate(td)
	if err != nil {
		return err
	}

	opts := query.Options{Columns: td.Columns, Limit: td.Limit}
	if opts.Limit == 0 {
		opts.Limit = s.opts.DefaultLimit
	}

	reader, err := s.runner.Reader(ctx, pred, opts, s.allocator, s.opts.BatchSize)
	if err != nil {
		return err
	}
	defer reader.Release()

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(reader.Schema()), ipc.WithAllocator(s.allocator))
	defer writer.Close()

	batches := 0
	rows := int64(0)
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			s.logger.Debug("DoGet cancelled by client",
				"entity", td.Entity,
				"batches_sent", batches,
				"rows_sent", rows,
			)
			return err
		}

		rec := reader.RecordBatch()
		if err := writer.Write(rec); err != nil {
			return status.Errorf(codes.Internal, "failed to write batch %d: %v", batches+1, err)
		}
		batches++
		rows += rec.NumRows()
	}
	if err := reader.Err(); err != nil {
		return err
	}

	s.logger.Debug("DoGet completed",
		"entity", td.Entity,
		"batches_sent", batches,
		"total_rows", rows,
	)
	return nil
}

// predicate compiles the ticket filter, or matches every row when the
// filter is blank.
func (s *Server) predicate(td *TicketData) (*filter.Predicate, error) {
	if strings.TrimSpace(td.Filter) == "" {
		entity, err := s.compiler.Registry().Lookup(td.Entity)
		if err != nil {
			return nil, err
		}
		return query.All(entity), nil
	}
	return s.compiler.Compile(td.Entity, td.Filter)
}
