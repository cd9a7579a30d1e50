package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/filterql/filter"
	"github.com/hugr-lab/filterql/internal/msgpack"
	"github.com/hugr-lab/filterql/internal/recovery"
	"github.com/hugr-lab/filterql/internal/serialize"
	"github.com/hugr-lab/filterql/query"
)

// Action types served by DoAction.
const (
	ActionParseFilter   = "parse_filter"
	ActionCompileFilter = "compile_filter"
	ActionListEntities  = "list_entities"
)

// ParseFilterRequest is the MessagePack body of parse_filter.
type ParseFilterRequest struct {
	Filter string `msgpack:"filter"`
}

// ParseFilterResponse is the MessagePack result of parse_filter.
type ParseFilterResponse struct {
	// Filter is the normalized filter string rebuilt from Parts.
	Filter string        `msgpack:"filter"`
	Parts  []filter.Part `msgpack:"parts"`
}

// CompileFilterRequest is the MessagePack body of compile_filter.
type CompileFilterRequest struct {
	Entity  string   `msgpack:"entity"`
	Filter  string   `msgpack:"filter"`
	Columns []string `msgpack:"columns,omitempty"`
	Limit   uint64   `msgpack:"limit,omitempty"`
}

// CompileFilterResponse is the MessagePack result of compile_filter.
type CompileFilterResponse struct {
	// Where is the WHERE clause body.
	Where string `msgpack:"where"`
	// Joins are the join clauses without the JOIN keyword.
	Joins []string `msgpack:"joins,omitempty"`
	// SQL is the complete SELECT over the root entity.
	SQL    string `msgpack:"sql"`
	ToMany bool   `msgpack:"to_many"`
}

// DoAction executes filter actions:
//   - parse_filter: parse a filter into parts
//   - compile_filter: compile a filter against an entity into SQL
//   - list_entities: describe the registry (zstd-compressed MessagePack)
func (s *Server) DoAction(action *flight.Action, stream flight.FlightService_DoActionServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	s.logger.Info("DoAction called",
		"type", action.GetType(),
		"body_size", len(action.GetBody()),
		requestAttrs(ctx),
	)

	actionType := action.GetType()
	var handler func() ([]byte, error)
	switch actionType {
	case ActionParseFilter:
		handler = func() ([]byte, error) { return s.parseFilter(action.GetBody()) }
	case ActionCompileFilter:
		handler = func() ([]byte, error) { return s.compileFilter(action.GetBody()) }
	case ActionListEntities:
		handler = func() ([]byte, error) { return serialize.SerializeEntities(s.compiler.Registry()) }
	default:
		return status.Errorf(codes.Unimplemented, "unknown action type: %s", actionType)
	}

	body, err := recovery.RecoverToValue(s.logger, actionType, handler)
	if err != nil {
		s.logger.Debug("DoAction failed", "type", actionType, "error", err)
		return toStatus(err)
	}
	return s.sendResult(ctx, stream, body)
}

func (s *Server) sendResult(ctx context.Context, stream flight.FlightService_DoActionServer, body []byte) error {
	if err := ctx.Err(); err != nil {
		return toStatus(err)
	}
	if err := stream.Send(&flight.Result{Body: body}); err != nil {
		s.logger.Error("Failed to send action result", "error", err)
		return status.Errorf(codes.Internal, "failed to send result: %v", err)
	}
	return nil
}

func (s *Server) parseFilter(body []byte) ([]byte, error) {
	var req ParseFilterRequest
	if err := msgpack.Decode(body, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid parameters: %v", err)
	}

	f, err := s.compiler.Parse(req.Filter)
	if err != nil {
		return nil, err
	}
	parts := f.Parts()
	return msgpack.Encode(ParseFilterResponse{
		Filter: filter.FormatParts(parts),
		Parts:  parts,
	})
}

func (s *Server) compileFilter(body []byte) ([]byte, error) {
	var req CompileFilterRequest
	if err := msgpack.Decode(body, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid parameters: %v", err)
	}
	if req.Entity == "" {
		return nil, status.Error(codes.InvalidArgument, "entity is required")
	}

	pred, err := s.compiler.Compile(req.Entity, req.Filter)
	if err != nil {
		return nil, err
	}
	stmt, err := query.ToSQL(pred, query.Options{Columns: req.Columns, Limit: req.Limit})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Filter compiled",
		"entity", req.Entity,
		"joins", len(pred.Joins),
	)

	return msgpack.Encode(CompileFilterResponse{
		Where:  pred.SQL(),
		Joins:  filter.JoinClauses(pred.Joins),
		SQL:    stmt,
		ToMany: pred.ToMany(),
	})
}
