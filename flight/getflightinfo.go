package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/filterql/query"
)

// GetFlightInfo returns the result schema and the DoGet ticket for a
// filtered scan.
//
// Two descriptor shapes are accepted:
//   - PATH [entity]: every row and field of the entity
//   - CMD: a JSON ticket (see TicketData); the filter is compiled so that
//     invalid filters fail here rather than in DoGet
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	ctx = EnrichContextMetadata(ctx)

	s.logger.Debug("GetFlightInfo called",
		"type", desc.GetType(),
		requestAttrs(ctx),
	)

	var td *TicketData
	switch desc.GetType() {
	case flight.DescriptorPATH:
		path := desc.GetPath()
		if len(path) != 1 {
			return nil, status.Error(codes.InvalidArgument, "path must contain exactly 1 element: [entity]")
		}
		td = &TicketData{Entity: path[0]}
	case flight.DescriptorCMD:
		var err error
		td, err = DecodeTicket(desc.GetCmd())
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid command: %v", err)
		}
	default:
		return nil, status.Error(codes.InvalidArgument, "descriptor must be PATH or CMD type")
	}

	info, err := s.flightInfo(desc, td)
	if err != nil {
		s.logger.Debug("GetFlightInfo failed", "entity", td.Entity, "error", err)
		return nil, toStatus(err)
	}
	return info, nil
}

func (s *Server) flightInfo(desc *flight.FlightDescriptor, td *TicketData) (*flight.FlightInfo, error) {
	pred, err := s.predicate(td)
	if err != nil {
		return nil, err
	}
	fields, err := query.Columns(pred.Entity, td.Columns)
	if err != nil {
		return nil, err
	}
	ticket, err := EncodeTicket(*td)
	if err != nil {
		return nil, err
	}

	if desc == nil {
		desc = &flight.FlightDescriptor{Type: flight.DescriptorPATH, Path: []string{td.Entity}}
	}
	return &flight.FlightInfo{
		Schema:           flight.SerializeSchema(query.Schema(fields), s.allocator),
		FlightDescriptor: desc,
		Endpoint: []*flight.FlightEndpoint{
			{Ticket: &flight.Ticket{Ticket: ticket}},
		},
		TotalRecords: -1, // unknown until scan
		TotalBytes:   -1,
	}, nil
}
