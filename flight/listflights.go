package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ListFlights sends one FlightInfo per registered entity, each with a
// ticket selecting every row. Criteria are ignored.
func (s *Server) ListFlights(criteria *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	entities := s.compiler.Registry().Entities()
	s.logger.Debug("ListFlights called",
		"entities", len(entities),
		requestAttrs(ctx),
	)

	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return toStatus(err)
		}
		info, err := s.flightInfo(nil, &TicketData{Entity: e.Name()})
		if err != nil {
			return toStatus(err)
		}
		if err := stream.Send(info); err != nil {
			s.logger.Error("Failed to send FlightInfo", "entity", e.Name(), "error", err)
			return status.Errorf(codes.Internal, "failed to send flight info: %v", err)
		}
	}
	return nil
}
