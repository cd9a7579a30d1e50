package flight

import (
	"encoding/json"
	"fmt"
)

// TicketData is the decoded content of a DoGet ticket.
// Tickets are JSON for transparency; clients may build them by hand.
type TicketData struct {
	// Entity is the root entity name (e.g., "recipes").
	Entity string `json:"entity"`

	// Filter is the filter expression. Empty selects every row.
	Filter string `json:"filter,omitempty"`

	// Columns to return (optional, nil means all fields).
	Columns []string `json:"columns,omitempty"`

	// Limit caps the number of rows (optional, 0 uses the server default).
	Limit uint64 `json:"limit,omitempty"`
}

// EncodeTicket creates an opaque ticket.
func EncodeTicket(td TicketData) ([]byte, error) {
	if td.Entity == "" {
		return nil, fmt.Errorf("entity name cannot be empty")
	}
	data, err := json.Marshal(td)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}
	return data, nil
}

// DecodeTicket parses a ticket produced by EncodeTicket.
func DecodeTicket(ticketBytes []byte) (*TicketData, error) {
	if len(ticketBytes) == 0 {
		return nil, fmt.Errorf("ticket cannot be empty")
	}

	var ticket TicketData
	if err := json.Unmarshal(ticketBytes, &ticket); err != nil {
		return nil, fmt.Errorf("failed to decode ticket: %w", err)
	}
	if ticket.Entity == "" {
		return nil, fmt.Errorf("decoded ticket has empty entity name")
	}
	return &ticket, nil
}
