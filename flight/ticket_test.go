package flight

import (
	"testing"
)

func TestEncodeDecodeTicket(t *testing.T) {
	tests := []struct {
		name string
		td   TicketData
	}{
		{"entity only", TicketData{Entity: "recipes"}},
		{"with filter", TicketData{Entity: "recipes", Filter: `tags.slug IN [quick, "easy"]`}},
		{"columns and limit", TicketData{Entity: "users", Columns: []string{"id", "username"}, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeTicket(tt.td)
			if err != nil {
				t.Fatalf("EncodeTicket() error = %v", err)
			}
			decoded, err := DecodeTicket(encoded)
			if err != nil {
				t.Fatalf("DecodeTicket() error = %v", err)
			}
			if decoded.Entity != tt.td.Entity || decoded.Filter != tt.td.Filter || decoded.Limit != tt.td.Limit {
				t.Errorf("decoded = %+v, want %+v", decoded, tt.td)
			}
			if len(decoded.Columns) != len(tt.td.Columns) {
				t.Errorf("Columns = %v, want %v", decoded.Columns, tt.td.Columns)
			}
		})
	}
}

func TestDecodeTicketHandWritten(t *testing.T) {
	td, err := DecodeTicket([]byte(`{"entity":"recipes","filter":"rating > 3","limit":5}`))
	if err != nil {
		t.Fatalf("DecodeTicket() error = %v", err)
	}
	if td.Entity != "recipes" || td.Filter != "rating > 3" || td.Limit != 5 {
		t.Errorf("decoded = %+v", td)
	}
}

func TestTicketErrors(t *testing.T) {
	if _, err := EncodeTicket(TicketData{Filter: "a = 1"}); err == nil {
		t.Error("EncodeTicket() without entity should fail")
	}

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not json", "recipes"},
		{"no entity", `{"filter":"a = 1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTicket([]byte(tt.input)); err == nil {
				t.Errorf("DecodeTicket(%q) expected error", tt.input)
			}
		})
	}
}
