package filterql_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/flight"
	_ "github.com/duckdb/duckdb-go/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/filterql"
	flightsvc "github.com/hugr-lab/filterql/flight"
	"github.com/hugr-lab/filterql/schema"
)

func openDuckDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("DuckDB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fixture, err := os.ReadFile("testdata/recipes.sql")
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	if _, err := db.Exec(string(fixture)); err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return db
}

// newTestServer starts a Flight server with token auth and returns a
// client connected to it.
func newTestServer(t *testing.T) flight.FlightServiceClient {
	t.Helper()

	reg, err := schema.LoadFile("testdata/recipes.yaml")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	config := filterql.ServerConfig{
		Registry:       reg,
		DB:             openDuckDB(t),
		Auth:           filterql.TokenAuth(map[string]string{"s3cret": "alice"}),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxMessageSize: 16 << 20,
		DefaultLimit:   100,
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}
	grpcServer := grpc.NewServer(filterql.ServerOptions(config)...)
	if err := filterql.NewServer(grpcServer, config); err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(grpcServer.GracefulStop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return flight.NewFlightServiceClient(conn)
}

func countRows(ctx context.Context, client flight.FlightServiceClient, td flightsvc.TicketData) (int64, error) {
	ticket, err := flightsvc.EncodeTicket(td)
	if err != nil {
		return 0, err
	}
	stream, err := client.DoGet(ctx, &flight.Ticket{Ticket: ticket})
	if err != nil {
		return 0, err
	}
	rdr, err := flight.NewRecordReader(stream)
	if err != nil {
		return 0, err
	}
	defer rdr.Release()

	var n int64
	for rdr.Next() {
		n += rdr.RecordBatch().NumRows()
	}
	if err := rdr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	return n, nil
}

func TestServerAuthenticatedDoGet(t *testing.T) {
	client := newTestServer(t)
	td := flightsvc.TicketData{Entity: "recipes", Filter: `tags.slug CONTAINS ALL [quick, easy]`}

	tests := []struct {
		name  string
		token string
		want  codes.Code
	}{
		{"valid token", "s3cret", codes.OK},
		{"invalid token", "nope", codes.Unauthenticated},
		{"no token", "", codes.Unauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.token != "" {
				ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tt.token)
			}
			n, err := countRows(ctx, client, td)
			if got := status.Code(err); got != tt.want {
				t.Fatalf("code = %v, want %v (%v)", got, tt.want, err)
			}
			if tt.want == codes.OK && n != 1 {
				t.Errorf("got %d rows, want 1", n)
			}
		})
	}
}

func TestServerRejectsInvalidFilter(t *testing.T) {
	client := newTestServer(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer s3cret")

	_, err := countRows(ctx, client, flightsvc.TicketData{Entity: "recipes", Filter: `name = x AND`})
	if got := status.Code(err); got != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument (%v)", got, err)
	}
}

func TestNewServerInvalidConfig(t *testing.T) {
	err := filterql.NewServer(grpc.NewServer(), filterql.ServerConfig{})
	if !errors.Is(err, filterql.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestServerOptions(t *testing.T) {
	if got := len(filterql.ServerOptions(filterql.ServerConfig{})); got != 0 {
		t.Errorf("got %d options for empty config, want 0", got)
	}
	opts := filterql.ServerOptions(filterql.ServerConfig{Auth: filterql.NoAuth(), MaxMessageSize: 1 << 20})
	if len(opts) != 4 {
		t.Errorf("got %d options, want 4", len(opts))
	}
}
