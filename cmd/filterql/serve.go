package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/hugr-lab/filterql"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve filtered scans over Arrow Flight",
		Long: `Open the DuckDB database, run the optional init script and serve the
schema entities over Arrow Flight until interrupted.

Bearer tokens listed under server.tokens in the config file enable
authentication.

Examples:
  filterql serve --schema recipes.yaml --database recipes.duckdb
  FILTERQL_SERVER_ADDRESS=0.0.0.0:50051 filterql serve --config filterql.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("address", "", "listen address (default 127.0.0.1:50051)")
	flags.String("database", "", "DuckDB database path (default in-memory)")
	flags.String("init-script", "", "SQL file run after opening the database")
	_ = a.v.BindPFlag("server.address", flags.Lookup("address"))
	_ = a.v.BindPFlag("database", flags.Lookup("database"))
	_ = a.v.BindPFlag("init_script", flags.Lookup("init-script"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	reg, err := a.registry()
	if err != nil {
		return err
	}
	db, err := a.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	config := filterql.ServerConfig{
		Registry:       reg,
		DB:             db,
		Logger:         a.logger,
		MaxMessageSize: a.cfg.Server.MaxMessageSize,
		Limits:         a.cfg.Filter.Limits(),
		Overrides:      a.cfg.Filter.Overrides,
		DefaultLimit:   a.cfg.Filter.DefaultLimit,
	}
	if len(a.cfg.Server.Tokens) > 0 {
		config.Auth = filterql.TokenAuth(a.cfg.Server.Tokens)
	}

	grpcServer := grpc.NewServer(filterql.ServerOptions(config)...)
	if err := filterql.NewServer(grpcServer, config); err != nil {
		return err
	}

	lis, err := net.Listen("tcp", a.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Server.Address, err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- grpcServer.Serve(lis) }()
	a.logger.Info("Serving Arrow Flight", "address", lis.Addr().String())

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down")
		grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *app) openDatabase(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("duckdb", a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if a.cfg.InitScript == "" {
		return db, nil
	}

	script, err := os.ReadFile(a.cfg.InitScript)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read init script: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(script)); err != nil {
		db.Close()
		return nil, fmt.Errorf("init script %s: %w", a.cfg.InitScript, err)
	}
	a.logger.Debug("Init script applied", "path", a.cfg.InitScript)
	return db, nil
}
