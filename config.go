package filterql

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/filterql/auth"
	"github.com/hugr-lab/filterql/filter"
	"github.com/hugr-lab/filterql/schema"
)

// ServerConfig contains configuration for the filter Flight server.
type ServerConfig struct {
	// Registry provides the entities filters are compiled against.
	// REQUIRED: MUST NOT be nil.
	Registry *schema.Registry

	// DB backs DoGet scans. Entity tables must exist in it.
	// OPTIONAL: If nil, DoGet returns Unavailable and only actions are served.
	DB *sql.DB

	// Auth provides authentication logic.
	// OPTIONAL: If nil, no authentication (all requests allowed).
	Auth auth.Authenticator

	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// If Logger is nil and LogLevel is set, a text logger at that level is created.
	Logger *slog.Logger

	// LogLevel sets the logging level of the created logger.
	// OPTIONAL: If nil, uses Info level.
	LogLevel *slog.Level

	// MaxMessageSize sets maximum gRPC message size in bytes.
	// OPTIONAL: If 0, uses gRPC default (4MB).
	MaxMessageSize int

	// Limits bounds filter input size.
	// OPTIONAL: zero fields use filter.DefaultLimits().
	Limits filter.Limits

	// Overrides maps entity name to field name to the SQL expression
	// compiled instead of the stored column.
	// OPTIONAL.
	Overrides map[string]map[string]string

	// DefaultLimit caps DoGet rows when a ticket has no limit.
	// OPTIONAL: 0 is unlimited.
	DefaultLimit uint64

	// BatchSize is the number of rows per streamed record batch.
	// OPTIONAL: 1024 if 0.
	BatchSize int
}

// Standard errors returned by filterql.
var (
	// ErrInvalidConfig indicates ServerConfig or EngineOptions validation failed.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidFilter matches every rejected filter. See filter.Error for details.
	ErrInvalidFilter = filter.ErrInvalidFilter

	// ErrEntityNotFound indicates a lookup of an unregistered entity.
	ErrEntityNotFound = schema.ErrEntityNotFound
)
