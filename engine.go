package filterql

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hugr-lab/filterql/filter"
	"github.com/hugr-lab/filterql/schema"
)

// EngineOptions configures an Engine.
type EngineOptions struct {
	// Limits bounds filter input size.
	// OPTIONAL: zero fields use filter.DefaultLimits().
	Limits filter.Limits

	// Overrides maps entity name to field name to SQL expression.
	// OPTIONAL.
	Overrides map[string]map[string]string

	// Logger receives rejected filters at Debug level.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger

	// Concurrency bounds the goroutines of CompileAll.
	// OPTIONAL: runtime.GOMAXPROCS(0) if 0.
	Concurrency int
}

// Engine compiles filter strings against a registry of entities.
// Safe for concurrent use.
type Engine struct {
	registry    *schema.Registry
	limits      filter.Limits
	overrides   map[string]map[string]string
	logger      *slog.Logger
	concurrency int
}

// NewEngine creates an Engine over reg.
// Returns ErrInvalidConfig if reg is nil or an override names an unknown entity.
func NewEngine(reg *schema.Registry, opts EngineOptions) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: registry is required", ErrInvalidConfig)
	}
	overrides := make(map[string]map[string]string, len(opts.Overrides))
	for entity, fields := range opts.Overrides {
		if reg.Entity(entity) == nil {
			return nil, fmt.Errorf("%w: overrides: %w: %s", ErrInvalidConfig, ErrEntityNotFound, entity)
		}
		normalized := make(map[string]string, len(fields))
		for name, expr := range fields {
			normalized[schema.NormalizeName(name)] = expr
		}
		overrides[entity] = normalized
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		registry:    reg,
		limits:      opts.Limits,
		overrides:   overrides,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

// Registry returns the entities filters are compiled against.
func (e *Engine) Registry() *schema.Registry {
	return e.registry
}

// Parse parses a filter without resolving attribute paths.
func (e *Engine) Parse(input string) (*filter.Filter, error) {
	f, err := filter.Parse(input, e.limits)
	if err != nil {
		e.logger.Debug("Filter rejected", "kind", filter.KindOf(err), "error", err)
		return nil, err
	}
	return f, nil
}

// Compile compiles input against the named entity.
func (e *Engine) Compile(entity, input string) (*filter.Predicate, error) {
	root, err := e.registry.Lookup(entity)
	if err != nil {
		return nil, err
	}
	pred, err := filter.Compile(root, input, &filter.Options{
		Overrides: e.overrides[entity],
		Limits:    e.limits,
	})
	if err != nil {
		e.logger.Debug("Filter rejected",
			"entity", entity,
			"kind", filter.KindOf(err),
			"error", err,
		)
		return nil, err
	}
	return pred, nil
}

// CompileAll compiles several filters against the named entity
// concurrently. Results keep the order of inputs. The first error cancels
// the remaining work and is returned.
func (e *Engine) CompileAll(ctx context.Context, entity string, inputs []string) ([]*filter.Predicate, error) {
	if _, err := e.registry.Lookup(entity); err != nil {
		return nil, err
	}

	out := make([]*filter.Predicate, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pred, err := e.Compile(entity, input)
			if err != nil {
				return fmt.Errorf("filter %d: %w", i, err)
			}
			out[i] = pred
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
