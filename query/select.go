// Package query turns compiled filter predicates into SELECT statements over
// the root entity and runs them through database/sql.
//
// Joins that reach many rows are evaluated in a semi-join subquery on the
// root primary key, so every matching root row is returned exactly once.
package query

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/hugr-lab/filterql/filter"
	"github.com/hugr-lab/filterql/schema"
)

// ErrUnknownColumn is returned when a selected column is not a field of the
// root entity.
var ErrUnknownColumn = errors.New("unknown column")

// Options configures the generated SELECT.
type Options struct {
	// Columns are root entity fields to select.
	// OPTIONAL: nil selects every field.
	Columns []string

	// Limit caps the number of returned rows.
	// OPTIONAL: 0 means no limit.
	Limit uint64

	// Encoder renders the predicate.
	// OPTIONAL: uses filter.NewDuckDBEncoder(nil) if nil.
	Encoder filter.Encoder
}

// Columns resolves names against entity. Nil names select every field.
func Columns(entity schema.Entity, names []string) ([]*schema.Field, error) {
	if len(names) == 0 {
		return entity.Fields(), nil
	}
	fields := make([]*schema.Field, 0, len(names))
	for _, name := range names {
		f := entity.Field(schema.NormalizeName(name))
		if f == nil {
			return nil, fmt.Errorf("%w: %q on %s", ErrUnknownColumn, name, entity.Name())
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Select builds the SELECT returning the root rows matching pred.
//
// Example:
//
//	pred, _ := filter.Compile(recipes, `tags.name IN [quick]`, nil)
//	b, err := query.Select(pred, query.Options{Columns: []string{"id", "name"}})
//	sql, args, err := b.ToSql()
func Select(pred *filter.Predicate, opts Options) (sq.SelectBuilder, error) {
	fields, err := Columns(pred.Entity, opts.Columns)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	alias := filter.QuoteIdentifier(pred.Alias)
	from := filter.QuoteIdentifier(pred.Entity.Table()) + " AS " + alias
	b := sq.Select(selectList(alias, fields)...).From(from)
	if opts.Limit > 0 {
		b = b.Limit(opts.Limit)
	}
	if pred.Root == nil {
		return b, nil
	}

	enc := opts.Encoder
	if enc == nil {
		enc = filter.NewDuckDBEncoder(nil)
	}
	where := enc.EncodePredicate(pred)
	if where == "" {
		return sq.SelectBuilder{}, fmt.Errorf("predicate on %s encodes to empty SQL", pred.Entity.Name())
	}

	switch {
	case len(pred.Joins) == 0:
		b = b.Where(sq.Expr(where))

	case !pred.ToMany():
		for _, clause := range filter.JoinClauses(pred.Joins) {
			b = b.LeftJoin(clause)
		}
		b = b.Where(sq.Expr(where))

	default:
		pk := alias + "." + filter.QuoteIdentifier(pred.Entity.PrimaryKey())
		sub := sq.Select(pk).From(from)
		for _, clause := range filter.JoinClauses(pred.Joins) {
			sub = sub.LeftJoin(clause)
		}
		subSQL, args, err := sub.Where(sq.Expr(where)).ToSql()
		if err != nil {
			return sq.SelectBuilder{}, fmt.Errorf("failed to build semi-join: %w", err)
		}
		b = b.Where(sq.Expr(pk+" IN ("+subSQL+")", args...))
	}
	return b, nil
}

// All returns a predicate matching every row of entity.
func All(entity schema.Entity) *filter.Predicate {
	return &filter.Predicate{Entity: entity, Alias: entity.Name()}
}

// ToSQL renders the SELECT for pred.
func ToSQL(pred *filter.Predicate, opts Options) (string, error) {
	b, err := Select(pred, opts)
	if err != nil {
		return "", err
	}
	sql, _, err := b.ToSql()
	return sql, err
}

func selectList(alias string, fields []*schema.Field) []string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		expr := f.Expression
		if expr == "" {
			expr = alias + "." + filter.QuoteIdentifier(f.Column)
		}
		cols[i] = expr + " AS " + filter.QuoteIdentifier(f.Name)
	}
	return cols
}
