package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hugr-lab/filterql/schema"
)

// DuckDBEncoder encodes compiled predicates to DuckDB SQL syntax.
// Values are inlined as escaped literals.
type DuckDBEncoder struct {
	opts *EncoderOptions
}

// NewDuckDBEncoder creates a new DuckDB SQL encoder.
// If opts is nil, default options are used.
func NewDuckDBEncoder(opts *EncoderOptions) *DuckDBEncoder {
	if opts == nil {
		opts = &EncoderOptions{}
	}
	return &DuckDBEncoder{opts: opts}
}

// EncodePredicate converts a predicate to a WHERE clause body.
// Returns empty string for a nil predicate.
func (e *DuckDBEncoder) EncodePredicate(p *Predicate) string {
	if p == nil {
		return ""
	}
	return e.Encode(p.Root)
}

// Encode converts a single expression to SQL.
// Returns empty string if the expression is unsupported.
func (e *DuckDBEncoder) Encode(expr Expression) string {
	if expr == nil {
		return ""
	}

	switch ex := expr.(type) {
	case *Comparison:
		return e.encodeComparison(ex)
	case *InList:
		return e.encodeIn(ex)
	case *LikeMatch:
		return e.encodeLike(ex)
	case *NullTest:
		return e.encodeNullTest(ex)
	case *Membership:
		return e.encodeMembership(ex)
	case *Conjunction:
		return e.encodeConjunction(ex)
	default:
		return ""
	}
}

// encodeComparison encodes "column op value".
func (e *DuckDBEncoder) encodeComparison(c *Comparison) string {
	left := e.encodeColumn(c.Column)
	right := e.formatValue(c.Value, c.Column.Type)
	if left == "" || right == "" {
		return ""
	}
	switch c.Op {
	case Equal, NotEqual, Greater, Less, GreaterEqual, LessEqual:
		return left + " " + string(c.Op) + " " + right
	}
	return ""
}

// encodeIn encodes IN/NOT IN expressions.
func (e *DuckDBEncoder) encodeIn(in *InList) string {
	left := e.encodeColumn(in.Column)
	if left == "" || len(in.Values) == 0 {
		return ""
	}

	values := make([]string, 0, len(in.Values))
	for _, v := range in.Values {
		encoded := e.formatValue(v, in.Column.Type)
		if encoded == "" {
			return ""
		}
		values = append(values, encoded)
	}

	op := " IN "
	if in.Negate {
		op = " NOT IN "
	}
	return left + op + "(" + strings.Join(values, ", ") + ")"
}

// encodeLike encodes LIKE/NOT LIKE as case-insensitive ILIKE.
func (e *DuckDBEncoder) encodeLike(l *LikeMatch) string {
	col := l.Column
	col.Fold = false
	left := e.encodeColumn(col)
	if left == "" {
		return ""
	}
	if l.Negate {
		return left + " NOT ILIKE " + quoteLiteral(l.Pattern)
	}
	return left + " ILIKE " + quoteLiteral(l.Pattern)
}

// encodeNullTest encodes IS NULL / IS NOT NULL. The column is never folded.
func (e *DuckDBEncoder) encodeNullTest(n *NullTest) string {
	col := n.Column
	col.Fold = false
	left := e.encodeColumn(col)
	if left == "" {
		return ""
	}
	if n.Negate {
		return left + " IS NOT NULL"
	}
	return left + " IS NULL"
}

// encodeMembership encodes an entity-level subquery test.
func (e *DuckDBEncoder) encodeMembership(m *Membership) string {
	cond := e.Encode(m.Condition)
	if cond == "" || m.Entity == nil {
		return ""
	}
	alias := quoteIdentifier(m.Alias)
	pk := alias + "." + quoteIdentifier(m.Entity.PrimaryKey())

	var sb strings.Builder
	sb.WriteString(pk)
	if m.Negate {
		sb.WriteString(" NOT IN (SELECT ")
	} else {
		sb.WriteString(" IN (SELECT ")
	}
	sb.WriteString(pk)
	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdentifier(m.Entity.Table()))
	sb.WriteString(" AS ")
	sb.WriteString(alias)
	for _, clause := range JoinClauses(m.Joins) {
		sb.WriteString(" JOIN ")
		sb.WriteString(clause)
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(cond)
	sb.WriteString(")")
	return sb.String()
}

// encodeConjunction encodes AND/OR, flattening chains of the same operator.
func (e *DuckDBEncoder) encodeConjunction(c *Conjunction) string {
	var parts []string
	for _, child := range flatten(c.Op, c) {
		encoded := e.Encode(child)
		if encoded == "" {
			return ""
		}
		parts = append(parts, encoded)
	}
	return "(" + strings.Join(parts, " "+string(c.Op)+" ") + ")"
}

// flatten collects the operands of nested conjunctions sharing op,
// keeping textual order.
func flatten(op LogicalOperator, expr Expression) []Expression {
	c, ok := expr.(*Conjunction)
	if !ok || c.Op != op {
		return []Expression{expr}
	}
	return append(flatten(op, c.Left), flatten(op, c.Right)...)
}

// encodeColumn encodes a column reference.
func (e *DuckDBEncoder) encodeColumn(c ColumnRef) string {
	var sql string
	switch {
	case e.opts.ColumnExpressions[c.Field] != "":
		sql = e.opts.ColumnExpressions[c.Field]
	case c.Expression != "":
		sql = c.Expression
	default:
		name := c.Column
		if mapped, ok := e.opts.ColumnMapping[name]; ok {
			name = mapped
		}
		if name == "" {
			return ""
		}
		sql = quoteIdentifier(name)
		if c.Alias != "" {
			sql = quoteIdentifier(c.Alias) + "." + sql
		}
	}
	if c.Fold {
		return "lower(" + sql + ")"
	}
	return sql
}

// formatValue formats a coerced value as a SQL literal.
func (e *DuckDBEncoder) formatValue(v any, t schema.Type) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteLiteral(val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case Decimal:
		return string(val)
	case uuid.UUID:
		return quoteLiteral(val.String())
	case time.Time:
		if t == schema.TypeDate {
			return "DATE '" + val.Format("2006-01-02") + "'"
		}
		return "TIMESTAMP '" + val.UTC().Format("2006-01-02 15:04:05.999999") + "'"
	default:
		return quoteLiteral(fmt.Sprint(val))
	}
}
