package filter

import "strings"

// Encoder converts compiled predicates to SQL strings.
// Implementations handle dialect-specific syntax.
type Encoder interface {
	// Encode converts a single expression to SQL.
	// Returns empty string if the expression is unsupported.
	Encode(expr Expression) string

	// EncodePredicate converts a predicate to a WHERE clause body,
	// without the "WHERE" keyword.
	EncodePredicate(p *Predicate) string
}

// EncoderOptions configures encoding behavior.
type EncoderOptions struct {
	// ColumnMapping maps stored column names to target names.
	// Columns not in the map use their stored names.
	ColumnMapping map[string]string

	// ColumnExpressions maps field names to SQL expressions.
	// Takes precedence over ColumnMapping and over expressions resolved
	// at compile time.
	ColumnExpressions map[string]string
}

// JoinClauses renders the table clauses needed for joins, one per joined
// table, without the JOIN keyword:
//
//	users AS "user" ON "user".id = recipes.user_id
//
// Relations through an association table produce two clauses.
func JoinClauses(joins []Join) []string {
	var out []string
	for _, j := range joins {
		rel := j.Relation
		alias := quoteIdentifier(j.Alias)
		from := quoteIdentifier(j.From)
		table := quoteIdentifier(j.Entity.Table())

		if rel.Through != nil {
			link := quoteIdentifier(j.Alias + aliasSeparator + "link")
			out = append(out,
				quoteIdentifier(rel.Through.Table)+" AS "+link+
					" ON "+link+"."+quoteIdentifier(rel.Through.SourceKey)+" = "+from+"."+quoteIdentifier(rel.LocalKey),
				table+" AS "+alias+
					" ON "+alias+"."+quoteIdentifier(rel.ForeignKey)+" = "+link+"."+quoteIdentifier(rel.Through.TargetKey),
			)
			continue
		}
		out = append(out, table+" AS "+alias+
			" ON "+alias+"."+quoteIdentifier(rel.ForeignKey)+" = "+from+"."+quoteIdentifier(rel.LocalKey))
	}
	return out
}

// escapeString escapes single quotes in a string value for SQL.
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoteLiteral returns a SQL string literal with proper escaping.
func quoteLiteral(s string) string {
	return "'" + escapeString(s) + "'"
}

// quoteIdentifier returns a quoted identifier if needed.
// DuckDB uses double quotes for identifiers.
func quoteIdentifier(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// QuoteIdentifier is quoteIdentifier for callers building surrounding SQL.
func QuoteIdentifier(name string) string {
	return quoteIdentifier(name)
}

// needsQuoting returns true if the identifier needs quoting.
func needsQuoting(name string) bool {
	if len(name) == 0 {
		return true
	}

	c := name[0]
	if !isLetter(c) && c != '_' {
		return true
	}
	for i := 1; i < len(name); i++ {
		c = name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return true
		}
	}

	// simplified reserved word list
	switch strings.ToUpper(name) {
	case "SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "NULL", "TRUE", "FALSE",
		"INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER", "TABLE", "INDEX",
		"JOIN", "LEFT", "RIGHT", "INNER", "OUTER", "ON", "AS", "IN", "IS", "LIKE",
		"BETWEEN", "EXISTS", "CASE", "WHEN", "THEN", "ELSE", "END", "ORDER", "BY",
		"GROUP", "HAVING", "LIMIT", "OFFSET", "UNION", "EXCEPT", "INTERSECT",
		"ALL", "DISTINCT", "VALUES", "SET", "INTO", "PRIMARY", "KEY", "FOREIGN",
		"REFERENCES", "CONSTRAINT", "DEFAULT", "CHECK", "UNIQUE", "ASC", "DESC",
		"NULLS", "FIRST", "LAST", "CAST", "INTERVAL", "DATE", "TIME", "TIMESTAMP",
		"USER", "PUBLIC", "ANY", "SOME", "WITH":
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
