package filter

import (
	"github.com/hugr-lab/filterql/schema"
)

// Expression is a node of a compiled predicate tree.
// Implementations are immutable once built.
type Expression interface {
	expression()
}

// ColumnRef references a field of the root entity or of a joined entity.
type ColumnRef struct {
	// Alias is the table alias owning the column.
	Alias string
	// Field is the public field name.
	Field string
	// Column is the stored column name. Empty when Expression is set.
	Column string
	// Expression replaces the column reference when not empty.
	Expression string
	// Type is the declared field type.
	Type schema.Type
	// Fold asks the encoder to compare lower(column).
	Fold bool
}

// Comparison is "column op value" for =, <>, >, <, >=, <=.
type Comparison struct {
	Column ColumnRef
	Op     Relation
	Value  any
}

// InList is "column [NOT] IN (values)".
type InList struct {
	Column ColumnRef
	Values []any
	Negate bool
}

// LikeMatch is a case-insensitive pattern match.
type LikeMatch struct {
	Column  ColumnRef
	Pattern string
	Negate  bool
}

// NullTest is "column IS [NOT] NULL".
type NullTest struct {
	Column ColumnRef
	Negate bool
}

// Membership tests the root entity against a subquery over the root entity:
//
//	root.pk [NOT] IN (SELECT root.pk FROM root JOIN ... WHERE condition)
//
// It expresses entity-level negation and CONTAINS ALL over to-many relations.
type Membership struct {
	// Entity is the root entity.
	Entity schema.Entity
	// Alias is the root alias inside and outside the subquery.
	Alias string
	// Joins are the joins needed by Condition inside the subquery.
	Joins []Join
	// Condition filters the subquery rows.
	Condition Expression
	Negate    bool
}

// Conjunction combines two predicates with AND or OR.
type Conjunction struct {
	Op    LogicalOperator
	Left  Expression
	Right Expression
}

func (*Comparison) expression()  {}
func (*InList) expression()      {}
func (*LikeMatch) expression()   {}
func (*NullTest) expression()    {}
func (*Membership) expression()  {}
func (*Conjunction) expression() {}

// Join is one relationship traversal needed to reach a field.
type Join struct {
	// Path is the dotted relationship path from the root (e.g., "user.household").
	Path string
	// Alias is the table alias of the joined entity (e.g., "user__household").
	Alias string
	// From is the alias of the entity the relation starts from.
	From string
	// Relation is the traversed relationship.
	Relation *schema.Relation
	// Entity is the joined entity.
	Entity schema.Entity
}

// Predicate is the compiled form of a filter against a root entity.
type Predicate struct {
	// Entity is the root entity.
	Entity schema.Entity
	// Alias is the root table alias.
	Alias string
	// Root is the predicate tree.
	Root Expression
	// Joins are the joins the tree references, in traversal order.
	Joins []Join
	// Filter is the parsed filter the predicate was compiled from.
	Filter *Filter
}

// ToMany reports whether any join can multiply root rows.
func (p *Predicate) ToMany() bool {
	for _, j := range p.Joins {
		if j.Relation.ToMany() {
			return true
		}
	}
	return false
}

// SQL renders the predicate as a DuckDB WHERE body.
func (p *Predicate) SQL() string {
	return NewDuckDBEncoder(nil).EncodePredicate(p)
}
