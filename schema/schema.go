// Package schema describes the entities a filter is compiled against.
//
// An Entity maps attribute names either to a terminal Field, whose declared
// Type drives value coercion, or to a Relation leading to another Entity.
// Path resolution walks these mappings one segment at a time.
//
// Implementations of Entity MUST be immutable once published and safe for
// concurrent use by multiple goroutines.
package schema

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// Entity is the schema-navigation interface implemented once per entity type.
type Entity interface {
	// Name returns the entity name (e.g., "recipes", "users").
	// Must return a non-empty string.
	Name() string

	// Table returns the backing table name used in SQL.
	Table() string

	// PrimaryKey returns the primary key column.
	// Used for entity-level subqueries (NOT IN across relations, CONTAINS ALL).
	PrimaryKey() string

	// Comment returns optional documentation for the entity.
	Comment() string

	// Field returns the terminal field with the given normalized name.
	// Returns nil if the entity has no such field.
	Field(name string) *Field

	// Relation returns the relationship with the given normalized name.
	// Returns nil if the entity has no such relationship.
	Relation(name string) *Relation

	// Fields returns all terminal fields in declaration order.
	Fields() []*Field

	// Relations returns all relationships in declaration order.
	Relations() []*Relation

	// ArrowSchema returns the Arrow schema of the entity's fields.
	ArrowSchema() *arrow.Schema
}

// Field is a terminal attribute of an entity.
type Field struct {
	// Name is the public attribute name (snake_case).
	Name string

	// Column is the stored column name. Defaults to Name.
	// Empty together with a non-empty Expression marks a computed field.
	Column string

	// Expression is an optional SQL expression evaluated instead of the
	// stored column (e.g., an aggregate over a related table).
	Expression string

	// Type is the declared type used for value coercion.
	Type Type

	// DataType is the Arrow type of the column.
	// OPTIONAL: derived from Type when nil.
	DataType arrow.DataType

	// Nullable reports whether the column admits NULL.
	Nullable bool

	// Comment is optional documentation.
	Comment string
}

// Computed reports whether the field is backed by an expression
// rather than a stored column.
func (f *Field) Computed() bool {
	return f.Column == "" && f.Expression != ""
}

// Cardinality tells whether a relation reaches one or many target rows.
type Cardinality int

const (
	// One is a to-one relationship (many-to-one or one-to-one).
	One Cardinality = iota
	// Many is a to-many relationship (one-to-many or many-to-many).
	Many
)

func (c Cardinality) String() string {
	if c == Many {
		return "many"
	}
	return "one"
}

// Relation is a named relationship from one entity to another.
//
// Direct relations join on LocalKey = ForeignKey:
//
//	source.LocalKey = target.ForeignKey
//
// Relations with Through set use an association table:
//
//	source.LocalKey = through.SourceKey AND through.TargetKey = target.ForeignKey
type Relation struct {
	// Name is the public relationship name (snake_case).
	Name string

	// Target is the name of the related entity.
	Target string

	// Cardinality is One or Many.
	Cardinality Cardinality

	// LocalKey is the column on the source entity.
	// Defaults to the source primary key for to-many relations.
	LocalKey string

	// ForeignKey is the column on the target entity.
	// Defaults to the target primary key for to-one relations.
	ForeignKey string

	// Through is the association table of a many-to-many relation.
	// OPTIONAL: nil for direct relations.
	Through *Through

	// Comment is optional documentation.
	Comment string

	entity Entity
}

// Through describes an association table.
type Through struct {
	// Table is the association table name.
	Table string
	// SourceKey references the source entity's LocalKey.
	SourceKey string
	// TargetKey references the target entity's ForeignKey.
	TargetKey string
}

// Entity returns the linked target entity.
// Returns nil until the relation is linked by a Registry.
func (r *Relation) Entity() Entity {
	return r.entity
}

// ToMany reports whether traversing the relation can multiply source rows.
func (r *Relation) ToMany() bool {
	return r.Cardinality == Many || r.Through != nil
}
