package filterql

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/filterql/schema"
)

// SchemaBuilder builds a linked entity registry using a fluent API.
// Not thread-safe - use only during initialization.
type SchemaBuilder struct {
	entities []*entityBuilder
	built    bool
}

// NewSchemaBuilder creates a new fluent schema builder.
//
// Example:
//
//	reg, err := filterql.NewSchemaBuilder().
//	    Entity("users").
//	        Field("id", schema.TypeUUID).
//	        Field("username", schema.TypeString).
//	    Entity("recipes").
//	        Field("id", schema.TypeUUID).
//	        Field("name", schema.TypeString).
//	        NullableField("rating", schema.TypeFloat).
//	        BelongsTo("user", "users").
//	        ManyToMany("tags", "tags", "recipes_to_tags", "recipe_id", "tag_id").
//	    Build()
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{}
}

// Entity starts defining a new entity.
// Entity names MUST be non-empty and unique within the registry.
func (b *SchemaBuilder) Entity(name string) *EntityBuilder {
	eb := &entityBuilder{def: schema.EntityDef{Name: name}, parent: b}
	b.entities = append(b.entities, eb)
	return &EntityBuilder{builder: eb}
}

// Build links the entities and returns the immutable registry.
// Can only be called once.
func (b *SchemaBuilder) Build() (*schema.Registry, error) {
	if b.built {
		return nil, fmt.Errorf("schema already built")
	}
	entities := make([]schema.Entity, 0, len(b.entities))
	for _, eb := range b.entities {
		if eb.err != nil {
			return nil, eb.err
		}
		e, err := schema.NewStaticEntity(eb.def)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	reg, err := schema.NewRegistry(entities...)
	if err != nil {
		return nil, err
	}
	b.built = true
	return reg, nil
}

// EntityBuilder builds one entity within a SchemaBuilder.
type EntityBuilder struct {
	builder *entityBuilder
}

type entityBuilder struct {
	def    schema.EntityDef
	err    error
	parent *SchemaBuilder
}

// Table sets the backing table. Defaults to the entity name.
func (eb *EntityBuilder) Table(table string) *EntityBuilder {
	eb.builder.def.Table = table
	return eb
}

// PrimaryKey sets the primary key column. Defaults to "id".
func (eb *EntityBuilder) PrimaryKey(column string) *EntityBuilder {
	eb.builder.def.PrimaryKey = column
	return eb
}

// Comment sets optional entity documentation.
func (eb *EntityBuilder) Comment(comment string) *EntityBuilder {
	eb.builder.def.Comment = comment
	return eb
}

// Field adds a non-nullable stored field.
func (eb *EntityBuilder) Field(name string, t schema.Type) *EntityBuilder {
	return eb.FieldDef(&schema.Field{Name: name, Type: t})
}

// NullableField adds a nullable stored field.
func (eb *EntityBuilder) NullableField(name string, t schema.Type) *EntityBuilder {
	return eb.FieldDef(&schema.Field{Name: name, Type: t, Nullable: true})
}

// Computed adds a field evaluated from a SQL expression instead of a column.
//
// Example:
//
//	Computed("comment_count", schema.TypeInteger,
//	    "(SELECT count(*) FROM comments c WHERE c.recipe_id = recipes.id)")
func (eb *EntityBuilder) Computed(name string, t schema.Type, expression string) *EntityBuilder {
	return eb.FieldDef(&schema.Field{Name: name, Type: t, Expression: expression, Nullable: true})
}

// FieldDef adds a fully specified field.
func (eb *EntityBuilder) FieldDef(f *schema.Field) *EntityBuilder {
	eb.builder.def.Fields = append(eb.builder.def.Fields, f)
	return eb
}

// ArrowFields adds one field per column of s, typed from the Arrow types.
func (eb *EntityBuilder) ArrowFields(s *arrow.Schema) *EntityBuilder {
	if s == nil {
		eb.builder.err = fmt.Errorf("entity %s: arrow schema cannot be nil", eb.builder.def.Name)
		return eb
	}
	eb.builder.def.Fields = append(eb.builder.def.Fields, schema.FieldsFromArrow(s)...)
	return eb
}

// BelongsTo adds a to-one relation joined on "<name>_id" = target primary key.
func (eb *EntityBuilder) BelongsTo(name, target string) *EntityBuilder {
	return eb.RelationDef(&schema.Relation{Name: name, Target: target, Cardinality: schema.One})
}

// HasMany adds a to-many relation joined on the primary key = target foreignKey.
func (eb *EntityBuilder) HasMany(name, target, foreignKey string) *EntityBuilder {
	return eb.RelationDef(&schema.Relation{
		Name:        name,
		Target:      target,
		Cardinality: schema.Many,
		ForeignKey:  foreignKey,
	})
}

// ManyToMany adds a relation through an association table.
func (eb *EntityBuilder) ManyToMany(name, target, table, sourceKey, targetKey string) *EntityBuilder {
	return eb.RelationDef(&schema.Relation{
		Name:        name,
		Target:      target,
		Cardinality: schema.Many,
		Through:     &schema.Through{Table: table, SourceKey: sourceKey, TargetKey: targetKey},
	})
}

// RelationDef adds a fully specified relation.
func (eb *EntityBuilder) RelationDef(r *schema.Relation) *EntityBuilder {
	eb.builder.def.Relations = append(eb.builder.def.Relations, r)
	return eb
}

// Entity starts the next entity (returns to SchemaBuilder).
func (eb *EntityBuilder) Entity(name string) *EntityBuilder {
	return eb.builder.parent.Entity(name)
}

// Build finalizes the registry. Same as calling SchemaBuilder.Build().
func (eb *EntityBuilder) Build() (*schema.Registry, error) {
	return eb.builder.parent.Build()
}
