package schema

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// EntityDef is the declarative input for NewStaticEntity.
type EntityDef struct {
	// Name is the entity name. REQUIRED.
	Name string
	// Table is the backing table. OPTIONAL: defaults to Name.
	Table string
	// PrimaryKey is the primary key column. OPTIONAL: defaults to "id".
	PrimaryKey string
	// Comment is optional documentation.
	Comment string
	// Fields are the terminal fields in declaration order.
	Fields []*Field
	// Relations are the outgoing relationships in declaration order.
	Relations []*Relation
}

// StaticEntity is an immutable Entity built from an EntityDef.
type StaticEntity struct {
	name       string
	table      string
	primaryKey string
	comment    string

	fields    []*Field
	relations []*Relation
	byField   map[string]*Field
	byRel     map[string]*Relation
	schema    *arrow.Schema
}

// NewStaticEntity validates def and creates a StaticEntity.
//
// Field and relation names are normalized with NormalizeName and must be
// unique across both sets. Relations are left unlinked; register the entity
// in a Registry to link them.
func NewStaticEntity(def EntityDef) (*StaticEntity, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("entity name cannot be empty")
	}

	e := &StaticEntity{
		name:       def.Name,
		table:      def.Table,
		primaryKey: def.PrimaryKey,
		comment:    def.Comment,
		byField:    make(map[string]*Field, len(def.Fields)),
		byRel:      make(map[string]*Relation, len(def.Relations)),
	}
	if e.table == "" {
		e.table = def.Name
	}
	if e.primaryKey == "" {
		e.primaryKey = "id"
	}

	arrowFields := make([]arrow.Field, 0, len(def.Fields))
	for _, src := range def.Fields {
		if src == nil || src.Name == "" {
			return nil, fmt.Errorf("entity %s: field name cannot be empty", def.Name)
		}
		f := *src
		f.Name = NormalizeName(f.Name)
		if _, dup := e.byField[f.Name]; dup {
			return nil, fmt.Errorf("entity %s: duplicate field %q", def.Name, f.Name)
		}
		if f.Column == "" && f.Expression == "" {
			f.Column = f.Name
		}
		switch {
		case f.DataType == nil:
			f.DataType = DataTypeOf(f.Type)
		case f.Type == TypeOther:
			f.Type = TypeOf(f.DataType)
		}
		e.fields = append(e.fields, &f)
		e.byField[f.Name] = &f
		arrowFields = append(arrowFields, arrow.Field{Name: f.Name, Type: f.DataType, Nullable: f.Nullable})
	}
	e.schema = arrow.NewSchema(arrowFields, nil)

	for _, src := range def.Relations {
		if src == nil || src.Name == "" {
			return nil, fmt.Errorf("entity %s: relation name cannot be empty", def.Name)
		}
		if src.Target == "" {
			return nil, fmt.Errorf("entity %s: relation %q has no target", def.Name, src.Name)
		}
		r := *src
		r.entity = nil
		r.Name = NormalizeName(r.Name)
		if _, dup := e.byField[r.Name]; dup {
			return nil, fmt.Errorf("entity %s: relation %q collides with a field", def.Name, r.Name)
		}
		if _, dup := e.byRel[r.Name]; dup {
			return nil, fmt.Errorf("entity %s: duplicate relation %q", def.Name, r.Name)
		}
		if r.Through != nil {
			if r.Through.Table == "" || r.Through.SourceKey == "" || r.Through.TargetKey == "" {
				return nil, fmt.Errorf("entity %s: relation %q: association table, source key and target key are required", def.Name, r.Name)
			}
			through := *r.Through
			r.Through = &through
		}
		e.relations = append(e.relations, &r)
		e.byRel[r.Name] = &r
	}

	return e, nil
}

// Name implements Entity interface.
func (e *StaticEntity) Name() string { return e.name }

// Table implements Entity interface.
func (e *StaticEntity) Table() string { return e.table }

// PrimaryKey implements Entity interface.
func (e *StaticEntity) PrimaryKey() string { return e.primaryKey }

// Comment implements Entity interface.
func (e *StaticEntity) Comment() string { return e.comment }

// Field implements Entity interface.
func (e *StaticEntity) Field(name string) *Field { return e.byField[name] }

// Relation implements Entity interface.
func (e *StaticEntity) Relation(name string) *Relation { return e.byRel[name] }

// Fields implements Entity interface.
func (e *StaticEntity) Fields() []*Field { return e.fields }

// Relations implements Entity interface.
func (e *StaticEntity) Relations() []*Relation { return e.relations }

// ArrowSchema implements Entity interface.
func (e *StaticEntity) ArrowSchema() *arrow.Schema { return e.schema }

// FieldsFromArrow converts an Arrow schema to field definitions.
// Declared types are derived with TypeOf.
func FieldsFromArrow(s *arrow.Schema) []*Field {
	if s == nil {
		return nil
	}
	fields := make([]*Field, 0, s.NumFields())
	for _, af := range s.Fields() {
		fields = append(fields, &Field{
			Name:     af.Name,
			Column:   af.Name,
			Type:     TypeOf(af.Type),
			DataType: af.Type,
			Nullable: af.Nullable,
		})
	}
	return fields
}
