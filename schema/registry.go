package schema

import (
	"errors"
	"fmt"
)

// ErrEntityNotFound is returned when a registry lookup fails.
var ErrEntityNotFound = errors.New("entity not found")

// Registry is an immutable set of linked entities.
// Safe for concurrent use once returned by NewRegistry.
type Registry struct {
	entities map[string]Entity
	order    []Entity
}

// NewRegistry registers entities and links every relation to its target.
//
// Linking fills the defaulted relation keys:
//   - to-one: LocalKey = "<relation>_id", ForeignKey = target primary key
//   - to-many: LocalKey = source primary key (ForeignKey is REQUIRED)
//   - through: LocalKey = source primary key, ForeignKey = target primary key
//
// Returns error on duplicate entity names or unknown relation targets.
func NewRegistry(entities ...Entity) (*Registry, error) {
	r := &Registry{
		entities: make(map[string]Entity, len(entities)),
		order:    make([]Entity, 0, len(entities)),
	}
	for _, e := range entities {
		if e == nil {
			return nil, fmt.Errorf("entity cannot be nil")
		}
		if _, dup := r.entities[e.Name()]; dup {
			return nil, fmt.Errorf("duplicate entity %q", e.Name())
		}
		r.entities[e.Name()] = e
		r.order = append(r.order, e)
	}

	for _, e := range r.order {
		for _, rel := range e.Relations() {
			target, ok := r.entities[rel.Target]
			if !ok {
				return nil, fmt.Errorf("entity %s: relation %q: %w: %s", e.Name(), rel.Name, ErrEntityNotFound, rel.Target)
			}
			if err := link(e, rel, target); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func link(source Entity, rel *Relation, target Entity) error {
	switch {
	case rel.Through != nil:
		if rel.LocalKey == "" {
			rel.LocalKey = source.PrimaryKey()
		}
		if rel.ForeignKey == "" {
			rel.ForeignKey = target.PrimaryKey()
		}
		rel.Cardinality = Many
	case rel.Cardinality == Many:
		if rel.LocalKey == "" {
			rel.LocalKey = source.PrimaryKey()
		}
		if rel.ForeignKey == "" {
			return fmt.Errorf("entity %s: relation %q: foreign key is required for to-many relations", source.Name(), rel.Name)
		}
	default:
		if rel.LocalKey == "" {
			rel.LocalKey = rel.Name + "_id"
		}
		if rel.ForeignKey == "" {
			rel.ForeignKey = target.PrimaryKey()
		}
	}
	rel.entity = target
	return nil
}

// Entity returns the named entity or nil.
// The name is tried verbatim first, then normalized.
func (r *Registry) Entity(name string) Entity {
	if e, ok := r.entities[name]; ok {
		return e
	}
	return r.entities[NormalizeName(name)]
}

// Lookup is like Entity but returns ErrEntityNotFound for unknown names.
func (r *Registry) Lookup(name string) (Entity, error) {
	e := r.Entity(name)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, name)
	}
	return e, nil
}

// Entities returns all entities in registration order.
func (r *Registry) Entities() []Entity {
	return r.order
}
