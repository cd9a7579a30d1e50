package filter

import (
	"strings"

	"github.com/hugr-lab/filterql/schema"
)

// JoinRecorder is notified once per relationship traversed while
// resolving attribute paths.
type JoinRecorder func(Join)

// aliasSeparator joins relation names into a join alias ("user__household").
const aliasSeparator = "__"

// ResolvedField is a terminal field reached from the root entity.
type ResolvedField struct {
	// Entity owns the field.
	Entity schema.Entity
	// Field is the terminal field with its declared type.
	Field *schema.Field
	// Path is the normalized attribute path.
	Path string
	// Alias is the table alias of Entity.
	Alias string
	// Joins are the relationships traversed, in order.
	Joins []Join
	// Expression is the SQL expression used instead of the stored column.
	// Set from an override or from a computed field.
	Expression string
}

// Column returns the column reference for the resolved field.
func (r *ResolvedField) Column() ColumnRef {
	return ColumnRef{
		Alias:      r.Alias,
		Field:      r.Field.Name,
		Column:     r.Field.Column,
		Expression: r.Expression,
		Type:       r.Field.Type,
	}
}

// Resolve walks a dotted attribute path from root.
//
// Relationship segments advance the current entity; the last segment must be
// a field. overrides maps terminal field names to SQL expressions and wins over
// a field's own Expression. rec, when not nil, is called for every
// relationship traversed.
func Resolve(root schema.Entity, path string, overrides map[string]string, rec JoinRecorder) (*ResolvedField, error) {
	raw := strings.TrimSpace(path)
	path = normalizePath(path)
	segments := strings.Split(path, ".")

	current := root
	alias := root.Name()
	var joins []Join

	for i, seg := range segments {
		last := i == len(segments)-1

		if f := current.Field(seg); f != nil {
			if !last {
				return nil, newError(KindSchema, raw, "invalid attribute path %q: %q is a field of %s, not a relationship", raw, seg, current.Name())
			}
			rf := &ResolvedField{
				Entity:     current,
				Field:      f,
				Path:       path,
				Alias:      alias,
				Joins:      joins,
				Expression: f.Expression,
			}
			if expr, ok := overrides[f.Name]; ok {
				rf.Expression = expr
			}
			return rf, nil
		}

		rel := current.Relation(seg)
		if rel == nil {
			return nil, newError(KindSchema, raw, "invalid attribute path %q: %q does not exist on %s", raw, seg, current.Name())
		}
		if last {
			return nil, newError(KindSchema, raw, "invalid attribute path %q: %q is a relationship of %s, not a field", raw, seg, current.Name())
		}
		target := rel.Entity()
		if target == nil {
			return nil, newError(KindInternal, path, "relationship %q of %s is not linked", seg, current.Name())
		}

		j := Join{
			Path:     strings.Join(segments[:i+1], "."),
			Alias:    strings.Join(segments[:i+1], aliasSeparator),
			From:     alias,
			Relation: rel,
			Entity:   target,
		}
		joins = append(joins, j)
		if rec != nil {
			rec(j)
		}
		current = target
		alias = j.Alias
	}

	// strings.Split never returns an empty slice
	return nil, newError(KindInternal, path, "empty attribute path")
}

// joinSet collects joins deduplicated by path, in first-seen order.
type joinSet struct {
	joins []Join
	seen  map[string]struct{}
}

func (s *joinSet) add(joins []Join) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, j := range joins {
		if _, ok := s.seen[j.Path]; ok {
			continue
		}
		s.seen[j.Path] = struct{}{}
		s.joins = append(s.joins, j)
	}
}
