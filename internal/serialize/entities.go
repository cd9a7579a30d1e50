// Package serialize encodes registry metadata for the list_entities action.
package serialize

import (
	"fmt"

	"github.com/hugr-lab/filterql/internal/msgpack"
	"github.com/hugr-lab/filterql/schema"
)

// EntityDescription describes one filterable entity.
type EntityDescription struct {
	Name       string                `msgpack:"name"`
	Table      string                `msgpack:"table"`
	PrimaryKey string                `msgpack:"primary_key"`
	Comment    string                `msgpack:"comment,omitempty"`
	Fields     []FieldDescription    `msgpack:"fields"`
	Relations  []RelationDescription `msgpack:"relations,omitempty"`
}

// FieldDescription describes one field of an entity.
type FieldDescription struct {
	Name     string `msgpack:"name"`
	Type     string `msgpack:"type"`
	Nullable bool   `msgpack:"nullable"`
	Computed bool   `msgpack:"computed,omitempty"`
	Comment  string `msgpack:"comment,omitempty"`
}

// RelationDescription describes one relationship of an entity.
type RelationDescription struct {
	Name        string `msgpack:"name"`
	Target      string `msgpack:"target"`
	Cardinality string `msgpack:"cardinality"`
	Through     string `msgpack:"through,omitempty"`
}

// DescribeEntities lists every entity of reg in registration order.
func DescribeEntities(reg *schema.Registry) []EntityDescription {
	entities := reg.Entities()
	out := make([]EntityDescription, 0, len(entities))
	for _, e := range entities {
		d := EntityDescription{
			Name:       e.Name(),
			Table:      e.Table(),
			PrimaryKey: e.PrimaryKey(),
			Comment:    e.Comment(),
		}
		for _, f := range e.Fields() {
			d.Fields = append(d.Fields, FieldDescription{
				Name:     f.Name,
				Type:     f.Type.String(),
				Nullable: f.Nullable,
				Computed: f.Computed(),
				Comment:  f.Comment,
			})
		}
		for _, r := range e.Relations() {
			rd := RelationDescription{
				Name:        r.Name,
				Target:      r.Target,
				Cardinality: r.Cardinality.String(),
			}
			if r.Through != nil {
				rd.Through = r.Through.Table
			}
			d.Relations = append(d.Relations, rd)
		}
		out = append(out, d)
	}
	return out
}

// SerializeEntities encodes the registry description as zstd-compressed MessagePack.
func SerializeEntities(reg *schema.Registry) ([]byte, error) {
	data, err := msgpack.Encode(DescribeEntities(reg))
	if err != nil {
		return nil, err
	}
	return Compress(data)
}

// DeserializeEntities reverses SerializeEntities.
func DeserializeEntities(data []byte) ([]EntityDescription, error) {
	raw, err := Decompress(data)
	if err != nil {
		return nil, err
	}
	var out []EntityDescription
	if err := msgpack.Decode(raw, &out); err != nil {
		return nil, fmt.Errorf("entity description: %w", err)
	}
	return out, nil
}
