package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk schema description.
//
// Example:
//
//	entities:
//	  - name: recipes
//	    fields:
//	      - {name: id, type: uuid}
//	      - {name: name, type: string}
//	      - {name: rating, type: float, nullable: true}
//	    relations:
//	      - {name: user, target: users, local_key: user_id}
//	      - name: tags
//	        target: tags
//	        through: {table: recipes_to_tags, source_key: recipe_id, target_key: tag_id}
type File struct {
	Entities []EntityFile `yaml:"entities"`
}

// EntityFile describes one entity in a schema file.
type EntityFile struct {
	Name       string         `yaml:"name"`
	Table      string         `yaml:"table,omitempty"`
	PrimaryKey string         `yaml:"primary_key,omitempty"`
	Comment    string         `yaml:"comment,omitempty"`
	Fields     []FieldFile    `yaml:"fields"`
	Relations  []RelationFile `yaml:"relations,omitempty"`
}

// FieldFile describes one field in a schema file.
type FieldFile struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Column     string `yaml:"column,omitempty"`
	Expression string `yaml:"expression,omitempty"`
	Nullable   bool   `yaml:"nullable,omitempty"`
	Comment    string `yaml:"comment,omitempty"`
}

// RelationFile describes one relation in a schema file.
// Cardinality is "one" (default) or "many"; relations with Through are many.
type RelationFile struct {
	Name        string       `yaml:"name"`
	Target      string       `yaml:"target"`
	Cardinality string       `yaml:"cardinality,omitempty"`
	LocalKey    string       `yaml:"local_key,omitempty"`
	ForeignKey  string       `yaml:"foreign_key,omitempty"`
	Through     *ThroughFile `yaml:"through,omitempty"`
	Comment     string       `yaml:"comment,omitempty"`
}

// ThroughFile describes an association table in a schema file.
type ThroughFile struct {
	Table     string `yaml:"table"`
	SourceKey string `yaml:"source_key"`
	TargetKey string `yaml:"target_key"`
}

// LoadFile reads a YAML schema file and builds a linked Registry.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a YAML schema description and builds a linked Registry.
func Load(r io.Reader) (*Registry, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return file.Registry()
}

// Registry converts the file description into a linked Registry.
func (f *File) Registry() (*Registry, error) {
	entities := make([]Entity, 0, len(f.Entities))
	for _, ef := range f.Entities {
		def := EntityDef{
			Name:       ef.Name,
			Table:      ef.Table,
			PrimaryKey: ef.PrimaryKey,
			Comment:    ef.Comment,
		}
		for _, ff := range ef.Fields {
			t, err := ParseType(ff.Type)
			if err != nil {
				return nil, fmt.Errorf("entity %s: field %s: %w", ef.Name, ff.Name, err)
			}
			def.Fields = append(def.Fields, &Field{
				Name:       ff.Name,
				Column:     ff.Column,
				Expression: ff.Expression,
				Type:       t,
				Nullable:   ff.Nullable,
				Comment:    ff.Comment,
			})
		}
		for _, rf := range ef.Relations {
			rel := &Relation{
				Name:       rf.Name,
				Target:     rf.Target,
				LocalKey:   rf.LocalKey,
				ForeignKey: rf.ForeignKey,
				Comment:    rf.Comment,
			}
			switch rf.Cardinality {
			case "", "one":
				rel.Cardinality = One
			case "many":
				rel.Cardinality = Many
			default:
				return nil, fmt.Errorf("entity %s: relation %s: unknown cardinality %q", ef.Name, rf.Name, rf.Cardinality)
			}
			if rf.Through != nil {
				rel.Through = &Through{
					Table:     rf.Through.Table,
					SourceKey: rf.Through.SourceKey,
					TargetKey: rf.Through.TargetKey,
				}
			}
			def.Relations = append(def.Relations, rel)
		}

		e, err := NewStaticEntity(def)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return NewRegistry(entities...)
}
