// Package filterql compiles human-written query filter strings into SQL
// predicates over a registry of related entities, and serves them over
// Apache Arrow Flight.
//
// A filter is a sequence of (attribute, relation, value) components joined
// by AND / OR and grouped with parentheses:
//
//	name = "Pasta Bake" AND (rating >= 4 OR tags.slug CONTAINS ALL [quick, easy])
//
// Attribute paths may cross relationships (tags.slug, user.household.name).
// Predicates on to-many relationships keep entity-level semantics: NOT IN
// excludes an entity when any related row matches, and CONTAINS ALL requires
// one related row per value.
//
// # Quick Start
//
//	reg, err := filterql.NewSchemaBuilder().
//	    Entity("tags").
//	        Field("id", schema.TypeUUID).
//	        Field("slug", schema.TypeString).
//	    Entity("recipes").
//	        Field("id", schema.TypeUUID).
//	        Field("name", schema.TypeString).
//	        NullableField("rating", schema.TypeFloat).
//	        ManyToMany("tags", "tags", "recipes_to_tags", "recipe_id", "tag_id").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine, _ := filterql.NewEngine(reg, filterql.EngineOptions{})
//	pred, err := engine.Compile("recipes", `tags.slug IN [quick] AND rating > 3`)
//	if errors.Is(err, filterql.ErrInvalidFilter) {
//	    // report err to the user
//	}
//	where := pred.SQL()
//
// # Flight Service
//
// NewServer registers DoGet (filtered scans from a database/sql DuckDB
// handle), GetFlightInfo, ListFlights and the parse_filter, compile_filter
// and list_entities actions on a grpc.Server. See package flight.
//
// # Packages
//
//   - schema: entities, fields, relationships, YAML schema files
//   - filter: lexer, parser, resolver, coercer, compiler, DuckDB encoder
//   - query: SELECT building with squirrel, Arrow record readers
//   - flight: Arrow Flight handlers
//   - auth: bearer token authentication
package filterql
