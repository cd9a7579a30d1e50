// Package filter compiles filter strings into predicates over a schema.
//
// A filter is a flat expression of components joined by AND / OR, with
// optional parentheses:
//
//	category.name IN ["Dinner", "Lunch"] AND (rating > 3 OR tags.name = "quick")
//
// Compilation runs in stages:
//   - Tokenize splits the string into group, logical, relation, scalar and list tokens
//   - Parse assembles (attribute, relation, value) components
//   - Resolve walks dotted attribute paths across schema relations, recording joins
//   - Coerce converts raw values to the declared field type
//   - Compile folds components into a predicate tree, group by group
//
// # Basic Usage
//
//	pred, err := filter.Compile(recipes, `user.household.name = "Smith"`, nil)
//	if err != nil {
//	    return err
//	}
//	sql := "SELECT recipes.* FROM recipes AS recipes"
//	for _, clause := range filter.JoinClauses(pred.Joins) {
//	    sql += " LEFT JOIN " + clause
//	}
//	sql += " WHERE " + pred.SQL()
//
// # Operators
//
// AND and OR have no precedence. Operators inside one group apply in
// textual order, so "a AND b OR c" means "(a AND b) OR c".
//
// # Relations
//
//	=  <>  >  <  >=  <=          single value
//	IS / IS NOT                  null or none only
//	IN / NOT IN / CONTAINS ALL   list value [a, b]
//	LIKE / NOT LIKE              string fields only, case-insensitive
//
// NOT IN on a field reached through a relation excludes the root entity when
// any related row matches. CONTAINS ALL requires a related row for every value.
//
// # Strings
//
// String comparisons are case-insensitive: values are lower-cased and the
// column is compared as lower(column).
//
// # Errors
//
// Every failure is a *Error; errors.Is(err, ErrInvalidFilter) holds for all
// of them and Kind tells the failure class.
//
// # Serialization
//
// Filter.Parts returns one Part per component with adjacent parentheses and
// the preceding logical operator. FormatParts turns parts back into a filter
// string.
package filter
