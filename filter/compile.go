package filter

import (
	"strings"

	"github.com/hugr-lab/filterql/schema"
)

// Options configures compilation.
type Options struct {
	// Overrides maps terminal field names to SQL expressions used instead
	// of the stored column (e.g., computed aggregates).
	// OPTIONAL: nil means no overrides.
	Overrides map[string]string

	// JoinRecorder is called for every relationship traversed.
	// OPTIONAL.
	JoinRecorder JoinRecorder

	// Limits bounds input size. OPTIONAL: zero fields use defaults.
	Limits Limits
}

// Compile parses input and compiles it against root.
//
// Example:
//
//	pred, err := filter.Compile(recipes, `category.name IN ["Dinner", "Lunch"] AND rating > 3`, nil)
//	if err != nil {
//	    return err // *filter.Error, errors.Is(err, filter.ErrInvalidFilter)
//	}
//	where := pred.SQL()
func Compile(root schema.Entity, input string, opts *Options) (*Predicate, error) {
	if opts == nil {
		opts = &Options{}
	}
	f, err := Parse(input, opts.Limits)
	if err != nil {
		return nil, err
	}
	return f.Compile(root, opts)
}

// group is one open parenthesis level.
type group struct {
	leaves     []Expression
	ops        []LogicalOperator
	expectTerm bool
}

func newGroup() *group {
	return &group{expectTerm: true}
}

// consolidate folds the group's leaves with its operators in textual
// order, left to right. An empty group yields nil.
func (g *group) consolidate() (Expression, error) {
	if len(g.leaves) == 0 {
		return nil, nil
	}
	if len(g.ops) != len(g.leaves)-1 {
		return nil, newError(KindGrammar, string(g.ops[len(g.ops)-1]), "%s is not followed by a condition", g.ops[len(g.ops)-1])
	}
	expr := g.leaves[0]
	for i, op := range g.ops {
		expr = &Conjunction{Op: op, Left: expr, Right: g.leaves[i+1]}
	}
	return expr, nil
}

type compiler struct {
	root  schema.Entity
	opts  *Options
	joins joinSet
	stack []*group
	cur   *group
}

// Compile compiles the parsed filter against root.
func (f *Filter) Compile(root schema.Entity, opts *Options) (*Predicate, error) {
	if root == nil {
		return nil, newError(KindSchema, "", "no entity to filter")
	}
	if opts == nil {
		opts = &Options{}
	}

	c := &compiler{root: root, opts: opts, cur: newGroup()}
	for _, it := range f.items {
		if err := c.step(it); err != nil {
			return nil, err
		}
	}
	if len(c.stack) > 0 {
		return nil, newError(KindInternal, f.input, "%d groups left open", len(c.stack))
	}

	expr, err := c.cur.consolidate()
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, newError(KindGrammar, f.input, "filter is empty")
	}

	return &Predicate{
		Entity: root,
		Alias:  root.Name(),
		Root:   expr,
		Joins:  c.joins.joins,
		Filter: f,
	}, nil
}

func (c *compiler) step(it item) error {
	switch it.kind {
	case itemLeftGroup:
		if !c.cur.expectTerm {
			return newError(KindGrammar, "(", "expected AND or OR before '('")
		}
		c.stack = append(c.stack, c.cur)
		c.cur = newGroup()

	case itemRightGroup:
		if len(c.stack) == 0 {
			return newError(KindInternal, ")", "')' without an open group")
		}
		expr, err := c.cur.consolidate()
		if err != nil {
			return err
		}
		parent := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		if expr != nil {
			parent.leaves = append(parent.leaves, expr)
			parent.expectTerm = false
		}
		c.cur = parent

	case itemLogical:
		if c.cur.expectTerm {
			return newError(KindGrammar, string(it.logical), "%s must follow a condition", it.logical)
		}
		c.cur.ops = append(c.cur.ops, it.logical)
		c.cur.expectTerm = true

	case itemComponent:
		if !c.cur.expectTerm {
			return newError(KindGrammar, it.comp.Attribute, "expected AND or OR before %q", it.comp.Attribute)
		}
		leaf, err := c.leaf(it.comp)
		if err != nil {
			return err
		}
		c.cur.leaves = append(c.cur.leaves, leaf)
		c.cur.expectTerm = false
	}
	return nil
}

// leaf resolves, coerces and builds the predicate for one component.
func (c *compiler) leaf(comp *Component) (Expression, error) {
	rf, err := Resolve(c.root, comp.Source, c.opts.Overrides, c.opts.JoinRecorder)
	if err != nil {
		return nil, err
	}
	col := rf.Column()
	isString := col.Type == schema.TypeString

	switch {
	case comp.Null:
		c.joins.add(rf.Joins)
		return &NullTest{Column: col, Negate: comp.Relation == IsNot}, nil

	case comp.Relation == Like || comp.Relation == NotLike:
		if !isString {
			return nil, newError(KindType, comp.Attribute, "%s requires a string field, %q is %s", comp.Relation, comp.Attribute, col.Type)
		}
		c.joins.add(rf.Joins)
		return &LikeMatch{Column: col, Pattern: strings.ToLower(comp.Value), Negate: comp.Relation == NotLike}, nil

	case comp.Relation.NeedsList():
		values, err := coerceAll(col.Type, comp.Values)
		if err != nil {
			return nil, err
		}
		col.Fold = isString
		return c.listLeaf(comp.Relation, rf, col, values), nil
	}

	v, err := Coerce(col.Type, comp.Value)
	if err != nil {
		return nil, err
	}
	col.Fold = isString
	c.joins.add(rf.Joins)
	return &Comparison{Column: col, Op: comp.Relation, Value: v}, nil
}

func (c *compiler) listLeaf(rel Relation, rf *ResolvedField, col ColumnRef, values []any) Expression {
	switch rel {
	case NotIn:
		if len(rf.Joins) == 0 {
			return &InList{Column: col, Values: values, Negate: true}
		}
		// Exclude the root entity when any related row matches.
		return &Membership{
			Entity:    c.root,
			Alias:     c.root.Name(),
			Joins:     rf.Joins,
			Condition: &InList{Column: col, Values: values},
			Negate:    true,
		}

	case ContainsAll:
		var expr Expression
		for _, v := range values {
			m := &Membership{
				Entity:    c.root,
				Alias:     c.root.Name(),
				Joins:     rf.Joins,
				Condition: &Comparison{Column: col, Op: Equal, Value: v},
			}
			if expr == nil {
				expr = m
				continue
			}
			expr = &Conjunction{Op: And, Left: expr, Right: m}
		}
		return expr
	}

	c.joins.add(rf.Joins)
	return &InList{Column: col, Values: values}
}
