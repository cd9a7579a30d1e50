package filter

import (
	"strings"

	"github.com/hugr-lab/filterql/schema"
)

// Component is one (attribute, relation, value) triple.
type Component struct {
	// Attribute is the normalized dotted attribute path.
	Attribute string
	// Source is the attribute path as written.
	Source string
	// Relation is the relational operator or keyword.
	Relation Relation
	// Value is the unquoted scalar value. Empty for list relations.
	Value string
	// Values are the unquoted list items of IN, NOT IN and CONTAINS ALL.
	Values []string
	// Null marks IS / IS NOT with the null marker.
	Null bool
}

// NewComponent validates the value shape against the relation arity.
func NewComponent(attribute string, rel Relation, value Token) (*Component, error) {
	if !rel.Valid() {
		return nil, newError(KindGrammar, string(rel), "unknown relation %q", rel)
	}
	c := &Component{
		Attribute: normalizePath(attribute),
		Source:    strings.TrimSpace(attribute),
		Relation:  rel,
	}

	switch value.Kind {
	case TokenList:
		if !rel.NeedsList() {
			return nil, newError(KindGrammar, attribute, "relation %s on %q takes a single value, not a list", rel, attribute)
		}
		if len(value.Items) == 0 {
			return nil, newError(KindGrammar, attribute, "relation %s on %q needs at least one value", rel, attribute)
		}
		c.Values = make([]string, len(value.Items))
		for i, item := range value.Items {
			c.Values[i] = unquote(item)
		}

	case TokenScalar:
		if rel.NeedsList() {
			return nil, newError(KindGrammar, attribute, "relation %s on %q requires a list value like [a, b]", rel, attribute)
		}
		c.Value = unquote(value.Text)
		if rel.NeedsNull() {
			if !isNullMarker(c.Value) {
				return nil, newError(KindGrammar, attribute, "relation %s on %q only accepts null, got %q", rel, attribute, c.Value)
			}
			c.Null = true
		}

	default:
		return nil, newError(KindStructural, attribute, "relation %s on %q has no value", rel, attribute)
	}
	return c, nil
}

// unquote strips one pair of surrounding double quotes. Inside quotes \"
// and \\ are unescaped; other backslashes are kept. Unquoted text only
// unescapes \".
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return strings.ReplaceAll(s, `\"`, `"`)
	}
	s = s[1 : len(s)-1]
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// normalizePath normalizes every segment of a dotted attribute path.
func normalizePath(path string) string {
	segments := strings.Split(strings.TrimSpace(path), ".")
	for i, seg := range segments {
		segments[i] = schema.NormalizeName(seg)
	}
	return strings.Join(segments, ".")
}

type itemKind int

const (
	itemLeftGroup itemKind = iota + 1
	itemRightGroup
	itemLogical
	itemComponent
)

type item struct {
	kind    itemKind
	logical LogicalOperator
	comp    *Component
}

// Filter is a parsed filter string: group markers, logical operators and
// components in textual order. A Filter is immutable and safe to compile
// against several entities.
type Filter struct {
	input string
	items []item
}

// Parse tokenizes and assembles a filter string.
func Parse(input string, limits Limits) (*Filter, error) {
	tokens, err := Tokenize(input, limits)
	if err != nil {
		return nil, err
	}
	items, err := assemble(tokens)
	if err != nil {
		return nil, err
	}
	if err := checkSequence(items); err != nil {
		return nil, err
	}
	return &Filter{input: input, items: items}, nil
}

// Input returns the original filter string.
func (f *Filter) Input() string {
	return f.input
}

// Components returns the parsed components in textual order.
func (f *Filter) Components() []Component {
	var out []Component
	for _, it := range f.items {
		if it.kind == itemComponent {
			out = append(out, *it.comp)
		}
	}
	return out
}

// assemble groups relation tokens with their attribute and value neighbours.
func assemble(tokens []Token) ([]item, error) {
	items := make([]item, 0, len(tokens))
	consumed := -1

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch t.Kind {
		case TokenLeftGroup:
			items = append(items, item{kind: itemLeftGroup})

		case TokenRightGroup:
			items = append(items, item{kind: itemRightGroup})

		case TokenLogical:
			items = append(items, item{kind: itemLogical, logical: t.Logical})

		case TokenScalar, TokenList:
			if i+1 < len(tokens) && tokens[i+1].Kind == TokenRelation {
				continue
			}
			if t.Kind == TokenScalar && !t.Quoted && strings.ContainsAny(t.Text, " \t") {
				return nil, newError(KindGrammar, t.Text, "no known relation in %q", t.Text)
			}
			return nil, newError(KindStructural, t.String(), "unexpected token %s", t)

		case TokenRelation:
			if i == 0 || i-1 == consumed || tokens[i-1].Kind != TokenScalar {
				return nil, newError(KindStructural, string(t.Relation), "relation %s has no attribute on its left", t.Relation)
			}
			attr := tokens[i-1]
			if attr.Quoted {
				return nil, newError(KindStructural, attr.Text, "attribute %s must not be quoted", attr.Text)
			}
			if i+1 >= len(tokens) || (tokens[i+1].Kind != TokenScalar && tokens[i+1].Kind != TokenList) {
				return nil, newError(KindStructural, attr.Text, "relation %s on %q has no value on its right", t.Relation, attr.Text)
			}
			comp, err := NewComponent(attr.Text, t.Relation, tokens[i+1])
			if err != nil {
				return nil, err
			}
			items = append(items, item{kind: itemComponent, comp: comp})
			i++
			consumed = i
		}
	}
	return items, nil
}

// sequence tracks one group level while checking that conditions and
// logical operators alternate.
type sequence struct {
	terms      int
	lastOp     LogicalOperator
	expectTerm bool
}

// checkSequence reports misplaced logical operators and missing ones
// between conditions. Empty groups are allowed and add no condition.
func checkSequence(items []item) error {
	cur := &sequence{expectTerm: true}
	var stack []*sequence

	for _, it := range items {
		switch it.kind {
		case itemLeftGroup:
			if !cur.expectTerm {
				return newError(KindGrammar, "(", "expected AND or OR before '('")
			}
			stack = append(stack, cur)
			cur = &sequence{expectTerm: true}

		case itemRightGroup:
			if err := cur.closed(); err != nil {
				return err
			}
			if len(stack) == 0 {
				return newError(KindInternal, ")", "')' without an open group")
			}
			parent := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if cur.terms > 0 {
				parent.terms++
				parent.expectTerm = false
			}
			cur = parent

		case itemLogical:
			if cur.expectTerm {
				return newError(KindGrammar, string(it.logical), "%s must follow a condition", it.logical)
			}
			cur.lastOp = it.logical
			cur.expectTerm = true

		case itemComponent:
			if !cur.expectTerm {
				return newError(KindGrammar, it.comp.Attribute, "expected AND or OR before %q", it.comp.Attribute)
			}
			cur.terms++
			cur.expectTerm = false
		}
	}
	return cur.closed()
}

func (s *sequence) closed() error {
	if s.terms > 0 && s.expectTerm {
		return newError(KindGrammar, string(s.lastOp), "%s is not followed by a condition", s.lastOp)
	}
	return nil
}
