package filter

import "strings"

// TokenKind tags a lexer token.
type TokenKind int

const (
	TokenLeftGroup TokenKind = iota + 1
	TokenRightGroup
	TokenLogical
	TokenRelation
	TokenScalar
	TokenList
)

func (k TokenKind) String() string {
	switch k {
	case TokenLeftGroup:
		return "("
	case TokenRightGroup:
		return ")"
	case TokenLogical:
		return "logical"
	case TokenRelation:
		return "relation"
	case TokenScalar:
		return "scalar"
	case TokenList:
		return "list"
	}
	return "unknown"
}

// Token is one lexical unit of a filter string.
type Token struct {
	Kind TokenKind

	// Text is the raw scalar text. Quoted scalars keep their quotes.
	Text string
	// Quoted marks a scalar delimited by double quotes.
	Quoted bool
	// Items holds the trimmed list items of a TokenList.
	Items []string
	// Logical is set for TokenLogical.
	Logical LogicalOperator
	// Relation is set for TokenRelation.
	Relation Relation
}

func (t Token) String() string {
	switch t.Kind {
	case TokenLeftGroup, TokenRightGroup:
		return t.Kind.String()
	case TokenLogical:
		return string(t.Logical)
	case TokenRelation:
		return string(t.Relation)
	case TokenList:
		return "[" + strings.Join(t.Items, ",") + "]"
	}
	return t.Text
}

// LogicalOperator combines sibling predicates.
type LogicalOperator string

const (
	And LogicalOperator = "AND"
	Or  LogicalOperator = "OR"
)

func logicalOf(word string) (LogicalOperator, bool) {
	switch {
	case strings.EqualFold(word, "and"):
		return And, true
	case strings.EqualFold(word, "or"):
		return Or, true
	}
	return "", false
}
