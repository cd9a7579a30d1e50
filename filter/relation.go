package filter

import "strings"

// Relation is a relational operator or keyword.
type Relation string

const (
	Equal        Relation = "="
	NotEqual     Relation = "<>"
	Greater      Relation = ">"
	Less         Relation = "<"
	GreaterEqual Relation = ">="
	LessEqual    Relation = "<="

	Is          Relation = "IS"
	IsNot       Relation = "IS NOT"
	In          Relation = "IN"
	NotIn       Relation = "NOT IN"
	ContainsAll Relation = "CONTAINS ALL"
	Like        Relation = "LIKE"
	NotLike     Relation = "NOT LIKE"
)

// operators are tried longest first at every position.
var operators = []Relation{GreaterEqual, LessEqual, NotEqual, Equal, Greater, Less}

// keywords are tried longest first (by word count) at every word.
var keywords = []Relation{ContainsAll, NotLike, NotIn, IsNot, Like, In, Is}

// IsKeyword reports whether r is a word keyword rather than a symbol.
func (r Relation) IsKeyword() bool {
	switch r {
	case Is, IsNot, In, NotIn, ContainsAll, Like, NotLike:
		return true
	}
	return false
}

// NeedsList reports whether r takes a list value.
func (r Relation) NeedsList() bool {
	return r == In || r == NotIn || r == ContainsAll
}

// NeedsNull reports whether r takes the null marker.
func (r Relation) NeedsNull() bool {
	return r == Is || r == IsNot
}

// Valid reports whether r is a known relation.
func (r Relation) Valid() bool {
	for _, op := range operators {
		if r == op {
			return true
		}
	}
	return r.IsKeyword()
}

// isNullMarker reports whether an unquoted value is the null marker.
func isNullMarker(v string) bool {
	return strings.EqualFold(v, "null") || strings.EqualFold(v, "none")
}

// findOperator returns the position and operator of the first symbolic
// relation in s, preferring the longest match at that position.
func findOperator(s string) (int, Relation) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '=', '<', '>':
		default:
			continue
		}
		for _, op := range operators {
			if strings.HasPrefix(s[i:], string(op)) {
				return i, op
			}
		}
	}
	return -1, ""
}

// splitRelation detects a relation inside an unquoted piece of text and
// returns the resulting scalar and relation tokens.
//
// Operators are tried before keywords. Operators need no surrounding
// whitespace; keywords are whitespace delimited and case-insensitive. Only
// the first relation is split out, so the rest of the piece stays a value.
func splitRelation(piece string) []Token {
	if idx, op := findOperator(piece); idx >= 0 {
		var toks []Token
		if left := strings.TrimSpace(piece[:idx]); left != "" {
			toks = append(toks, Token{Kind: TokenScalar, Text: left})
		}
		toks = append(toks, Token{Kind: TokenRelation, Relation: op})
		if right := strings.TrimSpace(piece[idx+len(op):]); right != "" {
			toks = append(toks, Token{Kind: TokenScalar, Text: right})
		}
		return toks
	}

	words := strings.Fields(piece)
	if len(words) == 0 {
		return nil
	}
	for i := range words {
		for _, kw := range keywords {
			kwWords := strings.Fields(string(kw))
			if !matchWords(words[i:], kwWords) {
				continue
			}
			var toks []Token
			if i > 0 {
				toks = append(toks, Token{Kind: TokenScalar, Text: strings.Join(words[:i], " ")})
			}
			toks = append(toks, Token{Kind: TokenRelation, Relation: kw})
			if rest := words[i+len(kwWords):]; len(rest) > 0 {
				toks = append(toks, Token{Kind: TokenScalar, Text: strings.Join(rest, " ")})
			}
			return toks
		}
	}
	return []Token{{Kind: TokenScalar, Text: strings.TrimSpace(piece)}}
}

func matchWords(words, kw []string) bool {
	if len(words) < len(kw) {
		return false
	}
	for i := range kw {
		if !strings.EqualFold(words[i], kw[i]) {
			return false
		}
	}
	return true
}
