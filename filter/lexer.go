package filter

import (
	"strings"
)

// Default size limits applied when a Limits field is zero.
const (
	DefaultMaxDepth  = 32
	DefaultMaxTokens = 1024
	DefaultMaxLength = 16 << 10
)

// Limits bounds the work done on a single filter string.
// Zero fields use the package defaults.
type Limits struct {
	// MaxDepth is the maximum parenthesis nesting depth.
	MaxDepth int
	// MaxTokens is the maximum number of lexer tokens.
	MaxTokens int
	// MaxLength is the maximum input length in bytes.
	MaxLength int
}

// DefaultLimits returns the package default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:  DefaultMaxDepth,
		MaxTokens: DefaultMaxTokens,
		MaxLength: DefaultMaxLength,
	}
}

func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxTokens <= 0 {
		l.MaxTokens = DefaultMaxTokens
	}
	if l.MaxLength <= 0 {
		l.MaxLength = DefaultMaxLength
	}
	return l
}

type lexer struct {
	input  string
	limits Limits

	tokens     []Token
	buf        strings.Builder
	depth      int
	unbalanced bool
}

// Tokenize splits a filter string into a flat token sequence.
//
// The scan is a single pass that tracks quote, list and group state:
//   - '(' and ')' outside quotes and lists are group tokens
//   - an unescaped '"' opens a quoted scalar that runs to the next unescaped '"'
//   - '[' ... ']' is a list; its body is split on ',' outside quotes
//   - remaining text is split on whole-word AND / OR, then on the first relation
//
// Parenthesis balance is checked once the whole input has been scanned.
func Tokenize(input string, limits Limits) ([]Token, error) {
	limits = limits.withDefaults()
	if len(input) > limits.MaxLength {
		return nil, newError(KindLimit, "", "filter is %d bytes long, the limit is %d", len(input), limits.MaxLength)
	}

	lx := &lexer{input: input, limits: limits}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.tokens, nil
}

func (lx *lexer) run() error {
	s := lx.input
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			if i > 0 && s[i-1] == '\\' {
				lx.buf.WriteByte(c)
				continue
			}
			if err := lx.flush(); err != nil {
				return err
			}
			end := closingQuote(s, i+1)
			if end < 0 {
				return newError(KindStructural, s[i:], "unterminated quoted string %s", s[i:])
			}
			if err := lx.emit(Token{Kind: TokenScalar, Text: s[i : end+1], Quoted: true}); err != nil {
				return err
			}
			i = end

		case '[':
			if err := lx.flush(); err != nil {
				return err
			}
			rel := strings.IndexAny(s[i+1:], "[]")
			if rel < 0 {
				return newError(KindStructural, s[i:], "unterminated list %s", s[i:])
			}
			end := i + 1 + rel
			if s[end] == '[' {
				return newError(KindStructural, s[i:end+1], "nested lists are not supported")
			}
			if err := lx.emit(Token{Kind: TokenList, Items: splitList(s[i+1 : end])}); err != nil {
				return err
			}
			i = end

		case ']':
			return newError(KindStructural, "]", "unexpected ']' without a matching '['")

		case '(':
			if err := lx.flush(); err != nil {
				return err
			}
			lx.depth++
			if lx.depth > lx.limits.MaxDepth {
				return newError(KindLimit, "", "filter nests deeper than %d groups", lx.limits.MaxDepth)
			}
			if err := lx.emit(Token{Kind: TokenLeftGroup}); err != nil {
				return err
			}

		case ')':
			if err := lx.flush(); err != nil {
				return err
			}
			lx.depth--
			if lx.depth < 0 {
				lx.unbalanced = true
			}
			if err := lx.emit(Token{Kind: TokenRightGroup}); err != nil {
				return err
			}

		default:
			lx.buf.WriteByte(c)
		}
	}

	if err := lx.flush(); err != nil {
		return err
	}
	if lx.unbalanced || lx.depth != 0 {
		return newError(KindStructural, "", "parentheses are unbalanced")
	}
	return nil
}

func (lx *lexer) emit(t Token) error {
	if len(lx.tokens) >= lx.limits.MaxTokens {
		return newError(KindLimit, "", "filter has more than %d tokens", lx.limits.MaxTokens)
	}
	lx.tokens = append(lx.tokens, t)
	return nil
}

// flush turns the pending unquoted text into logical, relation and scalar tokens.
func (lx *lexer) flush() error {
	text := lx.buf.String()
	lx.buf.Reset()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	for _, seg := range splitLogical(text) {
		if seg.logical != "" {
			if err := lx.emit(Token{Kind: TokenLogical, Logical: seg.logical}); err != nil {
				return err
			}
			continue
		}
		for _, t := range splitRelation(seg.text) {
			if err := lx.emit(t); err != nil {
				return err
			}
		}
	}
	return nil
}

type segment struct {
	text    string
	logical LogicalOperator
}

// splitLogical splits unquoted text on whitespace-delimited AND / OR words.
func splitLogical(text string) []segment {
	var out []segment
	start := 0
	i := 0
	for i < len(text) {
		if isSpace(text[i]) {
			i++
			continue
		}
		j := i
		for j < len(text) && !isSpace(text[j]) {
			j++
		}
		if op, ok := logicalOf(text[i:j]); ok {
			if strings.TrimSpace(text[start:i]) != "" {
				out = append(out, segment{text: text[start:i]})
			}
			out = append(out, segment{logical: op})
			start = j
		}
		i = j
	}
	if strings.TrimSpace(text[start:]) != "" {
		out = append(out, segment{text: text[start:]})
	}
	return out
}

// closingQuote returns the index of the next unescaped '"' at or after from.
// Inside quotes a backslash escapes the byte after it.
func closingQuote(s string, from int) int {
	for j := from; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return -1
}

// splitList splits a list body on commas outside double quotes.
func splitList(body string) []string {
	if strings.TrimSpace(body) == "" {
		return []string{}
	}
	var (
		items   []string
		start   int
		inQuote bool
	)
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			if inQuote {
				i++
			}
		case '"':
			if inQuote || i == 0 || body[i-1] != '\\' {
				inQuote = !inQuote
			}
		case ',':
			if !inQuote {
				items = append(items, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	return append(items, strings.TrimSpace(body[start:]))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
