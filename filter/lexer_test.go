package filter

import (
	"errors"
	"strings"
	"testing"
)

func tokenKinds(toks []Token) []TokenKind {
	kinds := make([]TokenKind, len(toks))
	for i, t := range toks {
		kinds[i] = t.Kind
	}
	return kinds
}

func equalKinds(a, b []TokenKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenize(t *testing.T) {
	S, R, L := TokenScalar, TokenRelation, TokenLogical
	tests := []struct {
		name  string
		input string
		want  []TokenKind
	}{
		{"comparison", `rating > 3`, []TokenKind{S, R, S}},
		{"unpadded operator", `rating>3`, []TokenKind{S, R, S}},
		{"quoted value", `name = "Pasta Bake"`, []TokenKind{S, R, S}},
		{"logical", `a = 1 AND b = 2 or c = 3`, []TokenKind{S, R, S, L, S, R, S, L, S, R, S}},
		{"groups", `((a = 1) OR (b = 2))`, []TokenKind{
			TokenLeftGroup, TokenLeftGroup, S, R, S, TokenRightGroup, L,
			TokenLeftGroup, S, R, S, TokenRightGroup, TokenRightGroup,
		}},
		{"list", `tags IN [a, b]`, []TokenKind{S, R, TokenList}},
		{"null test", `rating IS NOT NULL`, []TokenKind{S, R, S}},
		{"trailing keyword", `tags CONTAINS ALL [a]`, []TokenKind{S, R, TokenList}},
		{"logical between groups", `(a = 1)AND(b = 2)`, []TokenKind{
			TokenLeftGroup, S, R, S, TokenRightGroup, L, TokenLeftGroup, S, R, S, TokenRightGroup,
		}},
		{"empty", ``, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.input, Limits{})
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", tt.input, err)
			}
			if got := tokenKinds(toks); !equalKinds(got, tt.want) {
				t.Errorf("Tokenize(%q) kinds = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeRelationDetection(t *testing.T) {
	tests := []struct {
		input string
		want  Relation
	}{
		{`rating >= 3`, GreaterEqual},
		{`rating<=3`, LessEqual},
		{`rating<>3`, NotEqual},
		{`rating < 3`, Less},
		{`name = x`, Equal},
		{`rating is null`, Is},
		{`rating IS NOT null`, IsNot},
		{`tags in [a]`, In},
		{`tags NOT IN [a]`, NotIn},
		{`tags Contains All [a]`, ContainsAll},
		{`name LIKE "%a%"`, Like},
		{`name not like "%a%"`, NotLike},
		{`name = a>b`, Equal},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Tokenize(tt.input, Limits{})
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			var got Relation
			for _, tok := range toks {
				if tok.Kind == TokenRelation {
					got = tok.Relation
					break
				}
			}
			if got != tt.want {
				t.Errorf("relation = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenizeQuotes(t *testing.T) {
	toks, err := Tokenize(`name = "a (b) AND [c]" AND slug = "say \"hi\""`, Limits{})
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(toks) != 7 {
		t.Fatalf("got %d tokens, want 7: %v", len(toks), toks)
	}
	if !toks[2].Quoted || toks[2].Text != `"a (b) AND [c]"` {
		t.Errorf("quoted token = %+v", toks[2])
	}
	if toks[6].Text != `"say \"hi\""` {
		t.Errorf("escaped quote token = %q", toks[6].Text)
	}
}

func TestTokenizeLists(t *testing.T) {
	toks, err := Tokenize(`tags IN [bread and butter, "b c" , d] OR x = 1`, Limits{})
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	list := toks[2]
	if list.Kind != TokenList {
		t.Fatalf("token 2 = %v, want list", list.Kind)
	}
	want := []string{"bread and butter", `"b c"`, "d"}
	if strings.Join(list.Items, "|") != strings.Join(want, "|") {
		t.Errorf("items = %q, want %q", list.Items, want)
	}
	if toks[3].Kind != TokenLogical || toks[3].Logical != Or {
		t.Errorf("token 3 = %v, want OR", toks[3])
	}
}

func TestTokenizeWholeWordLogical(t *testing.T) {
	toks, err := Tokenize(`brand = android`, Limits{})
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(toks) != 3 || toks[2].Text != "android" {
		t.Errorf("tokens = %v, want [brand = android]", toks)
	}
}

func TestTokenizeStructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing close", `(a = 1`},
		{"missing open", `a = 1)`},
		{"reversed", `)a = 1(`},
		{"unterminated quote", `name = "abc`},
		{"unterminated list", `tags IN [a, b`},
		{"nested list", `tags IN [a, [b]]`},
		{"stray bracket", `tags IN a]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input, Limits{})
			if err == nil {
				t.Fatalf("Tokenize(%q) expected error", tt.input)
			}
			if KindOf(err) != KindStructural {
				t.Errorf("kind = %v, want structural (%v)", KindOf(err), err)
			}
			if !errors.Is(err, ErrInvalidFilter) {
				t.Error("error should match ErrInvalidFilter")
			}
		})
	}
}

func TestTokenizeUnbalancedMessage(t *testing.T) {
	_, err := Tokenize(`((a = 1)`, Limits{})
	if err == nil || err.Error() != "invalid filter: parentheses are unbalanced" {
		t.Errorf("error = %v", err)
	}
}

func TestTokenizeBalancedNesting(t *testing.T) {
	for depth := 1; depth <= 10; depth++ {
		input := strings.Repeat("(", depth) + "a = 1" + strings.Repeat(")", depth)
		toks, err := Tokenize(input, Limits{})
		if err != nil {
			t.Fatalf("depth %d: error = %v", depth, err)
		}
		open, closed := 0, 0
		for _, tok := range toks {
			switch tok.Kind {
			case TokenLeftGroup:
				open++
			case TokenRightGroup:
				closed++
			}
		}
		if open != depth || closed != depth {
			t.Errorf("depth %d: got %d open, %d closed", depth, open, closed)
		}
	}
}

func TestTokenizeLimits(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		limits Limits
	}{
		{"depth", strings.Repeat("(", 5) + "a = 1" + strings.Repeat(")", 5), Limits{MaxDepth: 4}},
		{"tokens", strings.Repeat("a = 1 AND ", 10) + "a = 1", Limits{MaxTokens: 20}},
		{"length", `name = "` + strings.Repeat("x", 100) + `"`, Limits{MaxLength: 64}},
		{"default depth", strings.Repeat("(", DefaultMaxDepth+1) + "a = 1" + strings.Repeat(")", DefaultMaxDepth+1), Limits{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input, tt.limits)
			if KindOf(err) != KindLimit {
				t.Errorf("error = %v, want limit error", err)
			}
		})
	}
}
