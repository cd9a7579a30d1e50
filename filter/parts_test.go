package filter

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParts(t *testing.T) {
	f, err := Parse(`name = "Pasta" AND (rating > 3 OR tags.name IN [a, "b c"])`, Limits{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	parts := f.Parts()
	if len(parts) != 3 {
		t.Fatalf("got %d parts, want 3: %+v", len(parts), parts)
	}

	if parts[0].AttributeName != "name" || parts[0].RelationalOperator != "=" || parts[0].Value != "Pasta" {
		t.Errorf("parts[0] = %+v", parts[0])
	}
	if parts[0].LogicalOperator != "" || parts[0].LeftParenthesis != "" {
		t.Errorf("parts[0] should have no operator or parenthesis: %+v", parts[0])
	}
	if parts[1].LeftParenthesis != "(" || parts[1].LogicalOperator != "AND" {
		t.Errorf("parts[1] = %+v", parts[1])
	}
	if parts[2].RightParenthesis != ")" || parts[2].LogicalOperator != "OR" {
		t.Errorf("parts[2] = %+v", parts[2])
	}
	values, ok := parts[2].Value.([]string)
	if !ok || strings.Join(values, "|") != "a|b c" {
		t.Errorf("parts[2].Value = %#v", parts[2].Value)
	}
}

func TestPartsNormalizeAttributes(t *testing.T) {
	f, err := Parse(`dateAdded > 2024-01-01 and User.FullName = x`, Limits{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	parts := f.Parts()
	if parts[0].AttributeName != "date_added" {
		t.Errorf("attribute = %q, want date_added", parts[0].AttributeName)
	}
	if parts[1].AttributeName != "user.full_name" {
		t.Errorf("attribute = %q, want user.full_name", parts[1].AttributeName)
	}
	if parts[1].LogicalOperator != "AND" {
		t.Errorf("logical operator = %q, want AND", parts[1].LogicalOperator)
	}
}

func TestPartsJSON(t *testing.T) {
	f, err := Parse(`(rating IS NOT NULL)`, Limits{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	data, err := json.Marshal(f.Parts())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[{"leftParenthesis":"(","rightParenthesis":")","attributeName":"rating","relationalOperator":"IS NOT","value":"NULL"}]`
	if string(data) != want {
		t.Errorf("JSON = %s\nwant   %s", data, want)
	}
}

func TestFormatPartsRoundTrip(t *testing.T) {
	recipes := loadRecipes(t)

	inputs := []string{
		`name = "Pasta" AND (rating > 3 OR tags.name IN [a, "b"])`,
		`((rating > 3))`,
		`(() rating > 3)`,
		`user.household.name = Smith OR description IS null`,
		`tags.slug CONTAINS ALL [quick, easy] AND name NOT LIKE "%soup%"`,
		`(rating > 1 OR rating > 2) AND (slug = x OR slug = y)`,
		`slug = "say \"hi\""`,
		`tags.name NOT IN ["a, b", c] AND public = yes`,
		`name = C:\ AND rating > 3`,
		`slug = "C:\\" OR slug = "a\\\"b"`,
		`tags.name IN [C:\, "x\\", "y\\z"]`,
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			f, err := Parse(input, Limits{})
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			rebuilt := f.String()

			g, err := Parse(rebuilt, Limits{})
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", rebuilt, err)
			}
			if again := g.String(); again != rebuilt {
				t.Errorf("String() not stable:\n%s\n%s", rebuilt, again)
			}

			want, err := f.Compile(recipes, nil)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			got, err := g.Compile(recipes, nil)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", rebuilt, err)
			}
			if got.SQL() != want.SQL() {
				t.Errorf("SQL differs after round trip:\n%s\n%s", want.SQL(), got.SQL())
			}
		})
	}
}

func TestBackslashValues(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`name = C:\`, []string{`C:\`}},
		{`name = "C:\\"`, []string{`C:\`}},
		{`name = "a\\\"b"`, []string{`a\"b`}},
		{`name = "a\nb"`, []string{`a\nb`}},
		{`name IN ["C:\\", "x,\\", d:\]`, []string{`C:\`, `x,\`, `d:\`}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := Parse(tt.input, Limits{})
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			comp := f.Components()[0]
			got := comp.Values
			if !comp.Relation.NeedsList() {
				got = []string{comp.Value}
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("values = %q, want %q", got, tt.want)
			}

			g, err := Parse(f.String(), Limits{})
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", f.String(), err)
			}
			if g.String() != f.String() {
				t.Errorf("String() = %s, want %s", g.String(), f.String())
			}
		})
	}
}

func TestParseOperatorOrder(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{`rating > 3 AND`, "AND is not followed by a condition"},
		{`(rating > 3 OR) AND name = x`, "OR is not followed by a condition"},
		{`rating > 3 AND ()`, "AND is not followed by a condition"},
		{`OR rating > 3`, "must follow a condition"},
		{`(AND rating > 3)`, "must follow a condition"},
		{`name = "a" name = "b"`, "expected AND or OR"},
		{`(rating > 3) (rating < 5)`, "expected AND or OR before '('"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input, Limits{})
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.input)
			}
			if KindOf(err) != KindGrammar {
				t.Errorf("kind = %v, want %v (%v)", KindOf(err), KindGrammar, err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error = %q, want substring %q", err, tt.msg)
			}
		})
	}

	for _, input := range []string{``, `()`, `(() rating > 3)`, `(rating > 3) OR ((name = x))`} {
		if _, err := Parse(input, Limits{}); err != nil {
			t.Errorf("Parse(%q) error = %v", input, err)
		}
	}
}

func TestFormatParts(t *testing.T) {
	parts := []Part{
		{AttributeName: "a", RelationalOperator: "=", Value: "1"},
		{LogicalOperator: "AND", LeftParenthesis: "(", AttributeName: "b", RelationalOperator: ">", Value: "3"},
		{LogicalOperator: "OR", AttributeName: "c", RelationalOperator: "IN", Value: []any{"x", "y"}, RightParenthesis: ")"},
	}
	want := `a = "1" AND (b > "3" OR c IN ["x", "y"])`
	if got := FormatParts(parts); got != want {
		t.Errorf("FormatParts() = %s, want %s", got, want)
	}
}
