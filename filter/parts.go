package filter

import (
	"fmt"
	"strings"
)

// Part is the structured projection of one component with its adjacent
// parentheses and preceding logical operator.
type Part struct {
	LeftParenthesis    string `json:"leftParenthesis,omitempty" msgpack:"left_parenthesis,omitempty"`
	RightParenthesis   string `json:"rightParenthesis,omitempty" msgpack:"right_parenthesis,omitempty"`
	LogicalOperator    string `json:"logicalOperator,omitempty" msgpack:"logical_operator,omitempty"`
	AttributeName      string `json:"attributeName" msgpack:"attribute_name"`
	RelationalOperator string `json:"relationalOperator" msgpack:"relational_operator"`
	// Value is a string for scalar relations and []string for list relations.
	Value any `json:"value" msgpack:"value"`
}

// Parts projects the parsed filter into one Part per component.
// Opening parentheses attach to the next component, closing ones to the
// previous component. Empty groups cancel out.
func (f *Filter) Parts() []Part {
	var (
		parts   []Part
		left    string
		logical string
	)
	for _, it := range f.items {
		switch it.kind {
		case itemLeftGroup:
			left += "("
		case itemRightGroup:
			if left != "" {
				left = left[:len(left)-1]
				continue
			}
			if len(parts) > 0 {
				parts[len(parts)-1].RightParenthesis += ")"
			}
		case itemLogical:
			logical = string(it.logical)
		case itemComponent:
			p := Part{
				LeftParenthesis:    left,
				LogicalOperator:    logical,
				AttributeName:      it.comp.Attribute,
				RelationalOperator: string(it.comp.Relation),
			}
			if it.comp.Relation.NeedsList() {
				p.Value = append([]string(nil), it.comp.Values...)
			} else {
				p.Value = it.comp.Value
			}
			parts = append(parts, p)
			left, logical = "", ""
		}
	}
	return parts
}

// String rebuilds a normalized filter string.
func (f *Filter) String() string {
	return FormatParts(f.Parts())
}

// FormatParts rebuilds a filter string from parts. Parsing the result
// yields the same parts.
func FormatParts(parts []Part) string {
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteByte(' ')
			if p.LogicalOperator != "" {
				sb.WriteString(p.LogicalOperator)
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(p.LeftParenthesis)
		sb.WriteString(p.AttributeName)
		sb.WriteByte(' ')
		sb.WriteString(p.RelationalOperator)
		sb.WriteByte(' ')
		sb.WriteString(formatPartValue(Relation(p.RelationalOperator), p.Value))
		sb.WriteString(p.RightParenthesis)
	}
	return sb.String()
}

func formatPartValue(rel Relation, v any) string {
	switch val := v.(type) {
	case []string:
		return formatList(val)
	case []any:
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = fmt.Sprint(item)
		}
		return formatList(items)
	case nil:
		return "NULL"
	case string:
		if rel.NeedsNull() && isNullMarker(val) {
			return "NULL"
		}
		return quote(val)
	default:
		return quote(fmt.Sprint(val))
	}
}

func formatList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = quote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}
