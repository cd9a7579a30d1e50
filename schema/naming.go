package schema

import (
	"strings"

	"github.com/gobeam/stringy"
)

// NormalizeName maps a client-facing attribute name to its public
// snake_case identifier ("householdId" → "household_id").
// Names that are already lower snake_case are returned unchanged.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || isSnake(name) {
		return name
	}
	return stringy.New(splitAcronyms(name)).SnakeCase("?", "").ToLower()
}

// splitAcronyms breaks the words stringy keeps together: the end of an
// upper-case run ("HTMLName" → "HTML Name") and a digit followed by a
// capital ("line2Text" → "line2 Text").
func splitAcronyms(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if i > 0 && isUpper(c) {
			prev := s[i-1]
			if isDigit(prev) || (isUpper(prev) && i+1 < len(s) && isLower(s[i+1])) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSnake(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}
