package template

import (
	"strings"

	"sqlpp/internal/errs"
)

// scanLiterals isolates every single-quoted SQL literal in s, replacing each
// (including its surrounding quotes) with a marker so later expansion passes
// cannot mis-parse template syntax that happens to appear inside quoted
// text. Escaped quotes (\') and doubled quotes ('') do not close a literal.
func scanLiterals(s string, m *markerTable) (string, error) {
	if !strings.Contains(s, "'") {
		return s, nil
	}

	var out strings.Builder
	out.Grow(len(s))

	runes := []rune(s)
	i := 0
	n := len(runes)
	for i < n {
		if runes[i] != '\'' {
			out.WriteRune(runes[i])
			i++
			continue
		}

		start := i
		i++ // consume opening quote
		closed := false
		for i < n {
			switch runes[i] {
			case '\\':
				if i+1 < n {
					i += 2
					continue
				}
				i++
			case '\'':
				if i+1 < n && runes[i+1] == '\'' {
					i += 2
					continue
				}
				i++
				closed = true
			default:
				i++
				continue
			}
			if closed {
				break
			}
		}
		if !closed {
			return "", errs.New(errs.KindTemplateSyntax, "unterminated string literal starting at byte offset %d", len(string(runes[:start])))
		}

		literal := string(runes[start:i])
		out.WriteString(m.put(literal))
	}

	return out.String(), nil
}
