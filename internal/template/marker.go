package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// markerTable accumulates replacement fragments during expansion. Every
// expansion point is replaced in the working string by a marker token that
// cannot occur in ordinary SQL text, and a final pass substitutes every
// marker with its recorded fragment.
//
// The distilled protocol this implements used a two-byte NUL+index-byte
// marker, capped at 254 live substitutions per query and reserving index 255
// to dodge a collision with a literal '?' byte (see DESIGN.md). This
// reimplementation instead delimits each marker with a NUL byte on both
// sides around a hex-encoded index, as the design notes invite: NUL bytes do
// not occur in ordinary SQL input, so there is no collision to dodge and no
// ceiling on the number of substitutions.
type markerTable struct {
	repl []string
}

var markerPattern = regexp.MustCompile("\x00[0-9a-f]{8}\x00")

// put records s and returns the marker token standing in for it.
func (m *markerTable) put(s string) string {
	m.repl = append(m.repl, s)
	return fmt.Sprintf("\x00%08x\x00", len(m.repl))
}

// substitute performs the final pass, replacing every marker in s with its
// recorded fragment.
func (m *markerTable) substitute(s string) string {
	if !strings.Contains(s, "\x00") {
		return s
	}
	return markerPattern.ReplaceAllStringFunc(s, func(tok string) string {
		idx, err := strconv.ParseUint(tok[1:len(tok)-1], 16, 64)
		if err != nil || idx == 0 || int(idx) > len(m.repl) {
			return tok
		}
		return m.repl[idx-1]
	})
}
