package template

import (
	"strings"

	"sqlpp/internal/errs"
)

// preprocess runs the CPP pass: #if/#elif/#else/#endif conditional
// inclusion, line-comment stripping (-- and #, outside of string literals
// and block comments), and blank-line dropping. s must already have had its
// string literals isolated by scanLiterals so that a quoted '#' or '--'
// cannot be mistaken for a directive or comment. Block comments (/* ... */)
// are preserved verbatim -- they carry optimizer hints -- by isolating them
// behind a marker for the duration of the pass, the same way scanLiterals
// isolates quoted text, so their contents can't be mistaken for a directive
// or line comment either.
func preprocess(s string, env *Environment, m *markerTable) (string, error) {
	lines := splitLines(s)

	var out []string
	var stack []ifFrame
	inBlockComment := false

	for lineNo, raw := range lines {
		line, stillInComment := stripBlockComment(raw, inBlockComment, m)
		inBlockComment = stillInComment

		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#if") || strings.HasPrefix(trimmed, "#elif") ||
			strings.HasPrefix(trimmed, "#else") || strings.HasPrefix(trimmed, "#endif") {
			var err error
			stack, out, err = applyDirective(trimmed, stack, out, env, lineNo)
			if err != nil {
				return "", err
			}
			continue
		}

		if !framesActive(stack) {
			continue
		}

		line = stripLineComment(line)
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}

	if len(stack) != 0 {
		return "", errs.New(errs.KindTemplateSyntax, "unterminated #if block (missing #endif)")
	}

	return strings.Join(out, "\n"), nil
}

// ifFrame tracks the state of one nested #if/#elif/#else block: whether any
// branch taken so far in this frame has matched, whether the current branch
// is active, and whether an #else has already been seen (a second #else or
// an #elif after #else is a syntax error).
type ifFrame struct {
	matched bool
	active  bool
	sawElse bool
}

// framesActive reports whether every frame on the stack is currently taking
// its active branch; a single inactive ancestor disables everything nested
// inside it.
func framesActive(stack []ifFrame) bool {
	for _, f := range stack {
		if !f.active {
			return false
		}
	}
	return true
}

func applyDirective(trimmed string, stack []ifFrame, out []string, env *Environment, lineNo int) ([]ifFrame, []string, error) {
	switch {
	case strings.HasPrefix(trimmed, "#if"):
		cond := strings.TrimSpace(trimmed[len("#if"):])
		parentActive := framesActive(stack)
		v := false
		if parentActive {
			result, err := evalExpr(cond, env)
			if err != nil {
				return stack, out, err
			}
			v = truthy(result)
		}
		stack = append(stack, ifFrame{matched: v, active: parentActive && v})
		return stack, out, nil

	case strings.HasPrefix(trimmed, "#elif"):
		if len(stack) == 0 {
			return stack, out, errs.New(errs.KindTemplateSyntax, "#elif without matching #if at line %d", lineNo+1)
		}
		top := &stack[len(stack)-1]
		if top.sawElse {
			return stack, out, errs.New(errs.KindTemplateSyntax, "#elif after #else at line %d", lineNo+1)
		}
		cond := strings.TrimSpace(trimmed[len("#elif"):])
		parentActive := true
		for _, f := range stack[:len(stack)-1] {
			parentActive = parentActive && f.active
		}
		if top.matched || !parentActive {
			top.active = false
			return stack, out, nil
		}
		result, err := evalExpr(cond, env)
		if err != nil {
			return stack, out, err
		}
		top.active = truthy(result)
		top.matched = top.active
		return stack, out, nil

	case strings.HasPrefix(trimmed, "#else"):
		if len(stack) == 0 {
			return stack, out, errs.New(errs.KindTemplateSyntax, "#else without matching #if at line %d", lineNo+1)
		}
		top := &stack[len(stack)-1]
		if top.sawElse {
			return stack, out, errs.New(errs.KindTemplateSyntax, "duplicate #else at line %d", lineNo+1)
		}
		top.sawElse = true
		parentActive := true
		for _, f := range stack[:len(stack)-1] {
			parentActive = parentActive && f.active
		}
		top.active = parentActive && !top.matched
		if top.active {
			top.matched = true
		}
		return stack, out, nil

	case strings.HasPrefix(trimmed, "#endif"):
		if len(stack) == 0 {
			return stack, out, errs.New(errs.KindTemplateSyntax, "#endif without matching #if at line %d", lineNo+1)
		}
		stack = stack[:len(stack)-1]
		return stack, out, nil
	}
	return stack, out, nil
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// stripBlockComment replaces every /* ... */ span in line with a marker
// token, so later passes in this file (directive detection, line-comment
// stripping) see neither the comment's delimiters nor its contents, while
// the original text is restored verbatim by markerTable.substitute once
// expansion finishes. It tracks whether the line opens a block comment that
// continues onto following lines, in which case the unterminated remainder
// is marked too and the next line's call picks up inComment to find the
// close. It does not need to account for quotes since literals have already
// been replaced with NUL markers by scanLiterals before this runs.
func stripBlockComment(line string, inComment bool, m *markerTable) (string, bool) {
	var b strings.Builder
	i := 0
	n := len(line)
	commentStart := -1
	if inComment {
		commentStart = 0
	}
	for i < n {
		if inComment {
			if i+1 < n && line[i] == '*' && line[i+1] == '/' {
				i += 2
				inComment = false
				b.WriteString(m.put(line[commentStart:i]))
				commentStart = -1
				continue
			}
			i++
			continue
		}
		if i+1 < n && line[i] == '/' && line[i+1] == '*' {
			inComment = true
			commentStart = i
			i += 2
			continue
		}
		b.WriteByte(line[i])
		i++
	}
	if inComment {
		b.WriteString(m.put(line[commentStart:n]))
	}
	return b.String(), inComment
}

// stripLineComment trims a trailing "--" or "#" comment from line, whichever
// introducer appears first. Markers (NUL bytes) stand in for any literal
// text, so a bare '#' or "--" found here is always a real comment
// introducer, never quoted text.
func stripLineComment(line string) string {
	cut := len(line)
	if i := strings.Index(line, "--"); i >= 0 && i < cut {
		cut = i
	}
	if i := strings.Index(line, "#"); i >= 0 && i < cut {
		cut = i
	}
	return line[:cut]
}
