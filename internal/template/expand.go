package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sqlpp/internal/errs"
	"sqlpp/internal/quote"
)

// Mode selects whether named/positional parameter sites render as quoted
// SQL literals (Literal) or as driver placeholders with a side channel that
// carries the bound values in call order (Prepare).
type Mode int

const (
	// Literal renders parameter values as inline, quoted SQL literals.
	Literal Mode = iota
	// Prepare renders parameter values as '?' placeholders and returns the
	// bound values in the order the placeholders appear.
	Prepare
)

// Result is the outcome of Render/PrepareQuery: the expanded SQL text and,
// in Prepare mode, the ordered list of bound values for the driver.
type Result struct {
	SQL    string
	Values []any
	// ParamKeys names each entry in Values, in the same order: the named
	// parameter's key for a ::name/:name site, or the stringified
	// zero-based argument index for a ??/? site. Populated only in
	// Prepare mode; used by a caller that needs to rebind Values against a
	// different value source on a later execution of the same statement
	// shape (internal/command.PreparedStatement).
	ParamKeys []string
}

var fastPathChars = "#$:?{"

// Render expands src against env in Literal mode, returning the final SQL
// text with every parameter site substituted as a quoted literal.
func Render(src string, env *Environment) (string, error) {
	res, err := run(src, env, Literal)
	if err != nil {
		return "", err
	}
	return res.SQL, nil
}

// PrepareQuery expands src against env in Prepare mode, returning SQL text
// with '?' placeholders and the ordered slice of values to bind to them.
func PrepareQuery(src string, env *Environment) (*Result, error) {
	return run(src, env, Prepare)
}

func run(src string, env *Environment, mode Mode) (*Result, error) {
	// Fast path: nothing that could be template syntax is present, no
	// line-comment introducer is present, and no quote that the literal
	// scanner would have to check, so no pass can change anything or fail.
	if !strings.ContainsAny(src, fastPathChars) && !strings.Contains(src, "--") && !strings.Contains(src, "'") {
		return &Result{SQL: src}, nil
	}

	m := &markerTable{}

	withLiterals, err := scanLiterals(src, m)
	if err != nil {
		return nil, err
	}

	preprocessed, err := preprocess(withLiterals, env, m)
	if err != nil {
		return nil, err
	}

	expanded, err := expandMacros(preprocessed, env, m)
	if err != nil {
		return nil, err
	}

	expanded, err = expandConstants(expanded, env)
	if err != nil {
		return nil, err
	}

	expanded, err = expandVerbatim(expanded, env)
	if err != nil {
		return nil, err
	}

	hasNamed := namedParamPattern.MatchString(expanded)
	hasPositional := positionalParamPattern.MatchString(expanded)
	if hasNamed && hasPositional {
		return nil, errs.New(errs.KindTemplateSyntax, "query mixes named and positional parameters")
	}

	var values []any
	var keys []string
	switch {
	case hasNamed:
		expanded, values, keys, err = expandNamed(expanded, env, mode)
	case hasPositional:
		expanded, values, keys, err = expandPositional(expanded, env, mode)
	}
	if err != nil {
		return nil, err
	}

	final := m.substitute(expanded)
	return &Result{SQL: final, Values: values, ParamKeys: keys}, nil
}

var macroCallPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)\(`)

// expandMacros replaces every $name(args) call with the result of invoking
// the registered macro. Arguments are split on top-level commas (commas
// inside nested parens are not split points) and are not themselves
// recursively scanned for further macro calls: a macro argument that
// contains another $name(...) call is passed through to the macro verbatim,
// matching the documented limitation that macro expansion is not
// nestable.
func expandMacros(s string, env *Environment, m *markerTable) (string, error) {
	for {
		loc := macroCallPattern.FindStringSubmatchIndex(s)
		if loc == nil {
			return s, nil
		}
		name := s[loc[2]:loc[3]]
		openParen := loc[1] - 1
		closeParen, err := matchParen(s, openParen)
		if err != nil {
			return "", err
		}

		fn, ok := env.Macros[name]
		if !ok {
			return "", errs.New(errs.KindTemplateSyntax, "undefined macro %q", name)
		}

		argsSrc := s[openParen+1 : closeParen]
		rawArgs := splitTopLevel(argsSrc)

		// Each argument is expanded, unquoted, by the named-parameter rule
		// alone before the macro runs -- a literal identifier like "t" passes
		// through untouched, while a ":name" or "::name" site inside an
		// argument is resolved against env.Params.
		args := make([]string, len(rawArgs))
		for i, a := range rawArgs {
			resolved, _, _, err := expandNamed(a, env, Literal)
			if err != nil {
				return "", err
			}
			args[i] = resolved
		}

		result, err := fn(args...)
		if err != nil {
			return "", errs.Wrap(errs.KindTemplateSyntax, err, "macro %q failed", name)
		}

		token := m.put(result)
		s = s[:loc[0]] + token + s[closeParen+1:]
	}
}

// matchParen returns the index of the ')' matching the '(' at open.
func matchParen(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, errs.New(errs.KindTemplateSyntax, "unmatched '(' in macro call")
}

// splitTopLevel splits s on commas that are not nested inside parens,
// trimming surrounding whitespace from each piece. An all-blank argument
// list yields no arguments.
func splitTopLevel(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}

var constantPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandConstants replaces every $name site (not followed by '(', which
// would make it a macro call already consumed by expandMacros) with its
// value from env.Defines.
func expandConstants(s string, env *Environment) (string, error) {
	var outErr error
	out := constantPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1:]
		val, ok := env.Defines[name]
		if !ok {
			outErr = errs.New(errs.KindTemplateSyntax, "undefined constant %q", name)
			return match
		}
		return val
	})
	if outErr != nil {
		return "", outErr
	}
	return out, nil
}

var verbatimPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandVerbatim replaces every {name} site with the raw string form of
// env.Params[name], inserted without quoting -- used for fragments such as
// a column or table name supplied as a parameter.
func expandVerbatim(s string, env *Environment) (string, error) {
	var outErr error
	out := verbatimPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1 : len(match)-1]
		val, ok := env.Params[name]
		if !ok {
			outErr = errs.New(errs.KindTemplateSyntax, "undefined verbatim parameter %q", name)
			return match
		}
		if s, ok := val.(string); ok {
			return s
		}
		return stringify(val)
	})
	if outErr != nil {
		return "", outErr
	}
	return out, nil
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

var namedParamPattern = regexp.MustCompile(`::?[A-Za-z_][A-Za-z0-9_]*(?::[A-Za-z_][A-Za-z0-9_]*)*`)
var positionalParamPattern = regexp.MustCompile(`\?\??`)

// expandNamed replaces every ::name or :name(:suffix)* site with its bound
// value. "::name" looks up name directly in env.Params and renders it as a
// quoted identifier via the quoting service's identifier quoter. ":name" (or
// ":name:suffix..." composed into a dotted "name.suffix..." key) renders as
// a quoted value in Literal mode, or as a '?' placeholder with the value
// appended to the returned bind list in Prepare mode.
func expandNamed(s string, env *Environment, mode Mode) (string, []any, []string, error) {
	var values []any
	var keys []string
	var outErr error
	out := namedParamPattern.ReplaceAllStringFunc(s, func(match string) string {
		identifier := strings.HasPrefix(match, "::")

		var key string
		if identifier {
			key = match[2:]
		} else {
			key = strings.ReplaceAll(match[1:], ":", ".")
		}

		val, ok := env.Params[key]
		if !ok {
			outErr = errs.New(errs.KindTemplateSyntax, "undefined named parameter %q", key)
			return match
		}

		if identifier {
			name, ok := val.(string)
			if !ok {
				outErr = errs.New(errs.KindTemplateSyntax, "named identifier parameter %q is not a string", key)
				return match
			}
			return quote.Identifier(name, env.Engine)
		}

		if mode == Prepare {
			values = append(values, val)
			keys = append(keys, key)
			return "?"
		}
		lit, err := quote.Value(val, env.Engine)
		if err != nil {
			outErr = err
			return match
		}
		return lit
	})
	if outErr != nil {
		return "", nil, nil, outErr
	}
	return out, values, keys, nil
}

// expandPositional replaces every "??" or "?" site with the next value from
// env.Args, in the order the sites appear. "??" renders its argument as a
// quoted identifier; "?" renders as a quoted value in Literal mode, or as a
// '?' placeholder with the value appended to the bind list in Prepare mode.
// Both forms draw from the same positional counter.
func expandPositional(s string, env *Environment, mode Mode) (string, []any, []string, error) {
	var values []any
	var keys []string
	idx := 0
	var outErr error
	out := positionalParamPattern.ReplaceAllStringFunc(s, func(match string) string {
		if idx >= len(env.Args) {
			outErr = errs.New(errs.KindTemplateSyntax, "not enough positional arguments for query")
			return match
		}
		val := env.Args[idx]
		thisIdx := idx
		idx++

		if match == "??" {
			name, ok := val.(string)
			if !ok {
				outErr = errs.New(errs.KindTemplateSyntax, "positional identifier argument at index %d is not a string", thisIdx)
				return match
			}
			return quote.Identifier(name, env.Engine)
		}

		if mode == Prepare {
			values = append(values, val)
			keys = append(keys, strconv.Itoa(thisIdx))
			return "?"
		}
		lit, err := quote.Value(val, env.Engine)
		if err != nil {
			outErr = err
			return match
		}
		return lit
	})
	if outErr != nil {
		return "", nil, nil, outErr
	}
	return out, values, keys, nil
}
