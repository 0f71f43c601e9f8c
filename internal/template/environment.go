// Package template implements the SQL template pipeline: string-literal
// isolation (STR), conditional preprocessing (CPP), and marker-based macro,
// constant, verbatim, and parameter expansion (TPL).
package template

import "sqlpp/internal/quote"

// MacroFunc is a callable macro body, invoked with its already-expanded
// argument strings and returning the raw SQL fragment that replaces the
// call site.
type MacroFunc func(args ...string) (string, error)

// Environment is the transient, per-query state TPL and CPP render against.
// A process may keep one explicit default Environment for convenience, but
// every Render/Prepare call takes one explicitly so behavior is always fully
// reproducible from its inputs (see the design notes on global registries).
type Environment struct {
	// Params is the named-parameter value map, read by #if expressions, by
	// ::name/:name template sites, and by {name} verbatim slots.
	Params map[string]any
	// Args is the ordered positional-argument list, read by ??/? sites.
	Args []any
	// Defines is the process-wide constant table read by $name sites.
	Defines map[string]string
	// Macros is the process-wide macro table read by $name(...) sites.
	Macros map[string]MacroFunc
	// Engine selects the quoting dialect used for value/identifier quoting.
	Engine quote.Engine
}

// NewEnvironment returns an Environment with all maps initialized and Engine
// defaulted to MySQL.
func NewEnvironment() *Environment {
	return &Environment{
		Params:  map[string]any{},
		Args:    nil,
		Defines: map[string]string{},
		Macros:  map[string]MacroFunc{},
		Engine:  quote.MySQL,
	}
}

// Clone returns a shallow copy of env sharing the Defines/Macros tables (they
// are process-wide and immutable by convention) but with a fresh Params map,
// so a caller can derive a per-query environment from a shared default
// without risking cross-query mutation of Params.
func (env *Environment) Clone() *Environment {
	params := make(map[string]any, len(env.Params))
	for k, v := range env.Params {
		params[k] = v
	}
	return &Environment{
		Params:  params,
		Args:    append([]any(nil), env.Args...),
		Defines: env.Defines,
		Macros:  env.Macros,
		Engine:  env.Engine,
	}
}
