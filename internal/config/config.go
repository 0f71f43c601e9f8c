// Package config loads the TOML file that seeds the CLI's connection
// parameters, attribute overlays, and template constants. It is the only
// place in the module that touches the filesystem for startup state; the
// core packages (command, template, overlay) never read configuration
// themselves.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"sqlpp/internal/core"
	"sqlpp/internal/overlay"
	"sqlpp/internal/quote"
	"sqlpp/internal/template"
)

// Config is the top-level shape of a sqlpp config file.
type Config struct {
	Connection ConnectionConfig  `toml:"connection"`
	Overlay    OverlayConfig     `toml:"overlay"`
	Defines    map[string]string `toml:"defines"`
}

// ConnectionConfig holds the parameters needed to open a *sql.DB and bind
// a command.Handle to it.
type ConnectionConfig struct {
	DSN       string `toml:"dsn"`
	Dialect   string `toml:"dialect"`
	ServerKey string `toml:"server_key"`
}

// OverlayConfig mirrors overlay.Registry's five attribute tables in a
// TOML-friendly shape. ColTypeAttrs is keyed by canonical type name
// ("string", "number", "date", "enum", "blob", "bool") rather than
// core.CanonicalType directly, since TOML keys are always strings.
type OverlayConfig struct {
	TableAttrs        map[string]map[string]any `toml:"table_attrs"`
	ColAttrs          map[string]any            `toml:"col_attrs"`
	ColTypeAttrs      map[string]map[string]any `toml:"col_type_attrs"`
	ColNameAttrs      map[string]map[string]any `toml:"col_name_attrs"`
	MySQLColTypeAttrs map[string]map[string]any `toml:"mysql_col_type_attrs"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	var c Config
	if _, err := toml.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", path, err)
	}
	return &c, nil
}

// Dialect validates and returns the configured dialect, defaulting to MySQL
// when the field is empty.
func (c *Config) Dialect() (core.Dialect, error) {
	if c.Connection.Dialect == "" {
		return core.DialectMySQL, nil
	}
	if !core.IsValidDialect(c.Connection.Dialect) {
		return "", fmt.Errorf("config: unsupported dialect %q; supported: %v",
			c.Connection.Dialect, core.SupportedDialects())
	}
	return core.Dialect(c.Connection.Dialect), nil
}

// Engine returns the quoting engine matching the configured dialect.
func (c *Config) Engine() quote.Engine {
	return quote.MySQL
}

// BuildRegistry converts the config's overlay tables into an
// overlay.Registry, ready to hand to command.NewHandle.
func (c *Config) BuildRegistry() *overlay.Registry {
	reg := overlay.NewRegistry()

	for table, attrs := range c.Overlay.TableAttrs {
		reg.TableAttrs[table] = attrs
	}
	for k, v := range c.Overlay.ColAttrs {
		reg.ColAttrs[k] = v
	}
	for typeName, attrs := range c.Overlay.ColTypeAttrs {
		reg.ColTypeAttrs[core.CanonicalType(typeName)] = attrs
	}
	for name, attrs := range c.Overlay.ColNameAttrs {
		reg.ColNameAttrs[name] = attrs
	}
	for nativeType, attrs := range c.Overlay.MySQLColTypeAttrs {
		reg.MySQLColTypeAttrs[nativeType] = attrs
	}

	return reg
}

// BuildEnvironment returns a template.Environment seeded with the config's
// constant table. Params/Args are left for the caller to populate
// per-query; Macros are compiled-in and cannot be expressed in TOML.
func (c *Config) BuildEnvironment() *template.Environment {
	env := template.NewEnvironment()
	env.Engine = c.Engine()
	for k, v := range c.Defines {
		env.Defines[k] = v
	}
	return env
}
