// Package mysql contains introspect implementation for MySQL, MariaDB and TiDB dialects,
// since they support the same binary, it detects which dialect it is and uses sql pool connection
// to get all desired database for core.Database struct.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"sqlpp/internal/core"
	"sqlpp/internal/introspect"
)

func init() {
	introspect.Register(core.DialectMySQL, New)
	introspect.Register(core.DialectMariaDB, New)
	introspect.Register(core.DialectTiDB, New)
}

type introspecter struct{}

func New() introspect.Introspecter {
	return &introspecter{}
}

// introspectCtx carries the connection and detected server identity through
// every introspection query, so table/column/index/constraint/trigger
// queries never need to re-detect the dialect.
type introspectCtx struct {
	ctx     context.Context
	db      *sql.DB
	dialect core.Dialect
	version string
}

// Introspect reads the current database (scoped to the connection's default
// schema, one database per DSN) and returns it as a core.Database, with
// tables (columns, constraints, indexes, triggers) and stored procedures
// populated from the server's information_schema.
func (i *introspecter) Introspect(ctx context.Context, db *sql.DB) (*core.Database, error) {
	dialect, version, err := detectDialect(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("detecting dialect: %w", err)
	}

	ic := &introspectCtx{ctx: ctx, db: db, dialect: dialect, version: version}
	result := &core.Database{Dialect: &dialect}

	if err := introspectTables(ic, result); err != nil {
		return nil, fmt.Errorf("introspecting tables: %w", err)
	}

	if err := introspectProcedures(ic, result); err != nil {
		return nil, fmt.Errorf("introspecting procedures: %w", err)
	}

	return result, nil
}
