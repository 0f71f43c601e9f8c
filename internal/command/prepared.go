package command

import (
	"context"
	"database/sql"

	"sqlpp/internal/core"
	"sqlpp/internal/errs"
	"sqlpp/internal/template"
)

// ParamMap supplies the bind values for a prepared statement's parameter
// sites at execution time, keyed the same way template.Result.ParamKeys
// names them: a named site's key for ::name/:name, or the stringified
// zero-based argument index ("0", "1", …) for ??/?.
type ParamMap map[string]any

// PreparedStatement wraps a single *sql.Stmt built from TPL's Prepare-mode
// rendering of a statement, rebinding a fresh ParamMap into driver
// parameters at each Exec/Query call while reusing the one compiled
// statement.
type PreparedStatement struct {
	stmt   *sql.Stmt
	handle *Handle
	order  []string
	ddl    bool
}

// Prepare renders sqlText through TPL once against env (whose Params/Args
// supply the values needed to resolve any #if/macro/constant sites and to
// determine the statement's parameter shape) and creates a driver-level
// prepared statement from the resulting placeholder SQL. The parameter
// order recorded at this point is what Exec/Query later rebind a
// ParamMap against.
func (h *Handle) Prepare(ctx context.Context, sqlText string, env *template.Environment) (*PreparedStatement, error) {
	if env == nil {
		env = template.NewEnvironment()
	}
	env.Engine = h.engine

	res, err := template.PrepareQuery(sqlText, env)
	if err != nil {
		return nil, err
	}

	stmt, err := h.conn.PrepareContext(ctx, res.SQL)
	if err != nil {
		return nil, errs.Classify(err)
	}

	return &PreparedStatement{stmt: stmt, handle: h, order: res.ParamKeys, ddl: isDDL(res.SQL)}, nil
}

// Close releases the prepared statement. Callers are expected to defer it,
// matching database/sql.Stmt's own contract.
func (p *PreparedStatement) Close() error {
	return p.stmt.Close()
}

func (p *PreparedStatement) bind(params ParamMap) ([]any, error) {
	args := make([]any, len(p.order))
	for i, key := range p.order {
		val, ok := params[key]
		if !ok {
			return nil, errs.New(errs.KindTemplateSyntax, "missing bind value for parameter %q", key)
		}
		if col := findSchemaColumn(p.handle.cachedSchema(), key); col != nil && col.ToBin != nil {
			bound, err := col.ToBin(val)
			if err != nil {
				return nil, errs.Wrap(errs.KindSchema, err, "converting parameter %q", key)
			}
			val = bound
		}
		args[i] = val
	}
	return args, nil
}

// Exec rebinds params against the compiled statement and executes it as a
// write, invalidating the server's schema cache if the original statement
// was DDL.
func (p *PreparedStatement) Exec(ctx context.Context, params ParamMap) (*ExecResult, error) {
	args, err := p.bind(params)
	if err != nil {
		return nil, err
	}
	res, err := p.stmt.ExecContext(ctx, args...)
	if err != nil {
		return nil, errs.Classify(err)
	}
	if p.ddl {
		InvalidateSchema(p.handle.serverKey)
	}
	lastID, _ := res.LastInsertId()
	affected, _ := res.RowsAffected()
	return &ExecResult{LastInsertID: lastID, RowsAffected: affected}, nil
}

// Query rebinds params against the compiled statement, executes it as a
// read, and buffers the result the same way Handle.Query does.
func (p *PreparedStatement) Query(ctx context.Context, params ParamMap, opts Options) (*ResultSet, error) {
	args, err := p.bind(params)
	if err != nil {
		return nil, err
	}
	rows, err := p.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, errs.Classify(err)
	}
	defer rows.Close()
	return p.handle.collect(ctx, rows, opts, nil)
}

// cachedSchema returns the currently cached schema snapshot for h's server,
// without triggering a fresh introspection; used for prepared-statement
// ToBin lookups, which should never themselves cause a round trip.
func (h *Handle) cachedSchema() *core.Database {
	return cacheFor(h.serverKey).schema.Load()
}
