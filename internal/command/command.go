// Package command implements the CMD facade: a single connection handle
// that routes SQL through the TPL template pipeline, shapes result sets per
// caller-supplied options, and keeps a per-server schema cache fresh across
// DDL.
package command

import (
	"context"
	"database/sql"
	"strings"

	"sqlpp/internal/core"
	"sqlpp/internal/errs"
	"sqlpp/internal/overlay"
	"sqlpp/internal/quote"
	"sqlpp/internal/template"
)

// Options shapes how a query's columns and rows are returned to the caller.
type Options struct {
	// ToArray switches Query from buffering the full result set into a
	// ResultSet to invoking onRow once per row as it is scanned off the
	// wire, without buffering prior rows.
	ToArray bool
	// Compact returns each row as a positional []any instead of a
	// name-keyed Row map.
	Compact bool
	// FieldAttrs overlays caller-supplied per-column attributes onto the
	// returned field descriptors, keyed by column name.
	FieldAttrs map[string]map[string]any
	// GetTableDefs enriches each returned field with the canonical field
	// descriptor (CanonicalType, Size, Nullable, …) from the cached schema,
	// matched by column name.
	GetTableDefs bool
	// SkipTemplate bypasses TPL rendering entirely and sends sqlText to the
	// driver verbatim. Named "SkipTemplate" rather than the inverted
	// "Parse" flag so the zero value keeps the default (route through
	// TPL) — see the Open Question note in DESIGN.md.
	SkipTemplate bool
}

// Row is a single result row keyed by column name.
type Row map[string]any

// RowView is the row shape handed to a Query callback: exactly one of Row
// or Compact is populated, selected by the issuing Options.Compact.
type RowView struct {
	Row     Row
	Compact []any
}

// Field describes one column of a result set.
type Field struct {
	Name   string
	DBType string
	Attrs  map[string]any
}

// ResultSet is the outcome of a buffered Query call. Sets holds one entry
// per statement result set for multi-statement queries (e.g. CALLing a
// procedure that runs more than one SELECT); Fields/Rows/Compact mirror
// Sets[0] for the common single-result-set case.
type ResultSet struct {
	Fields  []Field
	Rows    []Row
	Compact [][]any
	Sets    []ResultSet
}

// ExecResult is the outcome of Exec.
type ExecResult struct {
	LastInsertID int64
	RowsAffected int64
}

// Handle binds a template environment and result-shaping options to a
// single *sql.Conn, serving one in-flight operation at a time — the
// scheduling model described for CMD. The caller must serialize access to
// a given Handle; independent Handles may run concurrently.
type Handle struct {
	conn      *sql.Conn
	db        *sql.DB
	engine    quote.Engine
	dialect   core.Dialect
	serverKey string
	overlay   *overlay.Registry
}

// NewHandle acquires a dedicated connection from db and binds it to engine/
// dialect, scoping its schema cache to serverKey (conventionally
// "host:port", shared across every Handle that connects to the same
// endpoint).
func NewHandle(ctx context.Context, db *sql.DB, engine quote.Engine, dialect core.Dialect, serverKey string, reg *overlay.Registry) (*Handle, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindBackend, err, "acquiring connection")
	}
	if reg == nil {
		reg = overlay.NewRegistry()
	}
	return &Handle{conn: conn, db: db, engine: engine, dialect: dialect, serverKey: serverKey, overlay: reg}, nil
}

// Close releases the underlying connection back to db's pool.
func (h *Handle) Close() error {
	return h.conn.Close()
}

func (h *Handle) prepareSQL(sqlText string, env *template.Environment, opts Options) (string, []any, error) {
	if opts.SkipTemplate {
		return sqlText, nil, nil
	}
	if env == nil {
		env = template.NewEnvironment()
	}
	env.Engine = h.engine

	res, err := template.PrepareQuery(sqlText, env)
	if err != nil {
		return "", nil, err
	}
	return res.SQL, res.Values, nil
}

// Query executes sqlText (expanded through TPL unless opts.SkipTemplate) and
// buffers the full result into a ResultSet, unless opts.ToArray is set, in
// which case onRow is invoked once per row as it is scanned and the
// returned ResultSet carries only Fields (no buffered rows).
func (h *Handle) Query(ctx context.Context, sqlText string, env *template.Environment, opts Options, onRow func(RowView) error) (*ResultSet, error) {
	finalSQL, values, err := h.prepareSQL(sqlText, env, opts)
	if err != nil {
		return nil, err
	}

	rows, err := h.conn.QueryContext(ctx, finalSQL, values...)
	if err != nil {
		return nil, errs.Classify(err)
	}
	defer rows.Close()

	return h.collect(ctx, rows, opts, onRow)
}

// collect scans every result set off rows, applying opts' shaping. When
// opts.ToArray is set, onRow is invoked per row instead of buffering.
func (h *Handle) collect(ctx context.Context, rows *sql.Rows, opts Options, onRow func(RowView) error) (*ResultSet, error) {
	top := &ResultSet{}
	first := true

	for {
		set, err := h.collectOne(ctx, rows, opts, onRow)
		if err != nil {
			return nil, err
		}
		if first {
			top.Fields, top.Rows, top.Compact = set.Fields, set.Rows, set.Compact
			first = false
		}
		top.Sets = append(top.Sets, *set)

		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindBackend, err, "iterating result sets")
	}
	return top, nil
}

func (h *Handle) collectOne(ctx context.Context, rows *sql.Rows, opts Options, onRow func(RowView) error) (*ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.KindBackend, err, "reading columns")
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, errs.Wrap(errs.KindBackend, err, "reading column types")
	}

	set := &ResultSet{Fields: h.buildFields(ctx, cols, colTypes, opts)}

	for rows.Next() {
		view, err := scanRowView(rows, cols, opts.Compact)
		if err != nil {
			return nil, err
		}

		if opts.ToArray {
			if onRow != nil {
				if err := onRow(view); err != nil {
					return nil, err
				}
			}
			continue
		}

		if opts.Compact {
			set.Compact = append(set.Compact, view.Compact)
		} else {
			set.Rows = append(set.Rows, view.Row)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindBackend, err, "scanning rows")
	}
	return set, nil
}

func scanRowView(rows *sql.Rows, cols []string, compact bool) (RowView, error) {
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return RowView{}, errs.Wrap(errs.KindBackend, err, "scanning row")
	}

	if compact {
		return RowView{Compact: vals}, nil
	}
	row := make(Row, len(cols))
	for i, c := range cols {
		row[c] = vals[i]
	}
	return RowView{Row: row}, nil
}

func (h *Handle) buildFields(ctx context.Context, cols []string, colTypes []*sql.ColumnType, opts Options) []Field {
	var schema *core.Database
	if opts.GetTableDefs {
		schema, _ = Schema(ctx, h.serverKey, h.dialect, h.db)
	}

	fields := make([]Field, len(cols))
	for i, name := range cols {
		f := Field{Name: name}
		if i < len(colTypes) {
			f.DBType = colTypes[i].DatabaseTypeName()
		}

		attrs := map[string]any{}
		if col := findSchemaColumn(schema, name); col != nil {
			attrs["canonicalType"] = string(col.CanonicalType)
			attrs["size"] = col.Size
			attrs["nullable"] = col.Nullable
			for k, v := range h.overlay.ApplyColumn(col, col.TypeRaw) {
				attrs[k] = v
			}
		}
		if custom, ok := opts.FieldAttrs[name]; ok {
			for k, v := range custom {
				attrs[k] = v
			}
		}
		if len(attrs) > 0 {
			f.Attrs = attrs
		}
		fields[i] = f
	}
	return fields
}

// findSchemaColumn returns the first column named name found across every
// table in schema. Column names are not guaranteed unique across tables, so
// this is a best-effort enrichment, not an authoritative lookup scoped to a
// particular query's FROM clause.
func findSchemaColumn(schema *core.Database, name string) *core.Column {
	if schema == nil {
		return nil
	}
	for _, t := range schema.Tables {
		if col := t.FindColumn(name); col != nil {
			return col
		}
	}
	return nil
}

// FirstRow executes sqlText and returns its first row, or ok=false if the
// result set was empty. Unlike Query it does not continue draining the
// result after the first row is scanned.
func (h *Handle) FirstRow(ctx context.Context, sqlText string, env *template.Environment, opts Options) (RowView, bool, error) {
	finalSQL, values, err := h.prepareSQL(sqlText, env, opts)
	if err != nil {
		return RowView{}, false, err
	}

	rows, err := h.conn.QueryContext(ctx, finalSQL, values...)
	if err != nil {
		return RowView{}, false, errs.Classify(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return RowView{}, false, errs.Wrap(errs.KindBackend, err, "reading columns")
	}
	if !rows.Next() {
		return RowView{}, false, rows.Err()
	}

	view, err := scanRowView(rows, cols, opts.Compact)
	return view, err == nil, err
}

// EachRow streams sqlText's results, invoking fn once per row as a Row map
// without buffering the result set in memory.
func (h *Handle) EachRow(ctx context.Context, sqlText string, env *template.Environment, opts Options, fn func(Row) error) error {
	opts.ToArray = true
	opts.Compact = false
	_, err := h.Query(ctx, sqlText, env, opts, func(v RowView) error {
		return fn(v.Row)
	})
	return err
}

// EachRowVals streams sqlText's results, invoking fn once per row as a
// positional []any without buffering the result set in memory.
func (h *Handle) EachRowVals(ctx context.Context, sqlText string, env *template.Environment, opts Options, fn func([]any) error) error {
	opts.ToArray = true
	opts.Compact = true
	_, err := h.Query(ctx, sqlText, env, opts, func(v RowView) error {
		return fn(v.Compact)
	})
	return err
}

// EachGroup streams sqlText's results, grouping consecutive rows that share
// the same value in groupBy and invoking fn once per group. The query must
// be ordered by groupBy for groups to come out contiguous; EachGroup does
// not itself sort.
func (h *Handle) EachGroup(ctx context.Context, sqlText string, env *template.Environment, opts Options, groupBy string, fn func(key any, rows []Row) error) error {
	opts.ToArray = true
	opts.Compact = false

	var currentKey any
	var haveKey bool
	var group []Row

	flush := func() error {
		if !haveKey {
			return nil
		}
		return fn(currentKey, group)
	}

	_, err := h.Query(ctx, sqlText, env, opts, func(v RowView) error {
		key := v.Row[groupBy]
		if !haveKey {
			currentKey, haveKey = key, true
		} else if key != currentKey {
			if err := flush(); err != nil {
				return err
			}
			currentKey = key
			group = nil
		}
		group = append(group, v.Row)
		return nil
	})
	if err != nil {
		return err
	}
	return flush()
}

// Exec executes sqlText as a write, invalidating the server's schema cache
// when sqlText is DDL.
func (h *Handle) Exec(ctx context.Context, sqlText string, env *template.Environment, opts Options) (*ExecResult, error) {
	finalSQL, values, err := h.prepareSQL(sqlText, env, opts)
	if err != nil {
		return nil, err
	}

	res, err := h.conn.ExecContext(ctx, finalSQL, values...)
	if err != nil {
		return nil, errs.Classify(err)
	}

	if isDDL(finalSQL) {
		InvalidateSchema(h.serverKey)
	}

	lastID, _ := res.LastInsertId()
	affected, _ := res.RowsAffected()
	return &ExecResult{LastInsertID: lastID, RowsAffected: affected}, nil
}

var ddlPrefixes = []string{"create", "alter", "drop", "grant", "revoke"}

// isDDL reports whether sqlText (already TPL-expanded) begins with a DDL
// keyword, optionally preceded by a leading ';' left over from a
// multi-statement batch.
func isDDL(sqlText string) bool {
	trimmed := strings.TrimSpace(sqlText)
	trimmed = strings.TrimPrefix(trimmed, ";")
	trimmed = strings.ToLower(strings.TrimSpace(trimmed))
	for _, p := range ddlPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}
