package mysql

import (
	"database/sql"
	"strings"

	"sqlpp/internal/core"
)

// introspectProcedures collects stored procedures for the current database
// (functions are out of scope; only routine_type = 'PROCEDURE' is read).
func introspectProcedures(ic *introspectCtx, db *core.Database) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT routine_name, dtd_identifier, routine_definition
		FROM information_schema.routines
		WHERE routine_schema = DATABASE() AND routine_type = 'PROCEDURE'
		ORDER BY routine_name
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var procs []*core.Procedure
	for rows.Next() {
		var name string
		var returns, body sql.NullString
		if err := rows.Scan(&name, &returns, &body); err != nil {
			return err
		}

		procs = append(procs, &core.Procedure{
			Name:    name,
			Returns: returns.String,
			Body:    body.String,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range procs {
		if err := introspectProcParams(ic, p); err != nil {
			return err
		}
		db.Procs = append(db.Procs, p)
	}

	return nil
}

func introspectProcParams(ic *introspectCtx, p *core.Procedure) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT parameter_name, parameter_mode, dtd_identifier
		FROM information_schema.parameters
		WHERE specific_schema = DATABASE() AND specific_name = ? AND parameter_name IS NOT NULL
		ORDER BY ordinal_position
	`, p.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, mode, typ sql.NullString
		if err := rows.Scan(&name, &mode, &typ); err != nil {
			return err
		}

		p.Params = append(p.Params, core.ProcParam{
			Name:      name.String,
			Direction: normalizeParamDirection(mode.String),
			Type:      typ.String,
		})
	}

	return rows.Err()
}

func normalizeParamDirection(mode string) core.ProcParamDirection {
	switch strings.ToUpper(strings.TrimSpace(mode)) {
	case "OUT":
		return core.ProcParamOut
	case "INOUT":
		return core.ProcParamInOut
	default:
		return core.ProcParamIn
	}
}
