package mysql

import (
	"database/sql"
	"strings"

	"sqlpp/internal/core"
)

// constraintRow accumulates the key_column_usage/referential_constraints rows
// belonging to a single named constraint, in column declaration order.
type constraintRow struct {
	ctype      string
	columns    []string
	refTable   string
	refColumns []string
	onUpdate   string
	onDelete   string
}

func introspectConstraints(ic *introspectCtx, t *core.Table) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			tc.constraint_name,
			tc.constraint_type,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_schema = kcu.constraint_schema
			AND tc.constraint_name = kcu.constraint_name
			AND tc.table_name = kcu.table_name
		LEFT JOIN information_schema.referential_constraints rc
			ON tc.constraint_schema = rc.constraint_schema
			AND tc.constraint_name = rc.constraint_name
		WHERE tc.table_schema = DATABASE() AND tc.table_name = ?
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := make(map[string]*constraintRow)
	var order []string

	for rows.Next() {
		var name, ctype, column string
		var refTable, refColumn, updateRule, deleteRule sql.NullString
		if err := rows.Scan(&name, &ctype, &column, &refTable, &refColumn, &updateRule, &deleteRule); err != nil {
			return err
		}

		cr, ok := byName[name]
		if !ok {
			cr = &constraintRow{ctype: ctype}
			byName[name] = cr
			order = append(order, name)
		}
		cr.columns = append(cr.columns, column)
		if refTable.Valid {
			cr.refTable = refTable.String
		}
		if refColumn.Valid {
			cr.refColumns = append(cr.refColumns, refColumn.String)
		}
		if updateRule.Valid {
			cr.onUpdate = updateRule.String
		}
		if deleteRule.Valid {
			cr.onDelete = deleteRule.String
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range order {
		cr := byName[name]

		c := &core.Constraint{Name: name, Columns: cr.columns}
		switch cr.ctype {
		case "PRIMARY KEY":
			c.Type = core.ConstraintPrimaryKey
		case "UNIQUE":
			c.Type = core.ConstraintUnique
		case "FOREIGN KEY":
			c.Type = core.ConstraintForeignKey
			c.ReferencedTable = cr.refTable
			c.ReferencedColumns = cr.refColumns
			c.OnUpdate = normalizeReferentialAction(cr.onUpdate)
			c.OnDelete = normalizeReferentialAction(cr.onDelete)
		default:
			continue
		}

		t.Constraints = append(t.Constraints, c)
	}

	return nil
}

func normalizeReferentialAction(rule string) core.ReferentialAction {
	switch strings.ToUpper(strings.TrimSpace(rule)) {
	case "CASCADE":
		return core.RefActionCascade
	case "RESTRICT":
		return core.RefActionRestrict
	case "SET NULL":
		return core.RefActionSetNull
	case "SET DEFAULT":
		return core.RefActionSetDefault
	case "NO ACTION":
		return core.RefActionNoAction
	default:
		return core.RefActionNone
	}
}
