package mysql

import (
	"strings"

	"sqlpp/internal/core"
)

// introspectTriggers collects the row-level triggers owned by the current
// user on t, ordered by MySQL's ACTION_ORDER (the order they fire in for a
// shared table/timing/event).
func introspectTriggers(ic *introspectCtx, t *core.Table) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT trigger_name, action_timing, event_manipulation, action_order, action_statement
		FROM information_schema.triggers
		WHERE trigger_schema = DATABASE() AND event_object_table = ? AND definer = CURRENT_USER()
		ORDER BY action_order
	`, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, timing, event, body string
		var pos int
		if err := rows.Scan(&name, &timing, &event, &pos, &body); err != nil {
			return err
		}

		t.Triggers = append(t.Triggers, &core.Trigger{
			Name: name,
			When: core.TriggerTiming(strings.ToLower(timing)),
			Op:   core.TriggerEvent(strings.ToLower(event)),
			Pos:  pos,
			Body: body,
		})
	}

	return rows.Err()
}
