package core

import "fmt"

// validateTriggersAndProcs checks trigger and procedure name uniqueness and
// sorts each table's triggers into firing order.
func (db *Database) validateTriggersAndProcs() error {
	seenProcs := make(map[string]bool, len(db.Procs))
	for _, p := range db.Procs {
		if seenProcs[p.Name] {
			return fmt.Errorf("duplicate procedure name %q", p.Name)
		}
		seenProcs[p.Name] = true
	}

	for _, t := range db.Tables {
		seen := make(map[string]bool, len(t.Triggers))
		for _, tr := range t.Triggers {
			if seen[tr.Name] {
				return fmt.Errorf("table %q: duplicate trigger name %q", t.Name, tr.Name)
			}
			seen[tr.Name] = true
			if !isValidTriggerTiming(tr.When) {
				return fmt.Errorf("table %q: trigger %q has invalid timing %q", t.Name, tr.Name, tr.When)
			}
			if !isValidTriggerEvent(tr.Op) {
				return fmt.Errorf("table %q: trigger %q has invalid op %q", t.Name, tr.Name, tr.Op)
			}
		}
		t.SortTriggers()
	}
	return nil
}

func isValidTriggerTiming(w TriggerTiming) bool {
	return w == TriggerBefore || w == TriggerAfter
}

func isValidTriggerEvent(op TriggerEvent) bool {
	return op == TriggerInsert || op == TriggerUpdate || op == TriggerDelete
}
