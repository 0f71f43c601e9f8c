package diff

import (
	"fmt"
	"strconv"
	"strings"

	"sqlpp/internal/core"
)

// ChangeSeverity classifies how disruptive a detected change is to a running
// application.
type ChangeSeverity string

const (
	// SeverityInfo marks changes that are safe and purely informational.
	SeverityInfo ChangeSeverity = "INFO"
	// SeverityWarning marks changes that are safe to apply but worth a second look.
	SeverityWarning ChangeSeverity = "WARNING"
	// SeverityBreaking marks changes that can break a running application or
	// require a data migration step, but do not risk data loss by themselves.
	SeverityBreaking ChangeSeverity = "BREAKING"
	// SeverityCritical marks changes that risk data loss (drops, incompatible
	// narrowing).
	SeverityCritical ChangeSeverity = "CRITICAL"
)

// BreakingChange describes a single detected risk in a schema diff.
type BreakingChange struct {
	Severity    ChangeSeverity
	Table       string
	Object      string
	Description string
}

// BreakingChangeAnalyzer inspects a SchemaDiff and reports the changes that
// carry migration risk, classified by severity.
type BreakingChangeAnalyzer struct{}

// NewBreakingChangeAnalyzer constructs a BreakingChangeAnalyzer.
func NewBreakingChangeAnalyzer() *BreakingChangeAnalyzer {
	return &BreakingChangeAnalyzer{}
}

// Analyze walks d and returns every breaking change it can identify.
func (a *BreakingChangeAnalyzer) Analyze(d *SchemaDiff) []BreakingChange {
	var changes []BreakingChange

	for _, t := range d.RemovedTables {
		changes = append(changes, BreakingChange{
			Severity:    SeverityCritical,
			Table:       t.Name,
			Object:      t.Name,
			Description: "Table will be dropped",
		})
	}

	for _, p := range d.RemovedProcs {
		changes = append(changes, BreakingChange{
			Severity:    SeverityBreaking,
			Table:       "",
			Object:      p.Name,
			Description: "Stored procedure will be dropped",
		})
	}

	for _, td := range d.ModifiedTables {
		changes = append(changes, analyzeTableDiff(td)...)
	}

	return changes
}

func analyzeTableDiff(td *TableDiff) []BreakingChange {
	var changes []BreakingChange

	for _, c := range td.RemovedColumns {
		changes = append(changes, BreakingChange{
			Severity:    SeverityCritical,
			Table:       td.Name,
			Object:      c.Name,
			Description: "Column will be dropped",
		})
	}

	for _, c := range td.AddedColumns {
		if !c.Nullable && c.DefaultValue == nil {
			changes = append(changes, BreakingChange{
				Severity:    SeverityBreaking,
				Table:       td.Name,
				Object:      c.Name,
				Description: "Adding NOT NULL column without a default requires a backfill before it is safe",
			})
		}
	}

	for _, r := range td.RenamedColumns {
		changes = append(changes, BreakingChange{
			Severity:    SeverityBreaking,
			Table:       td.Name,
			Object:      fmt.Sprintf("%s->%s", r.Old.Name, r.New.Name),
			Description: "Column rename detected (heuristic match, verify before applying)",
		})
	}

	for _, cc := range td.ModifiedColumns {
		changes = append(changes, analyzeColumnChange(td.Name, cc)...)
	}

	for _, tr := range td.RemovedTriggers {
		changes = append(changes, BreakingChange{
			Severity:    SeverityBreaking,
			Table:       td.Name,
			Object:      tr.Name,
			Description: "Trigger will be dropped",
		})
	}

	for _, ic := range td.ModifiedIndexes {
		changes = append(changes, BreakingChange{
			Severity:    SeverityWarning,
			Table:       td.Name,
			Object:      ic.Name,
			Description: "Index modified",
		})
	}
	for _, idx := range td.AddedIndexes {
		if idx.Unique {
			changes = append(changes, BreakingChange{
				Severity:    SeverityBreaking,
				Table:       td.Name,
				Object:      idx.Name,
				Description: "Unique index added; existing duplicate values will reject the migration",
			})
		}
	}

	for _, oc := range td.ModifiedOptions {
		if c, ok := analyzeOptionChange(td.Name, oc); ok {
			changes = append(changes, c)
		}
	}

	return changes
}

func analyzeColumnChange(table string, cc *ColumnChange) []BreakingChange {
	var changes []BreakingChange

	for _, fc := range cc.Changes {
		switch fc.Field {
		case "type":
			changes = append(changes, analyzeTypeChange(table, cc, fc)...)
		case "nullable":
			if fc.Old == "true" && fc.New == "false" {
				changes = append(changes, BreakingChange{
					Severity:    SeverityBreaking,
					Table:       table,
					Object:      cc.Name,
					Description: "Column becomes NOT NULL; existing NULLs must be backfilled first",
				})
			}
		case "default":
			changes = append(changes, BreakingChange{
				Severity:    SeverityWarning,
				Table:       table,
				Object:      cc.Name,
				Description: "Default value changes; rows written without an explicit value will change behavior",
			})
		case "comment":
			changes = append(changes, BreakingChange{
				Severity:    SeverityInfo,
				Table:       table,
				Object:      cc.Name,
				Description: "Column comment changes",
			})
		case "generation_expression":
			changes = append(changes, BreakingChange{
				Severity:    SeverityBreaking,
				Table:       table,
				Object:      cc.Name,
				Description: "Generated column expression changed; stored/virtual values will be recomputed",
			})
		}
	}

	return changes
}

// analyzeTypeChange classifies a "type" FieldChange. A change that only
// resizes the same base type (e.g. VARCHAR(32) -> VARCHAR(40)) is reported as
// a length change, not a type change; a change of base type is reported as a
// type change, classified by typeChangeSeverity.
func analyzeTypeChange(table string, cc *ColumnChange, fc *FieldChange) []BreakingChange {
	if strings.EqualFold(baseTypeName(cc.Old.TypeRaw), baseTypeName(cc.New.TypeRaw)) {
		oldLen := columnLength(cc.Old)
		newLen := columnLength(cc.New)
		switch {
		case oldLen != 0 && newLen != 0 && newLen < oldLen:
			return []BreakingChange{{
				Severity:    SeverityBreaking,
				Table:       table,
				Object:      cc.Name,
				Description: "Column length shrinks; existing longer values will be truncated or rejected",
			}}
		case oldLen != 0 && newLen != 0 && newLen > oldLen:
			return []BreakingChange{{
				Severity:    SeverityInfo,
				Table:       table,
				Object:      cc.Name,
				Description: fmt.Sprintf("Column length changes from %s to %s", fc.Old, fc.New),
			}}
		default:
			return nil
		}
	}

	return []BreakingChange{{
		Severity:    typeChangeSeverity(cc.Old.TypeRaw, cc.New.TypeRaw),
		Table:       table,
		Object:      cc.Name,
		Description: fmt.Sprintf("Column type changes from %s to %s", fc.Old, fc.New),
	}}
}

// typeChangeSeverity classifies a column type change. Numeric widening within
// the same family is informational; narrowing or a change of family risks
// truncation or an incompatible conversion and is critical.
func typeChangeSeverity(oldType, newType string) ChangeSeverity {
	oldFamily := numericTypeRank(oldType)
	newFamily := numericTypeRank(newType)
	if oldFamily == 0 || newFamily == 0 {
		if strings.EqualFold(baseTypeName(oldType), baseTypeName(newType)) {
			return SeverityWarning
		}
		return SeverityCritical
	}
	if newFamily >= oldFamily {
		return SeverityInfo
	}
	return SeverityCritical
}

// numericTypeRank orders the common MySQL integer family by storage width.
// Returns 0 for non-integer types.
func numericTypeRank(t string) int {
	switch baseTypeName(t) {
	case "tinyint":
		return 1
	case "smallint":
		return 2
	case "mediumint":
		return 3
	case "int", "integer":
		return 4
	case "bigint":
		return 5
	default:
		return 0
	}
}

func baseTypeName(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

// columnLength returns the declared length/precision of a column, preferring
// the parsed Size field and falling back to the parenthesized portion of
// TypeRaw (e.g. "VARCHAR(50)" -> 50).
func columnLength(c *core.Column) int {
	if c.Size != 0 {
		return c.Size
	}
	t := c.TypeRaw
	open := strings.IndexByte(t, '(')
	shut := strings.IndexByte(t, ')')
	if open < 0 || shut < 0 || shut <= open+1 {
		return 0
	}
	inner := t[open+1 : shut]
	if i := strings.IndexByte(inner, ','); i >= 0 {
		inner = inner[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(inner))
	if err != nil {
		return 0
	}
	return n
}

func analyzeOptionChange(table string, oc *TableOptionChange) (BreakingChange, bool) {
	switch oc.Name {
	case "ENGINE":
		return BreakingChange{
			Severity:    SeverityBreaking,
			Table:       table,
			Object:      oc.Name,
			Description: "Storage engine changes; data must be migrated between engines",
		}, true
	case "CHARSET":
		return BreakingChange{
			Severity:    SeverityWarning,
			Table:       table,
			Object:      oc.Name,
			Description: "Character set changes; existing data must be verified for compatible encoding",
		}, true
	case "COLLATE":
		return BreakingChange{
			Severity:    SeverityWarning,
			Table:       table,
			Object:      oc.Name,
			Description: "Collation changes; sort order and uniqueness comparisons may change",
		}, true
	default:
		return BreakingChange{}, false
	}
}
