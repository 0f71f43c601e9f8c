package mysql

import (
	"fmt"
	"sort"
	"strings"

	"sqlpp/internal/core"
)

// triggerDefinition renders a CREATE TRIGGER statement for a single trigger
// owned by table.
func (g *Generator) triggerDefinition(table string, tr *core.Trigger) string {
	if tr == nil || strings.TrimSpace(tr.Name) == "" {
		return ""
	}
	return fmt.Sprintf(
		"CREATE TRIGGER %s %s %s ON %s FOR EACH ROW %s;",
		g.QuoteIdentifier(tr.Name),
		strings.ToUpper(string(tr.When)),
		strings.ToUpper(string(tr.Op)),
		table,
		strings.TrimSpace(tr.Body),
	)
}

// dropTrigger renders a DROP TRIGGER statement.
func (g *Generator) dropTrigger(tr *core.Trigger) string {
	if tr == nil || strings.TrimSpace(tr.Name) == "" {
		return ""
	}
	return fmt.Sprintf("DROP TRIGGER %s;", g.QuoteIdentifier(tr.Name))
}

// sortedTriggers returns t's triggers ordered by op, then timing, then pos,
// matching the ordering information_schema.triggers exposes via ACTION_ORDER.
func sortedTriggers(triggers []*core.Trigger) []*core.Trigger {
	out := make([]*core.Trigger, len(triggers))
	copy(out, triggers)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Op != b.Op {
			return a.Op < b.Op
		}
		if a.When != b.When {
			return a.When < b.When
		}
		return a.Pos < b.Pos
	})
	return out
}

// procParamDefinition renders a single formal parameter for CREATE PROCEDURE.
func (g *Generator) procParamDefinition(p core.ProcParam) string {
	dir := string(p.Direction)
	if dir == "" {
		dir = string(core.ProcParamIn)
	}
	return fmt.Sprintf("%s %s %s", dir, g.QuoteIdentifier(p.Name), p.Type)
}

// procedureDefinition renders a CREATE PROCEDURE statement.
func (g *Generator) procedureDefinition(p *core.Procedure) string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return ""
	}
	params := make([]string, len(p.Params))
	for i, param := range p.Params {
		params[i] = g.procParamDefinition(param)
	}
	return fmt.Sprintf("CREATE PROCEDURE %s(%s) %s;", g.QuoteIdentifier(p.Name), strings.Join(params, ", "), strings.TrimSpace(p.Body))
}

// dropProcedure renders a DROP PROCEDURE statement.
func (g *Generator) dropProcedure(p *core.Procedure) string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return ""
	}
	return fmt.Sprintf("DROP PROCEDURE %s;", g.QuoteIdentifier(p.Name))
}
