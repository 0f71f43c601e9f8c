// Package overlay holds the process-wide attribute registries that let a
// caller override canonical schema attributes introspection produced, keyed
// by table name, column name, or column type. Registries are expected to be
// populated once at startup and treated as immutable afterward.
package overlay

import "sqlpp/internal/core"

// Registry holds the five overlay tables and applies them in the fixed
// precedence order mysql_col_type_attrs > col_type_attrs > col_name_attrs >
// col_attrs > canonical field, so a more specific match always wins over a
// more general one.
type Registry struct {
	TableAttrs        map[string]map[string]any
	ColAttrs          map[string]any
	ColTypeAttrs      map[core.CanonicalType]map[string]any
	ColNameAttrs      map[string]map[string]any
	MySQLColTypeAttrs map[string]map[string]any
}

// NewRegistry returns an empty Registry with every map initialized.
func NewRegistry() *Registry {
	return &Registry{
		TableAttrs:        map[string]map[string]any{},
		ColAttrs:          map[string]any{},
		ColTypeAttrs:      map[core.CanonicalType]map[string]any{},
		ColNameAttrs:      map[string]map[string]any{},
		MySQLColTypeAttrs: map[string]map[string]any{},
	}
}

// ApplyTable merges any table_attrs entry registered for t.Name into attrs,
// without overwriting a key attrs already carries.
func (r *Registry) ApplyTable(t *core.Table, attrs map[string]any) map[string]any {
	if attrs == nil {
		attrs = map[string]any{}
	}
	if overlay, ok := r.TableAttrs[t.Name]; ok {
		mergeMissing(attrs, overlay)
	}
	return attrs
}

// ApplyColumn computes the effective attribute map for col on nativeType,
// applying every matching overlay layer from least to most specific so later
// (more specific) layers win, then folding in col_attrs as the base layer
// beneath everything else.
func (r *Registry) ApplyColumn(col *core.Column, nativeType string) map[string]any {
	attrs := map[string]any{}

	mergeMissing(attrs, r.ColAttrs)

	if overlay, ok := r.ColNameAttrs[col.Name]; ok {
		mergeOverwrite(attrs, overlay)
	}
	if overlay, ok := r.ColTypeAttrs[col.CanonicalType]; ok {
		mergeOverwrite(attrs, overlay)
	}
	if overlay, ok := r.MySQLColTypeAttrs[nativeType]; ok {
		mergeOverwrite(attrs, overlay)
	}

	return attrs
}

func mergeMissing(dst map[string]any, src map[string]any) {
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
}

func mergeOverwrite(dst map[string]any, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
