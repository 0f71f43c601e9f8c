package mysql

import (
	"database/sql"
	"strings"

	"sqlpp/internal/core"
)

func introspectColumns(ic *introspectCtx, t *core.Table) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			c.ordinal_position,
			c.column_name,
			c.data_type,
			c.column_type,
			c.column_comment,
			c.is_nullable,
			c.column_default,
			c.extra,
			c.character_set_name,
			c.collation_name,
			c.column_key,
			c.generation_expression,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ordinal int
		var name, dataType, colType, comment, nullable, defaultVal, extra, charset, collation, colKey, genExpr sql.NullString
		var charLen, numPrecision, numScale sql.NullInt64

		if err := rows.Scan(&ordinal, &name, &dataType, &colType, &comment, &nullable, &defaultVal,
			&extra, &charset, &collation, &colKey, &genExpr, &charLen, &numPrecision, &numScale); err != nil {
			return err
		}

		isPK := colKey.String == "PRI"
		isAutoInc := strings.Contains(extra.String, "auto_increment")
		unsigned := strings.Contains(strings.ToLower(colType.String), "unsigned")

		col := &core.Column{
			Ordinal:       ordinal,
			Name:          name.String,
			TypeRaw:       colType.String,
			Type:          core.NormalizeDataType(colType.String),
			Nullable:      nullable.String == "YES",
			PrimaryKey:    isPK,
			AutoIncrement: isAutoInc,
			Comment:       comment.String,
			Charset:       charset.String,
			Collate:       strings.ReplaceAll(collation.String, charset.String+"_", ""),
			CanonicalType: core.NormalizeCanonicalType(dataType.String, int(numPrecision.Int64)),
			Unsigned:      unsigned,
			HasTime:       strings.Contains(dataType.String, "datetime") || strings.Contains(dataType.String, "timestamp"),
			Padded:        dataType.String == "char" || dataType.String == "binary",
		}

		switch {
		case charLen.Valid:
			col.Size = int(charLen.Int64)
		case numPrecision.Valid:
			col.Size = int(numPrecision.Int64)
			col.Digits = int(numPrecision.Int64)
			col.Decimals = int(numScale.Int64)
		}

		if lo, hi, ok := core.IntRange(dataType.String, unsigned); ok {
			col.Min, col.Max = lo, hi
		} else if strings.EqualFold(dataType.String, "year") {
			col.Min, col.Max = core.YearMin, core.YearMax
		}

		if defaultVal.Valid {
			col.DefaultValue = &defaultVal.String
		}

		if genExpr.Valid && genExpr.String != "" {
			col.IsGenerated = true
			col.GenerationExpression = genExpr.String
			col.GenerationStorage = core.GenerationStored
			if strings.Contains(strings.ToUpper(extra.String), "VIRTUAL") {
				col.GenerationStorage = core.GenerationVirtual
			}
		}

		t.Columns = append(t.Columns, col)
	}

	return rows.Err()
}
