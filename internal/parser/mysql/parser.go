// Package mysql inside parser, provides implementation to parse MySQL schema dumps.
// It uses TiDB's parser, so we support both MySQL syntax and TiDB-specific options.
package mysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"sqlpp/internal/core"
)

type Parser struct {
	p *parser.Parser
}

func NewParser() *Parser {
	return &Parser{p: parser.New()}
}

func (p *Parser) Parse(sql string) (*core.Database, error) {
	// TODO: add support to specify charset and collation
	// NOTE: this can be parallelized, it can help if schema dumps are big.
	stmtNodes, _, err := p.p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	db := &core.Database{Tables: []*core.Table{}}
	for _, stmt := range stmtNodes {
		if create, ok := stmt.(*ast.CreateTableStmt); ok {
			table, err := p.convertCreateTable(create)
			if err != nil {
				return nil, err
			}
			db.Tables = append(db.Tables, table)
		}
	}

	return db, nil
}

func (p *Parser) convertCreateTable(stmt *ast.CreateTableStmt) (*core.Table, error) {
	table := &core.Table{
		Name:    stmt.Table.Name.O,
		Columns: []*core.Column{},
	}

	p.parseTableOptions(stmt.Options, table)
	p.parseColumns(stmt.Cols, table)
	p.parseConstraints(stmt.Constraints, table)

	return table, nil
}

// ensureMySQLOptions lazily allocates the MySQL-family option group so later
// field writes never dereference a nil pointer.
func ensureMySQLOptions(table *core.Table) *core.MySQLTableOptions {
	if table.Options.MySQL == nil {
		table.Options.MySQL = &core.MySQLTableOptions{}
	}
	return table.Options.MySQL
}

func ensureTiDBOptions(table *core.Table) *core.TiDBTableOptions {
	if table.Options.TiDB == nil {
		table.Options.TiDB = &core.TiDBTableOptions{}
	}
	return table.Options.TiDB
}

func ensureMariaDBOptions(table *core.Table) *core.MariaDBTableOptions {
	if table.Options.MariaDB == nil {
		table.Options.MariaDB = &core.MariaDBTableOptions{}
	}
	return table.Options.MariaDB
}

func (p *Parser) parseTableOptions(opts []*ast.TableOption, table *core.Table) {
	for _, opt := range opts {
		switch opt.Tp {
		case ast.TableOptionComment:
			table.Comment = opt.StrValue
			continue
		case ast.TableOptionCharset:
			ensureMySQLOptions(table).Charset = opt.StrValue
			continue
		case ast.TableOptionCollate:
			ensureMySQLOptions(table).Collate = opt.StrValue
			continue
		case ast.TableOptionEngine:
			ensureMySQLOptions(table).Engine = opt.StrValue
			continue
		case ast.TableOptionAutoIncrement:
			ensureMySQLOptions(table).AutoIncrement = opt.UintValue
			continue
		case ast.TableOptionCheckSum:
			ensureMySQLOptions(table).Checksum = opt.UintValue
			continue
		case ast.TableOptionCompression:
			ensureMySQLOptions(table).Compression = opt.StrValue
			continue
		case ast.TableOptionRowFormat:
			ensureMySQLOptions(table).RowFormat = rowFormatToString(opt.UintValue)
			continue
		case ast.TableOptionStatsPersistent:
			applyStatsPersistentOption(opt, table)
			continue
		case ast.TableOptionStatsAutoRecalc:
			applyStatsAutoRecalcOption(opt, table)
			continue
		case ast.TableOptionStatsSamplePages:
			applyStatsSamplePagesOption(opt, table)
			continue
		case ast.TableOptionUnion:
			applyUnionOption(opt, table)
			continue
		case ast.TableOptionNone:
			continue
		}

		if applyStandardTableOption(opt, table) {
			continue
		}
		if applyMySQLTableOption(opt, table) {
			continue
		}
		p.applyTiDBTableOption(opt, table)
	}
}

// applyStandardTableOption handles options whose storage location and
// semantics don't depend on a specific MySQL-family dialect beyond the
// nested option group they live in. Reports whether opt.Tp was recognized.
func applyStandardTableOption(opt *ast.TableOption, table *core.Table) bool {
	switch opt.Tp {
	case ast.TableOptionPackKeys:
		if opt.Default {
			ensureMySQLOptions(table).PackKeys = "DEFAULT"
		} else if opt.UintValue == 1 {
			ensureMySQLOptions(table).PackKeys = "1"
		} else {
			ensureMySQLOptions(table).PackKeys = "0"
		}
	case ast.TableOptionAvgRowLength:
		ensureMySQLOptions(table).AvgRowLength = opt.UintValue
	case ast.TableOptionKeyBlockSize:
		ensureMySQLOptions(table).KeyBlockSize = opt.UintValue
	case ast.TableOptionMaxRows:
		ensureMySQLOptions(table).MaxRows = opt.UintValue
	case ast.TableOptionMinRows:
		ensureMySQLOptions(table).MinRows = opt.UintValue
	case ast.TableOptionDelayKeyWrite:
		ensureMySQLOptions(table).DelayKeyWrite = opt.UintValue
	case ast.TableOptionTablespace:
		table.Options.Tablespace = opt.StrValue
	case ast.TableOptionDataDirectory:
		ensureMySQLOptions(table).DataDirectory = opt.StrValue
	case ast.TableOptionIndexDirectory:
		ensureMySQLOptions(table).IndexDirectory = opt.StrValue
	case ast.TableOptionEncryption:
		ensureMySQLOptions(table).Encryption = opt.StrValue
	case ast.TableOptionStorageMedia:
		ensureMySQLOptions(table).StorageMedia = opt.StrValue
	case ast.TableOptionInsertMethod:
		ensureMySQLOptions(table).InsertMethod = opt.StrValue
	case ast.TableOptionConnection:
		ensureMySQLOptions(table).Connection = opt.StrValue
	case ast.TableOptionPassword:
		ensureMySQLOptions(table).Password = opt.StrValue
	case ast.TableOptionAutoextendSize:
		ensureMySQLOptions(table).AutoextendSize = opt.StrValue
	case ast.TableOptionPageChecksum:
		ensureMariaDBOptions(table).PageChecksum = opt.UintValue
	case ast.TableOptionTransactional:
		ensureMariaDBOptions(table).Transactional = opt.UintValue
	default:
		return false
	}
	return true
}

// applyMySQLTableOption handles options specific to the MySQL/Percona
// option surface that fall outside the standard group above. Reports
// whether opt.Tp was recognized.
func applyMySQLTableOption(opt *ast.TableOption, table *core.Table) bool {
	switch opt.Tp {
	case ast.TableOptionSecondaryEngine:
		ensureMySQLOptions(table).SecondaryEngine = opt.StrValue
	case ast.TableOptionSecondaryEngineNull:
		ensureMySQLOptions(table).SecondaryEngine = "NULL"
	case ast.TableOptionTableCheckSum:
		ensureMySQLOptions(table).TableChecksum = opt.UintValue
	case ast.TableOptionEngineAttribute:
		ensureMySQLOptions(table).EngineAttribute = opt.StrValue
	case ast.TableOptionSecondaryEngineAttribute:
		ensureMySQLOptions(table).SecondaryEngineAttribute = opt.StrValue
	case ast.TableOptionPageCompressed:
		ensureMySQLOptions(table).PageCompressed = optionTruthy(opt.BoolValue, opt.StrValue, opt.UintValue)
	case ast.TableOptionPageCompressionLevel:
		ensureMySQLOptions(table).PageCompressionLevel = opt.UintValue
	case ast.TableOptionIetfQuotes:
		ensureMySQLOptions(table).IetfQuotes = optionTruthy(opt.BoolValue, opt.StrValue, opt.UintValue)
	case ast.TableOptionNodegroup:
		ensureMySQLOptions(table).Nodegroup = opt.UintValue
	default:
		return false
	}
	return true
}

func applyStatsPersistentOption(opt *ast.TableOption, table *core.Table) {
	if opt.Default {
		ensureMySQLOptions(table).StatsPersistent = "DEFAULT"
	} else {
		ensureMySQLOptions(table).StatsPersistent = strconv.FormatUint(opt.UintValue, 10)
	}
}

func applyStatsAutoRecalcOption(opt *ast.TableOption, table *core.Table) {
	if opt.Default {
		ensureMySQLOptions(table).StatsAutoRecalc = "DEFAULT"
	} else {
		ensureMySQLOptions(table).StatsAutoRecalc = strconv.FormatUint(opt.UintValue, 10)
	}
}

func applyStatsSamplePagesOption(opt *ast.TableOption, table *core.Table) {
	if opt.Default {
		ensureMySQLOptions(table).StatsSamplePages = "DEFAULT"
	} else {
		ensureMySQLOptions(table).StatsSamplePages = strconv.FormatUint(opt.UintValue, 10)
	}
}

func applyUnionOption(opt *ast.TableOption, table *core.Table) {
	union := make([]string, len(opt.TableNames))
	for idx, tn := range opt.TableNames {
		union[idx] = tn.Name.O
	}
	ensureMySQLOptions(table).Union = union
}

// applyTiDBTableOption handles TiDB-only table options. Reports whether
// opt.Tp was recognized.
func (p *Parser) applyTiDBTableOption(opt *ast.TableOption, table *core.Table) bool {
	switch opt.Tp {
	case ast.TableOptionAutoIdCache:
		ensureTiDBOptions(table).AutoIDCache = opt.UintValue
	case ast.TableOptionAutoRandomBase:
		ensureTiDBOptions(table).AutoRandomBase = opt.UintValue
	case ast.TableOptionShardRowID:
		ensureTiDBOptions(table).ShardRowID = opt.UintValue
	case ast.TableOptionPreSplitRegion:
		ensureTiDBOptions(table).PreSplitRegion = opt.UintValue
	case ast.TableOptionTTL:
		p.applyTTLOption(opt, table)
	case ast.TableOptionTTLEnable:
		ensureTiDBOptions(table).TTLEnable = optionTruthy(opt.BoolValue, opt.StrValue, opt.UintValue)
	case ast.TableOptionTTLJobInterval:
		ensureTiDBOptions(table).TTLJobInterval = opt.StrValue
	case ast.TableOptionSequence:
		ensureTiDBOptions(table).Sequence = optionTruthy(opt.BoolValue, opt.StrValue, opt.UintValue)
	case ast.TableOptionAffinity:
		ensureTiDBOptions(table).Affinity = opt.StrValue
	case ast.TableOptionPlacementPolicy:
		ensureTiDBOptions(table).PlacementPolicy = opt.StrValue
	case ast.TableOptionStatsBuckets:
		ensureTiDBOptions(table).StatsBuckets = opt.UintValue
	case ast.TableOptionStatsTopN:
		ensureTiDBOptions(table).StatsTopN = opt.UintValue
	case ast.TableOptionStatsColsChoice:
		ensureTiDBOptions(table).StatsColsChoice = opt.StrValue
	case ast.TableOptionStatsColList:
		ensureTiDBOptions(table).StatsColList = opt.StrValue
	case ast.TableOptionStatsSampleRate:
		p.parseTiDBStatsSampleRateOption(opt, table)
	default:
		return false
	}
	return true
}

func (p *Parser) applyTTLOption(opt *ast.TableOption, table *core.Table) {
	if opt.ColumnName == nil || opt.TimeUnitValue == nil {
		return
	}
	val := ""
	if opt.Value != nil {
		if s := p.exprToString(opt.Value); s != nil {
			val = *s
		}
	}
	ensureTiDBOptions(table).TTL = fmt.Sprintf("`%s` + INTERVAL %s %s", opt.ColumnName.Name.O, val, opt.TimeUnitValue.Unit.String())
}

func (p *Parser) parseTiDBStatsSampleRateOption(opt *ast.TableOption, table *core.Table) {
	if opt.Value == nil {
		return
	}
	s := p.exprToString(opt.Value)
	if s == nil {
		return
	}
	if f, err := strconv.ParseFloat(*s, 64); err == nil {
		ensureTiDBOptions(table).StatsSampleRate = f
	}
}

func (p *Parser) parseColumns(cols []*ast.ColumnDef, table *core.Table) {
	for _, colDef := range cols {
		col := &core.Column{
			Name:     colDef.Name.Name.O,
			TypeRaw:  colDef.Tp.String(),
			Type:     core.NormalizeDataType(colDef.Tp.String()),
			Nullable: true,
			Collate:  colDef.Tp.GetCollate(),
			Charset:  colDef.Tp.GetCharset(),
		}

		for _, opt := range colDef.Options {
			switch opt.Tp {
			case ast.ColumnOptionNotNull:
				col.Nullable = false
			case ast.ColumnOptionNull:
				col.Nullable = true
			case ast.ColumnOptionPrimaryKey:
				col.PrimaryKey = true
				col.Nullable = false
			case ast.ColumnOptionAutoIncrement:
				col.AutoIncrement = true
			case ast.ColumnOptionDefaultValue:
				col.DefaultValue = p.exprToString(opt.Expr)
			case ast.ColumnOptionOnUpdate:
				col.OnUpdate = p.exprToString(opt.Expr)
			case ast.ColumnOptionUniqKey:
				table.Constraints = append(table.Constraints, &core.Constraint{
					Type:    core.ConstraintUnique,
					Columns: []string{col.Name},
				})
			case ast.ColumnOptionComment:
				if s := p.exprToString(opt.Expr); s != nil {
					col.Comment = *s
				}
			case ast.ColumnOptionCollate:
				if s := p.exprToString(opt.Expr); s != nil {
					col.Collate = *s
				} else if opt.StrValue != "" {
					col.Collate = opt.StrValue
				}
			case ast.ColumnOptionFulltext:
				table.Indexes = append(table.Indexes, &core.Index{
					Columns: []core.IndexColumn{{Name: col.Name}},
					Unique:  false,
					Type:    core.IndexTypeFullText,
				})
			case ast.ColumnOptionCheck:
				if s := p.exprToString(opt.Expr); s != nil {
					table.Constraints = append(table.Constraints, &core.Constraint{
						Type:            core.ConstraintCheck,
						Columns:         []string{col.Name},
						CheckExpression: *s,
					})
				}
			case ast.ColumnOptionReference:
				c := &core.Constraint{
					Type:            core.ConstraintForeignKey,
					Columns:         []string{col.Name},
					ReferencedTable: opt.Refer.Table.Name.O,
				}
				for _, spec := range opt.Refer.IndexPartSpecifications {
					if spec.Column != nil {
						c.ReferencedColumns = append(c.ReferencedColumns, spec.Column.Name.O)
					}
				}
				if opt.Refer.OnDelete != nil {
					c.OnDelete = core.ReferentialAction(opt.Refer.OnDelete.ReferOpt.String())
				}
				if opt.Refer.OnUpdate != nil {
					c.OnUpdate = core.ReferentialAction(opt.Refer.OnUpdate.ReferOpt.String())
				}
				table.Constraints = append(table.Constraints, c)
			case ast.ColumnOptionGenerated:
				col.IsGenerated = true
				if opt.Expr != nil {
					if s := p.exprToString(opt.Expr); s != nil {
						col.GenerationExpression = *s
					}
				}
				if opt.Stored {
					col.GenerationStorage = core.GenerationStored
				} else {
					col.GenerationStorage = core.GenerationVirtual
				}
			case ast.ColumnOptionColumnFormat:
				col.ColumnFormat = opt.StrValue
			case ast.ColumnOptionStorage:
				col.Storage = opt.StrValue
			case ast.ColumnOptionAutoRandom:
				col.AutoRandom = uint64(opt.AutoRandOpt.ShardBits)
			case ast.ColumnOptionSecondaryEngineAttribute:
				col.SecondaryEngineAttribute = opt.StrValue
			case ast.ColumnOptionNoOption:
			}
		}
		table.Columns = append(table.Columns, col)
		if col.PrimaryKey {
			p.ensurePrimaryKeyColumn(table, col.Name)
		}
	}
}

func (p *Parser) ensurePrimaryKeyColumn(table *core.Table, colName string) {
	if table == nil {
		return
	}
	colName = strings.TrimSpace(colName)
	if colName == "" {
		return
	}

	var pk *core.Constraint
	for _, c := range table.Constraints {
		if c == nil {
			continue
		}
		if c.Type == core.ConstraintPrimaryKey {
			pk = c
			break
		}
	}
	if pk == nil {
		pk = &core.Constraint{
			Name:    "PRIMARY",
			Type:    core.ConstraintPrimaryKey,
			Columns: []string{},
		}
		table.Constraints = append(table.Constraints, pk)
	}
	if strings.TrimSpace(pk.Name) == "" {
		pk.Name = "PRIMARY"
	}

	for _, existing := range pk.Columns {
		if strings.EqualFold(existing, colName) {
			if col := table.FindColumn(colName); col != nil {
				col.PrimaryKey = true
				col.Nullable = false
			}
			return
		}
	}
	pk.Columns = append(pk.Columns, colName)
	if col := table.FindColumn(colName); col != nil {
		col.PrimaryKey = true
		col.Nullable = false
	}
}

func (p *Parser) parseConstraints(constraints []*ast.Constraint, table *core.Table) {
	for _, constraint := range constraints {
		// TODO: check if make([]string, 0, len(constraint.Keys)) is faster or make([]string, len(constraint.Keys)) is faster
		columns := make([]string, 0, len(constraint.Keys))
		indexCols := make([]core.IndexColumn, 0, len(constraint.Keys))
		for _, key := range constraint.Keys {
			columns = append(columns, key.Column.Name.O)
			indexCols = append(indexCols, core.IndexColumn{
				Name:   key.Column.Name.O,
				Length: key.Length,
			})
		}

		switch constraint.Tp {
		case ast.ConstraintPrimaryKey:
			for _, colName := range columns {
				p.ensurePrimaryKeyColumn(table, colName)
			}
			if pk := table.PrimaryKey(); pk != nil {
				pk.Name = "PRIMARY"
				pk.Columns = columns
			}

		case ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
			table.Constraints = append(table.Constraints, &core.Constraint{
				Name:    constraint.Name,
				Type:    core.ConstraintUnique,
				Columns: columns,
			})

		case ast.ConstraintForeignKey:
			c := &core.Constraint{
				Name:            constraint.Name,
				Type:            core.ConstraintForeignKey,
				Columns:         columns,
				ReferencedTable: constraint.Refer.Table.Name.O,
			}
			for _, spec := range constraint.Refer.IndexPartSpecifications {
				if spec.Column != nil {
					c.ReferencedColumns = append(c.ReferencedColumns, spec.Column.Name.O)
				}
			}
			if constraint.Refer.OnDelete != nil {
				c.OnDelete = core.ReferentialAction(constraint.Refer.OnDelete.ReferOpt.String())
			}
			if constraint.Refer.OnUpdate != nil {
				c.OnUpdate = core.ReferentialAction(constraint.Refer.OnUpdate.ReferOpt.String())
			}
			table.Constraints = append(table.Constraints, c)

		case ast.ConstraintIndex, ast.ConstraintKey:
			table.Indexes = append(table.Indexes, &core.Index{
				Name:    constraint.Name,
				Columns: indexCols,
				Unique:  false,
				Type:    core.IndexTypeBTree,
			})

		case ast.ConstraintFulltext:
			table.Indexes = append(table.Indexes, &core.Index{
				Name:    constraint.Name,
				Columns: indexCols,
				Unique:  false,
				Type:    core.IndexTypeFullText,
			})

		case ast.ConstraintCheck:
			c := &core.Constraint{
				Name:    constraint.Name,
				Type:    core.ConstraintCheck,
				Columns: columns,
			}
			if constraint.Expr != nil {
				if s := p.exprToString(constraint.Expr); s != nil {
					c.CheckExpression = *s
				}
			}
			table.Constraints = append(table.Constraints, c)

		case ast.ConstraintVector, ast.ConstraintColumnar:
			table.Indexes = append(table.Indexes, &core.Index{
				Name:    constraint.Name,
				Columns: indexCols,
				Unique:  false,
				Type:    core.IndexTypeBTree,
			})
		case ast.ConstraintNoConstraint:
		}
	}
}

func (p *Parser) exprToString(expr ast.ExprNode) *string {
	if expr == nil {
		return nil
	}

	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := expr.Restore(restoreCtx); err != nil {
		return nil
	}
	s := strings.TrimSpace(sb.String())

	if unquoted, ok := tryUnquoteSQLStringLiteral(s); ok {
		return &unquoted
	}

	return &s
}

func tryUnquoteSQLStringLiteral(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[len(s)-1] != '\'' {
		return "", false
	}

	if s[0] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), true
	}

	q := strings.IndexByte(s, '\'')
	if q <= 0 {
		return "", false
	}
	prefix := strings.TrimSpace(s[:q])
	if !isSQLStringIntroducer(prefix) {
		return "", false
	}
	inner := s[q+1 : len(s)-1]
	return strings.ReplaceAll(inner, "''", "'"), true
}

func isSQLStringIntroducer(prefix string) bool {
	if prefix == "" {
		return false
	}
	if strings.EqualFold(prefix, "N") {
		return true
	}
	if !strings.HasPrefix(prefix, "_") || len(prefix) == 1 {
		return false
	}
	for _, r := range prefix[1:] {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

func optionTruthy(boolValue bool, strValue string, uintValue uint64) bool {
	if boolValue {
		return true
	}
	if uintValue == 1 {
		return true
	}
	s := strings.TrimSpace(strValue)
	return strings.EqualFold(s, "ON") || s == "1" || strings.EqualFold(s, "TRUE")
}

func rowFormatToString(v uint64) string {
	switch v {
	case ast.RowFormatFixed:
		return "FIXED"
	case ast.RowFormatDynamic:
		return "DYNAMIC"
	case ast.RowFormatCompressed:
		return "COMPRESSED"
	case ast.RowFormatRedundant:
		return "REDUNDANT"
	case ast.RowFormatCompact:
		return "COMPACT"
	case ast.RowFormatDefault:
		return "DEFAULT"
	case ast.TokuDBRowFormatDefault:
		return "TOKUDB_DEFAULT"
	case ast.TokuDBRowFormatFast:
		return "TOKUDB_FAST"
	case ast.TokuDBRowFormatSmall:
		return "TOKUDB_SMALL"
	case ast.TokuDBRowFormatZlib:
		return "TOKUDB_ZLIB"
	case ast.TokuDBRowFormatQuickLZ:
		return "TOKUDB_QUICKLZ"
	case ast.TokuDBRowFormatLzma:
		return "TOKUDB_LZMA"
	case ast.TokuDBRowFormatSnappy:
		return "TOKUDB_SNAPPY"
	case ast.TokuDBRowFormatUncompressed:
		return "TOKUDB_UNCOMPRESSED"
	case ast.TokuDBRowFormatZstd:
		return "TOKUDB_ZSTD"
	default:
		return ""
	}
}
