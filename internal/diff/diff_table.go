package diff

import (
	"strconv"
	"strings"

	"sqlpp/internal/core"
)

const (
	// OptionsCount is the number of options that we support for MySQL dialect.
	OptionsCount = 45
)

func compareTable(oldT, newT *core.Table, opts Options) *TableDiff {
	td := &TableDiff{Name: newT.Name}

	compareColumns(oldT.Columns, newT.Columns, td, opts)
	compareConstraints(oldT.Constraints, newT.Constraints, td)
	markConstraintsForRebuild(oldT.Constraints, newT.Constraints, td)
	compareIndexes(oldT.Indexes, newT.Indexes, td)
	compareOptions(oldT, newT, td)
	compareTriggers(oldT.Triggers, newT.Triggers, td)

	if td.isEmpty() {
		return nil
	}

	td.sort()
	return td
}

func compareTriggers(oldTriggers, newTriggers []*core.Trigger, td *TableDiff) {
	oldByName := make(map[string]*core.Trigger, len(oldTriggers))
	for _, t := range oldTriggers {
		oldByName[strings.ToLower(t.Name)] = t
	}
	newByName := make(map[string]*core.Trigger, len(newTriggers))
	for _, t := range newTriggers {
		newByName[strings.ToLower(t.Name)] = t
	}

	for key, nt := range newByName {
		ot, ok := oldByName[key]
		if !ok {
			td.AddedTriggers = append(td.AddedTriggers, nt)
			continue
		}
		if ot.When != nt.When || ot.Op != nt.Op || ot.Pos != nt.Pos || ot.Body != nt.Body {
			td.ModifiedTriggers = append(td.ModifiedTriggers, &TriggerChange{Name: nt.Name, Old: ot, New: nt})
		}
	}
	for key, ot := range oldByName {
		if _, ok := newByName[key]; !ok {
			td.RemovedTriggers = append(td.RemovedTriggers, ot)
		}
	}
}

func compareColumns(oldItems, newItems []*core.Column, td *TableDiff, opts Options) {
	oldMap, oldCollisions := mapColumnsByName(oldItems)
	newMap, newCollisions := mapColumnsByName(newItems)
	for _, c := range oldCollisions {
		td.Warnings = append(td.Warnings, "old table columns: "+c)
	}
	for _, c := range newCollisions {
		td.Warnings = append(td.Warnings, "new table columns: "+c)
	}

	for name, newItem := range newMap {
		oldItem, exists := oldMap[name]
		if !exists {
			td.AddedColumns = append(td.AddedColumns, newItem)
			continue
		}
		if !equalColumn(oldItem, newItem) {
			td.ModifiedColumns = append(td.ModifiedColumns, &ColumnChange{
				Name:    newItem.Name,
				Old:     oldItem,
				New:     newItem,
				Changes: columnFieldChanges(oldItem, newItem),
			})
		}
	}

	for name, oldItem := range oldMap {
		if _, exists := newMap[name]; !exists {
			td.RemovedColumns = append(td.RemovedColumns, oldItem)
		}
	}

	if opts.DetectColumnRenames {
		td.detectColumnRenames()
	}
}

func equalColumn(a, b *core.Column) bool {
	return compareColumnAttrs(a, b).allMatch()
}

func columnFieldChanges(oldC, newC *core.Column) []*FieldChange {
	c := &fieldChangeCollector{}

	if !strings.EqualFold(oldC.TypeRaw, newC.TypeRaw) {
		c.Add("type", oldC.TypeRaw, newC.TypeRaw)
	}
	c.Add("nullable", strconv.FormatBool(oldC.Nullable), strconv.FormatBool(newC.Nullable))
	c.Add("primary_key", strconv.FormatBool(oldC.PrimaryKey), strconv.FormatBool(newC.PrimaryKey))
	c.Add("auto_increment", strconv.FormatBool(oldC.AutoIncrement), strconv.FormatBool(newC.AutoIncrement))
	c.Add("charset", strings.TrimSpace(oldC.Charset), strings.TrimSpace(newC.Charset))
	c.Add("collate", strings.TrimSpace(oldC.Collate), strings.TrimSpace(newC.Collate))
	c.Add("comment", oldC.Comment, newC.Comment)
	c.Add("default", ptrStr(oldC.DefaultValue), ptrStr(newC.DefaultValue))
	c.Add("on_update", ptrStr(oldC.OnUpdate), ptrStr(newC.OnUpdate))
	c.Add("generated", strconv.FormatBool(oldC.IsGenerated), strconv.FormatBool(newC.IsGenerated))
	c.Add("generation_expression", strings.TrimSpace(oldC.GenerationExpression), strings.TrimSpace(newC.GenerationExpression))
	c.Add("generation_storage", string(oldC.GenerationStorage), string(newC.GenerationStorage))
	c.Add("column_format", strings.TrimSpace(oldC.ColumnFormat), strings.TrimSpace(newC.ColumnFormat))
	c.Add("storage", strings.TrimSpace(oldC.Storage), strings.TrimSpace(newC.Storage))
	c.Add("auto_random", strconv.FormatUint(oldC.AutoRandom, 10), strconv.FormatUint(newC.AutoRandom, 10))

	return c.Changes
}

func compareOptions(oldT, newT *core.Table, td *TableDiff) {
	oldOpt := tableOptionMap(oldT)
	newOpt := tableOptionMap(newT)
	for _, k := range unionKeys(oldOpt, newOpt) {
		ov, nv := oldOpt[k], newOpt[k]
		if ov == nv {
			continue
		}
		td.ModifiedOptions = append(td.ModifiedOptions, &TableOptionChange{Name: k, Old: ov, New: nv})
	}
}

func tableOptionMap(t *core.Table) map[string]string {
	o := t.Options
	m := make(map[string]string, OptionsCount)

	addStr := func(name, val string) {
		if v := strings.TrimSpace(val); v != "" {
			m[name] = v
		}
	}

	addU64 := func(name string, val uint64) {
		if val != 0 {
			m[name] = strconv.FormatUint(val, 10)
		}
	}

	addBool := func(name string, val bool) {
		if val {
			m[name] = "ON"
		}
	}

	addStr("COMMENT", t.Comment)
	addStr("TABLESPACE", o.Tablespace)

	if my := o.MySQL; my != nil {
		addStr("AUTOEXTEND_SIZE", my.AutoextendSize)
		addU64("AUTO_INCREMENT", my.AutoIncrement)
		addU64("AVG_ROW_LENGTH", my.AvgRowLength)
		addStr("CHARSET", my.Charset)
		addU64("CHECKSUM", my.Checksum)
		addStr("COLLATE", my.Collate)
		addStr("COMPRESSION", my.Compression)
		addStr("CONNECTION", my.Connection)
		addStr("DATA DIRECTORY", my.DataDirectory)
		addU64("DELAY_KEY_WRITE", my.DelayKeyWrite)
		addStr("ENCRYPTION", my.Encryption)
		addStr("ENGINE", my.Engine)
		addStr("INDEX DIRECTORY", my.IndexDirectory)
		addStr("INSERT_METHOD", my.InsertMethod)
		addU64("KEY_BLOCK_SIZE", my.KeyBlockSize)
		addU64("MAX_ROWS", my.MaxRows)
		addU64("MIN_ROWS", my.MinRows)
		addStr("PACK_KEYS", my.PackKeys)
		addStr("PASSWORD", my.Password)
		addStr("ROW_FORMAT", my.RowFormat)
		addStr("STATS_AUTO_RECALC", my.StatsAutoRecalc)
		addStr("STATS_PERSISTENT", my.StatsPersistent)
		addStr("STATS_SAMPLE_PAGES", my.StatsSamplePages)
		addStr("STORAGE_MEDIA", my.StorageMedia)

		addStr("SECONDARY_ENGINE", my.SecondaryEngine)
		addU64("TABLE_CHECKSUM", my.TableChecksum)
		addStr("ENGINE_ATTRIBUTE", my.EngineAttribute)
		addStr("SECONDARY_ENGINE_ATTRIBUTE", my.SecondaryEngineAttribute)
		addBool("PAGE_COMPRESSED", my.PageCompressed)
		addU64("PAGE_COMPRESSION_LEVEL", my.PageCompressionLevel)
		addBool("IETF_QUOTES", my.IetfQuotes)
		addU64("NODEGROUP", my.Nodegroup)
		if len(my.Union) > 0 {
			m["UNION"] = strings.Join(my.Union, ",")
		}
	}

	if md := o.MariaDB; md != nil {
		addU64("PAGE_CHECKSUM", md.PageChecksum)
		addU64("TRANSACTIONAL", md.Transactional)
	}

	if td := o.TiDB; td != nil {
		addU64("AUTO_ID_CACHE", td.AutoIDCache)
		addU64("AUTO_RANDOM_BASE", td.AutoRandomBase)
		addU64("SHARD_ROW_ID_BITS", td.ShardRowID)
		addU64("PRE_SPLIT_REGIONS", td.PreSplitRegion)
		addStr("TTL", td.TTL)
		addBool("TTL_ENABLE", td.TTLEnable)
		addStr("TTL_JOB_INTERVAL", td.TTLJobInterval)
		addStr("PLACEMENT_POLICY", td.PlacementPolicy)
	}

	return m
}

func (td *TableDiff) sort() {
	sortNamed(td.AddedColumns)
	sortNamed(td.RemovedColumns)
	// ColumnRename needs special handling - it uses New.Name, not a direct Name field
	sortByFunc(td.RenamedColumns, func(r *ColumnRename) string {
		if r == nil || r.New == nil {
			return ""
		}
		return r.New.Name
	})
	sortNamed(td.ModifiedColumns)
	sortNamed(td.AddedConstraints)
	sortNamed(td.RemovedConstraints)
	sortNamed(td.ModifiedConstraints)
	sortNamed(td.AddedIndexes)
	sortNamed(td.RemovedIndexes)
	sortNamed(td.ModifiedIndexes)
	sortNamed(td.ModifiedOptions)
	sortByFunc(td.AddedTriggers, func(t *core.Trigger) string { return t.Name })
	sortByFunc(td.RemovedTriggers, func(t *core.Trigger) string { return t.Name })
	sortNamed(td.ModifiedTriggers)
}

func (td *TableDiff) isEmpty() bool {
	return len(td.AddedColumns) == 0 &&
		len(td.RemovedColumns) == 0 &&
		len(td.RenamedColumns) == 0 &&
		len(td.ModifiedColumns) == 0 &&
		len(td.AddedConstraints) == 0 &&
		len(td.RemovedConstraints) == 0 &&
		len(td.ModifiedConstraints) == 0 &&
		len(td.AddedIndexes) == 0 &&
		len(td.RemovedIndexes) == 0 &&
		len(td.ModifiedIndexes) == 0 &&
		len(td.ModifiedOptions) == 0 &&
		len(td.AddedTriggers) == 0 &&
		len(td.RemovedTriggers) == 0 &&
		len(td.ModifiedTriggers) == 0
}
