package loader

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"slices"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/utils"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteAvailable reports whether the sqlite3 driver is compiled in. Builds
// without cgo ship a stub driver, so this is a capability, not a constant.
func SQLiteAvailable() bool {
	return slices.Contains(sql.Drivers(), "sqlite3")
}

func (l *Loader) loadSQLite(ctx context.Context, path string) (models.RecordSet, error) {
	const op = "loader.loadSQLite"

	if !SQLiteAvailable() {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindDependencyUnavailable, "SQLite driver not available in this build", nil)
	}
	if !identifierPattern.MatchString(l.sqliteTable) {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindParseError, fmt.Sprintf("Invalid audit table name: %s", l.sqliteTable), nil)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindParseError, fmt.Sprintf("Failed to load log: %v", err), err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+l.sqliteTable)
	if err != nil {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindParseError, fmt.Sprintf("Failed to load log: %v", err), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindParseError, fmt.Sprintf("Failed to load log: %v", err), err)
	}

	var set models.RecordSet
	for _, name := range columns {
		markColumn(&set.Columns, name)
	}

	values := make([]any, len(columns))
	scanTargets := make([]any, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return models.RecordSet{}, utils.NewAppError(op, utils.KindParseError, fmt.Sprintf("Failed to load log: %v", err), err)
		}
		row := make(map[string]any, len(columns))
		for i, name := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if v == nil {
				continue
			}
			row[name] = v
		}
		// NULL cells stay absent from the row map, but the column flags
		// above already recorded the schema.
		appendRow(&set, row)
	}
	if err := rows.Err(); err != nil {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindParseError, fmt.Sprintf("Failed to load log: %v", err), err)
	}

	return set, nil
}
