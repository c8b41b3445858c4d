// Package loader materialises audit record sets from the supported sources:
// CSV and line-delimited JSON files, SQLite databases, and the host
// application's NDJSON audit-export endpoint.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/utils"
)

// Loader reads audit record sets. It is stateless per call; each Load
// materialises an independent RecordSet owned by the caller.
type Loader struct {
	httpTimeout time.Duration
	sqliteTable string
	logger      *slog.Logger
}

// New constructs a Loader. table names the SQLite source table and defaults
// to audit_log.
func New(httpTimeout time.Duration, table string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if table == "" {
		table = "audit_log"
	}
	if httpTimeout <= 0 {
		httpTimeout = 5 * time.Second
	}
	return &Loader{httpTimeout: httpTimeout, sqliteTable: table, logger: logger}
}

// Load reads the full record set behind path. http(s) URLs hit the
// audit-export endpoint; otherwise the file extension picks the decoder.
func (l *Loader) Load(ctx context.Context, path string) (models.RecordSet, error) {
	const op = "loader.Load"

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return l.loadHTTP(ctx, path)
	}

	if path == "" {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindNotFound, "Log file not found: ", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindNotFound, fmt.Sprintf("Log file not found: %s", path), nil)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return l.loadCSV(path)
	case ".json", ".jsonl", ".ndjson":
		return l.loadNDJSON(path)
	case ".db", ".sqlite", ".sqlite3":
		return l.loadSQLite(ctx, path)
	default:
		return models.RecordSet{}, utils.NewAppError(op, utils.KindUnsupportedFormat, fmt.Sprintf("Unsupported file format: %s", ext), nil)
	}
}

// markColumn flags a known column name as present in the source schema.
func markColumn(cols *models.ColumnSet, name string) {
	switch name {
	case "timestamp":
		cols.Timestamp = true
	case "confidence":
		cols.Confidence = true
	case "phi_type":
		cols.PHIType = true
	case "pattern_type":
		cols.PatternType = true
	case "false_negative":
		cols.FalseNegative = true
	case "is_phi":
		cols.IsPHI = true
	}
}

// appendRow folds one decoded source row into the record set, marking column
// presence for every key the row carries. Undecodable values degrade to nil
// rather than failing the load.
func appendRow(set *models.RecordSet, row map[string]any) {
	var rec models.AuditRecord

	if v, ok := row["timestamp"]; ok {
		set.Columns.Timestamp = true
		rec.Timestamp = timeValue(v)
	}
	if v, ok := row["confidence"]; ok {
		set.Columns.Confidence = true
		rec.Confidence = floatValue(v)
	}
	if v, ok := row["phi_type"]; ok {
		set.Columns.PHIType = true
		rec.PHIType = stringValue(v)
	}
	if v, ok := row["pattern_type"]; ok {
		set.Columns.PatternType = true
		rec.PatternType = stringValue(v)
	}
	if v, ok := row["false_negative"]; ok {
		set.Columns.FalseNegative = true
		rec.FalseNegative = boolValue(v)
	}
	if v, ok := row["is_phi"]; ok {
		set.Columns.IsPHI = true
		rec.IsPHI = boolValue(v)
	}

	set.Records = append(set.Records, rec)
}

func timeValue(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		parsed, err := utils.ParseTimestamp(t)
		if err != nil {
			return nil
		}
		return &parsed
	case float64:
		// Unix seconds, the export format used by the columnar converter.
		parsed := time.Unix(int64(t), 0).UTC()
		return &parsed
	case int64:
		parsed := time.Unix(t, 0).UTC()
		return &parsed
	default:
		return nil
	}
}

func floatValue(v any) *float64 {
	switch f := v.(type) {
	case float64:
		return &f
	case int64:
		value := float64(f)
		return &value
	case string:
		if f == "" {
			return nil
		}
		value, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil
		}
		return &value
	default:
		return nil
	}
}

func stringValue(v any) *string {
	switch s := v.(type) {
	case string:
		if s == "" {
			return nil
		}
		return &s
	case []byte:
		if len(s) == 0 {
			return nil
		}
		value := string(s)
		return &value
	default:
		return nil
	}
}

func boolValue(v any) *bool {
	switch b := v.(type) {
	case bool:
		return &b
	case float64:
		value := b != 0
		return &value
	case int64:
		value := b != 0
		return &value
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "t", "yes":
			value := true
			return &value
		case "false", "0", "f", "no":
			value := false
			return &value
		default:
			return nil
		}
	default:
		return nil
	}
}
