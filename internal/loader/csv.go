package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/utils"
)

func (l *Loader) loadCSV(path string) (models.RecordSet, error) {
	const op = "loader.loadCSV"

	f, err := os.Open(path)
	if err != nil {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindNotFound, fmt.Sprintf("Log file not found: %s", path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return models.RecordSet{}, nil
	}
	if err != nil {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindParseError, fmt.Sprintf("Failed to load log: %v", err), err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(strings.ToLower(name))
	}

	// Column presence comes from the header so an empty file still reports
	// its schema.
	var set models.RecordSet
	for _, name := range columns {
		markColumn(&set.Columns, name)
	}
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.RecordSet{}, utils.NewAppError(op, utils.KindParseError, fmt.Sprintf("Failed to load log: %v", err), err)
		}

		row := make(map[string]any, len(columns))
		for i, name := range columns {
			if i >= len(fields) {
				row[name] = ""
				continue
			}
			row[name] = fields[i]
		}
		appendRow(&set, row)
	}

	return set, nil
}
