package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/utils"
)

// maxLineBytes bounds a single NDJSON line; audit records are small but the
// export may batch wide context fields.
const maxLineBytes = 1 << 20

func (l *Loader) loadNDJSON(path string) (models.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.RecordSet{}, utils.NewAppError("loader.loadNDJSON", utils.KindNotFound, fmt.Sprintf("Log file not found: %s", path), err)
	}
	defer f.Close()

	return decodeNDJSON(f)
}

// decodeNDJSON reads one JSON object per line, skipping blank lines. A line
// that is not a JSON object fails the whole load: the source is considered
// structurally unreadable, not a row with missing values.
func decodeNDJSON(r io.Reader) (models.RecordSet, error) {
	const op = "loader.decodeNDJSON"

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var set models.RecordSet
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var row map[string]any
		if err := json.Unmarshal(line, &row); err != nil {
			return models.RecordSet{}, utils.NewAppError(op, utils.KindParseError, fmt.Sprintf("Failed to load log: %v", err), err)
		}
		appendRow(&set, row)
	}
	if err := sc.Err(); err != nil {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindParseError, fmt.Sprintf("Failed to load log: %v", err), err)
	}

	return set, nil
}
