package loader

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vulpescelare/cortex-engine/internal/models"
	"github.com/vulpescelare/cortex-engine/internal/utils"
)

// loadHTTP pulls NDJSON audit records from the host application's
// audit-export endpoint. Unreachable or non-OK sources report NotFound with
// the attempted URL, same as a missing file.
func (l *Loader) loadHTTP(ctx context.Context, url string) (models.RecordSet, error) {
	const op = "loader.loadHTTP"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindNotFound, fmt.Sprintf("Log source not reachable: %s", url), err)
	}
	req.Header.Set("Accept", "application/x-ndjson")

	client := &http.Client{Timeout: l.httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindNotFound, fmt.Sprintf("Log source not reachable: %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.RecordSet{}, utils.NewAppError(op, utils.KindNotFound, fmt.Sprintf("Log source not reachable: %s (status %d)", url, resp.StatusCode), nil)
	}

	return decodeNDJSON(resp.Body)
}
