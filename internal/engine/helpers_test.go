package engine

import (
	"time"

	"github.com/vulpescelare/cortex-engine/internal/models"
)

func fptr(v float64) *float64 { return &v }

func bptr(v bool) *bool { return &v }

func sptr(v string) *string { return &v }

func tptr(v time.Time) *time.Time { return &v }

// labeledSet builds a record set with confidence and is_phi columns from
// parallel slices.
func labeledSet(confidences []float64, labels []bool) models.RecordSet {
	set := models.RecordSet{
		Columns: models.ColumnSet{Confidence: true, IsPHI: true},
	}
	for i := range confidences {
		set.Records = append(set.Records, models.AuditRecord{
			Confidence: fptr(confidences[i]),
			IsPHI:      bptr(labels[i]),
		})
	}
	return set
}
