package models

import "time"

// AuditRecord is one historical detection event from the redaction audit
// log. Every field is optional in the source data; nil means the value was
// absent or unparsable on that row. Records are read-only inputs.
type AuditRecord struct {
	Timestamp     *time.Time
	Confidence    *float64
	PHIType       *string
	PatternType   *string
	FalseNegative *bool
	IsPHI         *bool
}

// ColumnSet flags which columns existed in the loaded source, independent of
// whether individual rows carried a value.
type ColumnSet struct {
	Timestamp     bool
	Confidence    bool
	PHIType       bool
	PatternType   bool
	FalseNegative bool
	IsPHI         bool
}

// RecordSet couples records with column-presence flags so consumers can
// distinguish "column never existed" from "value missing on this row".
type RecordSet struct {
	Records []AuditRecord
	Columns ColumnSet
}
