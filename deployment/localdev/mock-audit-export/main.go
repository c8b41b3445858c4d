// mock-audit-export serves deterministic NDJSON audit records for exercising
// the HTTP record source locally.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

type auditRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	Confidence    float64   `json:"confidence"`
	PHIType       string    `json:"phi_type"`
	PatternType   string    `json:"pattern_type"`
	FalseNegative bool      `json:"false_negative"`
	IsPHI         bool      `json:"is_phi"`
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/audit/export", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		base := time.Now().UTC().Add(-24 * time.Hour)
		types := []string{"ssn", "mrn", "name", "date_of_birth"}
		for i := 0; i < 200; i++ {
			rec := auditRecord{
				Timestamp:     base.Add(time.Duration(i) * time.Minute),
				Confidence:    0.35 + float64(i%13)*0.05,
				PHIType:       types[i%len(types)],
				PatternType:   types[(i/3)%len(types)],
				FalseNegative: i%11 == 0,
				IsPHI:         i%2 == 0,
			}
			if err := enc.Encode(rec); err != nil {
				return
			}
		}
	})

	addr := ":8085"
	fmt.Println("mock-audit-export listening on", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
