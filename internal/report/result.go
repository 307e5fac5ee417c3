// Package report assembles the pipeline output for the external report
// renderer: profile, KPI set, narrative, and run metadata, all
// representable as plain JSON (nested maps/lists/strings/numbers/bools).
package report

import (
	"fmt"
	"time"

	"github.com/algorzen/insight-reporter/internal/kpi"
	"github.com/algorzen/insight-reporter/internal/narrative"
	"github.com/algorzen/insight-reporter/internal/profile"
)

// Branding is injected configuration stamped onto the run metadata.
// Never package-global state.
type Branding struct {
	Company string `json:"company,omitempty"`
	Author  string `json:"author,omitempty"`
}

// Meta is the run-metadata record for downstream consumers.
type Meta struct {
	RunID            string    `json:"run_id"`
	Dataset          string    `json:"dataset,omitempty"`
	DatasetType      string    `json:"dataset_type"`
	RecordCount      int       `json:"record_count"`
	GenerationMethod string    `json:"generation_method"`
	GeneratedAt      time.Time `json:"generated_at"`
	Branding         Branding  `json:"branding"`
}

// Result is the complete output of one analysis run. Degraded is set
// when any non-fatal condition reduced the output (remote fallback,
// missing KPI source columns); Warnings carries the detail.
type Result struct {
	Profile   *profile.DatasetProfile `json:"profile"`
	KPIs      *kpi.Set                `json:"kpis"`
	Narrative *narrative.Narrative    `json:"narrative"`
	Meta      Meta                    `json:"meta"`
	Degraded  bool                    `json:"degraded"`
	Warnings  []string                `json:"warnings,omitempty"`
}

// SerializationError wraps a failure converting a Result to the
// interchange format. Fatal for the emission step only: the Result
// itself stays valid and the emission can be retried.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize result: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
