// Package pipeline runs the full analysis sequence: profile → KPI
// extraction → narrative generation. Each stage is a pure computation
// over the previous stage's immutable output; only the remote narrative
// call can block on I/O, and it is bounded by its own timeout.
package pipeline

import (
	"context"
	"time"

	"github.com/algorzen/insight-reporter/internal/dataset"
	"github.com/algorzen/insight-reporter/internal/kpi"
	"github.com/algorzen/insight-reporter/internal/narrative"
	"github.com/algorzen/insight-reporter/internal/profile"
	"github.com/algorzen/insight-reporter/internal/report"
	"github.com/google/uuid"
)

// Config is the per-run configuration handed in at start. Branding
// travels here, not in globals.
type Config struct {
	Remote         *narrative.Client // nil when no remote capability configured
	RemoteDisabled bool
	RemoteTimeout  time.Duration
	Tone           string
	Branding       report.Branding
}

// Run executes one analysis. Independent runs share no mutable state
// and may execute concurrently. Cancellation aborts the whole run with
// no partial result.
func Run(ctx context.Context, ds *dataset.Dataset, cfg Config) (*report.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prof, err := profile.Profile(ds)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kpis, kpiWarns := kpi.Extract(ds, prof.DatasetType)

	gen := &narrative.Generator{
		Remote:   cfg.Remote,
		Disabled: cfg.RemoteDisabled,
		Timeout:  cfg.RemoteTimeout,
	}
	story, remoteErr, err := gen.Generate(ctx, prof, kpis, cfg.Tone)
	if err != nil {
		return nil, err
	}

	res := &report.Result{
		Profile:   prof,
		KPIs:      kpis,
		Narrative: story,
		Meta: report.Meta{
			RunID:            uuid.NewString(),
			Dataset:          ds.Name,
			DatasetType:      prof.DatasetType,
			RecordCount:      ds.Rows(),
			GenerationMethod: string(story.Method),
			GeneratedAt:      time.Now().UTC(),
			Branding:         cfg.Branding,
		},
	}
	for _, w := range kpiWarns {
		res.Warnings = append(res.Warnings, "kpi: "+w.String())
		res.Degraded = true
	}
	if remoteErr != nil {
		res.Warnings = append(res.Warnings, "narrative: "+remoteErr.Error())
		res.Degraded = true
	}
	return res, nil
}
