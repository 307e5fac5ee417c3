package narrative

import (
	"context"
	"time"

	"github.com/algorzen/insight-reporter/internal/kpi"
	"github.com/algorzen/insight-reporter/internal/profile"
)

// Generator drives the REMOTE→LOCAL state machine. A nil Remote (or
// Disabled set) skips straight to LOCAL.
type Generator struct {
	Remote   *Client
	Disabled bool
	Timeout  time.Duration
}

// Generate produces the narrative for one run. The REMOTE path gets a
// single bounded attempt; every remote failure transitions to LOCAL and
// is reported via remoteErr so the caller can mark the result degraded.
// A cancelled context aborts the whole generation with no narrative.
func (g *Generator) Generate(ctx context.Context, prof *profile.DatasetProfile, kpis *kpi.Set, tone string) (n *Narrative, remoteErr *RemoteError, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if g.Remote != nil && !g.Disabled {
		timeout := g.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		rctx, cancel := context.WithTimeout(ctx, timeout)
		out, rerr := g.Remote.Generate(rctx, Request{Profile: prof, KPIs: kpis, Tone: tone})
		cancel()
		if rerr == nil {
			return out, nil, nil
		}
		// Parent cancellation aborts the run; only the attempt's own
		// deadline degrades to LOCAL.
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		if re, ok := rerr.(*RemoteError); ok {
			remoteErr = re
		} else {
			remoteErr = &RemoteError{Kind: KindMalformed, Err: rerr}
		}
	}
	return GenerateLocal(prof, kpis), remoteErr, nil
}
