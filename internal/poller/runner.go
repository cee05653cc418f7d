// internal/poller/runner.go
package poller

import (
	"context"
	"time"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
)

// Run starts the ticker loop and emits one Update per tick on out.
//
// One goroutine owns the accessor, the detector and the ticker, so two
// cycles never overlap; a slow cycle makes the ticker drop ticks.
// After each connected publish the detector runs DetectDelay later on that
// same state. A continuation still pending when the next tick fires runs
// first. Cancelling ctx discards a pending continuation without running it.
func (p *Poller) Run(ctx context.Context, out chan<- Update) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	detect := time.NewTimer(time.Hour)
	detect.Stop()
	defer detect.Stop()

	var pending *decoder.State

	for {
		select {
		case <-ctx.Done():
			return

		case <-detect.C:
			if pending != nil {
				p.detector.Observe(pending)
				pending = nil
			}

		case <-ticker.C:
			if pending != nil {
				detect.Stop()
				p.detector.Observe(pending)
				pending = nil
			}

			u := p.PollOnce()

			select {
			case out <- u:
			case <-ctx.Done():
				return
			}

			if !u.Connected {
				continue
			}
			if p.cfg.DetectDelay <= 0 {
				p.detector.Observe(u.State)
				continue
			}
			pending = u.State
			detect.Reset(p.cfg.DetectDelay)
		}
	}
}
