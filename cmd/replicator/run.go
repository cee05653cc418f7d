// cmd/replicator/run.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/ff7-replicator/internal/battlelog"
	"github.com/tamzrod/ff7-replicator/internal/config"
	"github.com/tamzrod/ff7-replicator/internal/hacks"
	"github.com/tamzrod/ff7-replicator/internal/memory"
	"github.com/tamzrod/ff7-replicator/internal/poller"
	"github.com/tamzrod/ff7-replicator/internal/refdata"
	"github.com/tamzrod/ff7-replicator/internal/writer"
)

// logSink prints battle status changes.
type logSink struct{}

func (logSink) Append(ev battlelog.Event) error {
	for _, c := range ev.Changes {
		verb := "cured"
		if c.Inflicted {
			verb = "inflicted"
		}
		log.Printf("battle: actor %d %s %v", ev.TargetIndex, verb, c.Status)
	}
	return nil
}

func buildDetector(cfg *config.Config, a *app) (*battlelog.Detector, func() error, error) {
	noop := func() error { return nil }
	if !a.general.BattleLog {
		return battlelog.NewDetector(battlelog.Multi(nil)), noop, nil
	}

	path := cfg.Replicator.BattleLog.Path
	if path == "" {
		return battlelog.NewDetector(logSink{}), noop, nil
	}
	j, err := battlelog.OpenJournal(path)
	if err != nil {
		return nil, nil, err
	}
	return battlelog.NewDetector(battlelog.Multi{logSink{}, j}), j.Close, nil
}

func run(ctx context.Context, cfg *config.Config, a *app) error {
	rc := cfg.Replicator

	det, closeJournal, err := buildDetector(cfg, a)
	if err != nil {
		return err
	}
	defer closeJournal()

	attacks, err := refdata.NewAttackCache(rc.Refdata.AttackCacheSize)
	if err != nil {
		return fmt.Errorf("attack cache: %w", err)
	}

	// ---- poller ----
	p, closePoller, err := poller.Build(cfg, det, attacks)
	if err != nil {
		return fmt.Errorf("poller build failed: %w", err)
	}
	defer closePoller()

	// ---- status writer (optional) ----
	sw, closeWriter, err := writer.BuildStatusWriter(cfg)
	if err != nil {
		return fmt.Errorf("status writer failed: %w", err)
	}
	defer closeWriter()

	// ---- reference tables (secondary poll) ----
	loader := refdata.NewLoader(
		memory.ProcessOpener(rc.Process.Name),
		time.Duration(rc.Refdata.RetryMs)*time.Millisecond,
	)
	defer loader.Close()

	g, gctx := errgroup.WithContext(ctx)

	o := &orchestrator{
		status:  sw,
		tables:  loader,
		publish: rc.Publish.Path,
		reapply: func(ctx context.Context) {
			v := a.hacks.Remembered(a.general.RememberedHacks)
			if v.Empty() {
				return
			}
			g.Go(func() error {
				reapplyHacks(ctx, a, v)
				return nil
			})
		},
	}

	out := make(chan poller.Update)

	g.Go(func() error {
		p.Run(gctx, out)
		return nil
	})
	g.Go(func() error {
		return o.run(gctx, out)
	})

	log.Printf("replicator: running (process=%s interval=%s)", rc.Process.Name, rc.Poll.Interval())
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Printf("replicator: stopped")
	return err
}

// reapplyHacks installs the remembered hacks after a (re)connect, through
// its own handle so the poll loop is not blocked.
func reapplyHacks(ctx context.Context, a *app, v hacks.Values) {
	acc, err := a.open()
	if err != nil {
		log.Printf("hacks: re-apply skipped (err=%v)", err)
		return
	}
	defer memory.Close(acc)

	err = hacks.Apply(ctx, acc, v)
	if errors.Is(err, hacks.ErrSpeedHackUnsupported) {
		log.Printf("hacks: the speed hack is not supported for this FFnx build on this platform")
	}
	if err == nil {
		log.Printf("hacks: remembered hacks re-applied")
	}
}
