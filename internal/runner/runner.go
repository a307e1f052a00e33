package runner

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/trigger"
	"github.com/ewxrjk/inntest/pkg/nntplog"
)

// propagationPollInterval is how often AwaitPropagation re-checks its
// condition and potentially re-runs the trigger.
const propagationPollInterval = 500 * time.Millisecond

// RunTest installs a fresh Recorder, invokes the named test, and returns
// it. An unknown test name yields a Recorder with a single fail entry
// rather than an error, so a caller iterating over a name list can treat
// every entry uniformly.
func RunTest(cfg *config.Config, name string) *outcome.Recorder {
	r := outcome.New(name)
	t := lookup(name)
	if t == nil {
		r.Fail("no such test: %s", name)
		return r
	}

	defer func() {
		if p := recover(); p != nil {
			r.Fail("test panicked: %v", p)
		}
	}()

	if err := t(cfg, r); err != nil && !outcome.Hard(err) {
		r.Fail("test returned an unexpected error: %v", err)
	}
	return r
}

// RunAll runs every name sequentially and returns one
// Recorder per test, in the order given.
func RunAll(cfg *config.Config, names []string) []*outcome.Recorder {
	results := make([]*outcome.Recorder, len(names))
	for i, name := range names {
		results[i] = RunTest(cfg, name)
	}
	return results
}

// RunAllParallel runs every name concurrently, bounded to maxWorkers at
// once, via golang.org/x/sync/errgroup.Group.SetLimit. Order of the
// returned slice matches names, regardless of completion order, so the
// report renders deterministically.
func RunAllParallel(cfg *config.Config, names []string, maxWorkers int) []*outcome.Recorder {
	results := make([]*outcome.Recorder, len(names))

	var g errgroup.Group
	if maxWorkers > 0 {
		g.SetLimit(maxWorkers)
	}
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = RunTest(cfg, name)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// AwaitPropagation polls condition every propagationPollInterval, re-
// running the configured trigger command each time it returns false, until
// condition returns true or timeLimit elapses. It returns true if condition
// became true in time.
//
// The trigger re-runs on every failed check rather than on a separate
// schedule, so a slow subject gets nudged at the same cadence the
// condition is being polled.
func AwaitPropagation(cfg *config.Config, timeLimit time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeLimit)
	for {
		if condition() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		if cfg.Trigger != "" {
			if _, err := trigger.Run(cfg.Trigger, cfg.TriggerTimeout); err != nil {
				nntplog.Warn("runner: trigger failed: %v", err)
			}
		}
		time.Sleep(propagationPollInterval)
	}
}

// FormatNames renders a test-name listing: one test name per line.
func FormatNames(names []string) string {
	s := ""
	for _, n := range names {
		s += fmt.Sprintln(n)
	}
	return s
}
