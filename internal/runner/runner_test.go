package runner

import (
	"errors"
	"testing"
	"time"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/outcome"
)

func init() {
	Register("runner_test_pass", func(cfg *config.Config, r *outcome.Recorder) error {
		return nil
	})
	Register("runner_test_fail", func(cfg *config.Config, r *outcome.Recorder) error {
		r.Fail("deliberate failure")
		return nil
	})
	Register("runner_test_hard_fail", func(cfg *config.Config, r *outcome.Recorder) error {
		return r.FailHard("deliberate hard failure")
	})
	Register("runner_test_unexpected_error", func(cfg *config.Config, r *outcome.Recorder) error {
		return errors.New("boom")
	})
}

func TestRunTestPass(t *testing.T) {
	r := RunTest(config.Default(), "runner_test_pass")
	if len(r.Fails) != 0 {
		t.Fatalf("expected no failures, got %#v", r.Fails)
	}
}

func TestRunTestSoftFail(t *testing.T) {
	r := RunTest(config.Default(), "runner_test_fail")
	if len(r.Fails) != 1 {
		t.Fatalf("expected one failure, got %#v", r.Fails)
	}
}

func TestRunTestHardFailStopsWithoutDoubleCounting(t *testing.T) {
	r := RunTest(config.Default(), "runner_test_hard_fail")
	if len(r.Fails) != 1 {
		t.Fatalf("expected exactly one failure from the hard fail, got %#v", r.Fails)
	}
}

func TestRunTestUnexpectedErrorIsRecordedAsFail(t *testing.T) {
	r := RunTest(config.Default(), "runner_test_unexpected_error")
	if len(r.Fails) != 1 {
		t.Fatalf("expected the unexpected error to be recorded as a fail, got %#v", r.Fails)
	}
}

func TestRunTestUnknownName(t *testing.T) {
	r := RunTest(config.Default(), "no_such_test")
	if len(r.Fails) != 1 {
		t.Fatalf("expected unknown test name to record a fail, got %#v", r.Fails)
	}
}

func TestNamesIncludesRegistered(t *testing.T) {
	names := Names()
	found := false
	for _, n := range names {
		if n == "runner_test_pass" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected runner_test_pass in %#v", names)
	}
}

func TestAwaitPropagationSucceeds(t *testing.T) {
	calls := 0
	ok := AwaitPropagation(config.Default(), 2*time.Second, func() bool {
		calls++
		return calls >= 2
	})
	if !ok {
		t.Fatal("expected AwaitPropagation to succeed")
	}
}

func TestAwaitPropagationTimesOut(t *testing.T) {
	ok := AwaitPropagation(config.Default(), 200*time.Millisecond, func() bool {
		return false
	})
	if ok {
		t.Fatal("expected AwaitPropagation to time out")
	}
}
