// Package outcome implements the per-test outcome recorder: fail/xfail/compat/skip soft primitives
// plus fail_hard/xfail_hard hard variants that abort the current test via a
// distinguished stop-this-test error, which the runner catches quietly.
package outcome

import "fmt"

// Entry is one recorded outcome: a description plus the test name it was
// recorded against.
type Entry struct {
	Test string
	Desc string
}

// Stop is the distinguished stop-this-test error raised by the hard
// primitives. The runner recognises it and ends the test cleanly without
// treating it as an unexpected panic.
type Stop struct {
	Entry Entry
}

func (s *Stop) Error() string {
	return fmt.Sprintf("test %s stopped: %s", s.Entry.Test, s.Entry.Desc)
}

// Recorder accumulates a single test's outcomes into four buckets: fails,
// expected-fails, compats, skips.
type Recorder struct {
	test string

	Fails         []Entry
	ExpectedFails []Entry
	Compats       []Entry
	Skips         []Entry

	Log []string
}

// New returns a Recorder for the named test.
func New(test string) *Recorder {
	return &Recorder{test: test}
}

// Test returns the name of the test this Recorder was created for.
func (r *Recorder) Test() string { return r.test }

// Logf appends a captured log line, surfaced alongside the test's outcome
// in the final report.
func (r *Recorder) Logf(format string, args ...interface{}) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// Fail records an unexpected protocol divergence. Soft: the test continues.
func (r *Recorder) Fail(format string, args ...interface{}) {
	r.Fails = append(r.Fails, r.entry(format, args...))
}

// Xfail records a known divergence with no documented rationale. Soft.
func (r *Recorder) Xfail(format string, args ...interface{}) {
	r.ExpectedFails = append(r.ExpectedFails, r.entry(format, args...))
}

// Compat records a known divergence with a documented rationale: the test
// passes for harness purposes but the variance is recorded. Soft.
func (r *Recorder) Compat(format string, args ...interface{}) {
	r.Compats = append(r.Compats, r.entry(format, args...))
}

// Skip records a missing prerequisite. Soft.
func (r *Recorder) Skip(format string, args ...interface{}) {
	r.Skips = append(r.Skips, r.entry(format, args...))
}

// FailHard records a fail, then aborts the current test.
func (r *Recorder) FailHard(format string, args ...interface{}) error {
	e := r.entry(format, args...)
	r.Fails = append(r.Fails, e)
	return &Stop{Entry: e}
}

// XfailHard records an expected-fail, then aborts the current test.
func (r *Recorder) XfailHard(format string, args ...interface{}) error {
	e := r.entry(format, args...)
	r.ExpectedFails = append(r.ExpectedFails, e)
	return &Stop{Entry: e}
}

func (r *Recorder) entry(format string, args ...interface{}) Entry {
	return Entry{Test: r.test, Desc: fmt.Sprintf(format, args...)}
}

// Hard reports whether the outcome produced by a test body's returned error
// is the distinguished stop-this-test error, as opposed to an unexpected
// error that should itself be classified as a fail.
func Hard(err error) bool {
	_, ok := err.(*Stop)
	return ok
}
