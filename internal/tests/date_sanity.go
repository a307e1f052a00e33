package tests

import (
	"time"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/runner"
)

func init() {
	runner.Register("date_sanity", dateSanity)
}

// maxDateSkew is how far the DATE response may drift from the local wall
// clock, measured across the request's round-trip window, before it's
// considered a clock-sync failure rather than measurement noise.
const maxDateSkew = 60 * time.Second

// dateSanity checks that the server's DATE response falls within
// maxDateSkew of the client's wall clock bracketed around the request.
func dateSanity(cfg *config.Config, r *outcome.Recorder) error {
	c, err := dialSubject(cfg)
	if err != nil {
		return r.FailHard("connecting to subject: %v", err)
	}
	defer c.Close()

	before := time.Now().UTC()
	serverTime, err := c.Date()
	after := time.Now().UTC()
	if err != nil {
		return r.FailHard("issuing DATE: %v", err)
	}

	skew := skewAgainstWindow(serverTime, before, after)
	if skew > maxDateSkew {
		r.Fail("DATE response %s is %v off local wall clock, exceeding the %v tolerance", serverTime.Format("20060102150405"), skew, maxDateSkew)
		return nil
	}

	r.Logf("DATE response within tolerance (skew %v)", skew)
	return nil
}

// skewAgainstWindow returns how far t falls outside [lo, hi], or zero if
// t falls within the window (the request round-trip itself introduces
// slack that a single delta-from-now comparison would over-penalise).
func skewAgainstWindow(t, lo, hi time.Time) time.Duration {
	if t.Before(lo) {
		return lo.Sub(t)
	}
	if t.After(hi) {
		return t.Sub(hi)
	}
	return 0
}
