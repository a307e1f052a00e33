package tests

import (
	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/nntp"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/runner"
)

func init() {
	runner.Register("errors_group_overview", errorsGroupOverview)
}

// errorsGroupOverview checks that OVER and HDR return no data, rather than
// an error, for an out-of-range or back-to-front article range.
func errorsGroupOverview(cfg *config.Config, r *outcome.Recorder) error {
	c, err := dialSubject(cfg)
	if err != nil {
		return r.FailHard("connecting to subject: %v", err)
	}
	defer c.Close()
	if err := c.RequireReader(); err != nil {
		if nntp.IsKind(err, nntp.KindUnsupported) {
			r.Skip("subject does not support reader mode: %v", err)
			return nil
		}
		return r.FailHard("entering reader mode: %v", err)
	}

	_, low, high, err := c.Group(cfg.Group)
	if err != nil {
		if nntp.IsKind(err, nntp.KindNoSuchGroup) {
			r.Skip("subject has no group %q configured: %v", cfg.Group, err)
			return nil
		}
		return r.FailHard("GROUP %s: %v", cfg.Group, err)
	}

	caps, err := c.Capabilities()
	if err != nil {
		return r.FailHard("CAPABILITIES: %v", err)
	}

	done := false
	if caps.Has("OVER") {
		done = true
		for _, delta := range numberDeltas {
			lines, err := c.Over(low+int(delta), high+int(delta))
			if err != nil {
				return r.FailHard("OVER: %v", err)
			}
			if len(lines) != 0 {
				r.Fail("OVER: unexpected overview data for out-of-range: delta=%d", delta)
			}
		}
		lines, err := c.Over(high, low)
		if err != nil {
			return r.FailHard("OVER: %v", err)
		}
		if len(lines) != 0 {
			r.Fail("OVER: unexpected overview data for reverse range")
		}
	}

	if caps.Has("HDR") {
		done = true
		for _, delta := range numberDeltas {
			pairs, err := c.Hdr("Newsgroups", rangeArg(low+int(delta), high+int(delta)))
			if err != nil {
				return r.FailHard("HDR: %v", err)
			}
			if len(pairs) != 0 {
				r.Fail("HDR: unexpected header data for out-of-range: delta=%d", delta)
			}
		}
		pairs, err := c.Hdr("Newsgroups", rangeArg(high, low))
		if err != nil {
			return r.FailHard("HDR: %v", err)
		}
		if len(pairs) != 0 {
			r.Fail("HDR: unexpected header data for reverse range")
		}
	}

	if !done {
		r.Skip("subject advertises neither OVER nor HDR")
	}
	return nil
}
