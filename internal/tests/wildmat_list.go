package tests

import (
	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/runner"
	"github.com/ewxrjk/inntest/internal/wildmat"
)

func init() {
	runner.Register("wildmat_list_active", wildmatListActive)
}

// wildmatListActive checks that LIST ACTIVE restricted by a wildmat only
// returns groups the wildmat matches, and that NEWNEWS restricted to the
// empty wildmat "!*" returns no message-ids.
func wildmatListActive(cfg *config.Config, r *outcome.Recorder) error {
	c, err := dialSubject(cfg)
	if err != nil {
		return r.FailHard("connecting to subject: %v", err)
	}
	defer c.Close()

	pattern := cfg.Hierarchy + ".*,!" + cfg.Hierarchy + ".test"
	m, err := wildmat.Compile(pattern)
	if err != nil {
		return r.FailHard("compiling wildmat %q: %v", pattern, err)
	}

	lines, err := c.List("ACTIVE", pattern)
	if err != nil {
		return r.FailHard("LIST ACTIVE %s: %v", pattern, err)
	}
	if lines == nil {
		r.Skip("subject does not support LIST ACTIVE with a wildmat")
		return nil
	}

	for _, line := range lines {
		fields := splitFirstField(line)
		if !m.Match(fields) {
			r.Fail("LIST ACTIVE %s returned group %q, which the wildmat rejects", pattern, fields)
		}
	}

	newnews, err := c.NewNews("!*", "19700101", "000000", true)
	if err != nil {
		return r.FailHard("NEWNEWS !*: %v", err)
	}
	if len(newnews) != 0 {
		r.Fail("NEWNEWS !* returned %d message-ids, expected none", len(newnews))
	}

	return nil
}

func splitFirstField(line string) string {
	for i, r := range line {
		if r == ' ' || r == '\t' {
			return line[:i]
		}
	}
	return line
}
