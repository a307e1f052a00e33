package tests

import (
	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/nntp"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/runner"
)

func init() {
	runner.Register("errors_commands", errorsCommands)
}

// errorsCommands checks bad-command handling: an unrecognised command must
// draw 500, an unrecognised MODE argument must draw 501, and an ARTICLE
// request for a malformed message-id must draw 501 — though some
// streaming-capable servers answer with 435/438/439 instead, which is
// recorded as a compatibility deviation rather than a failure.
func errorsCommands(cfg *config.Config, r *outcome.Recorder) error {
	c, err := dialSubject(cfg)
	if err != nil {
		return r.FailHard("connecting to subject: %v", err)
	}
	defer c.Close()

	if err := checkCommand(c, "NOTINNNTP", 500, r); err != nil {
		return err
	}
	if err := checkCommand(c, "MODE NOTINNNTP", 501, r); err != nil {
		return err
	}

	resp, err := c.Transact("ARTICLE junk@junk")
	if err != nil {
		return r.FailHard("sending ARTICLE junk@junk: %v", err)
	}
	switch resp.Code {
	case 501:
		r.Logf("ARTICLE junk@junk correctly rejected with 501")
	case 435, 438, 439:
		r.Compat("subject answered ARTICLE junk@junk with streaming code %d instead of 501", resp.Code)
	default:
		r.Fail("unexpected response %d to ARTICLE junk@junk", resp.Code)
	}
	return nil
}

func checkCommand(c *nntp.Client, cmd string, want int, r *outcome.Recorder) error {
	resp, err := c.Transact(cmd)
	if err != nil {
		return r.FailHard("sending %q: %v", cmd, err)
	}
	if resp.Code != want {
		r.Fail("%q: expected %d, got %d", cmd, want, resp.Code)
	}
	return nil
}
