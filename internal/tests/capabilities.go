package tests

import (
	"strings"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/runner"
)

func init() {
	runner.Register("capabilities_mandatory_version", capabilitiesMandatoryVersion)
}

// capabilitiesMandatoryVersion checks that the first line of a CAPABILITIES
// response block is "VERSION n", as RFC 3977 §5.2 requires.
func capabilitiesMandatoryVersion(cfg *config.Config, r *outcome.Recorder) error {
	c, err := dialSubject(cfg)
	if err != nil {
		return r.FailHard("connecting to subject: %v", err)
	}
	defer c.Close()

	caps, err := c.Capabilities()
	if err != nil {
		return r.FailHard("issuing CAPABILITIES: %v", err)
	}
	if caps.Empty() {
		r.Fail("capability block was empty or CAPABILITIES did not return 101")
		return nil
	}

	first, ok := caps.FirstToken()
	if !ok || first != "VERSION" {
		r.Fail("capability block's first token was %q, expected VERSION", first)
		return nil
	}
	args, _ := caps.Args("VERSION")
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		r.Fail("VERSION capability carried no version number")
	}
	return nil
}
