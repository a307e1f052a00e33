package tests

import (
	"regexp"
	"strings"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/nntp"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/runner"
	"github.com/ewxrjk/inntest/internal/wildmat"
)

func init() {
	runner.Register("list_keywords", listKeywords)
	runner.Register("list_wildmat", listWildmat)
}

// listWildmatKeywords are the LIST subcommands whose first output field is
// a newsgroup name that a wildmat argument filters on.
var listWildmatKeywords = map[string]bool{
	"ACTIVE":        true,
	"ACTIVE.TIMES":  true,
	"NEWSGROUPS":    true,
	"COUNTS":        true,
	"SUBSCRIPTIONS": true,
}

// listOptionalKeywords are the LIST subcommands a subject may legitimately
// decline with 503, rather than listing an empty set.
var listOptionalKeywords = map[string]bool{
	"MOTD":          true,
	"COUNTS":        true,
	"DISTRIBUTIONS": true,
	"MODERATORS":    true,
	"SUBSCRIPTIONS": true,
}

// listShapes are the per-keyword line regexps each subcommand's output
// must satisfy. Where the keyword is wildmat-filterable, group 1 is the
// newsgroup name.
var listShapes = map[string]*regexp.Regexp{
	"ACTIVE":        regexp.MustCompile(`^(\S+) +\d+ +\d+ +([ynmxj]|=\S+)$`),
	"ACTIVE.TIMES":  regexp.MustCompile(`^(\S+) +\d+ +.*$`),
	"NEWSGROUPS":    regexp.MustCompile(`^(\S+)[ \t]+.*$`),
	"DISTRIB.PATS":  regexp.MustCompile(`^\d+:[^:]+:.*$`),
	"HEADERS":       regexp.MustCompile(`^:?\S+$`),
	"COUNTS":        regexp.MustCompile(`^(\S+) +\d+ +\d+ +\d+ +([ynmxj]|=\S+)$`),
	"DISTRIBUTIONS": regexp.MustCompile(`^(\S+)[ \t]+.*$`),
	"MODERATORS":    regexp.MustCompile(`^[^:]+:.*$`),
	"SUBSCRIPTIONS": regexp.MustCompile(`^(\S+)$`),
}

// listKeywords exercises every LIST subcommand the subject advertises via
// CAPABILITIES, checking each output line against the shape RFC 3977/6048
// prescribe for that subcommand, then repeats in reader mode if the
// subject switches modes.
func listKeywords(cfg *config.Config, r *outcome.Recorder) error {
	c, err := dialSubject(cfg)
	if err != nil {
		return r.FailHard("connecting to subject: %v", err)
	}
	defer c.Close()

	checkAllKeywords(c, r, "")

	caps, err := c.Capabilities()
	if err == nil && caps.Has("MODE-READER") {
		if err := c.RequireReader(); err != nil && !nntp.IsKind(err, nntp.KindUnsupported) {
			return r.FailHard("entering reader mode: %v", err)
		}
		checkAllKeywords(c, r, "")
	}
	return nil
}

// listWildmat repeats listKeywords with a wildmat argument on every
// subcommand known to accept one.
func listWildmat(cfg *config.Config, r *outcome.Recorder) error {
	c, err := dialSubject(cfg)
	if err != nil {
		return r.FailHard("connecting to subject: %v", err)
	}
	defer c.Close()

	pattern := cfg.Hierarchy + ".*"
	checkAllKeywords(c, r, pattern)

	caps, err := c.Capabilities()
	if err == nil && caps.Has("MODE-READER") {
		if err := c.RequireReader(); err != nil && !nntp.IsKind(err, nntp.KindUnsupported) {
			return r.FailHard("entering reader mode: %v", err)
		}
		checkAllKeywords(c, r, pattern)
	}
	return nil
}

func checkAllKeywords(c *nntp.Client, r *outcome.Recorder, pattern string) {
	caps, err := c.Capabilities()
	if err != nil {
		r.Fail("CAPABILITIES: %v", err)
		return
	}
	keywords, ok := caps.Args("LIST")
	if !ok {
		r.Skip("subject does not advertise any LIST subcommands")
		return
	}

	for _, kw := range keywords {
		checkListKeyword(c, r, strings.ToUpper(kw), pattern)
	}
	if pattern == "" {
		for _, kw := range keywords {
			if strings.EqualFold(kw, "ACTIVE") {
				checkListKeyword(c, r, "", "")
				break
			}
		}
	}
}

func checkListKeyword(c *nntp.Client, r *outcome.Recorder, kw, pattern string) {
	var verify func(string) bool
	if pattern != "" {
		if !listWildmatKeywords[kw] {
			return
		}
		m, err := wildmat.Compile(pattern)
		if err != nil {
			r.Fail("LIST %s: compiling wildmat %q: %v", kw, pattern, err)
			return
		}
		verify = m.Match
	}

	lines, err := c.List(kw, pattern)
	if err != nil {
		r.Fail("LIST %s: %v", kw, err)
		return
	}
	displayKw := kw
	if displayKw == "" {
		displayKw = "ACTIVE"
	}
	if lines == nil {
		if !listOptionalKeywords[displayKw] {
			r.Fail("LIST %s: unexpected 503 response", displayKw)
		}
		return
	}

	regex := listShapes[displayKw]
	for _, line := range lines {
		if regex == nil {
			continue
		}
		m := regex.FindStringSubmatch(line)
		if m == nil {
			r.Fail("LIST %s: malformed line: %s", displayKw, line)
			continue
		}
		if verify != nil && len(m) > 1 && !verify(m[1]) {
			r.Fail("LIST %s: line outside wildmat: %s", displayKw, line)
		}
	}
}
