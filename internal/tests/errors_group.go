package tests

import (
	"fmt"
	"strings"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/nntp"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/probe"
	"github.com/ewxrjk/inntest/internal/runner"
)

func init() {
	runner.Register("errors_no_article", errorsNoArticle)
	runner.Register("errors_no_group", errorsNoGroup)
	runner.Register("errors_outside_group", errorsOutsideGroup)
	runner.Register("errors_group_navigation", errorsGroupNavigation)
}

// articleCommands are the four commands that select or fetch an article by
// id, number, or the server's current-article pointer.
var articleCommands = []string{"ARTICLE", "HEAD", "BODY", "STAT"}

// numberDeltas are offsets past the group's high-water mark used to probe
// for overflow handling in article-number parsing.
var numberDeltas = []int64{100000, 1 << 16, 1 << 31, 1 << 32, 1 << 33}

// errorsNoArticle checks that fetching a well-formed but nonexistent
// message-id with each retrieval command draws 430.
func errorsNoArticle(cfg *config.Config, r *outcome.Recorder) error {
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

	builder, err := probe.NewBuilder(cfg.Email, cfg.Domain)
	if err != nil {
		return r.FailHard("building probe identity: %v", err)
	}
	id := builder.NewMessageID()

	for _, cmd := range articleCommands {
		resp, err := c.Transact(fmt.Sprintf("%s %s", cmd, id))
		if err != nil {
			return r.FailHard("%s %s: %v", cmd, id, err)
		}
		if resp.Code != 430 {
			r.Fail("%s: incorrect error for nonexistent article: %d", cmd, resp.Code)
		}
	}

	caps, err := c.Capabilities()
	if err == nil && caps.Has("OVER") {
		if args, _ := caps.Args("OVER"); contains(args, "MSGID") {
			resp, err := c.Transact("OVER " + id)
			if err == nil && resp.Code != 430 {
				r.Fail("OVER: incorrect error for nonexistent article: %d", resp.Code)
			}
		}
	}
	return nil
}

// errorsNoGroup checks that GROUP/LISTGROUP on a nonexistent group draws 411.
func errorsNoGroup(cfg *config.Config, r *outcome.Recorder) error {
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

	missing := cfg.Group + ".does-not-exist"
	for _, cmd := range []string{"GROUP", "LISTGROUP"} {
		resp, err := c.Transact(fmt.Sprintf("%s %s", cmd, missing))
		if err != nil {
			return r.FailHard("%s %s: %v", cmd, missing, err)
		}
		if resp.Code != 411 {
			r.Fail("%s: incorrect error for nonexistent group: %d", cmd, resp.Code)
		}
	}
	return nil
}

// errorsOutsideGroup checks that navigation and retrieval commands issued
// before any GROUP selection draw 412, and that an over-long article
// number draws 501 rather than being silently truncated.
func errorsOutsideGroup(cfg *config.Config, r *outcome.Recorder) error {
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

	for _, cmd := range []string{"NEXT", "LAST"} {
		resp, err := c.Transact(cmd)
		if err != nil {
			return r.FailHard("%s: %v", cmd, err)
		}
		if resp.Code != 412 {
			r.Fail("%s: incorrect error outside group: %d", cmd, resp.Code)
		}
	}

	for _, cmd := range articleCommands {
		resp, err := c.Transact(cmd)
		if err != nil {
			return r.FailHard("%s: %v", cmd, err)
		}
		if resp.Code != 412 {
			r.Fail("%s: incorrect error outside group: %d", cmd, resp.Code)
		}

		for _, number := range []string{"1", "1000000000000000"} {
			resp, err := c.Transact(fmt.Sprintf("%s %s", cmd, number))
			if err != nil {
				return r.FailHard("%s %s: %v", cmd, number, err)
			}
			if resp.Code != 412 {
				r.Fail("%s %s: incorrect error outside group: %d", cmd, number, resp.Code)
			}
		}

		// RFC 3977 §9.8: article-number = 1*16DIGIT; 17 digits is malformed
		// syntax, not merely a large selector.
		for _, number := range []string{"10000000000000000", "00000000000000001"} {
			resp, err := c.Transact(fmt.Sprintf("%s %s", cmd, number))
			if err != nil {
				return r.FailHard("%s %s: %v", cmd, number, err)
			}
			if resp.Code != 501 {
				r.Fail("%s %s: incorrect error for bad article-number: %d", cmd, number, resp.Code)
			}
		}
	}
	return nil
}

// errorsGroupNavigation checks navigation errors once a real group is
// selected: out-of-range article numbers draw 423, LAST with no earlier
// article draws 422, and NEXT with no later article draws 421.
func errorsGroupNavigation(cfg *config.Config, r *outcome.Recorder) error {
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
	if low == 0 && high == 0 {
		r.Skip("group %q is empty, cannot test navigation", cfg.Group)
		return nil
	}

	for _, cmd := range articleCommands {
		for _, delta := range numberDeltas {
			resp, err := c.Transact(fmt.Sprintf("%s %d", cmd, int64(high)+delta))
			if err != nil {
				return r.FailHard("%s: %v", cmd, err)
			}
			if resp.Code != 423 {
				r.Fail("%s: incorrect error for bad article number: %d", cmd, resp.Code)
			}
		}
	}

	// These two checks are racy against concurrently-running posting
	// tests on a shared group, same caveat the original harness notes.
	if _, _, err := c.Stat(low); err != nil {
		return r.FailHard("STAT %d: %v", low, err)
	}
	if resp, err := c.Transact("LAST"); err != nil {
		return r.FailHard("LAST: %v", err)
	} else if resp.Code != 422 {
		r.Fail("LAST: incorrect error for no previous article: %d", resp.Code)
	}

	if _, _, err := c.Stat(high); err != nil {
		return r.FailHard("STAT %d: %v", high, err)
	}
	if resp, err := c.Transact("NEXT"); err != nil {
		return r.FailHard("NEXT: %v", err)
	} else if resp.Code != 421 {
		r.Fail("NEXT: incorrect error for no next article: %d", resp.Code)
	}
	return nil
}

func contains(ss []string, target string) bool {
	for _, s := range ss {
		if strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}
