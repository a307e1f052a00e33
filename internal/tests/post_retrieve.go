package tests

import (
	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/nntp"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/probe"
	"github.com/ewxrjk/inntest/internal/runner"
)

func init() {
	runner.Register("post_retrieve", postRetrieve)
}

// postRetrieve posts a probe article, then confirms it is retrievable by
// message-id, present in the group's overview, and re-retrievable by the
// article number overview reports.
func postRetrieve(cfg *config.Config, r *outcome.Recorder) error {
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

	if _, _, _, err := c.Group(cfg.Group); err != nil {
		if nntp.IsKind(err, nntp.KindNoSuchGroup) {
			r.Skip("group %s does not exist on subject", cfg.Group)
			return nil
		}
		return r.FailHard("selecting group %s: %v", cfg.Group, err)
	}

	builder, err := probe.NewBuilder(cfg.Email, cfg.Domain)
	if err != nil {
		return r.FailHard("building probe identity: %v", err)
	}
	article := builder.Template(cfg.Group, "post-retrieve probe")
	id, _ := article.MessageID()

	code, err := c.Post(article)
	if err != nil {
		return r.FailHard("posting probe article: %v", err)
	}
	if code != 240 {
		r.Fail("posting probe article %s: unexpected response code %d", id, code)
		return nil
	}

	_, _, lines, err := c.Article(id)
	if err != nil {
		return r.FailHard("retrieving posted article by message-id: %v", err)
	}
	if lines == nil {
		r.Fail("posted article %s was not retrievable by message-id", id)
		return nil
	}
	retrieved := probe.FromLines(lines)
	if !article.EqualModuloFolding(retrieved) {
		r.Fail("retrieved article %s does not match what was posted", id)
	}

	count, low, high, err := c.Group(cfg.Group)
	if err != nil {
		return r.FailHard("re-selecting group %s: %v", cfg.Group, err)
	}
	_ = count

	overLines, err := c.Over(low, high)
	if err != nil {
		return r.FailHard("fetching overview for %d-%d: %v", low, high, err)
	}

	found := false
	for _, line := range overLines {
		n, fields, err := c.ParseOverviewLine(line)
		if err != nil {
			r.Fail("malformed overview line %q: %v", line, err)
			continue
		}
		if fields["message-id:"] != id {
			continue
		}
		found = true

		_, _, again, err := c.Article(n)
		if err != nil {
			return r.FailHard("re-retrieving article %d by number: %v", n, err)
		}
		if again == nil || !article.EqualModuloFolding(probe.FromLines(again)) {
			r.Fail("article %d (overview entry for %s) does not match the posted article", n, id)
		}
	}
	if !found {
		r.Fail("posted article %s was not present in the group overview", id)
	}

	r.Logf("posted and verified %s in group %s", id, cfg.Group)
	return nil
}
