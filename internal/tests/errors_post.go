package tests

import (
	"errors"
	"time"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/nntp"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/probe"
	"github.com/ewxrjk/inntest/internal/runner"
)

func init() {
	runner.Register("errors_bad_post", errorsBadPost)
	runner.Register("errors_bad_ihave", errorsBadIhave)
}

// badArticleCase is one malformed-article scenario: headers names the
// literal header block to submit (a fresh Message-ID is appended unless
// the case supplies its own), and acceptable reports whether some subjects
// are known to accept it anyway, in which case that's recorded as a
// compatibility deviation rather than a failure.
type badArticleCase struct {
	name       string
	headers    []string
	acceptable func(cmd string) bool
}

func never(string) bool       { return false }
func ihaveOnly(c string) bool { return c == "IHAVE" }
func always(string) bool     { return true }

func badArticleCases(cfg *config.Config) []badArticleCase {
	group := cfg.Group
	email := cfg.Email
	date := probe.Date(time.Now())
	return []badArticleCase{
		{
			name: "no subject",
			headers: []string{
				"Newsgroups: " + group,
				"From: " + email,
				"Date: " + date,
			},
			acceptable: never,
		},
		{
			name: "no from",
			headers: []string{
				"Newsgroups: " + group,
				"Subject: [nntpbits] no from test (ignore)",
				"Date: " + date,
			},
			acceptable: never,
		},
		{
			name: "no newsgroups",
			headers: []string{
				"From: " + email,
				"Subject: [nntpbits] no groups test (ignore)",
				"Date: " + date,
			},
			acceptable: never,
		},
		{
			name: "empty newsgroups",
			headers: []string{
				"Newsgroups: ",
				"From: " + email,
				"Subject: [nntpbits] empty groups test (ignore)",
				"Date: " + date,
			},
			acceptable: never,
		},
		{
			name: "empty from",
			headers: []string{
				"Newsgroups: " + group,
				"From: ",
				"Subject: [nntpbits] empty from test (ignore)",
				"Date: " + date,
			},
			acceptable: never,
		},
		{
			name: "malformed from",
			headers: []string{
				"Newsgroups: " + group,
				"From: example",
				"Subject: [nntpbits] malformed from test (ignore)",
				"Date: " + date,
			},
			acceptable: ihaveOnly,
		},
		{
			name: "malformed from #2",
			headers: []string{
				"Newsgroups: " + group,
				"From: @example.com",
				"Subject: [nntpbits] malformed from test #2 (ignore)",
				"Date: " + date,
			},
			acceptable: always,
		},
		{
			name: "forbidden newsgroup",
			headers: []string{
				"Newsgroups: poster",
				"From: " + email,
				"Subject: [nntpbits] forbidden groups test (ignore)",
				"Date: " + date,
			},
			acceptable: never,
		},
		{
			name: "malformed date",
			headers: []string{
				"Newsgroups: " + group,
				"From: " + email,
				"Subject: [nntpbits] malformed date test (ignore)",
				"Date: your sister",
			},
			acceptable: never,
		},
		{
			name: "malformed message-id",
			headers: []string{
				"Newsgroups: " + group,
				"From: " + email,
				"Subject: [nntpbits] malformed message ID test (ignore)",
				"Date: " + date,
				"Message-ID: junk",
			},
			acceptable: never,
		},
		{
			name: "duplicate header",
			headers: []string{
				"Newsgroups: " + group,
				"Newsgroups: " + group,
				"From: " + email,
				"Subject: [nntpbits] duplicate header test (ignore)",
				"Date: " + date,
			},
			acceptable: never,
		},
		{
			name: "nonexistent newsgroup",
			headers: []string{
				"Newsgroups: " + group + ".does-not-exist",
				"From: " + email,
				"Subject: [nntpbits] nonexistent group test (ignore)",
				"Date: " + date,
			},
			acceptable: never,
		},
	}
}

// errorsBadPost checks that POST rejects a representative set of malformed
// articles with 441, tolerating the specific fields some subjects accept
// loosely as a compatibility deviation.
func errorsBadPost(cfg *config.Config, r *outcome.Recorder) error {
	return runBadArticleCases(cfg, r, "POST")
}

// errorsBadIhave is errorsBadPost's IHAVE counterpart, expecting 437
// instead of 441.
func errorsBadIhave(cfg *config.Config, r *outcome.Recorder) error {
	return runBadArticleCases(cfg, r, "IHAVE")
}

func runBadArticleCases(cfg *config.Config, r *outcome.Recorder, cmd string) error {
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

	wantCode := 441
	if cmd == "IHAVE" {
		wantCode = 437
	}

	for _, tc := range badArticleCases(cfg) {
		lines := append([]string(nil), tc.headers...)
		protocolID := builder.NewMessageID()
		if !hasMessageID(lines) {
			lines = append(lines, "Message-ID: "+protocolID)
		}
		lines = append(lines, "", "probe payload "+tc.name)
		article := probe.FromLines(lines)

		var code int
		var err error
		if cmd == "POST" {
			code, err = postResult(c, article)
		} else {
			code, err = ihaveResult(c, article, protocolID)
		}
		if err != nil {
			return r.FailHard("%s %q: %v", cmd, tc.name, err)
		}
		if code == wantCode {
			continue
		}
		if tc.acceptable(cmd) {
			r.Compat("%s %q: subject accepted a malformed article (code %d)", cmd, tc.name, code)
			continue
		}
		r.Fail("%s %q: expected %d, got %d", cmd, tc.name, wantCode, code)
	}
	return nil
}

func hasMessageID(lines []string) bool {
	for _, l := range lines {
		if len(l) >= 11 && (l[:11] == "Message-ID:" || l[:11] == "message-id:") {
			return true
		}
	}
	return false
}

// postResult runs Post and reduces its result to a single response code,
// since Post surfaces a 441 rejection as an error rather than a return
// value.
func postResult(c *nntp.Client, article *probe.Article) (int, error) {
	code, err := c.Post(article)
	if err == nil {
		return code, nil
	}
	var nerr *nntp.Error
	if errors.As(err, &nerr) && nerr.Code != 0 {
		return nerr.Code, nil
	}
	return 0, err
}

func ihaveResult(c *nntp.Client, article *probe.Article, id string) (int, error) {
	code, err := c.Ihave(article, id)
	if err == nil {
		return code, nil
	}
	var nerr *nntp.Error
	if errors.As(err, &nerr) && nerr.Code != 0 {
		return nerr.Code, nil
	}
	return 0, err
}
