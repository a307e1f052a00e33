package tests

import (
	"context"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/nntp"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/peering"
	"github.com/ewxrjk/inntest/internal/probe"
	"github.com/ewxrjk/inntest/internal/runner"
	"github.com/ewxrjk/inntest/internal/stopper"
)

func init() {
	runner.Register("ihave_propagation", ihavePropagation)
}

// ihavePropagation binds the loopback peer, submits a probe to the subject
// via IHAVE with a Path header marking it as not-for-mail, and polls the
// loopback's submitted-map for the probe's message-id, re-running the
// trigger on every miss, until the configured time limit elapses.
func ihavePropagation(cfg *config.Config, r *outcome.Recorder) error {
	stop := stopper.New()
	srv := peering.NewServer(stop, nntp.Features{Ihave: true})

	listeners, err := srv.Bind(cfg.LocalServerAddress.Host, cfg.LocalServerAddress.Port)
	if err != nil {
		return r.FailHard("binding loopback peer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := make(chan error, 1)
	go func() { serveDone <- srv.Serve(ctx, listeners) }()
	defer func() {
		cancel()
		<-serveDone
	}()

	c, err := dialSubject(cfg)
	if err != nil {
		return r.FailHard("connecting to subject: %v", err)
	}
	defer c.Close()

	builder, err := probe.NewBuilder(cfg.Email, cfg.Domain)
	if err != nil {
		return r.FailHard("building probe identity: %v", err)
	}
	article := builder.Template(cfg.Group, "ihave propagation probe",
		probe.Header{Name: "path:", Value: "nonesuch.test.example!not-for-mail"})
	id, _ := article.MessageID()

	code, err := c.Ihave(article, id)
	if err != nil {
		return r.FailHard("offering probe via IHAVE: %v", err)
	}
	if code != 235 {
		r.Fail("subject rejected probe IHAVE with code %d", code)
		return nil
	}

	propagated := runner.AwaitPropagation(cfg, cfg.TimeLimit, func() bool {
		_, ok := srv.Backend.Submitted(id)
		return ok
	})
	if !propagated {
		r.Fail("probe %s did not propagate to the loopback peer within %v", id, cfg.TimeLimit)
		return nil
	}

	r.Logf("observed %s propagate to the loopback peer", id)
	return nil
}
