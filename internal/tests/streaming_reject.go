package tests

import (
	"context"
	"time"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/nntp"
	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/peering"
	"github.com/ewxrjk/inntest/internal/runner"
	"github.com/ewxrjk/inntest/internal/stopper"
)

func init() {
	runner.Register("streaming_reject", streamingReject)
}

// streamingReject sends CHECK for a distinguished reject.501 message-id and
// requires the peer to refuse it with 438; a peer that instead accepts it
// with 238 is recorded as a compatibility deviation rather than a failure.
//
// This harness drives the loopback side directly: it dials the loopback
// itself, playing the feeding peer, since the subject's own outbound feeder
// cannot be commanded by the harness. A subject that itself polls the loopback
// (the common innd-style configuration) is exercised by ihave_propagation
// instead; this test validates the loopback's CHECK/TAKETHIS state machine
// the subject would be driving.
func streamingReject(cfg *config.Config, r *outcome.Recorder) error {
	stop := stopper.New()
	srv := peering.NewServer(stop, nntp.Features{Streaming: true})

	listeners, err := srv.Bind(cfg.LocalServerAddress.Host, 0)
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

	c, err := nntp.Dial(listeners[0].Addr().String(), 5*time.Second, nil, nntp.Credentials{})
	if err != nil {
		return r.FailHard("connecting to loopback peer: %v", err)
	}
	defer c.Close()

	streaming, err := c.Streaming()
	if err != nil {
		return r.FailHard("negotiating streaming: %v", err)
	}
	if !streaming {
		r.Skip("loopback did not advertise streaming")
		return nil
	}

	const id = "<reject.501.check@inntest.invalid>"
	code, err := c.Check(id)
	if err != nil {
		return r.FailHard("sending CHECK: %v", err)
	}
	switch code {
	case 438:
		r.Logf("loopback correctly rejected %s at CHECK with 438", id)
	case 238:
		r.Compat("loopback accepted a forced-reject CHECK; treating as a documented compatibility path")
	default:
		r.Fail("unexpected CHECK response %d for %s", code, id)
	}
	return nil
}
