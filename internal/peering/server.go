package peering

import (
	"context"
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/ewxrjk/inntest/internal/nntp"
	"github.com/ewxrjk/inntest/internal/stopper"
	"github.com/ewxrjk/inntest/pkg/nntplog"
)

// maxConnections bounds each bound socket's concurrent accepted connections,
// via golang.org/x/net/netutil.LimitListener; the loopback only ever expects
// a handful of simultaneous peers from a single subject server under test.
const maxConnections = 64

// Server binds one or more addresses and runs a worker per bound listening
// socket, each spawning a worker per accepted connection.
type Server struct {
	Backend  *TestServer
	Features nntp.Features
	Stop     *stopper.Coordinator
}

// NewServer returns a Server ready to Listen.
func NewServer(stop *stopper.Coordinator, features nntp.Features) *Server {
	return &Server{
		Backend:  NewTestServer(),
		Features: features,
		Stop:     stop,
	}
}

// expandBind expands the harness's wildcard bind shorthand: "*" to the
// IPv4 and IPv6 wildcard addresses, "*localhost" to both loopbacks, and
// anything else passes through unchanged.
func expandBind(host string, port int) []string {
	p := strconv.Itoa(port)
	switch host {
	case "*":
		return []string{net.JoinHostPort("0.0.0.0", p), net.JoinHostPort("::", p)}
	case "*localhost":
		return []string{net.JoinHostPort("127.0.0.1", p), net.JoinHostPort("::1", p)}
	default:
		return []string{net.JoinHostPort(host, p)}
	}
}

// Bind opens every listening socket address (host, port with the
// "*"/"*localhost" wildcard shorthand expanded) names, and returns the
// listeners ready to Serve. Splitting Bind from Serve lets a caller (or a
// test) discover the actual bound address, e.g. the port chosen for port 0,
// before serving.
func (s *Server) Bind(host string, port int) ([]net.Listener, error) {
	var listeners []net.Listener
	for _, addr := range expandBind(host, port) {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			// IPv6 may be unavailable in the test environment; a
			// single wildcard address failing to bind is not fatal
			// as long as at least one socket is listening.
			if strings.Contains(addr, "::") {
				nntplog.Warn("peering: skipping unavailable listener %s: %v", addr, err)
				continue
			}
			for _, already := range listeners {
				already.Close()
			}
			return nil, err
		}
		listeners = append(listeners, netutil.LimitListener(ln, maxConnections))
	}
	return listeners, nil
}

// Serve runs an accept loop per listener until ctx is cancelled or Stop is
// called, blocking until every accept loop has returned.
func (s *Server) Serve(ctx context.Context, listeners []net.Listener) error {
	var g errgroup.Group
	for _, ln := range listeners {
		ln := ln
		nntplog.Info("peering: listening on %s", ln.Addr())

		leave := s.enter()
		g.Go(func() error {
			defer leave()
			return s.acceptLoop(ctx, ln)
		})
	}
	return g.Wait()
}

// Listen is a convenience combining Bind and Serve for callers that don't
// need the bound addresses in advance.
func (s *Server) Listen(ctx context.Context, host string, port int) error {
	listeners, err := s.Bind(host, port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listeners)
}

func (s *Server) enter() func() {
	if s.Stop == nil {
		return func() {}
	}
	return s.Stop.Enter()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.Stop != nil && s.Stop.Stopped() {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		leave := s.enter()
		go func() {
			defer leave()
			defer conn.Close()
			srv := nntp.NewServer(conn, s.Backend, s.Features, s.Stop, "inntest loopback peer")
			if err := srv.Serve(); err != nil {
				nntplog.Debug("peering: session ended: %v", err)
			}
		}()
	}
}
