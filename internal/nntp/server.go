package nntp

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ewxrjk/inntest/internal/probe"
	"github.com/ewxrjk/inntest/internal/stopper"
	"github.com/ewxrjk/inntest/internal/wire"
	"github.com/ewxrjk/inntest/pkg/nntplog"
)

// Backend implements the peering decisions a Server delegates to: whether
// it wants an article (ihave_check) and whether it accepts one once
// offered (ihave). The loopback peering server (internal/peering) is the
// concrete implementation the test harness runs.
type Backend interface {
	// IhaveCheck is consulted for the initial IHAVE <id> and for CHECK
	// <id>; it returns an NNTP response code (335/435/436 for IHAVE;
	// the server maps these to CHECK's 238/431/438) plus response text.
	IhaveCheck(id string) (code int, text string)
	// Ihave is consulted once an article has actually been offered, via
	// IHAVE's second phase or via TAKETHIS; it returns 235/436/437.
	Ihave(id string, article *probe.Article) (code int, text string)
}

// Features selects which optional command sets a Server enables, per
// session.
type Features struct {
	Ihave     bool
	Streaming bool
}

// defaultText is the code→default response text table.
var defaultText = map[int]string{
	200: "server ready - posting allowed",
	201: "server ready - no posting allowed",
	203: "streaming permitted",
	205: "closing connection",
	238: "send article",
	239: "article transferred ok",
	335: "send article",
	400: "service discontinued",
	431: "try again later",
	435: "article not wanted",
	436: "transfer failed, try again later",
	437: "transfer rejected",
	438: "article not wanted",
	439: "transfer rejected",
	500: "command not recognized",
	501: "syntax error",
	502: "service unavailable",
}

func textFor(code int, override string) string {
	if override != "" {
		return override
	}
	if t, ok := defaultText[code]; ok {
		return t
	}
	return "unspecified"
}

var idRE = regexp.MustCompile(`^<[^@]+@[^@]+>$`)

var commandLineRE = regexp.MustCompile(`^(\S+)\s*(.*)$`)

// Server is one server-side NNTP session driving a single accepted
// connection.
type Server struct {
	wire     *wire.Conn
	backend  Backend
	features Features
	stop     *stopper.Coordinator
	banner   string
}

// NewServer wraps rw (typically a net.Conn) as a server session.
func NewServer(rw io.ReadWriter, backend Backend, features Features, stop *stopper.Coordinator, banner string) *Server {
	return &Server{
		wire:     wire.New(rw, stop),
		backend:  backend,
		features: features,
		stop:     stop,
		banner:   banner,
	}
}

// respond sends a response line, logging codes >=500 at error level.
func (s *Server) respond(code int, override string) error {
	line := strconv.Itoa(code) + " " + textFor(code, override)
	if code >= 500 {
		nntplog.Error("nntp: server responding %s", line)
	}
	return s.wire.SendLine(line)
}

// Serve runs the session loop until QUIT, a transport error, or
// cancellation. It always sends the greeting first.
func (s *Server) Serve() error {
	if err := s.respond(200, s.banner); err != nil {
		return err
	}

	for {
		if s.stop != nil {
			if err := s.stop.Check(); err != nil {
				return err
			}
		}
		line, ok, err := s.wire.ReceiveLineOrNil()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		m := commandLineRE.FindStringSubmatch(line)
		if m == nil {
			if err := s.respond(500, ""); err != nil {
				return err
			}
			continue
		}
		cmd := strings.ToUpper(m[1])
		arg := strings.TrimSpace(m[2])

		done, err := s.dispatch(cmd, arg)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// dispatch handles one command. It returns done=true when the session
// should terminate (QUIT).
func (s *Server) dispatch(cmd, arg string) (done bool, err error) {
	switch cmd {
	case "CAPABILITIES":
		return false, s.handleCapabilities()
	case "MODE":
		return false, s.handleMode(arg)
	case "QUIT":
		if e := s.respond(205, ""); e != nil {
			return true, e
		}
		return true, nil
	case "IHAVE":
		if !s.features.Ihave {
			return false, s.respond(500, "")
		}
		return false, s.handleIhave(arg)
	case "CHECK":
		if !s.features.Streaming {
			return false, s.respond(500, "")
		}
		return false, s.handleCheck(arg)
	case "TAKETHIS":
		if !s.features.Streaming {
			return false, s.respond(500, "")
		}
		return s.handleTakethis(arg)
	default:
		return false, s.respond(500, "")
	}
}

func (s *Server) handleCapabilities() error {
	if err := s.respond(101, ""); err != nil {
		return err
	}
	lines := []string{"VERSION 2", "IMPLEMENTATION inntest-loopback"}
	if s.features.Ihave {
		lines = append(lines, "IHAVE")
	}
	if s.features.Streaming {
		lines = append(lines, "STREAMING")
	}
	return s.wire.SendBlock(lines)
}

func (s *Server) handleMode(arg string) error {
	if strings.EqualFold(arg, "STREAM") {
		if s.features.Streaming {
			return s.respond(203, "")
		}
		return s.respond(501, "")
	}
	return s.respond(501, "")
}

func (s *Server) handleIhave(arg string) error {
	if !idRE.MatchString(arg) {
		return s.respond(501, "")
	}
	code, text := s.backend.IhaveCheck(arg)
	if code != 335 {
		return s.respond(code, text)
	}
	if err := s.respond(335, text); err != nil {
		return err
	}

	lines, err := s.wire.ReceiveBlock()
	if err != nil {
		return err
	}
	article := probe.FromLines(lines)
	code, text = s.backend.Ihave(arg, article)
	return s.respond(code, text)
}

func (s *Server) handleCheck(arg string) error {
	if !idRE.MatchString(arg) {
		return s.respond(501, "")
	}
	code, text := s.backend.IhaveCheck(arg)
	switch code {
	case 335:
		return s.respond(238, text)
	case 435:
		return s.respond(431, text)
	case 436:
		return s.respond(438, text)
	default:
		return s.respond(code, text)
	}
}

func (s *Server) handleTakethis(arg string) (done bool, err error) {
	if !idRE.MatchString(arg) {
		// Still must consume the pipelined block even on a syntax
		// error, since the client sends it unconditionally.
		if _, e := s.wire.ReceiveBlock(); e != nil {
			return true, e
		}
		return false, s.respond(501, "")
	}

	lines, err := s.wire.ReceiveBlock()
	if err != nil {
		return true, err
	}
	article := probe.FromLines(lines)

	checkCode, checkText := s.backend.IhaveCheck(arg)
	if checkCode == 436 {
		// No retry signal available in streaming; escalate and close.
		if e := s.respond(400, checkText); e != nil {
			return true, e
		}
		return true, nil
	}
	if checkCode != 335 {
		return false, s.respond(439, checkText)
	}

	ihaveCode, ihaveText := s.backend.Ihave(arg, article)
	if ihaveCode == 235 {
		return false, s.respond(239, ihaveText)
	}
	return false, s.respond(439, ihaveText)
}
