// Package peering implements the loopback peering server the test harness
// runs as the subject server's feed partner: it accepts every
// article offered to it and records what arrived, so a propagation test can
// poll for a probe article's message-id showing up.
package peering

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/ewxrjk/inntest/internal/probe"
)

// rejectRE matches the distinguished "reject.<code>[.phase]@domain" local
// part that lets a test force a specific response code out of the loopback.
var rejectRE = regexp.MustCompile(`^<reject\.(\d+)(?:\.(\w+))?@`)

// TestServer is the loopback's nntp.Backend: it accepts every article,
// recording checked and submitted message-ids under a single lock, except
// when the id asks to be rejected with a specific code.
type TestServer struct {
	mu        sync.Mutex
	checked   []string
	submitted map[string]*probe.Article
}

// NewTestServer returns an empty TestServer.
func NewTestServer() *TestServer {
	return &TestServer{submitted: make(map[string]*probe.Article)}
}

// rejectCode inspects id for the reject.<code>[.phase] encoding; phase, when
// present, restricts the override to that call site ("check" or "ihave").
// An empty phase in the id applies to both.
func rejectCode(id, phase string) (int, bool) {
	m := rejectRE.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	if m[2] != "" && m[2] != phase {
		return 0, false
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return code, true
}

// IhaveCheck implements nntp.Backend: it appends id to the checked-list and
// returns 335, unless id carries a reject encoding for this phase.
func (s *TestServer) IhaveCheck(id string) (int, string) {
	if code, ok := rejectCode(id, "check"); ok {
		return code, "rejected by request"
	}

	s.mu.Lock()
	s.checked = append(s.checked, id)
	s.mu.Unlock()

	return 335, ""
}

// Ihave implements nntp.Backend: it inserts id into the submitted-map if
// new (235), or reports a duplicate (435), unless id carries a reject
// encoding for this phase.
func (s *TestServer) Ihave(id string, article *probe.Article) (int, string) {
	if code, ok := rejectCode(id, "ihave"); ok {
		return code, "rejected by request"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.submitted[id]; dup {
		return 435, "duplicate"
	}
	s.submitted[id] = article
	return 235, ""
}

// Checked returns a snapshot of every message-id offered via IHAVE/CHECK so
// far.
func (s *TestServer) Checked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.checked...)
}

// Submitted reports whether id has been fully accepted, and the article
// that was accepted.
func (s *TestServer) Submitted(id string) (*probe.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.submitted[id]
	return a, ok
}

// SubmittedCount returns the number of distinct articles accepted so far.
func (s *TestServer) SubmittedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submitted)
}
