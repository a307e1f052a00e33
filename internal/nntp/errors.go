package nntp

import "fmt"

// Kind classifies the errors a client or server session can produce.
// Tests and the runner branch on Kind, not on the underlying error text.
type Kind int

const (
	// KindTransport covers connect failures, read/write errors, and EOF
	// mid-message. Fatal to the session.
	KindTransport Kind = iota
	// KindProtocol covers a malformed response line, a missing block
	// terminator, or a response code in the wrong category for the
	// command issued. Fatal to the test.
	KindProtocol
	// KindUnsupported means the server lacks a capability the caller
	// required. Recorded as skip by tests.
	KindUnsupported
	// KindNoSuchGroup is a 411 where the caller expected the group to
	// exist.
	KindNoSuchGroup
	// KindNoSuchArticle is a 423/430 where the caller expected the
	// article to exist.
	KindNoSuchArticle
	// KindAuthRequired is a 480 that survived one AUTHINFO retry.
	KindAuthRequired
	// KindStopped is cooperative cancellation (internal/stopper).
	KindStopped
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindUnsupported:
		return "unsupported"
	case KindNoSuchGroup:
		return "no-such-group"
	case KindNoSuchArticle:
		return "no-such-article"
	case KindAuthRequired:
		return "auth-required"
	case KindStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by client and server session
// operations. It carries a Kind so callers can branch without string
// matching, plus the response Code that provoked it, when there was one.
type Error struct {
	Kind    Kind
	Code    int // 0 if not provoked by a response code
	Op      string
	Message string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("nntp: %s: %s (code %d)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("nntp: %s: %s", e.Op, e.Message)
}

func newError(kind Kind, op string, code int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
