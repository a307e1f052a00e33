// Package probe builds the synthetic articles conformance tests post into a
// subject server, and compares what comes back against what was sent.
//
// An article's identity (Message-ID and body payload) must be unique within
// a run so that a test can distinguish its own probe from anything already
// on the server or posted by a concurrently-running test.
package probe

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Builder mints probe articles for a single posting identity (email,
// domain). It is safe for concurrent use.
type Builder struct {
	email  string
	domain string
	ids    *identity
}

// NewBuilder returns a Builder that addresses articles as From: email and
// mints Message-IDs under domain. A fresh random seed is drawn so that
// Message-IDs do not collide with a previous run against the same server.
func NewBuilder(email, domain string) (*Builder, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("seeding probe identity: %w", err)
	}
	return &Builder{email: email, domain: domain, ids: newIdentity(seed)}, nil
}

// NewMessageID mints a fresh, unique <local@domain> message-id.
func (b *Builder) NewMessageID() string {
	return fmt.Sprintf("<%s@%s>", b.ids.next(), b.domain)
}

// payload returns a fresh, unique single-line body payload.
func (b *Builder) payload() string {
	return "probe payload " + b.ids.next()
}

// Date formats t in the RFC 5322 form the original harness emits
// ("Mon, 02 Jan 2006 15:04:05 +0000"), always in UTC.
func Date(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04:05 +0000")
}

// Template fills in the probe article template: Newsgroups, From,
// Subject, Message-ID, then any extra caller-supplied headers (e.g. Date,
// Path, Keywords, Organization, User-Agent), a blank line, and a unique
// one-line body. description is embedded in the Subject so a human scanning
// a news spool can tell which test produced it.
func (b *Builder) Template(group, description string, extra ...Header) *Article {
	headers := []Header{
		{Name: "newsgroups:", Value: group},
		{Name: "from:", Value: b.email},
		{Name: "subject:", Value: fmt.Sprintf("[nntpbits] %s (ignore)", description)},
		{Name: "message-id:", Value: b.NewMessageID()},
	}
	headers = append(headers, extra...)

	return &Article{
		headers: headers,
		body:    []string{b.payload()},
	}
}

// WithMessageID is a convenience for constructing an IHAVE/TAKETHIS article
// whose Message-ID is already known (e.g. echoed back from a CHECK
// response), overriding the one Template would otherwise generate.
func (b *Builder) WithMessageID(group, description, id string) *Article {
	a := b.Template(group, description)
	a.headers[3] = Header{Name: "message-id:", Value: id}
	return a
}
