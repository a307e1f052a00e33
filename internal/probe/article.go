package probe

import (
	"regexp"
	"strings"
)

// messageIDRE matches the <local@domain> form an NNTP message-id must take.
var messageIDRE = regexp.MustCompile(`^<[^@<>\s]+@[^@<>\s]+>$`)

// ValidMessageID reports whether id has the <local@domain> form.
func ValidMessageID(id string) bool {
	return messageIDRE.MatchString(id)
}

// Header is a single article header line. Name is stored with its trailing
// colon, lower-cased for lookup
type Header struct {
	Name  string // lower-case, trailing colon, e.g. "message-id:"
	Value string
}

// Article is an immutable ordered sequence of headers followed by a body.
// Build it with a Builder; do not mutate a constructed Article.
type Article struct {
	headers []Header
	body    []string
}

// Header returns the value of the first header matching name
// (case-insensitive), and whether it was present.
func (a *Article) Header(name string) (string, bool) {
	key := strings.ToLower(name)
	if !strings.HasSuffix(key, ":") {
		key += ":"
	}
	for _, h := range a.headers {
		if h.Name == key {
			return h.Value, true
		}
	}
	return "", false
}

// MessageID returns the article's Message-ID header value, scanning headers
// in order for the first occurrence.
func (a *Article) MessageID() (string, bool) {
	return a.Header("message-id:")
}

// HeaderLines renders the header block as it would appear on the wire, in
// insertion order.
func (a *Article) HeaderLines() []string {
	lines := make([]string, 0, len(a.headers))
	for _, h := range a.headers {
		name := strings.TrimSuffix(h.Name, ":")
		lines = append(lines, name+": "+h.Value)
	}
	return lines
}

// Body returns the article's body lines.
func (a *Article) Body() []string {
	return append([]string(nil), a.body...)
}

// Lines renders the full article (headers, blank line, body) as it would
// appear in an ARTICLE response or a POST/IHAVE/TAKETHIS block.
func (a *Article) Lines() []string {
	lines := make([]string, 0, len(a.headers)+1+len(a.body))
	lines = append(lines, a.HeaderLines()...)
	lines = append(lines, "")
	lines = append(lines, a.body...)
	return lines
}

// FromLines reconstructs an Article from raw wire lines (as returned by
// ARTICLE): headers up to the first blank line, body after it. Used to
// parse what a subject server hands back so it can be compared against
// what was submitted.
func FromLines(lines []string) *Article {
	a := &Article{}
	i := 0
	for ; i < len(lines); i++ {
		if lines[i] == "" {
			i++
			break
		}
		name, value, ok := splitHeaderLine(lines[i])
		if !ok {
			// RFC 5322 folding: a line starting with whitespace
			// continues the previous header.
			if len(a.headers) > 0 && len(lines[i]) > 0 && (lines[i][0] == ' ' || lines[i][0] == '\t') {
				last := &a.headers[len(a.headers)-1]
				last.Value += " " + strings.TrimSpace(lines[i])
			}
			continue
		}
		a.headers = append(a.headers, Header{Name: strings.ToLower(name) + ":", Value: value})
	}
	a.body = append(a.body, lines[i:]...)
	return a
}

func splitHeaderLine(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	return line[:idx], strings.TrimSpace(line[idx+1:]), true
}

// EqualModuloFolding compares two articles for equality, tolerating the
// header-value normalisation a transiting subject may perform: internal
// whitespace runs (from line folding or tab expansion) collapse to a single
// space, and trailing space is trimmed. Header order and names must match
// exactly. Bodies must match exactly.
func (a *Article) EqualModuloFolding(b *Article) bool {
	if len(a.headers) != len(b.headers) {
		return false
	}
	for i := range a.headers {
		if a.headers[i].Name != b.headers[i].Name {
			return false
		}
		if normalizeFolding(a.headers[i].Value) != normalizeFolding(b.headers[i].Value) {
			return false
		}
	}
	if len(a.body) != len(b.body) {
		return false
	}
	for i := range a.body {
		if a.body[i] != b.body[i] {
			return false
		}
	}
	return true
}

func normalizeFolding(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
