package nntp

import "strings"

// Capabilities is the parsed result of a CAPABILITIES exchange: the set of
// offered capability tokens plus, per token, its ordered argument list.
// The zero value represents the empty/degraded cache left by a non-101
// response.
type Capabilities struct {
	args  map[string][]string
	order []string // tokens in the order the server listed them
}

// ParseCapabilities parses the block of lines following a 101 response.
// Each line is "TOKEN [ARG ...]"; the token is upper-cased for lookup.
func ParseCapabilities(lines []string) *Capabilities {
	c := &Capabilities{args: make(map[string][]string)}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		token := strings.ToUpper(fields[0])
		c.args[token] = fields[1:]
		c.order = append(c.order, token)
	}
	return c
}

// FirstToken returns the first capability token in the order the server
// sent it, and whether the block was non-empty. RFC 3977 §5.2 requires
// this to be VERSION.
func (c *Capabilities) FirstToken() (string, bool) {
	if c == nil || len(c.order) == 0 {
		return "", false
	}
	return c.order[0], true
}

// Has reports whether token was offered.
func (c *Capabilities) Has(token string) bool {
	if c == nil {
		return false
	}
	_, ok := c.args[strings.ToUpper(token)]
	return ok
}

// Args returns the argument list for token, and whether it was present.
func (c *Capabilities) Args(token string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	args, ok := c.args[strings.ToUpper(token)]
	return args, ok
}

// Empty reports whether the cache holds no capabilities at all, the
// degraded state left by a non-101 CAPABILITIES response.
func (c *Capabilities) Empty() bool {
	return c == nil || len(c.args) == 0
}
