// Package wildmat implements the NNTP wildmat glob-list matcher used to
// scope newsgroup names and message hierarchies: a
// comma-separated list of patterns, each optionally negated with a leading
// "!", translated to a regular expression and evaluated in order with the
// last match's polarity winning.
package wildmat

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

type pattern struct {
	re     *regexp.Regexp
	negate bool
}

// Matcher is a compiled wildmat.
type Matcher struct {
	patterns []pattern
}

// Compile parses and compiles a comma-separated wildmat expression.
func Compile(expr string) (*Matcher, error) {
	var m Matcher

	for _, raw := range strings.Split(expr, ",") {
		negate := false
		p := raw
		if strings.HasPrefix(p, "!") {
			negate = true
			p = p[1:]
		}

		re, err := regexp.Compile("^" + translate(p) + "$")
		if err != nil {
			return nil, errors.Wrapf(err, "compiling wildmat pattern %q", raw)
		}

		m.patterns = append(m.patterns, pattern{re: re, negate: negate})
	}

	return &m, nil
}

// translate converts a wildmat glob into a regular expression body: "*"
// becomes ".*", "?" becomes ".", and every other regex metacharacter is
// escaped.
func translate(glob string) string {
	var b strings.Builder
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

// Match evaluates candidate against the compiled patterns in order; the
// polarity of the last matching pattern wins. A candidate matched by no
// pattern is rejected.
func (m *Matcher) Match(candidate string) bool {
	matched := false
	for _, p := range m.patterns {
		if p.re.MatchString(candidate) {
			matched = !p.negate
		}
	}
	return matched
}

// Filter returns the subset of candidates accepted by m, preserving order.
func (m *Matcher) Filter(candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if m.Match(c) {
			out = append(out, c)
		}
	}
	return out
}
