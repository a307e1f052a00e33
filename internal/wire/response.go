package wire

import (
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

var responseRE = regexp.MustCompile(`^([0-9]{3}) (.*)$`)

// Category classifies a three-digit response code.
type Category int

const (
	Information  Category = 1 // 1xx
	Success      Category = 2 // 2xx
	Intermediate Category = 3 // 3xx, "send more"
	Transient    Category = 4 // 4xx
	Permanent    Category = 5 // 5xx
)

// CategoryOf returns the category of a response code, or 0 if code is not a
// valid three-digit NNTP response code.
func CategoryOf(code int) Category {
	if code < 100 || code > 599 {
		return 0
	}
	return Category(code / 100)
}

// Response is a parsed response line: a numeric code and its argument text.
type Response struct {
	Code int
	Arg  string
}

// Multiline codes are followed by a dot-terminated block
// 211 is only multi-line in the context of LISTGROUP; callers that issued
// LISTGROUP must read the block themselves regardless of this table.
var multilineCodes = map[int]bool{
	100: true,
	101: true,
	215: true,
	220: true,
	221: true,
	222: true,
	224: true,
	225: true,
	230: true,
	231: true,
}

// IsMultiline reports whether code is unconditionally followed by a
// dot-terminated block.
func IsMultiline(code int) bool {
	return multilineCodes[code]
}

// ParseResponse breaks a raw response line into its code and argument.
func ParseResponse(line string) (Response, error) {
	m := responseRE.FindStringSubmatch(line)
	if m == nil {
		return Response{}, errors.Errorf("malformed response: %q", line)
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return Response{}, errors.Wrapf(err, "malformed response code: %q", line)
	}
	return Response{Code: code, Arg: m[2]}, nil
}
