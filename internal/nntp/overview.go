package nntp

import (
	"strconv"
	"strings"
)

// OverviewFormat is the parsed result of LIST OVERVIEW.FMT: an ordered list
// of header names, normalised ("Overview Format"): a trailing
// "full" marker is stripped, and the Bytes:/Lines: aliases are rewritten to
// the canonical metadata field names ":bytes"/":lines".
type OverviewFormat []string

// ParseOverviewFormat normalises the raw LIST OVERVIEW.FMT response lines.
func ParseOverviewFormat(lines []string) OverviewFormat {
	fmtList := make(OverviewFormat, 0, len(lines))
	for _, line := range lines {
		name := strings.ToLower(strings.TrimSpace(line))
		if strings.HasSuffix(name, ":full") {
			name = strings.TrimSuffix(name, "full")
		}
		switch name {
		case "bytes:", "bytes":
			name = ":bytes"
		case "lines:", "lines":
			name = ":lines"
		}
		fmtList = append(fmtList, name)
	}
	return fmtList
}

// ParseOverviewLine splits one OVER response line into (article number,
// field map). Field 0 is the article number; fields[1:] line up
// positionally with format, which LIST OVERVIEW.FMT reports starting from
// Subject: (RFC 3977 §8.3). Fields past position five carry their header
// name as a literal prefix on the value (e.g. "Xref: foo"); that prefix and
// the whitespace after it are stripped before storing the value.
func ParseOverviewLine(format OverviewFormat, line string) (int, map[string]string, error) {
	fields := strings.Split(line, "\t")
	if len(fields) == 0 {
		return 0, nil, newError(KindProtocol, "parse_overview", 0, "empty overview line")
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, nil, newError(KindProtocol, "parse_overview", 0, "malformed article number %q", fields[0])
	}

	values := make(map[string]string)
	for i := 1; i < len(fields) && i-1 < len(format); i++ {
		name := format[i-1]
		value := fields[i]
		if i > 5 {
			prefix := strings.TrimSuffix(name, ":")
			if n := len(prefix) + 1; len(value) >= n && strings.EqualFold(value[:n], prefix+":") {
				value = strings.TrimLeft(value[n:], " \t")
			}
		}
		values[name] = value
	}

	return n, values, nil
}
