package nntp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the 14-digit DATE response format, YYYYMMDDHHMMSS.
const dateLayout = "20060102150405"

// ParseDATE parses a DATE command response argument into a UTC time.
func ParseDATE(arg string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(arg), time.UTC)
	if err != nil {
		return time.Time{}, newError(KindProtocol, "date", 0, "malformed DATE response %q", arg)
	}
	return t, nil
}

// FormatNewDate renders a time as the two (or three) tokens NEWGROUPS and
// NEWNEWS expect: "[YY]YYMMDD HHMMSS [GMT]". gmt controls whether the GMT
// token is appended; the harness always operates in UTC so it is always
// sent true in practice, but the parameter mirrors the protocol surface.
func FormatNewDate(t time.Time, gmt bool) string {
	t = t.UTC()
	s := fmt.Sprintf("%s %s", t.Format("20060102"), t.Format("150405"))
	if gmt {
		s += " GMT"
	}
	return s
}

// ParseFlexibleDate accepts the three forms §4.3 allows for newgroups/newnews
// dates: a ("YYMMDD"|"YYYYMMDD", "HHMMSS") pair, a concatenated
// "YYYYMMDDHHMMSS" single string, or a decimal Unix epoch second (gmt must
// be true for the epoch form, per spec).
func ParseFlexibleDate(date string, time_ string, gmt bool) (time.Time, error) {
	if time_ == "" {
		if epoch, err := strconv.ParseInt(date, 10, 64); err == nil && len(date) <= 10 {
			if !gmt {
				return time.Time{}, newError(KindProtocol, "newdate", 0, "epoch date form requires gmt=true")
			}
			return time.Unix(epoch, 0).UTC(), nil
		}
		if len(date) == 14 {
			return time.ParseInLocation(dateLayout, date, time.UTC)
		}
		return time.Time{}, newError(KindProtocol, "newdate", 0, "malformed concatenated date %q", date)
	}

	day := date
	switch len(day) {
	case 6:
		yy, err := strconv.Atoi(day[:2])
		if err != nil {
			return time.Time{}, newError(KindProtocol, "newdate", 0, "malformed date %q", date)
		}
		century := "20"
		if yy >= 70 {
			century = "19"
		}
		day = century + day
	case 8:
		// already YYYYMMDD
	default:
		return time.Time{}, newError(KindProtocol, "newdate", 0, "malformed date %q", date)
	}

	return time.ParseInLocation(dateLayout, day+time_, time.UTC)
}
