package translate

import (
	"strings"
	"time"
)

// dumpTimeLayout matches the second-resolution prefix of dump timestamps
// ("2015-03-01 10:15:00.0" and similar).
const dumpTimeLayout = "2006-01-02 15:04:05"

// NormalizeDate rewrites a dump timestamp ("YYYY-MM-DD HH:MM:SS...") into
// the ISO-8601-like form the target tracker accepts: the space becomes a
// "T" and the UTC offset suffix is appended verbatim. The dump does not
// record a timezone, so the suffix is a fixed configured value rather than
// a real conversion; changing that would silently rewrite historical
// timestamps.
//
// Returns "" for input too short to be a timestamp, so callers can apply
// the usual sparse-field policy.
func NormalizeDate(ts, utcOffset string) string {
	if len(ts) < len(dumpTimeLayout) {
		return ""
	}
	return strings.Replace(ts, " ", "T", 1) + utcOffset
}

// ParseDumpTime parses a dump timestamp to second resolution. The fractional
// part is ignored; it is always ".0" in practice.
func ParseDumpTime(ts string) (time.Time, bool) {
	if len(ts) < len(dumpTimeLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(dumpTimeLayout, ts[:len(dumpTimeLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
