package timeparsing

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var nlpParser = func() *when.Parser {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return p
}()

// parseNaturalLanguage parses expressions like "two years ago" or
// "last monday" relative to now.
func parseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	r, err := nlpParser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("natural-language parse failed for %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("no date found in %q", s)
	}
	return r.Time, nil
}
