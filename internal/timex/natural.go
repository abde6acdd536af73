package timex

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// SinceParser turns user input such as "last week", "3 days ago" or
// "2024-05-01" into a point in time.
type SinceParser struct {
	parser *when.Parser
}

// NewSinceParser builds a parser with the English and common rule sets.
func NewSinceParser() *SinceParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &SinceParser{parser: w}
}

// Parse resolves input relative to ref. RFC 3339 timestamps and plain dates
// are accepted directly; everything else goes through the natural-language
// rules.
func (p *SinceParser) Parse(input string, ref time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, input, ref.Location()); err == nil {
		return t, nil
	}

	result, err := p.parser.Parse(input, ref)
	if err != nil || result == nil {
		return time.Time{}, fmt.Errorf("could not parse time from %q", input)
	}

	return result.Time, nil
}
