package assistant

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DateTimeFormat is the fixed format the intent contract mandates.
const DateTimeFormat = "2006-01-02 15:04:05"

var strictFormats = []string{
	DateTimeFormat,
	"2006-01-02T15:04:05",
	"01/02/2006 15:04",
}

var nlParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseDateTime tries the strict formats in order, then falls back to a
// natural-language parser. Returns nil when nothing matches.
func ParseDateTime(text string, now time.Time) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	for _, layout := range strictFormats {
		if t, err := time.ParseInLocation(layout, text, now.Location()); err == nil {
			return &t
		}
	}

	result, err := nlParser.Parse(text, now)
	if err != nil || result == nil {
		return nil
	}
	t := result.Time
	return &t
}
