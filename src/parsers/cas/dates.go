package cas

import (
	"regexp"
	"strings"
	"time"
)

// leadingDatePattern matches a date token at the start of a transaction line
// in any of the formats Indian registrars print.
var leadingDatePattern = regexp.MustCompile(
	`^(\d{1,2}[-/.][A-Za-z]{3}[-/.]\d{4}|\d{1,2}[-/.]\d{1,2}[-/.]\d{4}|\d{4}-\d{1,2}-\d{1,2}|\d{1,2}\s+[A-Za-z]{3,9}\s+\d{4}|[A-Za-z]{3,9}\s+\d{1,2},\s*\d{4})`)

var dateLayouts = []string{
	"2-Jan-2006",
	"2/Jan/2006",
	"2.Jan.2006",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006-1-2",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// parseFlexibleDate tries every layout the registrars are known to use.
func parseFlexibleDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
