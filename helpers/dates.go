package helpers

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bcampbell/fuzzytime"
	"github.com/itlightning/dateparse"
)

// CurrentTime returns the current time, or a frozen time if GO_ENV=test so
// date resolution stays deterministic in tests.
func CurrentTime() time.Time {
	if os.Getenv("GO_ENV") == GO_TEST_ENV {
		return time.Date(2025, 9, 11, 15, 0, 0, 0, time.UTC)
	}
	return time.Now()
}

// ResolveDateRange translates a date filter value into inclusive start/end
// ISO dates, anchored at today.
//
//	"today":   [today, today]
//	"weekend": the coming Friday through Sunday; today if today is Friday,
//	           otherwise always strictly forward (Sat/Sun roll to next week)
//	"week":    [today, today+7]
//	other:     a literal date, used as a single-day range
//
// ok is false when the filter is empty or the literal date cannot be parsed;
// no date parameters should be sent in that case.
func ResolveDateRange(filter string, today time.Time) (start string, end string, ok bool) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return "", "", false
	}

	switch filter {
	case DATE_FILTER_TODAY:
		d := today.Format(ISO_DATE_FORMAT)
		return d, d, true
	case DATE_FILTER_WEEKEND:
		// days until Friday, with Friday itself mapping to 0
		offset := (int(time.Friday) - int(today.Weekday()) + 7) % 7
		friday := today.AddDate(0, 0, offset)
		sunday := friday.AddDate(0, 0, 2)
		return friday.Format(ISO_DATE_FORMAT), sunday.Format(ISO_DATE_FORMAT), true
	case DATE_FILTER_WEEK:
		return today.Format(ISO_DATE_FORMAT), today.AddDate(0, 0, 7).Format(ISO_DATE_FORMAT), true
	}

	parsed, err := ParseFlexibleDate(filter)
	if err != nil {
		return "", "", false
	}
	d := parsed.Format(ISO_DATE_FORMAT)
	return d, d, true
}

// ParseFlexibleDate parses a date string, trying dateparse first and
// falling back to fuzzytime extraction for messier input.
func ParseFlexibleDate(input string) (time.Time, error) {
	parsed, err := dateparse.ParseAny(input)
	if err == nil && parsed.Year() != 0 {
		return parsed, nil
	}

	dt, _, ferr := fuzzytime.Extract(input)
	if ferr != nil || dt.Empty() {
		return time.Time{}, fmt.Errorf("could not parse date %q", input)
	}
	iso := dt.ISOFormat()
	for _, format := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", ISO_DATE_FORMAT} {
		if t, perr := time.Parse(format, iso); perr == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date %q (fuzzytime gave %q)", input, iso)
}

// FormatDateTime renders a backend datetime for display, e.g.
// "Jan 2, 2006 (Mon) 7:30pm". Returns "" for unparseable input.
func FormatDateTime(value string) string {
	if value == "" {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		parsed, err = ParseFlexibleDate(value)
		if err != nil {
			return ""
		}
	}
	return parsed.Format("Jan 2, 2006 (Mon) 3:04pm")
}

// FormatDateRange renders the start/end pair for the detail panel. Same-day
// ranges only repeat the time, and a missing end collapses to the start.
func FormatDateRange(startValue, endValue string) string {
	start := FormatDateTime(startValue)
	if start == "" {
		return ""
	}
	if endValue == "" {
		return start
	}
	end := FormatDateTime(endValue)
	if end == "" {
		return start
	}

	startDay, err1 := time.Parse(time.RFC3339, startValue)
	endDay, err2 := time.Parse(time.RFC3339, endValue)
	if err1 == nil && err2 == nil && startDay.Format(ISO_DATE_FORMAT) == endDay.Format(ISO_DATE_FORMAT) {
		return start + " – " + endDay.Format("3:04pm")
	}
	return start + " – " + end
}
