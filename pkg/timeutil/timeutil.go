// Package timeutil holds the pure date/time helpers used by scheduling,
// reporting, and reminders. No I/O, no global state.
package timeutil

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrClockFormat reports a time-of-day string that does not match the
// "h:mmam"/"h:mmpm" shape. It should never occur on persisted data.
type ErrClockFormat struct {
	Input string
}

func (e *ErrClockFormat) Error() string {
	return fmt.Sprintf("invalid clock string %q (want h:mmam or h:mmpm)", e.Input)
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([apAP][mM])$`)

// ParseClock parses a 12-hour clock string such as "9:00am" or "12:30PM"
// into minutes since midnight. 12am maps to 0 and 12pm to 720; other hours
// gain 12 hours only in the pm half.
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, &ErrClockFormat{Input: s}
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, &ErrClockFormat{Input: s}
	}
	pm := strings.EqualFold(m[3], "pm")
	if hour == 12 {
		hour = 0
	}
	if pm {
		hour += 12
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight back into the 12-hour form
// accepted by ParseClock.
func FormatClock(minutes int) string {
	hour := minutes / 60 % 24
	minute := minutes % 60
	suffix := "am"
	if hour >= 12 {
		suffix = "pm"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d%s", display, minute, suffix)
}

// Period selects a reporting window anchored to a reference instant.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// PeriodRange returns the half-open [From, To) boundaries of the period
// containing now, in now's location. Weeks start on Monday. Unknown or
// empty periods default to the calendar month.
func PeriodRange(p Period, now time.Time) (from, to time.Time) {
	loc := now.Location()
	switch p {
	case PeriodDay:
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 0, 1)
	case PeriodWeek:
		// Monday-start: Sunday counts as 6 days after Monday.
		offset := (int(now.Weekday()) + 6) % 7
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -offset)
		return from, from.AddDate(0, 0, 7)
	case PeriodYear:
		from = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(1, 0, 0)
	default:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 1, 0)
	}
}

// Sample is one dated, weighted record to be bucketed: a count of one for
// volume reports, or an amount in cents for revenue reports.
type Sample struct {
	Date   time.Time
	Weight int64
}

// Bucket is one labeled period with its summed weight. Start is the
// canonical period start: buckets sort by Start, and Label exists only
// for display.
type Bucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"-"`
	Total int64     `json:"total"`
}

// GroupByPeriod buckets samples into labeled periods and sums their
// weights. Buckets come back in chronological order.
func GroupByPeriod(samples []Sample, p Period) []Bucket {
	byStart := make(map[time.Time]*Bucket)
	for _, s := range samples {
		start, label := bucketOf(s.Date, p)
		b, ok := byStart[start]
		if !ok {
			b = &Bucket{Label: label, Start: start}
			byStart[start] = b
		}
		b.Total += s.Weight
	}
	out := make([]Bucket, 0, len(byStart))
	for _, b := range byStart {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func bucketOf(d time.Time, p Period) (start time.Time, label string) {
	loc := d.Location()
	switch p {
	case PeriodDay:
		start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		return start, start.Format("Jan 02, 2006")
	case PeriodWeek:
		offset := (int(d.Weekday()) + 6) % 7
		start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -offset)
		year, week := start.ISOWeek()
		return start, fmt.Sprintf("Week %d (%d)", week, year)
	case PeriodYear:
		start = time.Date(d.Year(), 1, 1, 0, 0, 0, 0, loc)
		return start, start.Format("2006")
	default:
		start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.Format("Jan, 2006")
	}
}
