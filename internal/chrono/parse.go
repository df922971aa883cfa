package chrono

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Normalized output formats.
const (
	ISODate     = "YYYY-MM-DD"
	ISOTime     = "HH:mm:ss"
	ISODateTime = "YYYY-MM-DDTHH:mm:ss"

	// Auto selects the built-in detection order.
	Auto = "auto"
)

// Clock is a time of day.
type Clock struct {
	Hour, Minute, Second int
}

// Seconds returns seconds since midnight.
func (c Clock) Seconds() int { return c.Hour*3600 + c.Minute*60 + c.Second }

// String renders the clock as HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

func (c Clock) valid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59 && c.Second >= 0 && c.Second <= 59
}

// ClockOf returns the time of day of t.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// Combine joins a calendar date with a time of day, in UTC.
func Combine(date time.Time, c Clock) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, c.Second, 0, time.UTC)
}

// isoLayouts are tried before any token pattern.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

var isoDateLayouts = append(slices.Clone(isoLayouts), "2006-01-02")

// autoDateLayouts is the ordered fallback list for auto date detection.
// Ambiguous values such as 03/04/2024 resolve to the first pattern that
// yields a valid calendar date.
var autoDateLayouts = []*Layout{
	compileLoose("MM/DD/YYYY"),
	compileLoose("DD/MM/YYYY"),
	compileLoose("YYYY-MM-DD"),
	compileLoose("MM-DD-YYYY"),
	compileLoose("DD-MM-YYYY"),
	compileLoose("MM.DD.YYYY"),
	compileLoose("DD.MM.YYYY"),
}

var (
	clockRe    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\.\d+)?\s*([AaPp]\.?[Mm]\.?)?$`)
	militaryRe = regexp.MustCompile(`^(\d{3,4})$`)
	compactRe  = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
)

// ParseDate parses the calendar date in s. An empty format or "auto" runs
// the detection order; anything else is compiled as a token format.
func ParseDate(s, format string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if isAuto(format) {
		return autoDate(s)
	}

	l, err := Compile(format)
	if err != nil || !l.HasDate() {
		return time.Time{}, false
	}

	f, ok := l.match(s)
	if !ok {
		return time.Time{}, false
	}

	return makeDate(f.year, f.month, f.day)
}

// ParseTime parses the time of day in s.
func ParseTime(s, format string) (Clock, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Clock{}, false
	}

	if isAuto(format) {
		return autoTime(s)
	}

	l, err := Compile(format)
	if err != nil || !l.HasTime() {
		return Clock{}, false
	}

	f, ok := l.match(s)
	if !ok {
		return Clock{}, false
	}

	c := Clock{Hour: f.hour, Minute: f.minute, Second: f.second}

	return c, c.valid()
}

// ParseDateTime parses a combined date and time. With auto detection the
// date part follows ParseDate's order and the remainder ParseTime's.
func ParseDateTime(s, format string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if !isAuto(format) {
		l, err := Compile(format)
		if err != nil || !l.HasDate() {
			return time.Time{}, false
		}

		f, ok := l.match(s)
		if !ok {
			return time.Time{}, false
		}

		d, ok := makeDate(f.year, f.month, f.day)
		if !ok {
			return time.Time{}, false
		}

		c := Clock{Hour: f.hour, Minute: f.minute, Second: f.second}
		if !c.valid() {
			return time.Time{}, false
		}

		return Combine(d, c), true
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), true
		}
	}

	datePart, timePart, found := strings.Cut(s, " ")
	if !found {
		datePart, timePart, found = strings.Cut(s, "T")
	}

	if !found {
		return time.Time{}, false
	}

	d, ok := autoDate(datePart)
	if !ok {
		return time.Time{}, false
	}

	c, ok := autoTime(strings.TrimSpace(timePart))
	if !ok {
		return time.Time{}, false
	}

	return Combine(d, c), true
}

// FormatDate renders the date of t. An empty format yields ISODate.
func FormatDate(t time.Time, format string) (string, error) {
	l, err := outputLayout(format, ISODate)
	if err != nil {
		return "", err
	}

	return l.format(t.Year(), int(t.Month()), t.Day(), ClockOf(t)), nil
}

// FormatTime renders a clock. An empty format yields ISOTime.
func FormatTime(c Clock, format string) (string, error) {
	l, err := outputLayout(format, ISOTime)
	if err != nil {
		return "", err
	}

	return l.format(0, 0, 0, c), nil
}

// FormatDateTime renders t. An empty format yields ISODateTime.
func FormatDateTime(t time.Time, format string) (string, error) {
	l, err := outputLayout(format, ISODateTime)
	if err != nil {
		return "", err
	}

	return l.format(t.Year(), int(t.Month()), t.Day(), ClockOf(t)), nil
}

// IsISODate reports whether s is already in YYYY-MM-DD form.
func IsISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// IsISOTime reports whether s is already in HH:MM:SS form.
func IsISOTime(s string) bool {
	_, err := time.Parse("15:04:05", s)
	return err == nil
}

// IsISODateTime reports whether s is already in YYYY-MM-DDTHH:MM:SS form.
func IsISODateTime(s string) bool {
	_, err := time.Parse("2006-01-02T15:04:05", s)
	return err == nil
}

func outputLayout(format, fallback string) (*Layout, error) {
	if isAuto(format) {
		format = fallback
	}

	return Compile(format)
}

func isAuto(format string) bool {
	format = strings.TrimSpace(format)
	return format == "" || strings.EqualFold(format, Auto)
}

func autoDate(s string) (time.Time, bool) {
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	if m := compactRe.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])

		if t, ok := makeDate(y, mo, d); ok {
			return t, true
		}
	}

	for _, l := range autoDateLayouts {
		f, ok := l.match(s)
		if !ok {
			continue
		}

		if t, ok := makeDate(f.year, f.month, f.day); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

func autoTime(s string) (Clock, bool) {
	if m := clockRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])

		var sec int
		if m[3] != "" {
			sec, _ = strconv.Atoi(m[3])
		}

		hasMeridiem := m[4] != ""

		h, ok := to24(h, hasMeridiem && strings.HasPrefix(strings.ToLower(m[4]), "p"), hasMeridiem)
		if !ok {
			return Clock{}, false
		}

		c := Clock{Hour: h, Minute: mi, Second: sec}

		return c, c.valid()
	}

	if m := militaryRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		c := Clock{Hour: n / 100, Minute: n % 100}

		return c, c.valid()
	}

	if t, ok := ParseDateTime(s, Auto); ok {
		return ClockOf(t), true
	}

	return Clock{}, false
}

func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}

	return t, true
}
