// Package chrono parses and formats CAD export dates and times.
//
// Formats are written with tokens rather than Go reference layouts, because
// exports drop zero padding ("3/5/2024") that Go layouts reject:
//
//	YYYY  four-digit year        YY  two-digit year (20YY)
//	MM    month, 1-2 digits      M   same
//	DD    day, 1-2 digits        D   same
//	HH    hour 0-23              hh  hour 1-12 (needs A)
//	mm    minute                 ss  second
//	A     AM/PM marker
//
// Any other character is a literal; a space matches any run of whitespace.
package chrono

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokYear4
	tokYear2
	tokMonth
	tokDay
	tokHour24
	tokHour12
	tokMinute
	tokSecond
	tokMeridiem
)

// tokens is ordered longest-first so "YYYY" wins over "YY" and "MM" over "M".
var tokens = []struct {
	text string
	kind tokenKind
	re   string
}{
	{"YYYY", tokYear4, `(\d{4})`},
	{"YY", tokYear2, `(\d{2})`},
	{"MM", tokMonth, `(\d{1,2})`},
	{"M", tokMonth, `(\d{1,2})`},
	{"DD", tokDay, `(\d{1,2})`},
	{"D", tokDay, `(\d{1,2})`},
	{"HH", tokHour24, `(\d{1,2})`},
	{"hh", tokHour12, `(\d{1,2})`},
	{"mm", tokMinute, `(\d{2})`},
	{"ss", tokSecond, `(\d{2})`},
	{"A", tokMeridiem, `([AaPp]\.?[Mm]\.?)`},
}

type part struct {
	kind    tokenKind
	literal string
	padded  bool
}

// Layout is a compiled token format.
type Layout struct {
	src   string
	parts []part
	re    *regexp.Regexp
}

// fields holds the components captured by a Layout.
type fields struct {
	year, month, day     int
	hour, minute, second int
	pm, hasMeridiem      bool
	hasDate, hasTime     bool
}

// Compile parses a token format. A format without any token is rejected.
func Compile(format string) (*Layout, error) {
	return compile(format, false)
}

// compileLoose is Compile but tolerates a trailing time-of-day after a date,
// which auto-detection needs for "03/15/2024 14:32" style cells.
func compileLoose(format string) *Layout {
	l, err := compile(format, true)
	if err != nil {
		panic(err)
	}

	return l
}

func compile(format string, loose bool) (*Layout, error) {
	l := &Layout{src: format}

	var re strings.Builder

	re.WriteString(`^\s*`)

	hasToken := false

	for i := 0; i < len(format); {
		matched := false

		for _, tk := range tokens {
			if strings.HasPrefix(format[i:], tk.text) {
				l.parts = append(l.parts, part{kind: tk.kind, padded: len(tk.text) > 1})
				re.WriteString(tk.re)
				i += len(tk.text)
				matched = true
				hasToken = true

				break
			}
		}

		if matched {
			continue
		}

		ch := format[i : i+1]
		l.parts = append(l.parts, part{kind: tokLiteral, literal: ch})

		if ch == " " {
			re.WriteString(`\s+`)
		} else {
			re.WriteString(regexp.QuoteMeta(ch))
		}

		i++
	}

	if !hasToken {
		return nil, fmt.Errorf("format %q has no date or time tokens", format)
	}

	if loose {
		re.WriteString(`(?:[\sT].*)?`)
	}

	re.WriteString(`\s*$`)

	compiled, err := regexp.Compile(re.String())
	if err != nil {
		return nil, fmt.Errorf("format %q: %w", format, err)
	}

	l.re = compiled

	return l, nil
}

// String returns the source format.
func (l *Layout) String() string { return l.src }

// HasDate reports whether the layout carries year, month and day.
func (l *Layout) HasDate() bool {
	var y, m, d bool

	for _, p := range l.parts {
		switch p.kind {
		case tokYear4, tokYear2:
			y = true
		case tokMonth:
			m = true
		case tokDay:
			d = true
		}
	}

	return y && m && d
}

// HasTime reports whether the layout carries an hour and minute.
func (l *Layout) HasTime() bool {
	var h, m bool

	for _, p := range l.parts {
		switch p.kind {
		case tokHour24, tokHour12:
			h = true
		case tokMinute:
			m = true
		}
	}

	return h && m
}

func (l *Layout) match(s string) (fields, bool) {
	sub := l.re.FindStringSubmatch(s)
	if sub == nil {
		return fields{}, false
	}

	var f fields

	group := 1
	hour12 := false

	for _, p := range l.parts {
		if p.kind == tokLiteral {
			continue
		}

		raw := sub[group]
		group++

		if p.kind == tokMeridiem {
			f.hasMeridiem = true
			f.pm = strings.HasPrefix(strings.ToLower(raw), "p")

			continue
		}

		n, err := strconv.Atoi(raw)
		if err != nil {
			return fields{}, false
		}

		switch p.kind {
		case tokYear4:
			f.year = n
		case tokYear2:
			f.year = 2000 + n
		case tokMonth:
			f.month = n
		case tokDay:
			f.day = n
		case tokHour24:
			f.hour = n
			f.hasTime = true
		case tokHour12:
			f.hour = n
			f.hasTime = true
			hour12 = true
		case tokMinute:
			f.minute = n
		case tokSecond:
			f.second = n
		}
	}

	f.hasDate = l.HasDate()

	if f.hasMeridiem || hour12 {
		h, ok := to24(f.hour, f.pm, f.hasMeridiem)
		if !ok {
			return fields{}, false
		}

		f.hour = h
	}

	return f, true
}

// to24 converts a 12-hour clock reading.
func to24(hour int, pm, hasMeridiem bool) (int, bool) {
	if !hasMeridiem {
		return hour, hour >= 0 && hour <= 23
	}

	if hour < 1 || hour > 12 {
		return 0, false
	}

	if hour == 12 {
		hour = 0
	}

	if pm {
		hour += 12
	}

	return hour, true
}

// format renders date and clock components with the layout.
func (l *Layout) format(year, month, day int, c Clock) string {
	var b strings.Builder

	for _, p := range l.parts {
		switch p.kind {
		case tokLiteral:
			b.WriteString(p.literal)
		case tokYear4:
			fmt.Fprintf(&b, "%04d", year)
		case tokYear2:
			fmt.Fprintf(&b, "%02d", year%100)
		case tokMonth:
			writeNum(&b, month, p.padded)
		case tokDay:
			writeNum(&b, day, p.padded)
		case tokHour24:
			writeNum(&b, c.Hour, p.padded)
		case tokHour12:
			h := c.Hour % 12
			if h == 0 {
				h = 12
			}

			writeNum(&b, h, p.padded)
		case tokMinute:
			fmt.Fprintf(&b, "%02d", c.Minute)
		case tokSecond:
			fmt.Fprintf(&b, "%02d", c.Second)
		case tokMeridiem:
			if c.Hour >= 12 {
				b.WriteString("PM")
			} else {
				b.WriteString("AM")
			}
		}
	}

	return b.String()
}

func writeNum(b *strings.Builder, n int, padded bool) {
	if padded {
		fmt.Fprintf(b, "%02d", n)
		return
	}

	b.WriteString(strconv.Itoa(n))
}
