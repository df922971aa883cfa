// Package derive synthesizes canonical fields that a batch does not carry
// but that follow from fields it does: response and turnout intervals,
// coordinates split from a combined location, and the incident datetime.
//
// Derivation is best effort. A field that cannot be derived stays absent;
// nothing here fails.
package derive

import (
	"time"

	"github.com/shopspring/decimal"

	"cadnorm/internal/chrono"
	"cadnorm/internal/diagnostic"
	"cadnorm/internal/record"
)

// Diagnostic codes for row warnings.
const (
	CodeOvernightWrap    = "overnight_wrap"
	CodeNegativeInterval = "negative_interval"
	CodeOutOfRange       = "coordinate_out_of_range"
)

// interval derives Target as the minutes from Start to End.
type interval struct {
	Target, Start, End string
}

var intervals = []interval{
	{Target: "responseTimeMinutes", Start: "dispatchTime", End: "onSceneTime"},
	{Target: "turnoutTimeMinutes", Start: "dispatchTime", End: "enRouteTime"},
}

// Synthesizer derives fields. It is stateless and safe for concurrent use.
type Synthesizer struct{}

// New returns a Synthesizer.
func New() *Synthesizer { return &Synthesizer{} }

// Synthesize returns an augmented copy of rec. Fields already present are
// never overwritten. row is used only to label warnings.
func (s *Synthesizer) Synthesize(row int, rec record.StandardizedRecord) (record.StandardizedRecord, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	out := rec.Clone()

	splitDateTime(out)
	combineDateTime(out)
	splitCoordinates(&diags, row, out)

	for _, iv := range intervals {
		deriveInterval(&diags, row, out, iv)
	}

	return out, diags
}

// SynthesizeAll applies Synthesize to every record.
func (s *Synthesizer) SynthesizeAll(recs []record.StandardizedRecord) ([]record.StandardizedRecord, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	out := make([]record.StandardizedRecord, len(recs))

	for i, r := range recs {
		var d diagnostic.Diagnostics

		out[i], d = s.Synthesize(i, r)
		diags.Merge(d)
	}

	return out, diags
}

// combineDateTime fills incidentDateTime from incidentDate and incidentTime.
func combineDateTime(rec record.StandardizedRecord) {
	if rec.Has("incidentDateTime") || !rec.Has("incidentDate") || !rec.Has("incidentTime") {
		return
	}

	d, ok := chrono.ParseDate(rec.Fields["incidentDate"].String(), chrono.Auto)
	if !ok {
		return
	}

	c, ok := chrono.ParseTime(rec.Fields["incidentTime"].String(), chrono.Auto)
	if !ok {
		return
	}

	if s, err := chrono.FormatDateTime(chrono.Combine(d, c), chrono.ISODateTime); err == nil {
		rec.Set("incidentDateTime", record.Text(s))
	}
}

// splitDateTime fills a missing incidentDate or incidentTime from
// incidentDateTime.
func splitDateTime(rec record.StandardizedRecord) {
	if !rec.Has("incidentDateTime") || (rec.Has("incidentDate") && rec.Has("incidentTime")) {
		return
	}

	t, ok := chrono.ParseDateTime(rec.Fields["incidentDateTime"].String(), chrono.Auto)
	if !ok {
		return
	}

	if !rec.Has("incidentDate") {
		if s, err := chrono.FormatDate(t, chrono.ISODate); err == nil {
			rec.Set("incidentDate", record.Text(s))
		}
	}

	if !rec.Has("incidentTime") {
		if s, err := chrono.FormatTime(chrono.ClockOf(t), chrono.ISOTime); err == nil {
			rec.Set("incidentTime", record.Text(s))
		}
	}
}

// moment is a parsed interval endpoint.
type moment struct {
	at    time.Time
	clock chrono.Clock
	// dated is true when at is usable: the value carried a date, or the
	// incident date was attached to it.
	dated bool
	// own is true when the value carried its own date.
	own bool
}

func parseMoment(v record.Value, incidentDate *time.Time) (moment, bool) {
	s := v.String()

	if t, ok := chrono.ParseDateTime(s, chrono.Auto); ok {
		return moment{at: t, clock: chrono.ClockOf(t), dated: true, own: true}, true
	}

	c, ok := chrono.ParseTime(s, chrono.Auto)
	if !ok {
		return moment{}, false
	}

	m := moment{clock: c}
	if incidentDate != nil {
		m.at = chrono.Combine(*incidentDate, c)
		m.dated = true
	}

	return m, true
}

// deriveInterval computes minutes between two timestamps. Datetimes are
// subtracted directly. Time-of-day values get the incident date attached;
// without one they are subtracted as minutes since midnight. A negative
// same-day difference is taken as an overnight wrap: 24 hours are added
// and a warning is recorded, since multi-day intervals cannot be told
// apart.
func deriveInterval(diags *diagnostic.Diagnostics, row int, rec record.StandardizedRecord, iv interval) {
	if rec.Has(iv.Target) || !rec.Has(iv.Start) || !rec.Has(iv.End) {
		return
	}

	var date *time.Time

	if rec.Has("incidentDate") {
		if d, ok := chrono.ParseDate(rec.Fields["incidentDate"].String(), chrono.Auto); ok {
			date = &d
		}
	}

	start, ok := parseMoment(rec.Fields[iv.Start], date)
	if !ok {
		return
	}

	end, ok := parseMoment(rec.Fields[iv.End], date)
	if !ok {
		return
	}

	var minutes float64

	switch {
	case start.dated && end.dated:
		minutes = end.at.Sub(start.at).Minutes()
	default:
		minutes = float64(end.clock.Seconds()-start.clock.Seconds()) / 60
	}

	if minutes < 0 {
		if start.own && end.own {
			diags.AddRowWarning(CodeNegativeInterval,
				iv.End+" precedes "+iv.Start+"; clamped to 0", row, iv.Target, "")

			minutes = 0
		} else {
			diags.AddRowWarning(CodeOvernightWrap,
				iv.End+" is earlier in the day than "+iv.Start+"; assumed to cross midnight", row, iv.Target, "")

			minutes += 24 * 60
		}
	}

	rec.Set(iv.Target, record.Numeric(roundMinutes(minutes)))
}

// roundMinutes clamps at zero and rounds half away from zero to one decimal.
func roundMinutes(m float64) float64 {
	if m < 0 {
		return 0
	}

	return decimal.NewFromFloat(m).Round(1).InexactFloat64()
}
