// Package markethours knows the trading sessions of the exchange segments
// this terminal routes to, in IST. Used for operator-facing status, not
// for order gating: AMO orders are valid outside market hours.
package markethours

import (
	"fmt"
	"time"

	"tradeterm/internal/model"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// Session is one segment's daily trading window in IST.
type Session struct {
	OpenHour    int
	OpenMinute  int
	CloseHour   int
	CloseMinute int
}

// sessions maps a segment code to its regular trading window. Commodity
// and currency derivatives run longer than the cash and F&O sessions.
var sessions = map[string]Session{
	"NSE": {9, 15, 15, 30},
	"BSE": {9, 15, 15, 30},
	"NFO": {9, 15, 15, 30},
	"BFO": {9, 15, 15, 30},
	"CDS": {9, 0, 17, 0},
	"MCX": {9, 0, 23, 30},
}

// SessionFor returns the trading window for a segment. Unknown segments
// get the equity session.
func SessionFor(segment string) Session {
	if s, ok := sessions[segment]; ok {
		return s
	}
	return sessions["NSE"]
}

// IsOpen reports whether the segment is trading at t: inside its session
// window on a weekday that is not an exchange holiday.
func IsOpen(segment string, t time.Time) bool {
	ist := t.In(IST)
	if !IsTradingDay(ist) {
		return false
	}
	s := SessionFor(segment)
	hm := ist.Hour()*60 + ist.Minute()
	return hm >= s.OpenHour*60+s.OpenMinute && hm < s.CloseHour*60+s.CloseMinute
}

// IsWeekday returns true if t is Mon-Fri in IST.
func IsWeekday(t time.Time) bool {
	wd := t.In(IST).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	ist := t.In(IST)
	return IsWeekday(ist) && !IsHoliday(ist)
}

// NextOpen returns the segment's next open time. If t is before today's
// open on a trading day, returns today's open.
func NextOpen(segment string, t time.Time) time.Time {
	s := SessionFor(segment)
	ist := t.In(IST)

	todayOpen := time.Date(ist.Year(), ist.Month(), ist.Day(), s.OpenHour, s.OpenMinute, 0, 0, IST)
	if ist.Before(todayOpen) && IsTradingDay(ist) {
		return todayOpen
	}

	d := ist.AddDate(0, 0, 1)
	for i := 0; i < 10; i++ { // max 10 days ahead (holidays + weekends)
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), s.OpenHour, s.OpenMinute, 0, 0, IST)
		}
		d = d.AddDate(0, 0, 1)
	}
	return todayOpen.AddDate(0, 0, 1)
}

// StatusString returns a human-readable status for a segment.
func StatusString(segment string, t time.Time) string {
	if IsOpen(segment, t) {
		s := SessionFor(segment)
		ist := t.In(IST)
		close := time.Date(ist.Year(), ist.Month(), ist.Day(), s.CloseHour, s.CloseMinute, 0, 0, IST)
		return fmt.Sprintf("Open — closes in %s", fmtDur(close.Sub(ist)))
	}
	next := NextOpen(segment, t)
	ist := next.In(IST)
	return fmt.Sprintf("Closed — opens %s %s (%s)",
		ist.Weekday().String()[:3], ist.Format("15:04"), fmtDur(next.Sub(t)))
}

// Statuses returns the status line for every known segment.
func Statuses(t time.Time) map[string]string {
	out := make(map[string]string, len(sessions))
	for _, seg := range model.EquitySegments {
		out[seg] = StatusString(seg, t)
	}
	for _, seg := range model.DerivativeSegments {
		out[seg] = StatusString(seg, t)
	}
	return out
}

func fmtDur(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
