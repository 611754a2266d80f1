// Package market answers trading-session questions for the NYSE.
package market

import (
	"log"
	"time"

	"github.com/scmhub/calendar"
)

const (
	OpenQuoteTTL   = 30 * time.Second
	ClosedQuoteTTL = 5 * time.Minute
)

// Calendar wraps the NYSE exchange calendar. When the calendar data cannot
// be loaded it falls back to Mon-Fri 09:30-16:00 America/New_York without
// holidays.
type Calendar struct {
	cal      *calendar.Calendar
	loc      *time.Location
	fallback bool
}

var loadExchange = func(mic string) *calendar.Calendar {
	return calendar.GetCalendar(mic)
}

func NewNYSE() *Calendar {
	cal := loadExchange("xnys")
	if cal == nil {
		log.Println("Warning: failed to load NYSE calendar, using weekday 09:30-16:00 fallback")
		return newFallback()
	}
	loc := cal.Loc
	if loc == nil {
		loc = newYork()
	}
	return &Calendar{cal: cal, loc: loc}
}

func newFallback() *Calendar {
	return &Calendar{loc: newYork(), fallback: true}
}

func newYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func (c *Calendar) IsBusinessDay(t time.Time) bool {
	t = t.In(c.loc)
	if c.fallback {
		wd := t.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return c.cal.IsBusinessDay(t)
}

// IsOpen reports whether the regular session is trading at t.
func (c *Calendar) IsOpen(t time.Time) bool {
	t = t.In(c.loc)
	if c.fallback {
		if !c.IsBusinessDay(t) {
			return false
		}
		minutes := t.Hour()*60 + t.Minute()
		return minutes >= 9*60+30 && minutes < 16*60
	}
	return c.cal.IsOpen(t)
}

// QuoteTTL is how long a quote fetched at t stays fresh.
func (c *Calendar) QuoteTTL(t time.Time) time.Duration {
	if c.IsOpen(t) {
		return OpenQuoteTTL
	}
	return ClosedQuoteTTL
}

// RollForward moves t to the same wall-clock time on the next business day
// when t falls on a weekend or holiday.
func (c *Calendar) RollForward(t time.Time) time.Time {
	out := t
	for i := 0; i < 14 && !c.IsBusinessDay(out); i++ {
		out = out.AddDate(0, 0, 1)
	}
	return out
}
