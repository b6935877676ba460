package schedule

import (
	"fmt"
	"time"

	"github.com/EgoistSY/game-news-bot/internal/logger"
)

// Reporting cutoffs in the reporting timezone: each run covers news since
// 10:00 of the previous business day up to 09:59:59 today.
const (
	sendHour   = 10
	cutoffHour = 9
	cutoffMin  = 59
	cutoffSec  = 59
)

// Window is the reporting interval, computed once per run and immutable
// afterward.
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Floor is the hard lower bound for plausible timestamps: anything older
// than Start minus one day is treated as malformed (epoch-like) rather than
// merely out of window.
func (w Window) Floor() time.Time {
	return w.Start.AddDate(0, 0, -1)
}

// HolidayProvider yields the holiday dates for one year, keyed "2006-01-02".
// It is optional: an error degrades the calendar to weekend-only logic.
type HolidayProvider interface {
	Holidays(year int) (map[string]bool, error)
}

// Calendar computes reporting windows with business-day rollback.
type Calendar struct {
	loc      *time.Location
	provider HolidayProvider

	warned map[int]bool // years already warned about missing holiday data
}

// Location returns the reporting timezone, KST with a fixed-offset fallback
// when the zone database is unavailable.
func Location() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

func NewCalendar(loc *time.Location, provider HolidayProvider) *Calendar {
	return &Calendar{loc: loc, provider: provider, warned: map[int]bool{}}
}

// ComputeWindow returns the reporting window for a run at "now". End is
// today's cutoff; Start is the previous business day's send hour, widened to
// that day's midnight when the gap to today spans more than one calendar day
// (a Monday run covers the whole of Friday plus the weekend).
func (c *Calendar) ComputeWindow(now time.Time) Window {
	now = now.In(c.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)

	end := today.Add(time.Duration(cutoffHour)*time.Hour +
		time.Duration(cutoffMin)*time.Minute +
		time.Duration(cutoffSec)*time.Second)

	prev := today.AddDate(0, 0, -1)
	for !c.isBusinessDay(prev) {
		prev = prev.AddDate(0, 0, -1)
	}

	var start time.Time
	gapDays := int(today.Sub(prev).Hours() / 24)
	if gapDays > 1 {
		// First business day after a multi-day gap: accumulate the whole
		// gap instead of just the last business-day window.
		start = prev
	} else {
		start = prev.Add(time.Duration(sendHour) * time.Hour)
	}

	return Window{
		Start: start,
		End:   end,
		Label: fmt.Sprintf("%s 게임업계 뉴스 브리핑", today.Format("2006-01-02")),
	}
}

func (c *Calendar) isBusinessDay(day time.Time) bool {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if c.provider == nil {
		return true
	}

	holidays, err := c.provider.Holidays(day.Year())
	if err != nil {
		if !c.warned[day.Year()] {
			c.warned[day.Year()] = true
			logger.Warn("holiday data unavailable, using weekend-only business days",
				"year", day.Year(), "error", err)
		}
		return true
	}
	return !holidays[day.Format("2006-01-02")]
}
