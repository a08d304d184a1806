// Package scheduling holds the pure calendar arithmetic behind bulk booking: the slot grid,
// interval overlap and the calendar months a date range touches. Everything is computed in UTC.
package scheduling

import (
	"errors"
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	// MaxRangeDays bounds one recurrence to a year, leap day included.
	MaxRangeDays = 366
	// MaxSlots bounds the candidates a single grid may materialize.
	MaxSlots = 50000
)

var (
	ErrInvalidDate         = errors.New("date must use YYYY-MM-DD")
	ErrInvalidClock        = errors.New("time must use HH:MM")
	ErrInvalidDateRange    = errors.New("desde must not be after hasta")
	ErrInvalidTimeWindow   = errors.New("horaDesde must be before horaHasta")
	ErrNoWeekdays          = errors.New("at least one weekday is required")
	ErrInvalidWeekday      = errors.New("weekdays must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidSlotDuration = errors.New("slot duration must be positive")
	ErrRangeTooLong        = fmt.Errorf("desde and hasta must be at most %d days apart", MaxRangeDays)
	ErrTooManySlots        = fmt.Errorf("recurrence must produce at most %d slots", MaxSlots)
)

type Slot struct {
	Start time.Time
	End   time.Time
}

// GridRequest describes a recurrence: every selected weekday in [From, To], slots of
// SlotMinutes laid back to back from WindowStart while they end by WindowEnd.
type GridRequest struct {
	From        time.Time
	To          time.Time
	WindowStart int
	WindowEnd   int
	Weekdays    []int
	SlotMinutes int
}

func (r GridRequest) Validate() error {
	if r.From.After(r.To) {
		return ErrInvalidDateRange
	}
	if truncateDay(r.To).Sub(truncateDay(r.From)) >= MaxRangeDays*24*time.Hour {
		return ErrRangeTooLong
	}
	if r.WindowStart < 0 || r.WindowEnd > 24*60 || r.WindowStart >= r.WindowEnd {
		return ErrInvalidTimeWindow
	}
	if len(r.Weekdays) == 0 {
		return ErrNoWeekdays
	}
	for _, day := range r.Weekdays {
		if day < 0 || day > 6 {
			return ErrInvalidWeekday
		}
	}
	if r.SlotMinutes <= 0 {
		return ErrInvalidSlotDuration
	}
	return nil
}

// Grid lazily walks the slots of a GridRequest. It can be restarted with Reset.
type Grid struct {
	req      GridRequest
	from     time.Time
	to       time.Time
	weekdays [7]bool
	day      time.Time
	minute   int
}

func NewGrid(req GridRequest) (*Grid, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	g := &Grid{
		req:  req,
		from: truncateDay(req.From),
		to:   truncateDay(req.To),
	}
	for _, day := range req.Weekdays {
		g.weekdays[day] = true
	}
	if g.Count() > MaxSlots {
		return nil, ErrTooManySlots
	}
	g.Reset()
	return g, nil
}

func (g *Grid) Reset() {
	g.day = g.from
	g.minute = g.req.WindowStart
}

func (g *Grid) Next() (Slot, bool) {
	step := g.req.SlotMinutes
	for !g.day.After(g.to) {
		if g.weekdays[g.day.Weekday()] && g.minute+step <= g.req.WindowEnd {
			start := g.day.Add(time.Duration(g.minute) * time.Minute)
			g.minute += step
			return Slot{Start: start, End: start.Add(time.Duration(step) * time.Minute)}, true
		}
		g.day = g.day.AddDate(0, 0, 1)
		g.minute = g.req.WindowStart
	}
	return Slot{}, false
}

// All restarts the grid and collects every slot.
func (g *Grid) All() []Slot {
	g.Reset()
	slots := make([]Slot, 0, g.Count())
	for {
		slot, ok := g.Next()
		if !ok {
			break
		}
		slots = append(slots, slot)
	}
	g.Reset()
	return slots
}

// Count is matching dates times whole slots per window, without walking the grid.
func (g *Grid) Count() int {
	perDay := (g.req.WindowEnd - g.req.WindowStart) / g.req.SlotMinutes
	if perDay <= 0 {
		return 0
	}
	return CountMatchingDates(g.from, g.to, g.req.Weekdays) * perDay
}

func CountMatchingDates(from, to time.Time, weekdays []int) int {
	var selected [7]bool
	for _, day := range weekdays {
		if day >= 0 && day <= 6 {
			selected[day] = true
		}
	}

	count := 0
	for day := truncateDay(from); !day.After(truncateDay(to)); day = day.AddDate(0, 0, 1) {
		if selected[day.Weekday()] {
			count++
		}
	}
	return count
}

func ParseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return parsed, nil
}

// ParseClock converts HH:MM into minutes since midnight.
func ParseClock(value string) (int, error) {
	if len(value) != len(clockLayout) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	parsed, err := time.Parse(clockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// At combines a calendar date with an HH:MM clock value in UTC.
func At(date string, clock string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
