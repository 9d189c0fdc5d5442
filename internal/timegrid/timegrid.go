package timegrid

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeFormat is returned when a slot label cannot be parsed
// against its date.
var ErrInvalidTimeFormat = errors.New("invalid time format")

const layout = "2006-01-02 3:04 PM"

// Grid describes the bookable window of one calendar day. If EndHour is
// numerically smaller than StartHour the window wraps past midnight
// (e.g. 4:00 through 3:30 the next day).
type Grid struct {
	StartHour   int
	EndHour     int
	StepMinutes int
}

func (g Grid) wraps() bool {
	return g.EndHour < g.StartHour
}

// Labels returns the ordered slot labels for one day, e.g.
// "6:00 AM", "6:30 AM", ..., "10:30 PM". Labels past a midnight wrap
// come last and belong to the following calendar day.
func (g Grid) Labels() []string {
	var labels []string
	emit := func(hour int) {
		for m := 0; m < 60; m += g.StepMinutes {
			labels = append(labels, formatLabel(hour, m))
		}
	}
	if g.wraps() {
		for h := g.StartHour; h <= 23; h++ {
			emit(h)
		}
		for h := 0; h <= g.EndHour; h++ {
			emit(h)
		}
		return labels
	}
	for h := g.StartHour; h <= g.EndHour; h++ {
		emit(h)
	}
	return labels
}

// ToInstant binds a slot label to a calendar date (YYYY-MM-DD) in the
// given location. On a wrapped grid, labels earlier than the window
// start roll over to the next day so instants stay strictly increasing
// in label order.
func (g Grid) ToInstant(date, label string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(layout, date+" "+label, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q on %q", ErrInvalidTimeFormat, label, date)
	}
	if g.wraps() && t.Hour() < g.StartHour {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func formatLabel(hour, minute int) string {
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, minute, meridiem)
}
