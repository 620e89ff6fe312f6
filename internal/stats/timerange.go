package stats

import (
	"fmt"
	"time"

	"github.com/BrayanMorningstar237/waiter-sync/internal/orders"
)

// RangeName is a named statistics window.
type RangeName string

const (
	Range6Hours RangeName = "6hours"
	RangeToday  RangeName = "today"
	RangeWeek   RangeName = "week"
	RangeMonth  RangeName = "month"
	RangeYear   RangeName = "year"
	RangeCustom RangeName = "custom"
)

// TimeRange is an inclusive [Start, End] window.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NamedRange resolves a named window relative to now. RangeCustom must go
// through CustomRange instead.
func NamedRange(name RangeName, now time.Time) (TimeRange, error) {
	switch name {
	case Range6Hours:
		return TimeRange{Start: now.Add(-6 * time.Hour), End: now}, nil
	case RangeToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return TimeRange{Start: start, End: now}, nil
	case RangeWeek:
		return TimeRange{Start: now.AddDate(0, 0, -7), End: now}, nil
	case RangeMonth:
		return TimeRange{Start: now.AddDate(0, -1, 0), End: now}, nil
	case RangeYear:
		return TimeRange{Start: now.AddDate(-1, 0, 0), End: now}, nil
	}
	return TimeRange{}, fmt.Errorf("unknown time range %q", name)
}

// CustomRange builds an explicit window. The end date is inclusive
// through the last instant of its day.
func CustomRange(start, end time.Time) TimeRange {
	endOfDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), end.Location())
	return TimeRange{Start: start, End: endOfDay}
}

// Contains reports whether t falls inside the window.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// FilterByRange keeps orders whose creation time falls in the window.
func FilterByRange(in []orders.Order, r TimeRange) []orders.Order {
	out := make([]orders.Order, 0, len(in))
	for _, o := range in {
		if r.Contains(o.CreatedAt) {
			out = append(out, o)
		}
	}
	return out
}
