package timewindow

import (
	"errors"
	"time"
)

var ErrInvalidMonths = errors.New("months back must not be negative")

// Window is an inclusive calendar date range scoping one query.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) StartDate() string { return w.Start.Format("2006-01-02") }
func (w Window) EndDate() string   { return w.End.Format("2006-01-02") }

// Generate returns monthsBack+1 windows ending today, oldest first. Each
// window covers one calendar month; the current month is cut off at today.
func Generate(monthsBack int) ([]Window, error) {
	return GenerateFrom(time.Now(), monthsBack)
}

func GenerateFrom(today time.Time, monthsBack int) ([]Window, error) {
	if monthsBack < 0 {
		return nil, ErrInvalidMonths
	}

	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	windows := make([]Window, 0, monthsBack+1)
	for i := monthsBack; i >= 0; i-- {
		start := firstOfMonth.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, -1)
		if i == 0 {
			end = today
		}
		windows = append(windows, Window{Start: start, End: end})
	}
	return windows, nil
}
