package service

import (
	"time"

	"sheesh.app/server/internal/modules/leaderboard/dto"
)

const dateLayout = "2006-01-02"

// DayRange is a half-open range of calendar days [From, To) in ISO form.
// ISO dates compare correctly as strings.
type DayRange struct {
	From string
	To   string
}

func (r DayRange) Contains(date string) bool {
	return date >= r.From && date < r.To
}

// Windows holds every day boundary derived from one asOf instant.
type Windows struct {
	Today     string
	Yesterday string
	// Week is the trailing seven days, today excluded.
	Week DayRange
	// Current and Previous are the trailing three-day blocks compared in change mode.
	Current  DayRange
	Previous DayRange
}

// WindowsAt derives the windows from asOf's calendar date in loc.
func WindowsAt(asOf time.Time, loc *time.Location) Windows {
	if loc == nil {
		loc = time.UTC
	}
	local := asOf.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format(dateLayout)
	}

	return Windows{
		Today:     day(0),
		Yesterday: day(-1),
		Week:      DayRange{From: day(-7), To: day(0)},
		Current:   DayRange{From: day(-3), To: day(0)},
		Previous:  DayRange{From: day(-6), To: day(-3)},
	}
}

// FetchRange is the smallest day range holding every entry mode reads.
func (w Windows) FetchRange(mode dto.Mode) DayRange {
	switch mode {
	case dto.ModeToday:
		return DayRange{From: w.Today, To: nextDay(w.Today)}
	case dto.ModeYesterday:
		return DayRange{From: w.Yesterday, To: w.Today}
	case dto.ModeWeekly:
		return w.Week
	case dto.ModeChange:
		return DayRange{From: w.Previous.From, To: w.Current.To}
	}
	return DayRange{}
}

func nextDay(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, 1).Format(dateLayout)
}
