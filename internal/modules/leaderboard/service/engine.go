package service

import (
	"sort"
	"time"

	"sheesh.app/server/internal/entity"
	"sheesh.app/server/internal/modules/leaderboard/dto"
)

// Engine turns group members and their screentime entries into an ordered leaderboard.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	publicGroupID uint
	loc           *time.Location
}

func NewEngine(publicGroupID uint, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{publicGroupID: publicGroupID, loc: loc}
}

func (e *Engine) PublicGroupID() uint { return e.publicGroupID }

func (e *Engine) Location() *time.Location { return e.loc }

// Windows returns the day boundaries for asOf in the engine's timezone.
func (e *Engine) Windows(asOf time.Time) Windows {
	return WindowsAt(asOf, e.loc)
}

// Compute builds the leaderboard for groupID. members must be in membership order; that order
// is kept for unranked rows. Entries outside the mode's window or for non-members are ignored.
func (e *Engine) Compute(groupID uint, mode dto.Mode, asOf time.Time, members []entity.User, entries []entity.ScreentimeEntry) ([]dto.Row, error) {
	if _, err := dto.ParseMode(string(mode)); err != nil {
		return nil, err
	}

	w := e.Windows(asOf)
	byUser := groupEntries(entries)
	applyPrivacy := groupID == e.publicGroupID

	rows := make([]dto.Row, 0, len(members))
	for i := range members {
		m := &members[i]
		base := dto.RowBase{
			UserID:          m.ID,
			Username:        m.Username,
			FirstName:       m.FirstName,
			LastName:        m.LastName,
			DisplayName:     m.DisplayName,
			AvatarURL:       m.AvatarURL,
			IsPrivateHidden: applyPrivacy && m.IsPrivate,
		}
		rows = append(rows, buildRow(mode, base, byUser[m.ID], w))
	}

	return rank(rows), nil
}

func buildRow(mode dto.Mode, base dto.RowBase, entries []entity.ScreentimeEntry, w Windows) dto.Row {
	hidden := base.IsPrivateHidden

	switch mode {
	case dto.ModeToday:
		row := &dto.TodayRow{RowBase: base}
		if !hidden {
			row.TodayScreentime = minutesOn(entries, w.Today)
		}
		return row

	case dto.ModeYesterday:
		row := &dto.YesterdayRow{RowBase: base}
		if !hidden {
			row.YesterdayScreentime = minutesOn(entries, w.Yesterday)
		}
		return row

	case dto.ModeWeekly:
		row := &dto.WeeklyRow{RowBase: base}
		if !hidden {
			week := aggregate(entries, w.Week)
			row.WeeklyAverage = week.roundedMean()
			row.DaysThisWeek = week.count
		}
		return row

	default:
		row := &dto.ChangeRow{RowBase: base}
		if !hidden {
			current := aggregate(entries, w.Current)
			previous := aggregate(entries, w.Previous)
			row.CurrentAverage = current.roundedMean()
			row.PreviousAverage = previous.roundedMean()
			row.CurrentDays = current.count
			row.PreviousDays = previous.count
			row.PercentageChange = percentageChange(current, previous)
		}
		return row
	}
}

// percentageChange compares the already-rounded averages. It is null without a previous
// baseline; an empty current window counts as 0 minutes.
func percentageChange(current, previous windowTotal) *float64 {
	prevAvg := previous.roundedMean()
	if prevAvg <= 0 {
		return nil
	}
	curAvg := current.roundedMean()
	pct := float64((curAvg-prevAvg)*100) / float64(prevAvg)
	return &pct
}

// rank orders usable rows ascending by primary metric, numbers them 1..N and appends the
// remaining rows in their incoming order.
func rank(rows []dto.Row) []dto.Row {
	ranked := make([]dto.Row, 0, len(rows))
	var unranked []dto.Row

	for _, r := range rows {
		if _, ok := r.PrimaryMetric(); ok && !r.Base().IsPrivateHidden {
			ranked = append(ranked, r)
		} else {
			unranked = append(unranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, _ := ranked[i].PrimaryMetric()
		b, _ := ranked[j].PrimaryMetric()
		return a < b
	})

	for i, r := range ranked {
		position := i + 1
		r.Base().Rank = &position
	}

	return append(ranked, unranked...)
}

type windowTotal struct {
	sum   int
	count int
}

// roundedMean rounds half up to whole minutes; 0 for an empty window.
func (t windowTotal) roundedMean() int {
	if t.count == 0 {
		return 0
	}
	return (2*t.sum + t.count) / (2 * t.count)
}

func aggregate(entries []entity.ScreentimeEntry, r DayRange) windowTotal {
	var t windowTotal
	for _, e := range entries {
		if r.Contains(e.Date) {
			t.sum += e.Minutes
			t.count++
		}
	}
	return t
}

func minutesOn(entries []entity.ScreentimeEntry, date string) int {
	for _, e := range entries {
		if e.Date == date {
			return e.Minutes
		}
	}
	return 0
}

func groupEntries(entries []entity.ScreentimeEntry) map[uint][]entity.ScreentimeEntry {
	byUser := make(map[uint][]entity.ScreentimeEntry)
	for _, e := range entries {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}
	return byUser
}
