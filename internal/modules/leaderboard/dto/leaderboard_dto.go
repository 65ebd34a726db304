package dto

import (
	"fmt"

	"sheesh.app/server/pkg/apperror"
)

// Mode selects the leaderboard view.
type Mode string

const (
	ModeToday     Mode = "today"
	ModeYesterday Mode = "yesterday"
	ModeWeekly    Mode = "weekly"
	ModeChange    Mode = "change"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeToday, ModeYesterday, ModeWeekly, ModeChange}

// ParseMode returns apperror.ErrInvalidMode for anything but the four literals.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeToday, ModeYesterday, ModeWeekly, ModeChange:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", apperror.ErrInvalidMode, s)
}

// Row is one leaderboard line. Concrete types are *TodayRow, *YesterdayRow, *WeeklyRow
// and *ChangeRow.
type Row interface {
	Base() *RowBase
	Mode() Mode
	// PrimaryMetric returns the ordering value and whether it is usable for ranking.
	// Zero minutes and a null percentage are not usable.
	PrimaryMetric() (float64, bool)
}

// RowBase carries the identity and visibility fields shared by every mode.
// Rank is nil for incomplete and private-hidden rows.
type RowBase struct {
	UserID          uint    `json:"user_id"`
	Username        string  `json:"username"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	DisplayName     *string `json:"display_name"`
	AvatarURL       *string `json:"avatar_url,omitempty"`
	IsPrivateHidden bool    `json:"is_private_hidden"`
	Rank            *int    `json:"rank"`
}

func (b *RowBase) Base() *RowBase { return b }

type TodayRow struct {
	RowBase
	TodayScreentime int `json:"today_screentime"`
}

func (*TodayRow) Mode() Mode { return ModeToday }

func (r *TodayRow) PrimaryMetric() (float64, bool) {
	return float64(r.TodayScreentime), r.TodayScreentime > 0
}

type YesterdayRow struct {
	RowBase
	YesterdayScreentime int `json:"yesterday_screentime"`
}

func (*YesterdayRow) Mode() Mode { return ModeYesterday }

func (r *YesterdayRow) PrimaryMetric() (float64, bool) {
	return float64(r.YesterdayScreentime), r.YesterdayScreentime > 0
}

type WeeklyRow struct {
	RowBase
	WeeklyAverage int `json:"weekly_average"`
	DaysThisWeek  int `json:"days_this_week"`
}

func (*WeeklyRow) Mode() Mode { return ModeWeekly }

func (r *WeeklyRow) PrimaryMetric() (float64, bool) {
	return float64(r.WeeklyAverage), r.WeeklyAverage > 0
}

type ChangeRow struct {
	RowBase
	CurrentAverage   int      `json:"current_average"`
	PreviousAverage  int      `json:"previous_average"`
	PercentageChange *float64 `json:"percentage_change"`
	CurrentDays      int      `json:"current_days"`
	PreviousDays     int      `json:"previous_days"`
}

func (*ChangeRow) Mode() Mode { return ModeChange }

func (r *ChangeRow) PrimaryMetric() (float64, bool) {
	if r.PercentageChange == nil {
		return 0, false
	}
	return *r.PercentageChange, true
}

// LeaderboardResponse is the JSON envelope returned by the HTTP handler.
type LeaderboardResponse struct {
	GroupID uint   `json:"group_id"`
	Type    Mode   `json:"type"`
	Date    string `json:"date"`
	Data    []Row  `json:"data"`
}
