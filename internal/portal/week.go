package portal

import (
	"fmt"
	"math"
	"time"
)

const (
	MinWeek = 1
	MaxWeek = 18

	daysPerWeek = 7
	weekSpan    = daysPerWeek * 24 * time.Hour
)

var weekdayLabels = [daysPerWeek]string{"星期一", "星期二", "星期三", "星期四", "星期五", "星期六", "星期日"}

// Date is a calendar date without a clock. Month is 1-based.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: time.Month(month), Day: day}
}

// Time anchors d at midnight in loc. time.Date normalises overflowing days,
// so 2025-02-31 becomes 2025-03-03.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func ClampWeek(n int) int {
	return max(MinWeek, min(MaxWeek, n))
}

// WeekDates returns the seven consecutive dates of week n, starting at
// start + (n-1)*7 days.
func WeekDates(start Date, n int, loc *time.Location) [daysPerWeek]time.Time {
	first := start.Time(loc).AddDate(0, 0, (n-1)*daysPerWeek)

	var dates [daysPerWeek]time.Time
	for i := range dates {
		dates[i] = first.AddDate(0, 0, i)
	}
	return dates
}

// CurrentWeekNumber is floor((now - start) / 7 days) + 1 clamped to
// [MinWeek, MaxWeek].
func CurrentWeekNumber(start Date, now time.Time) int {
	elapsed := now.Sub(start.Time(now.Location()))
	n := int(math.Floor(float64(elapsed)/float64(weekSpan))) + 1
	return ClampWeek(n)
}

// FormatDate renders t as YYYYMMDD for API requests.
func FormatDate(t time.Time) string {
	return t.Format("20060102")
}

// FormatDisplayDate renders t as MM-DD for column headers.
func FormatDisplayDate(t time.Time) string {
	return t.Format("01-02")
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekdayLabel returns the column label for day index i (0 = Monday).
func WeekdayLabel(i int) string {
	if i < 0 || i >= daysPerWeek {
		return ""
	}
	return weekdayLabels[i]
}
