package portal

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

const remoteTimeLayout = "2006-01-02 15:04:05"

// ExportICS renders the week as an iCalendar document. Courses whose begin
// or end time cannot be parsed are left out; the count of exported events
// is returned alongside.
func ExportICS(w *WeekSchedule, loc *time.Location) (string, int, error) {
	if w == nil {
		return "", 0, newError(ErrValidation, "no schedule loaded")
	}
	if loc == nil {
		loc = time.Local
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//iclass_portal_tui//week schedule//ZH")
	cal.SetXWRCalName(fmt.Sprintf("第 %d 周课表", w.Week))

	stamp := time.Now()
	exported := 0
	for day, courses := range w.Days {
		for i, c := range courses {
			begin, err := time.ParseInLocation(remoteTimeLayout, c.ClassBeginTime, loc)
			if err != nil {
				continue
			}
			end, err := time.ParseInLocation(remoteTimeLayout, c.ClassEndTime, loc)
			if err != nil || !end.After(begin) {
				continue
			}

			uid := c.ID
			if uid == "" {
				uid = fmt.Sprintf("%s-%d", FormatDate(w.Dates[day]), i)
			}
			event := cal.AddEvent(uid + "@iclass")
			event.SetDtStampTime(stamp)
			event.SetStartAt(begin)
			event.SetEndAt(end)
			event.SetSummary(c.DisplayName())
			event.SetLocation(c.DisplayClassroom())
			event.SetDescription(c.DisplayTeacher())
			exported++
		}
	}

	return cal.Serialize(), exported, nil
}
