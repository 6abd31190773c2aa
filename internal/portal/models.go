package portal

import (
	"time"

	"github.com/mitchellh/mapstructure"
)

const statusOK = "0"

type CourseEntry struct {
	ID             string `mapstructure:"id"`
	CourseName     string `mapstructure:"courseName"`
	ClassroomName  string `mapstructure:"classroomName"`
	TeacherName    string `mapstructure:"teacherName"`
	ClassBeginTime string `mapstructure:"classBeginTime"`
	ClassEndTime   string `mapstructure:"classEndTime"`
}

func (c CourseEntry) DisplayName() string {
	return orPlaceholder(c.CourseName, "未知课程")
}

func (c CourseEntry) DisplayClassroom() string {
	return orPlaceholder(c.ClassroomName, "未知地点")
}

func (c CourseEntry) DisplayTeacher() string {
	return orPlaceholder(c.TeacherName, "未知教师")
}

func (c CourseEntry) DisplayBegin() string {
	return clockOf(c.ClassBeginTime)
}

func (c CourseEntry) DisplayEnd() string {
	return clockOf(c.ClassEndTime)
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// clockOf picks HH:MM out of a "2006-01-02 15:04:05" timestamp.
func clockOf(ts string) string {
	if len(ts) < 16 {
		return "--:--"
	}
	return ts[11:16]
}

// WeekSchedule holds one bucket per day, Monday first, aligned with Dates.
type WeekSchedule struct {
	Week  int
	Dates [daysPerWeek]time.Time
	Days  [daysPerWeek][]CourseEntry
}

func (w *WeekSchedule) Total() int {
	n := 0
	for _, day := range w.Days {
		n += len(day)
	}
	return n
}

type loginResult struct {
	ID        string `mapstructure:"id"`
	SessionID string `mapstructure:"sessionId"`
}

type loginResponse struct {
	Status   any          `mapstructure:"STATUS"`
	Result   *loginResult `mapstructure:"result"`
	ErrorMsg string       `mapstructure:"ERRORMSG"`
}

type scheduleResponse struct {
	Status   any           `mapstructure:"STATUS"`
	Result   []CourseEntry `mapstructure:"result"`
	ErrorMsg string        `mapstructure:"ERRORMSG"`
}

type statusResponse struct {
	Status   any    `mapstructure:"STATUS"`
	ErrorMsg string `mapstructure:"ERRORMSG"`
}

// succeeded reports whether a STATUS value is the string "0". A numeric 0 is
// not success; the remote only ever sends the string form on success.
func succeeded(status any) bool {
	s, ok := status.(string)
	return ok && s == statusOK
}

// decodeBody maps a JSON object body onto out. Weak typing lets numeric ids
// land in string fields.
func decodeBody(body Body, out any) error {
	obj, ok := body.Object()
	if !ok {
		return &Error{Code: ErrParsing, Message: "unexpected response: " + body.Summary()}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return &Error{Code: ErrParsing, Message: "failed to build decoder", Err: err}
	}
	if err := dec.Decode(obj); err != nil {
		return &Error{Code: ErrParsing, Message: "failed to decode response", Err: err}
	}
	return nil
}
