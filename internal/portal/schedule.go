package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang/glog"
)

// LoadWeek fetches the seven days of week n one after another. A day that
// fails is left empty and logged; the week as a whole still succeeds.
func (s *Service) LoadWeek(ctx context.Context, n int) (*WeekSchedule, error) {
	if !s.session.LoggedIn() {
		s.status(LevelWarning, "请先登录")
		return nil, newError(ErrNotAuthenticated, "请先登录")
	}

	n = ClampWeek(n)
	s.selectedWeek = n

	s.status(LevelInfo, fmt.Sprintf("正在加载第 %d 周课表...", n))
	s.log(LevelInfo, fmt.Sprintf("开始加载第 %d 周课表", n))

	sched := &WeekSchedule{Week: n, Dates: s.WeekDates(n)}
	for i, date := range sched.Dates {
		if err := ctx.Err(); err != nil {
			s.report(LevelError, "加载课表失败: "+err.Error())
			return nil, err
		}
		courses, err := s.fetchDay(ctx, date)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.report(LevelError, "加载课表失败: "+ctxErr.Error())
				return nil, ctxErr
			}
			s.logDayFailure(date, err)
			courses = []CourseEntry{}
		}
		sched.Days[i] = courses
	}

	s.report(LevelSuccess, fmt.Sprintf("第 %d 周课表加载完成", n))
	return sched, nil
}

func (s *Service) logDayFailure(date time.Time, err error) {
	dateStr := FormatDate(date)
	glog.Warningf("schedule for %s: %v", dateStr, err)
	s.log(LevelError, fmt.Sprintf("获取 %s 课程失败: %s", dateStr, messageOf(err)))
}

// PreviousWeek loads the week before the selected one. On week 1 it does
// nothing and returns nil.
func (s *Service) PreviousWeek(ctx context.Context) (*WeekSchedule, error) {
	if s.selectedWeek <= MinWeek {
		return nil, nil
	}
	return s.LoadWeek(ctx, s.selectedWeek-1)
}

// NextWeek loads the week after the selected one. On the last week it does
// nothing and returns nil.
func (s *Service) NextWeek(ctx context.Context) (*WeekSchedule, error) {
	if s.selectedWeek >= MaxWeek {
		return nil, nil
	}
	return s.LoadWeek(ctx, s.selectedWeek+1)
}

func (s *Service) JumpToCurrentWeek(ctx context.Context) (*WeekSchedule, error) {
	return s.LoadWeek(ctx, s.CurrentWeek())
}

func (s *Service) fetchDay(ctx context.Context, date time.Time) ([]CourseEntry, error) {
	header := http.Header{}
	header.Set("sessionId", s.session.SessionID)

	body, err := s.client.Call(ctx, Request{
		Method: http.MethodGet,
		URL:    s.endpoints.Schedule,
		Query: url.Values{
			"dateStr": {FormatDate(date)},
			"id":      {s.session.UserID},
		},
		Header: header,
	})
	if err != nil {
		return nil, err
	}

	var resp scheduleResponse
	if err := decodeBody(body, &resp); err != nil {
		return nil, err
	}
	if !succeeded(resp.Status) {
		msg := resp.ErrorMsg
		if msg == "" {
			msg = "获取课程失败"
		}
		return nil, newError(ErrRemoteFailure, msg)
	}
	if resp.Result == nil {
		return []CourseEntry{}, nil
	}
	return resp.Result, nil
}
