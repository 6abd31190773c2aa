package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/golang/glog"
)

// SignCourse submits one check-in. Only the user id is needed; the sign
// endpoint does not look at the session token. Request failures are folded
// into the returned SignResult, so the error is non-nil only when nobody is
// logged in.
func (s *Service) SignCourse(ctx context.Context, course CourseEntry) (SignResult, error) {
	if s.session.UserID == "" {
		s.status(LevelWarning, "请先登录")
		return SignResult{CourseID: course.ID, CourseName: course.CourseName}, newError(ErrNotAuthenticated, "请先登录")
	}

	name := course.DisplayName()
	s.status(LevelInfo, fmt.Sprintf("正在为 %s 打卡...", name))
	s.log(LevelInfo, "开始打卡: "+name)

	res := s.attemptSign(ctx, course)
	switch {
	case res.Err != nil:
		s.report(LevelError, "打卡失败: "+res.Detail)
	case res.Success():
		s.report(LevelSuccess, "打卡成功: "+name)
	default:
		s.report(LevelError, "打卡失败: "+name)
	}
	return res, nil
}

func (s *Service) attemptSign(ctx context.Context, course CourseEntry) SignResult {
	res := SignResult{CourseID: course.ID, CourseName: course.CourseName}

	body, err := s.client.Call(ctx, Request{
		Method: http.MethodPost,
		URL:    s.endpoints.Sign,
		Query: url.Values{
			"courseSchedId": {course.ID},
			"timestamp":     {strconv.FormatInt(s.now().UnixMilli(), 10)},
			"id":            {s.session.UserID},
		},
	})
	if err != nil {
		glog.Warningf("sign %s: %v", course.ID, err)
		res.Err = err
		res.Detail = messageOf(err)
		return res
	}

	res.Outcome = ClassifySignResponse(body)
	res.Detail = responseDetail(body)
	if !res.Success() {
		glog.Warningf("sign %s rejected: %s", course.ID, res.Detail)
	}
	return res
}

// BatchSignWeek signs every course of week n in order, pausing on the
// throttle after each attempt. Individual failures are counted, never
// fatal. A cancelled context stops the batch and returns what was done so
// far together with the context error.
func (s *Service) BatchSignWeek(ctx context.Context, n int) (BatchResult, error) {
	if !s.session.LoggedIn() {
		s.status(LevelWarning, "请先登录")
		return BatchResult{}, newError(ErrNotAuthenticated, "请先登录")
	}
	if !s.batchSign {
		s.status(LevelWarning, "一键打卡功能已禁用")
		return BatchResult{}, newError(ErrFeatureDisabled, "一键打卡功能已禁用")
	}

	n = ClampWeek(n)
	s.selectedWeek = n
	result := BatchResult{Week: n}

	s.status(LevelInfo, fmt.Sprintf("正在一键打卡第 %d 周...", n))
	s.log(LevelInfo, fmt.Sprintf("开始一键打卡第 %d 周所有课程", n))

	for _, date := range s.WeekDates(n) {
		if err := ctx.Err(); err != nil {
			return s.interrupted(result, err)
		}

		courses, err := s.fetchDay(ctx, date)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return s.interrupted(result, ctxErr)
			}
			s.logDayFailure(date, err)
			continue
		}

		for _, course := range courses {
			result.TotalCount++
			s.status(LevelInfo, fmt.Sprintf("正在打卡 (%d): %s", result.TotalCount, Truncate(course.DisplayName(), 15)))

			res := s.attemptSign(ctx, course)
			result.Results = append(result.Results, res)
			if res.Success() {
				result.SuccessCount++
				s.log(LevelSuccess, "打卡成功: "+course.DisplayName())
			} else {
				s.log(LevelError, fmt.Sprintf("打卡失败: %s (%s)", course.DisplayName(), res.Detail))
			}

			if err := s.throttle.Wait(ctx); err != nil {
				return s.interrupted(result, err)
			}
		}
	}

	msg := fmt.Sprintf("一键打卡完成: 成功 %d / %d 门课程", result.SuccessCount, result.TotalCount)
	if result.Status() == BatchSuccess {
		s.report(LevelSuccess, msg)
	} else {
		s.report(LevelWarning, msg)
	}
	return result, nil
}

func (s *Service) interrupted(result BatchResult, err error) (BatchResult, error) {
	s.report(LevelError, fmt.Sprintf("一键打卡中断: 成功 %d / %d 门课程 (%v)", result.SuccessCount, result.TotalCount, err))
	return result, err
}
