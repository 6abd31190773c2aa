package portal

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang/glog"
)

// Session is the identity pair handed out by the login endpoint. It lives
// for as long as the process and is never written to disk.
type Session struct {
	UserID    string
	SessionID string
}

func (s Session) LoggedIn() bool {
	return s.UserID != "" && s.SessionID != ""
}

func (s *Session) clear() {
	s.UserID = ""
	s.SessionID = ""
}

// Login authenticates studentID and, on success, replaces the session and
// semester start, then loads the current week. On any failure the previous
// session is kept.
func (s *Service) Login(ctx context.Context, in LoginInput) (*WeekSchedule, error) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	if err := s.validateLogin(in); err != nil {
		s.status(LevelError, messageOf(err))
		return nil, err
	}

	s.status(LevelInfo, "正在登录...")
	s.log(LevelInfo, "开始登录系统")

	body, err := s.client.Call(ctx, Request{
		Method: http.MethodGet,
		URL:    s.endpoints.Login,
		Query: url.Values{
			"password":         {""},
			"phone":            {in.StudentID},
			"userLevel":        {"1"},
			"verificationType": {"2"},
			"verificationUrl":  {""},
		},
	})
	if err != nil {
		s.report(LevelError, "登录失败: "+messageOf(err))
		return nil, err
	}

	var resp loginResponse
	if err := decodeBody(body, &resp); err != nil {
		s.report(LevelError, "登录失败: "+messageOf(err))
		return nil, err
	}
	if !succeeded(resp.Status) {
		msg := resp.ErrorMsg
		if msg == "" {
			msg = "未知错误"
		}
		s.report(LevelError, "登录失败: "+msg)
		return nil, newError(ErrRemoteFailure, msg)
	}
	if resp.Result == nil || resp.Result.ID == "" || resp.Result.SessionID == "" {
		err := newError(ErrParsing, "登录响应缺少用户信息")
		s.report(LevelError, "登录失败: "+messageOf(err))
		return nil, err
	}

	s.session = Session{UserID: resp.Result.ID, SessionID: resp.Result.SessionID}
	s.semesterStart = NewDate(in.Year, in.Month, in.Day)
	glog.Infof("logged in as user %s, semester starts %s", s.session.UserID, s.semesterStart)

	s.report(LevelSuccess, "登录成功")

	return s.JumpToCurrentWeek(ctx)
}

func (s *Service) validateLogin(in LoginInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Code: ErrValidation, Message: "输入无效", Err: err}
	}
	for _, fe := range verrs {
		if fe.Field() == "StudentID" {
			return &Error{Code: ErrValidation, Message: "请输入学号", Err: err}
		}
	}
	return &Error{Code: ErrValidation, Message: "学期开始日期无效", Err: err}
}

// Logout drops the session. The semester start is kept.
func (s *Service) Logout() {
	s.session.clear()
	s.log(LevelInfo, "已退出登录")
}
