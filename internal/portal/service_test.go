package portal

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_EmptyStudentID(t *testing.T) {
	remote := &fakeRemote{}
	svc, journal := newTestService(t, remote)

	for _, id := range []string{"", "   ", "\t\n"} {
		sched, err := svc.Login(context.Background(), LoginInput{StudentID: id, Year: 2025, Month: 9, Day: 1})
		assert.Nil(t, sched)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, ErrValidation, CodeOf(err))
	}

	assert.Zero(t, remote.count(""))
	assert.False(t, svc.Session().LoggedIn())
	level, status := journal.CurrentStatus()
	assert.Equal(t, LevelError, level)
	assert.Equal(t, "请输入学号", status)
}

func TestLogin_InvalidSemesterStart(t *testing.T) {
	remote := &fakeRemote{}
	svc, _ := newTestService(t, remote)

	_, err := svc.Login(context.Background(), LoginInput{StudentID: "2137", Year: 2025, Month: 13, Day: 1})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, remote.count(""))
}

func TestLogin_SuccessLoadsCurrentWeek(t *testing.T) {
	remote := &fakeRemote{
		login: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{
				"STATUS": "0",
				"result": map[string]any{"id": 12345, "sessionId": "sess-abc"},
			})
		},
		schedule: func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("dateStr") == "20250908" {
				writeJSON(w, map[string]any{"STATUS": "0", "result": []any{course("c1", "编译原理")}})
				return
			}
			writeJSON(w, map[string]any{"STATUS": "0", "result": []any{}})
		},
	}
	svc, journal := newTestService(t, remote, WithSemesterStart(NewDate(2024, 2, 26)))

	sched, err := svc.Login(context.Background(), LoginInput{StudentID: "  2137  ", Year: 2025, Month: 9, Day: 1})
	require.NoError(t, err)
	require.NotNil(t, sched)

	assert.Equal(t, Session{UserID: "12345", SessionID: "sess-abc"}, svc.Session())
	assert.Equal(t, NewDate(2025, 9, 1), svc.SemesterStart())
	assert.Equal(t, 2, sched.Week)
	assert.Equal(t, 2, svc.SelectedWeek())
	assert.Equal(t, "20250908", FormatDate(sched.Dates[0]))
	require.Len(t, sched.Days[0], 1)
	assert.Equal(t, "编译原理", sched.Days[0][0].CourseName)

	q := remote.last(loginPath).URL.Query()
	assert.Equal(t, "2137", q.Get("phone"))
	assert.Equal(t, "1", q.Get("userLevel"))
	assert.Equal(t, "2", q.Get("verificationType"))
	assert.Contains(t, q, "password")
	assert.Contains(t, q, "verificationUrl")

	assert.Equal(t, 7, remote.count(schedulePath))
	day := remote.last(schedulePath)
	assert.Equal(t, "sess-abc", day.Header.Get("sessionId"))
	assert.Equal(t, "12345", day.URL.Query().Get("id"))

	assert.Zero(t, journal.Count(LevelError))
	assert.False(t, journal.Loading())
}

func TestLogin_RemoteFailure(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		wantMsg string
	}{
		{"with message", map[string]any{"STATUS": "1", "ERRORMSG": "用户不存在"}, "用户不存在"},
		{"without message", map[string]any{"STATUS": "2"}, "未知错误"},
		{"numeric zero status", map[string]any{"STATUS": 0, "result": map[string]any{"id": "1", "sessionId": "x"}}, "未知错误"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{
				login: func(w http.ResponseWriter, r *http.Request) { writeJSON(w, tt.body) },
			}
			svc, journal := newTestService(t, remote)

			sched, err := svc.Login(context.Background(), LoginInput{StudentID: "2137", Year: 2025, Month: 9, Day: 1})
			assert.Nil(t, sched)
			assert.ErrorIs(t, err, ErrRemoteFailure)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.False(t, svc.Session().LoggedIn())
			assert.Zero(t, remote.count(schedulePath))

			_, status := journal.CurrentStatus()
			assert.Equal(t, "登录失败: "+tt.wantMsg, status)
		})
	}
}

func TestLogin_TransportFailureKeepsSession(t *testing.T) {
	remote := &fakeRemote{
		login: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
	}
	svc, journal := newTestService(t, remote)
	loggedIn(svc)

	_, err := svc.Login(context.Background(), LoginInput{StudentID: "2137", Year: 2025, Month: 9, Day: 1})
	assert.ErrorIs(t, err, ErrHTTPStatus)
	assert.Equal(t, Session{UserID: "u-1", SessionID: "token-1"}, svc.Session())
	assert.Equal(t, 1, journal.Count(LevelError))
}

func TestLoadWeek_RequiresSession(t *testing.T) {
	remote := &fakeRemote{}
	svc, _ := newTestService(t, remote)

	sched, err := svc.LoadWeek(context.Background(), 3)
	assert.Nil(t, sched)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, remote.count(""))

	svc.session = Session{UserID: "u-1"}
	_, err = svc.LoadWeek(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, remote.count(""))
}

func TestLoadWeek_DayFailureLeavesEmptyBucket(t *testing.T) {
	remote := &fakeRemote{
		schedule: func(w http.ResponseWriter, r *http.Request) {
			date := r.URL.Query().Get("dateStr")
			if date == "20250903" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			writeJSON(w, map[string]any{"STATUS": "0", "result": []any{course("c-"+date, "课程 "+date)}})
		},
	}
	svc, journal := newTestService(t, remote)
	loggedIn(svc)

	sched, err := svc.LoadWeek(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 7, remote.count(schedulePath))
	for i, day := range sched.Days {
		if i == 2 {
			assert.NotNil(t, day)
			assert.Empty(t, day)
			continue
		}
		require.Len(t, day, 1, "day %d", i)
		assert.Equal(t, "c-"+FormatDate(sched.Dates[i]), day[0].ID)
	}

	assert.Equal(t, 1, journal.Count(LevelError))
	level, status := journal.CurrentStatus()
	assert.Equal(t, LevelSuccess, level)
	assert.Equal(t, "第 1 周课表加载完成", status)
}

func TestLoadWeek_RemoteStatusFailure(t *testing.T) {
	remote := &fakeRemote{
		schedule: func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("dateStr") {
			case "20250901":
				writeJSON(w, map[string]any{"STATUS": "1", "ERRORMSG": "会话已过期"})
			case "20250902":
				writeJSON(w, map[string]any{"STATUS": "1"})
			case "20250903":
				writeJSON(w, map[string]any{"STATUS": "0", "result": nil})
			default:
				writeJSON(w, map[string]any{"STATUS": "0"})
			}
		},
	}
	svc, journal := newTestService(t, remote)
	loggedIn(svc)

	sched, err := svc.LoadWeek(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, sched.Total())

	var messages []string
	for _, e := range journal.Entries() {
		if e.Level == LevelError {
			messages = append(messages, e.Message)
		}
	}
	assert.Equal(t, []string{
		"获取 20250901 课程失败: 会话已过期",
		"获取 20250902 课程失败: 获取课程失败",
	}, messages)
}

func TestLoadWeek_ClampsWeek(t *testing.T) {
	remote := &fakeRemote{}
	svc, _ := newTestService(t, remote)
	loggedIn(svc)

	sched, err := svc.LoadWeek(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, MaxWeek, sched.Week)
	assert.Equal(t, MaxWeek, svc.SelectedWeek())

	sched, err = svc.LoadWeek(context.Background(), -3)
	require.NoError(t, err)
	assert.Equal(t, MinWeek, sched.Week)
}

func TestLoadWeek_CancelledContext(t *testing.T) {
	remote := &fakeRemote{}
	svc, journal := newTestService(t, remote)
	loggedIn(svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sched, err := svc.LoadWeek(ctx, 1)
	assert.Nil(t, sched)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, remote.count(""))
	level, _ := journal.CurrentStatus()
	assert.Equal(t, LevelError, level)
}

// cancelDuring answers every schedule request normally except the one for
// date, where it cancels the caller's context and stalls until the request
// is abandoned.
func cancelDuring(date string, cancel context.CancelFunc, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dateStr") != date {
			if next != nil {
				next(w, r)
				return
			}
			writeJSON(w, map[string]any{"STATUS": "0"})
			return
		}
		cancel()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}
}

func TestLoadWeek_CancelledDuringLastDay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote := &fakeRemote{schedule: cancelDuring("20250907", cancel, nil)}
	svc, journal := newTestService(t, remote)
	loggedIn(svc)

	sched, err := svc.LoadWeek(ctx, 1)
	assert.Nil(t, sched)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 7, remote.count(schedulePath))

	for _, e := range journal.Entries() {
		assert.NotContains(t, e.Message, "获取 20250907 课程失败")
	}
	level, status := journal.CurrentStatus()
	assert.Equal(t, LevelError, level)
	assert.Equal(t, "加载课表失败: context canceled", status)
}

func TestWeekNavigation(t *testing.T) {
	remote := &fakeRemote{}
	svc, _ := newTestService(t, remote)
	loggedIn(svc)
	ctx := context.Background()

	sched, err := svc.PreviousWeek(ctx)
	assert.NoError(t, err)
	assert.Nil(t, sched)
	assert.Zero(t, remote.count(""))

	sched, err = svc.NextWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sched.Week)

	_, err = svc.LoadWeek(ctx, MaxWeek)
	require.NoError(t, err)
	before := remote.count("")
	sched, err = svc.NextWeek(ctx)
	assert.NoError(t, err)
	assert.Nil(t, sched)
	assert.Equal(t, before, remote.count(""))

	sched, err = svc.PreviousWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, MaxWeek-1, sched.Week)

	sched, err = svc.JumpToCurrentWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sched.Week)
}

func TestSignCourse_RequiresUserID(t *testing.T) {
	remote := &fakeRemote{}
	svc, _ := newTestService(t, remote)

	res, err := svc.SignCourse(context.Background(), CourseEntry{ID: "c1"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, res.Success())
	assert.Zero(t, remote.count(""))
}

func TestSignCourse_OnlyNeedsUserID(t *testing.T) {
	remote := &fakeRemote{
		sign: func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("打卡成功"))
		},
	}
	svc, journal := newTestService(t, remote)
	svc.session = Session{UserID: "u-7"}

	res, err := svc.SignCourse(context.Background(), CourseEntry{ID: "c9", CourseName: "数据库"})
	require.NoError(t, err)
	assert.True(t, res.Success())

	req := remote.last(signPath)
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Empty(t, req.Header.Get("sessionId"))
	q := req.URL.Query()
	assert.Equal(t, "c9", q.Get("courseSchedId"))
	assert.Equal(t, "u-7", q.Get("id"))
	assert.Equal(t, strconv.FormatInt(fixedNow.UnixMilli(), 10), q.Get("timestamp"))

	level, status := journal.CurrentStatus()
	assert.Equal(t, LevelSuccess, level)
	assert.Equal(t, "打卡成功: 数据库", status)
}

func TestSignCourse_JSONStringBody(t *testing.T) {
	remote := &fakeRemote{
		sign: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`"打卡成功"`))
		},
	}
	svc, journal := newTestService(t, remote)
	loggedIn(svc)

	res, err := svc.SignCourse(context.Background(), CourseEntry{ID: "c1", CourseName: "概率论"})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "打卡成功", res.Detail)

	level, status := journal.CurrentStatus()
	assert.Equal(t, LevelSuccess, level)
	assert.Equal(t, "打卡成功: 概率论", status)
}

func TestSignCourse_FailuresAreResults(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr bool
	}{
		{"remote status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"STATUS": "1", "ERRORMSG": "不在签到时间"})
		}, false},
		{"plain text", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("failed")) }, false},
		{"http status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, journal := newTestService(t, &fakeRemote{sign: tt.handler})
			loggedIn(svc)

			res, err := svc.SignCourse(context.Background(), CourseEntry{ID: "c1", CourseName: "线性代数"})
			require.NoError(t, err)
			assert.False(t, res.Success())
			assert.Equal(t, tt.wantErr, res.Err != nil)

			level, status := journal.CurrentStatus()
			assert.Equal(t, LevelError, level)
			assert.True(t, strings.HasPrefix(status, "打卡失败: "), status)
		})
	}
}

// batchRemote serves five courses over the week: two on Monday, one on
// Wednesday and two on Friday. Courses c2 and c4 fail to sign.
func batchRemote() *fakeRemote {
	days := map[string][]any{
		"20250901": {course("c1", "高等数学"), course("c2", "大学物理")},
		"20250903": {course("c3", "程序设计")},
		"20250905": {course("c4", "离散数学"), course("c5", "英语")},
	}
	return &fakeRemote{
		schedule: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"STATUS": "0", "result": days[r.URL.Query().Get("dateStr")]})
		},
		sign: func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("courseSchedId") {
			case "c1":
				writeJSON(w, map[string]any{"STATUS": "0"})
			case "c2":
				writeJSON(w, map[string]any{"STATUS": "1", "ERRORMSG": "不在签到时间"})
			case "c3":
				w.Write([]byte("打卡成功SUCCESS"))
			case "c4":
				w.WriteHeader(http.StatusInternalServerError)
			default:
				w.Write([]byte("<html><body><p>SUCCESS</p></body></html>"))
			}
		},
	}
}

func TestBatchSignWeek_Partial(t *testing.T) {
	remote := batchRemote()
	throttle := &countingThrottle{}
	svc, journal := newTestService(t, remote, WithThrottle(throttle))
	loggedIn(svc)

	res, err := svc.BatchSignWeek(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, res.SuccessCount)
	assert.Equal(t, 5, res.TotalCount)
	assert.Equal(t, BatchPartial, res.Status())
	require.Len(t, res.Results, 5)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4", "c5"}, []string{
		res.Results[0].CourseID, res.Results[1].CourseID, res.Results[2].CourseID,
		res.Results[3].CourseID, res.Results[4].CourseID,
	})
	assert.Equal(t, 5, throttle.calls)
	assert.Equal(t, 7, remote.count(schedulePath))
	assert.Equal(t, 5, remote.count(signPath))
	assert.Equal(t, 2, journal.Count(LevelError))

	level, status := journal.CurrentStatus()
	assert.Equal(t, LevelWarning, level)
	assert.Equal(t, "一键打卡完成: 成功 3 / 5 门课程", status)
}

func TestBatchSignWeek_DayFailureContinues(t *testing.T) {
	remote := batchRemote()
	inner := remote.schedule
	remote.schedule = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dateStr") == "20250903" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		inner(w, r)
	}
	svc, _ := newTestService(t, remote)
	loggedIn(svc)

	res, err := svc.BatchSignWeek(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalCount)
	assert.Equal(t, 2, res.SuccessCount)
}

func TestBatchSignWeek_AllSucceed(t *testing.T) {
	remote := &fakeRemote{
		schedule: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"STATUS": "0", "result": []any{course("x-"+r.URL.Query().Get("dateStr"), "体育")}})
		},
	}
	svc, journal := newTestService(t, remote)
	loggedIn(svc)

	res, err := svc.BatchSignWeek(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 7, res.TotalCount)
	assert.Equal(t, 7, res.SuccessCount)
	assert.Equal(t, BatchSuccess, res.Status())
	assert.Equal(t, 3, svc.SelectedWeek())

	level, _ := journal.CurrentStatus()
	assert.Equal(t, LevelSuccess, level)
}

func TestBatchSignWeek_Preconditions(t *testing.T) {
	remote := &fakeRemote{}

	svc, _ := newTestService(t, remote)
	_, err := svc.BatchSignWeek(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	svc, journal := newTestService(t, remote, WithBatchSign(false))
	loggedIn(svc)
	res, err := svc.BatchSignWeek(context.Background(), 1)
	assert.ErrorIs(t, err, ErrFeatureDisabled)
	assert.Zero(t, res.TotalCount)

	level, status := journal.CurrentStatus()
	assert.Equal(t, LevelWarning, level)
	assert.Equal(t, "一键打卡功能已禁用", status)
	assert.Zero(t, remote.count(""))
}

type cancelOnWait struct {
	cancel context.CancelFunc
}

func (c cancelOnWait) Wait(ctx context.Context) error {
	c.cancel()
	return ctx.Err()
}

func TestBatchSignWeek_StopsWhenCancelled(t *testing.T) {
	remote := batchRemote()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, _ := newTestService(t, remote, WithThrottle(cancelOnWait{cancel: cancel}))
	loggedIn(svc)

	res, err := svc.BatchSignWeek(ctx, 1)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, res.TotalCount)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, remote.count(signPath))
}

func TestBatchSignWeek_CancelledDuringDayFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote := batchRemote()
	remote.schedule = cancelDuring("20250903", cancel, remote.schedule)
	svc, journal := newTestService(t, remote)
	loggedIn(svc)

	res, err := svc.BatchSignWeek(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 3, remote.count(schedulePath))

	for _, e := range journal.Entries() {
		assert.NotContains(t, e.Message, "获取 20250903 课程失败")
	}
	level, _ := journal.CurrentStatus()
	assert.Equal(t, LevelError, level)
}

func TestEndpointsFor(t *testing.T) {
	e, err := EndpointsFor("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoints(), e)

	e, err = EndpointsFor("https://proxy.example.com/iclass/")
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example.com/iclass/app/user/login.action", e.Login)
	assert.Equal(t, "https://proxy.example.com/iclass/app/course/get_stu_course_sched.action", e.Schedule)
	assert.Equal(t, "https://proxy.example.com/iclass/app/course/stu_scan_sign.action", e.Sign)

	_, err = EndpointsFor("not a url")
	assert.ErrorIs(t, err, ErrValidation)
}
