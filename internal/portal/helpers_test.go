package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	loginPath    = "/app/user/login.action"
	schedulePath = "/app/course/get_stu_course_sched.action"
	signPath     = "/app/course/stu_scan_sign.action"
)

// fakeRemote stands in for the iClass API. Handlers left nil answer with a
// successful empty response.
type fakeRemote struct {
	mu       sync.Mutex
	requests []*http.Request

	login    http.HandlerFunc
	schedule http.HandlerFunc
	sign     http.HandlerFunc
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	f.mu.Unlock()

	var h http.HandlerFunc
	switch r.URL.Path {
	case loginPath:
		h = f.login
	case schedulePath:
		h = f.schedule
	case signPath:
		h = f.sign
	default:
		http.NotFound(w, r)
		return
	}
	if h == nil {
		writeJSON(w, map[string]any{"STATUS": "0"})
		return
	}
	h(w, r)
}

func (f *fakeRemote) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if path == "" || r.URL.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeRemote) last(path string) *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].URL.Path == path {
			return f.requests[i]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func course(id, name string) map[string]any {
	return map[string]any{
		"id":             id,
		"courseName":     name,
		"classroomName":  "主M101",
		"teacherName":    "张老师",
		"classBeginTime": "2025-09-01 08:00:00",
		"classEndTime":   "2025-09-01 09:35:00",
	}
}

// fixedNow is Wednesday of week 2 for a semester starting 2025-09-01.
var fixedNow = time.Date(2025, 9, 10, 10, 0, 0, 0, time.Local)

type countingThrottle struct {
	calls int
}

func (c *countingThrottle) Wait(ctx context.Context) error {
	c.calls++
	return ctx.Err()
}

func newTestService(t *testing.T, remote *fakeRemote, opts ...Option) (*Service, *Journal) {
	t.Helper()

	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	endpoints, err := EndpointsFor(srv.URL)
	require.NoError(t, err)

	journal := NewJournal()
	client := NewClient(2*time.Second, 3)
	client.Loading = journal

	base := []Option{
		WithEndpoints(endpoints),
		WithReporter(journal),
		WithThrottle(NoThrottle),
		WithClock(func() time.Time { return fixedNow }),
		WithSemesterStart(NewDate(2025, 9, 1)),
	}
	return NewService(client, append(base, opts...)...), journal
}

func loggedIn(s *Service) *Service {
	s.session = Session{UserID: "u-1", SessionID: "token-1"}
	return s
}
