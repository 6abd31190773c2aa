package portal

import (
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultLoginURL    = "https://iclass.buaa.edu.cn:8346/app/user/login.action"
	defaultScheduleURL = "https://iclass.buaa.edu.cn:8346/app/course/get_stu_course_sched.action"
	defaultSignURL     = "http://iclass.buaa.edu.cn:8081/app/course/stu_scan_sign.action"
)

type Endpoints struct {
	Login    string
	Schedule string
	Sign     string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:    defaultLoginURL,
		Schedule: defaultScheduleURL,
		Sign:     defaultSignURL,
	}
}

// EndpointsFor resolves the three API paths against base. An empty base
// returns the defaults.
func EndpointsFor(base string) (Endpoints, error) {
	if strings.TrimSpace(base) == "" {
		return DefaultEndpoints(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return Endpoints{}, &Error{Code: ErrValidation, Message: "invalid base url", Err: err}
	}
	if b.Scheme == "" || b.Host == "" {
		return Endpoints{}, newError(ErrValidation, "base url must be absolute: "+base)
	}
	b.Path = strings.TrimSuffix(b.Path, "/")

	resolve := func(def string) string {
		d, _ := url.Parse(def)
		u := *b
		u.Path = b.Path + d.Path
		return u.String()
	}
	return Endpoints{
		Login:    resolve(defaultLoginURL),
		Schedule: resolve(defaultScheduleURL),
		Sign:     resolve(defaultSignURL),
	}, nil
}

type LoginInput struct {
	StudentID string `validate:"required"`
	Year      int    `validate:"gte=2000,lte=2100"`
	Month     int    `validate:"gte=1,lte=12"`
	Day       int    `validate:"gte=1,lte=31"`
}

// Service holds one session and drives every remote operation. It is not
// safe for concurrent use; callers run one operation at a time.
type Service struct {
	client    *Client
	endpoints Endpoints
	reporter  Reporter
	throttle  Throttle
	now       func() time.Time
	batchSign bool
	validate  *validator.Validate

	session       Session
	semesterStart Date
	selectedWeek  int
}

type Option func(*Service)

func WithEndpoints(e Endpoints) Option {
	return func(s *Service) { s.endpoints = e }
}

func WithReporter(r Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

func WithThrottle(t Throttle) Option {
	return func(s *Service) { s.throttle = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithBatchSign(enabled bool) Option {
	return func(s *Service) { s.batchSign = enabled }
}

func WithSemesterStart(d Date) Option {
	return func(s *Service) { s.semesterStart = d }
}

func NewService(client *Client, opts ...Option) *Service {
	s := &Service{
		client:        client,
		endpoints:     DefaultEndpoints(),
		reporter:      NopReporter{},
		throttle:      Delay(DefaultSignDelay),
		now:           time.Now,
		batchSign:     true,
		validate:      validator.New(),
		semesterStart: NewDate(2025, 9, 1),
		selectedWeek:  MinWeek,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Session() Session {
	return s.session
}

func (s *Service) SemesterStart() Date {
	return s.semesterStart
}

func (s *Service) SelectedWeek() int {
	return s.selectedWeek
}

func (s *Service) BatchSignEnabled() bool {
	return s.batchSign
}

// WeekDates returns the dates of week n relative to the current semester
// start, in the local time zone.
func (s *Service) WeekDates(n int) [daysPerWeek]time.Time {
	return WeekDates(s.semesterStart, n, s.now().Location())
}

func (s *Service) CurrentWeek() int {
	return CurrentWeekNumber(s.semesterStart, s.now())
}

func (s *Service) status(level Level, msg string) {
	s.reporter.Status(level, msg)
}

func (s *Service) log(level Level, msg string) {
	s.reporter.Log(LogEntry{Time: s.now(), Level: level, Message: msg})
}

func (s *Service) report(level Level, msg string) {
	s.status(level, msg)
	s.log(level, msg)
}
