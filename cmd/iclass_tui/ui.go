package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/feelsunbreeze/iclass_portal_tui/internal/config"
	"github.com/feelsunbreeze/iclass_portal_tui/internal/portal"
	"github.com/feelsunbreeze/iclass_portal_tui/internal/profile"
)

const (
	WHITE       = lipgloss.Color("#FFFFFF")
	BLUE        = lipgloss.Color("#0043a8")
	GREY        = lipgloss.Color("#626262")
	LAVENDER    = lipgloss.Color("#B8B8FF")
	GREEN       = lipgloss.Color("#50FA7B")
	LIGHT_GREEN = lipgloss.Color("#B9FBC0")
	RED         = lipgloss.Color("#FF5555")
	YELLOW      = lipgloss.Color("#F1FA8C")
	LIGHT_BLUE  = lipgloss.Color("#8BE9FD")
	TURQUOISE   = lipgloss.Color("#98F5E1")
	SILVER      = lipgloss.Color("#A9B2D8")
)

type ViewType int

const (
	LoginView ViewType = iota
	LoadingView
	WeekView
	LogView
)

type LoginResultMsg struct {
	Schedule *portal.WeekSchedule
	Err      error
}

type WeekLoadedMsg struct {
	Schedule *portal.WeekSchedule
	Err      error
}

type SignResultMsg struct {
	Result portal.SignResult
	Err    error
}

type BatchResultMsg struct {
	Result portal.BatchResult
	Err    error
}

type ExportResultMsg struct {
	Path  string
	Count int
	Err   error
}

type LoadingState struct {
	Reason     string
	HelpText   string
	BottomText string
}

type loginForm struct {
	StudentID string
	Year      string
	Month     string
	Day       string
}

type model struct {
	width        int
	height       int
	currentView  ViewType
	form         loginForm
	rememberMe   bool
	focusedField int
	loadingState LoadingState
	spinner      spinner.Model

	ctx     context.Context
	cancel  context.CancelFunc
	cfg     *config.Config
	service *portal.Service
	journal *portal.Journal

	schedule       *portal.WeekSchedule
	selectedDay    int
	selectedCourse int
	lastErr        error

	logTable table.Model
}

const (
	fieldStudentID = iota
	fieldYear
	fieldMonth
	fieldDay
	fieldRememberMe
	fieldLoginButton
	fieldCount
)

func NewModel(cfg *config.Config, svc *portal.Service, journal *portal.Journal) model {
	start := cfg.SemesterStart
	form := loginForm{
		Year:  strconv.Itoa(start.Year),
		Month: strconv.Itoa(start.Month),
		Day:   strconv.Itoa(start.Day),
	}

	startView := LoginView
	var shouldAutoLogin bool
	if p, err := profile.Load(); err == nil && p.StudentID != "" {
		form = loginForm{
			StudentID: p.StudentID,
			Year:      strconv.Itoa(p.Year),
			Month:     strconv.Itoa(p.Month),
			Day:       strconv.Itoa(p.Day),
		}
		startView = LoadingView
		shouldAutoLogin = true
	}

	s := spinner.New()
	s.Style = lipgloss.NewStyle().Foreground(BLUE)
	s.Spinner = spinner.Points

	ctx, cancel := context.WithCancel(context.Background())

	return model{
		currentView:  startView,
		form:         form,
		focusedField: fieldStudentID,
		rememberMe:   shouldAutoLogin,
		spinner:      s,
		ctx:          ctx,
		cancel:       cancel,
		cfg:          cfg,
		service:      svc,
		journal:      journal,
		logTable:     newLogTable(),
		loadingState: LoadingState{
			Reason:     "🔐 Logging in, please wait",
			HelpText:   "Signing in with your remembered student ID",
			BottomText: "• Q: Cancel and quit",
		},
	}
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd

	cmds = append(cmds, m.spinner.Tick)

	if m.currentView == LoadingView && m.form.StudentID != "" {
		cmds = append(cmds, m.loginCmd())
	}

	return tea.Batch(cmds...)
}

func (m model) loginInput() (portal.LoginInput, error) {
	year, err := strconv.Atoi(strings.TrimSpace(m.form.Year))
	if err != nil {
		return portal.LoginInput{}, fmt.Errorf("invalid year %q", m.form.Year)
	}
	month, err := strconv.Atoi(strings.TrimSpace(m.form.Month))
	if err != nil {
		return portal.LoginInput{}, fmt.Errorf("invalid month %q", m.form.Month)
	}
	day, err := strconv.Atoi(strings.TrimSpace(m.form.Day))
	if err != nil {
		return portal.LoginInput{}, fmt.Errorf("invalid day %q", m.form.Day)
	}
	return portal.LoginInput{StudentID: m.form.StudentID, Year: year, Month: month, Day: day}, nil
}

func (m model) loginCmd() tea.Cmd {
	in, err := m.loginInput()
	if err != nil {
		return func() tea.Msg { return LoginResultMsg{Err: err} }
	}
	svc, ctx, remember := m.service, m.ctx, m.rememberMe
	return func() tea.Msg {
		sched, err := svc.Login(ctx, in)
		if svc.Session().LoggedIn() {
			if remember {
				profile.Save(profile.Profile{StudentID: strings.TrimSpace(in.StudentID), Year: in.Year, Month: in.Month, Day: in.Day})
			} else {
				profile.Delete()
			}
		}
		return LoginResultMsg{Schedule: sched, Err: err}
	}
}

func (m model) weekCmd(load func(context.Context) (*portal.WeekSchedule, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		sched, err := load(ctx)
		return WeekLoadedMsg{Schedule: sched, Err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case LoginResultMsg:
		m.lastErr = msg.Err
		if m.service.Session().LoggedIn() {
			m.setSchedule(msg.Schedule)
			m.currentView = WeekView
		} else {
			m.currentView = LoginView
		}

	case WeekLoadedMsg:
		m.lastErr = msg.Err
		if msg.Schedule != nil {
			m.setSchedule(msg.Schedule)
		}
		m.currentView = WeekView

	case SignResultMsg:
		m.lastErr = msg.Err
		m.currentView = WeekView

	case BatchResultMsg:
		m.lastErr = msg.Err
		m.currentView = WeekView

	case ExportResultMsg:
		m.lastErr = msg.Err
		if msg.Err == nil {
			m.journal.Status(portal.LevelSuccess, fmt.Sprintf("已导出 %d 门课程到 %s", msg.Count, msg.Path))
		} else {
			m.journal.Status(portal.LevelError, "导出失败: "+msg.Err.Error())
		}
		m.currentView = WeekView

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m *model) setSchedule(s *portal.WeekSchedule) {
	m.schedule = s
	m.selectedDay = 0
	m.selectedCourse = 0
	if s == nil {
		return
	}
	today := time.Now()
	for i, d := range s.Dates {
		if portal.SameDay(d, today) {
			m.selectedDay = i
		}
	}
}

func (m model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.currentView {
	case LoginView:
		return m.handleLoginKeys(msg)
	case LoadingView:
		return m.handleLoadingKeys(msg)
	case WeekView:
		return m.handleWeekKeys(msg)
	case LogView:
		return m.handleLogKeys(msg)
	default:
		return m, nil
	}
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

func (m model) handleLoadingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	}
	return m, nil
}

func (m *model) focusedValue() *string {
	switch m.focusedField {
	case fieldStudentID:
		return &m.form.StudentID
	case fieldYear:
		return &m.form.Year
	case fieldMonth:
		return &m.form.Month
	case fieldDay:
		return &m.form.Day
	}
	return nil
}

func (m model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "tab", "down":
		m.focusedField = (m.focusedField + 1) % fieldCount

	case "shift+tab", "up":
		m.focusedField = (m.focusedField - 1 + fieldCount) % fieldCount

	case "enter":
		switch m.focusedField {
		case fieldRememberMe:
			m.rememberMe = !m.rememberMe
		case fieldLoginButton:
			m.setLoadingState("🔐 Logging in, please wait", "Authenticating your student ID with iClass", "• Q: Cancel and quit")
			m.currentView = LoadingView
			return m, tea.Batch(m.spinner.Tick, m.loginCmd())
		default:
			m.focusedField++
		}

	case " ":
		if m.focusedField == fieldRememberMe {
			m.rememberMe = !m.rememberMe
		}

	case "backspace":
		if v := m.focusedValue(); v != nil && len(*v) > 0 {
			r := []rune(*v)
			*v = string(r[:len(r)-1])
		}

	default:
		if v := m.focusedValue(); v != nil && msg.Type == tea.KeyRunes {
			if m.focusedField == fieldStudentID || allDigits(msg.Runes) {
				*v += string(msg.Runes)
			}
		} else if msg.String() == "q" {
			return m.quit()
		}
	}
	return m, nil
}

func allDigits(rs []rune) bool {
	for _, r := range rs {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (m model) selectedCourseEntry() (portal.CourseEntry, bool) {
	if m.schedule == nil {
		return portal.CourseEntry{}, false
	}
	day := m.schedule.Days[m.selectedDay]
	if m.selectedCourse < 0 || m.selectedCourse >= len(day) {
		return portal.CourseEntry{}, false
	}
	return day[m.selectedCourse], true
}

func (m model) handleWeekKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	week := m.service.SelectedWeek()

	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()

	case "left", "h":
		if m.selectedDay > 0 {
			m.selectedDay--
			m.selectedCourse = 0
		}

	case "right", "l":
		if m.selectedDay < 6 {
			m.selectedDay++
			m.selectedCourse = 0
		}

	case "up", "k":
		if m.selectedCourse > 0 {
			m.selectedCourse--
		}

	case "down", "j":
		if m.schedule != nil && m.selectedCourse < len(m.schedule.Days[m.selectedDay])-1 {
			m.selectedCourse++
		}

	case "[", "p":
		if week <= portal.MinWeek {
			return m, nil
		}
		m.setLoadingState(fmt.Sprintf("📅 Loading week %d...", week-1), "Fetching the schedule day by day", "• Q: Cancel and quit")
		m.currentView = LoadingView
		return m, tea.Batch(m.spinner.Tick, m.weekCmd(m.service.PreviousWeek))

	case "]", "n":
		if week >= portal.MaxWeek {
			return m, nil
		}
		m.setLoadingState(fmt.Sprintf("📅 Loading week %d...", week+1), "Fetching the schedule day by day", "• Q: Cancel and quit")
		m.currentView = LoadingView
		return m, tea.Batch(m.spinner.Tick, m.weekCmd(m.service.NextWeek))

	case "t":
		m.setLoadingState("📅 Jumping to the current week...", "Fetching the schedule day by day", "• Q: Cancel and quit")
		m.currentView = LoadingView
		return m, tea.Batch(m.spinner.Tick, m.weekCmd(m.service.JumpToCurrentWeek))

	case "r":
		svc := m.service
		m.setLoadingState(fmt.Sprintf("🔄 Refreshing week %d...", week), "Fetching the schedule day by day", "• Q: Cancel and quit")
		m.currentView = LoadingView
		return m, tea.Batch(m.spinner.Tick, m.weekCmd(func(ctx context.Context) (*portal.WeekSchedule, error) {
			return svc.LoadWeek(ctx, week)
		}))

	case "enter", "s":
		course, ok := m.selectedCourseEntry()
		if !ok {
			return m, nil
		}
		svc, ctx := m.service, m.ctx
		m.setLoadingState(fmt.Sprintf("✍️ Checking in to %s...", course.DisplayName()), "Submitting attendance", "• Q: Cancel and quit")
		m.currentView = LoadingView
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			res, err := svc.SignCourse(ctx, course)
			return SignResultMsg{Result: res, Err: err}
		})

	case "b":
		if !m.service.BatchSignEnabled() {
			m.journal.Status(portal.LevelWarning, "一键打卡功能已禁用")
			return m, nil
		}
		svc, ctx := m.service, m.ctx
		m.setLoadingState(fmt.Sprintf("✍️ Checking in to every course of week %d...", week), "Courses are signed one at a time", "• Q: Stop and quit")
		m.currentView = LoadingView
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			res, err := svc.BatchSignWeek(ctx, week)
			return BatchResultMsg{Result: res, Err: err}
		})

	case "e":
		sched := m.schedule
		if sched == nil {
			return m, nil
		}
		return m, func() tea.Msg {
			path, count, err := exportWeek(sched)
			return ExportResultMsg{Path: path, Count: count, Err: err}
		}

	case "g":
		m.refreshLogTable()
		m.currentView = LogView

	case "o":
		m.resetToLogin()
	}
	return m, nil
}

func exportWeek(sched *portal.WeekSchedule) (string, int, error) {
	doc, count, err := portal.ExportICS(sched, time.Local)
	if err != nil {
		return "", 0, err
	}
	path := filepath.Join(".", fmt.Sprintf("iclass_week_%02d.ics", sched.Week))
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return "", 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, count, nil
}

func (m model) handleLogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	case "esc", "g":
		m.currentView = WeekView
	case "up", "k", "down", "j", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.logTable, cmd = m.logTable.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) setLoadingState(reason, helpText, bottomText string) {
	m.loadingState = LoadingState{
		Reason:     reason,
		HelpText:   helpText,
		BottomText: bottomText,
	}
}

func (m *model) resetToLogin() {
	profile.Delete()
	m.service.Logout()
	m.rememberMe = false
	m.currentView = LoginView
	m.form.StudentID = ""
	m.focusedField = fieldStudentID
	m.schedule = nil
	m.selectedDay = 0
	m.selectedCourse = 0
	m.lastErr = nil
}

func (m model) View() string {
	switch m.currentView {
	case LoginView:
		return m.renderLogin()
	case LoadingView:
		return m.renderLoading()
	case WeekView:
		return m.renderWeek()
	case LogView:
		return m.renderLog()
	default:
		return "Unknown view"
	}
}

func levelColor(level portal.Level) lipgloss.Color {
	switch level {
	case portal.LevelSuccess:
		return GREEN
	case portal.LevelWarning:
		return YELLOW
	case portal.LevelError:
		return RED
	default:
		return LIGHT_BLUE
	}
}

func (m model) renderStatus() string {
	level, status := m.journal.CurrentStatus()
	if status == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(levelColor(level)).Render(fmt.Sprintf("%s %s", level.Icon(), status))
}

func (m model) renderLogin() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(LIGHT_BLUE).
		MarginBottom(2)

	labelStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(WHITE)

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(WHITE).
		Padding(0, 1).
		Width(30).
		MarginBottom(1)

	focusedInputStyle := inputStyle.
		BorderForeground(BLUE)

	checkboxStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(WHITE)

	focusedStyle := checkboxStyle.
		Foreground(BLUE)

	buttonStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(WHITE).
		Padding(0, 2).
		Margin(1, 0).
		Border(lipgloss.RoundedBorder())

	focusedButtonStyle := buttonStyle.
		Background(BLUE)

	helpStyle := lipgloss.NewStyle().
		Foreground(GREY)

	title := titleStyle.Render("iClass Check-in TUI")

	field := func(label, value, placeholder string, idx, width int) string {
		style := inputStyle.Width(width)
		if m.focusedField == idx {
			value += "│"
			style = focusedInputStyle.Width(width)
		} else if value == "" {
			value = placeholder
		}
		return lipgloss.JoinVertical(lipgloss.Left, labelStyle.Render(label), style.Render(value))
	}

	studentIDField := field("Student ID:", m.form.StudentID, "Enter your student ID", fieldStudentID, 30)
	dateRow := lipgloss.JoinHorizontal(lipgloss.Top,
		field("Year:", m.form.Year, "YYYY", fieldYear, 8),
		" ",
		field("Month:", m.form.Month, "MM", fieldMonth, 6),
		" ",
		field("Day:", m.form.Day, "DD", fieldDay, 6),
	)
	dateLabel := labelStyle.Foreground(SILVER).Render("Semester starts on")

	checkboxChar := "○"
	if m.rememberMe {
		checkboxChar = "●"
	}

	var rememberMeField string
	if m.focusedField == fieldRememberMe {
		rememberMeField = focusedStyle.Render(fmt.Sprintf("%s Remember me", checkboxChar))
	} else {
		rememberMeField = checkboxStyle.Render(fmt.Sprintf("%s Remember me", checkboxChar))
	}

	var loginButton string
	if m.focusedField == fieldLoginButton {
		loginButton = focusedButtonStyle.Render("Login")
	} else {
		loginButton = buttonStyle.Render("Login")
	}

	var errText string
	if m.lastErr != nil {
		errText = lipgloss.NewStyle().Foreground(RED).Render("❌ " + m.lastErr.Error())
	}

	helpText := helpStyle.Render("• ↑/↓: Navigate • Enter/Space: Select • Ctrl+C: Quit")

	content := lipgloss.JoinVertical(lipgloss.Center, title, studentIDField, dateLabel, dateRow, rememberMeField, loginButton, errText, "", helpText)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m model) renderLoading() string {
	reasonStyle := lipgloss.NewStyle().
		Foreground(WHITE).
		Bold(true).
		MarginBottom(1)

	helpStyle := lipgloss.NewStyle().
		Foreground(GREY).
		MarginTop(1)

	quitStyle := lipgloss.NewStyle().
		Foreground(GREY).
		MarginTop(1)

	content := lipgloss.JoinVertical(lipgloss.Center,
		reasonStyle.Render(m.loadingState.Reason),
		m.spinner.View(),
		m.renderStatus(),
		helpStyle.Render(m.loadingState.HelpText),
		quitStyle.Render(m.loadingState.BottomText),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m model) columnWidth() int {
	w := (m.width - 8) / 7
	return max(16, min(w, 24))
}

func (m model) renderWeek() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(LIGHT_BLUE).
		MarginBottom(1)

	helpStyle := lipgloss.NewStyle().
		Foreground(GREY).
		MarginTop(1)

	if m.schedule == nil {
		content := lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render("📅 No schedule loaded"),
			m.renderStatus(),
			helpStyle.Render("• T: Current week • R: Reload • G: Log • O: Log out • Q: Quit"),
		)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}

	width := m.columnWidth()
	today := time.Now()

	headerStyle := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(WHITE)

	todayHeaderStyle := headerStyle.
		Bold(true).
		Background(BLUE)

	cardStyle := lipgloss.NewStyle().
		Width(width-2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(GREY)

	selectedCardStyle := cardStyle.
		BorderForeground(LIGHT_BLUE)

	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(TURQUOISE)
	infoStyle := lipgloss.NewStyle().Foreground(SILVER)
	emptyStyle := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(GREY).MarginTop(1)

	var columns []string
	for i, date := range m.schedule.Dates {
		hs := headerStyle
		if portal.SameDay(date, today) {
			hs = todayHeaderStyle
		}
		cells := []string{hs.Render(portal.WeekdayLabel(i) + "\n" + portal.FormatDisplayDate(date))}

		courses := m.schedule.Days[i]
		if len(courses) == 0 {
			cells = append(cells, emptyStyle.Render("无课程安排"))
		}
		for j, c := range courses {
			body := lipgloss.JoinVertical(lipgloss.Left,
				nameStyle.Render(portal.Truncate(c.DisplayName(), 12)),
				infoStyle.Render(fmt.Sprintf("🕒 %s - %s", c.DisplayBegin(), c.DisplayEnd())),
				infoStyle.Render("📍 "+portal.Truncate(c.DisplayClassroom(), 12)),
				infoStyle.Render("👤 "+portal.Truncate(c.DisplayTeacher(), 10)),
			)
			if i == m.selectedDay && j == m.selectedCourse {
				cells = append(cells, selectedCardStyle.Render(body))
			} else {
				cells = append(cells, cardStyle.Render(body))
			}
		}
		if i == m.selectedDay && len(courses) == 0 {
			cells[0] = hs.Underline(true).Render(portal.WeekdayLabel(i) + "\n" + portal.FormatDisplayDate(date))
		}
		columns = append(columns, lipgloss.JoinVertical(lipgloss.Center, cells...))
	}

	grid := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	session := m.service.Session()
	title := titleStyle.Render(fmt.Sprintf("📅 第 %d 周 | %d 门课程 | 用户 %s | 学期开始 %s",
		m.schedule.Week, m.schedule.Total(), session.UserID, m.service.SemesterStart()))

	help := "• ←/→ ↑/↓: Select • Enter/S: Check in • B: Check in whole week • [/]: Prev/Next week • T: Current week • R: Reload • E: Export .ics • G: Log • O: Log out • Q: Quit"
	if !m.service.BatchSignEnabled() {
		help = strings.Replace(help, " • B: Check in whole week", "", 1)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		grid,
		"",
		m.renderStatus(),
		helpStyle.Render(help),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func newLogTable() table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 10},
		{Title: "Level", Width: 8},
		{Title: "Message", Width: 70},
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithHeight(15),
		table.WithFocused(true),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(BLUE).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(WHITE).
		Background(BLUE).
		Bold(true)
	tbl.SetStyles(s)

	return tbl
}

func (m *model) refreshLogTable() {
	entries := m.journal.Entries()
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			e.Time.Format("15:04:05"),
			e.Level.Icon() + " " + e.Level.String(),
			e.Message,
		})
	}
	m.logTable.SetRows(rows)
	m.logTable.GotoBottom()
}

func (m model) renderLog() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(LIGHT_BLUE).
		MarginBottom(1)

	helpStyle := lipgloss.NewStyle().
		Foreground(GREY).
		MarginTop(1)

	summaryStyle := lipgloss.NewStyle().Foreground(LAVENDER)

	summary := summaryStyle.Render(fmt.Sprintf("%d entries | %d errors",
		len(m.journal.Entries()), m.journal.Count(portal.LevelError)))

	content := lipgloss.JoinVertical(lipgloss.Center,
		headerStyle.Render("📜 Activity log"),
		summary,
		m.logTable.View(),
		helpStyle.Render("• ↑/↓: Scroll • Esc/G: Back • Q: Quit"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
