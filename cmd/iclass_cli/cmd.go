package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/feelsunbreeze/iclass_portal_tui/internal/portal"
)

var errHelp = errors.New("help provided")

// consoleReporter prints the log stream as it happens and remembers the
// last status line for the summary.
type consoleReporter struct {
	logger *log.Logger
	level  portal.Level
	status string
}

func (r *consoleReporter) Status(level portal.Level, msg string) {
	r.level = level
	r.status = msg
}

func (r *consoleReporter) Log(e portal.LogEntry) {
	r.logger.Printf("[%s] %s %s", e.Time.Format("15:04:05"), e.Level.Icon(), e.Message)
}

type commandLine struct {
	svc      *portal.Service
	reporter *consoleReporter
	out      io.Writer
	start    portal.Date
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  week   -id STUDENT_ID [-start YYYY-MM-DD] [-week N]        - show a week's schedule (default: current week)")
	fmt.Fprintln(cli.out, "  sign   -id STUDENT_ID -course COURSE_SCHED_ID [-name NAME] - check in to one course")
	fmt.Fprintln(cli.out, "  batch  -id STUDENT_ID [-start YYYY-MM-DD] [-week N]        - check in to every course of a week")
	fmt.Fprintln(cli.out, "  export -id STUDENT_ID [-start YYYY-MM-DD] [-week N] [-out FILE] - write a week as .ics")
}

type commonFlags struct {
	fs    *flag.FlagSet
	id    *string
	start *string
	week  *int
}

func (cli *commandLine) newFlagSet(name string) commonFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return commonFlags{
		fs:    fs,
		id:    fs.String("id", "", "Student ID used to log in."),
		start: fs.String("start", cli.start.String(), "Semester start date (YYYY-MM-DD)."),
		week:  fs.Int("week", 0, "Week number 1-18; 0 means the current week."),
	}
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		cli.printUsage()
		return errHelp
	}

	switch args[0] {
	case "week":
		f := cli.newFlagSet("week")
		if err := f.fs.Parse(args[1:]); err != nil {
			return err
		}
		sched, err := cli.loginAndLoad(ctx, f)
		if err != nil {
			return err
		}
		cli.printWeek(sched)
		return nil

	case "sign":
		f := cli.newFlagSet("sign")
		course := f.fs.String("course", "", "Course schedule id to check in to.")
		name := f.fs.String("name", "", "Course name shown in the log.")
		if err := f.fs.Parse(args[1:]); err != nil {
			return err
		}
		if *course == "" {
			f.fs.Usage()
			return errHelp
		}
		if _, err := cli.login(ctx, f); err != nil {
			return err
		}
		res, err := cli.svc.SignCourse(ctx, portal.CourseEntry{ID: *course, CourseName: *name})
		if err != nil {
			return err
		}
		if !res.Success() {
			return fmt.Errorf("check-in failed: %s", res.Detail)
		}
		fmt.Fprintf(cli.out, "%s %s\n", portal.LevelSuccess.Icon(), cli.reporter.status)
		return nil

	case "batch":
		f := cli.newFlagSet("batch")
		if err := f.fs.Parse(args[1:]); err != nil {
			return err
		}
		if _, err := cli.login(ctx, f); err != nil {
			return err
		}
		res, err := cli.svc.BatchSignWeek(ctx, cli.weekOrCurrent(*f.week))
		fmt.Fprintf(cli.out, "%d / %d (%s)\n", res.SuccessCount, res.TotalCount, res.Status())
		return err

	case "export":
		f := cli.newFlagSet("export")
		out := f.fs.String("out", "", "Output file (default iclass_week_NN.ics).")
		if err := f.fs.Parse(args[1:]); err != nil {
			return err
		}
		sched, err := cli.loginAndLoad(ctx, f)
		if err != nil {
			return err
		}
		doc, count, err := portal.ExportICS(sched, time.Local)
		if err != nil {
			return err
		}
		path := *out
		if path == "" {
			path = fmt.Sprintf("iclass_week_%02d.ics", sched.Week)
		}
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cli.out, "exported %d courses to %s\n", count, path)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) weekOrCurrent(n int) int {
	if n == 0 {
		return cli.svc.CurrentWeek()
	}
	return n
}

// login signs in and returns the current week, which Login always loads.
func (cli *commandLine) login(ctx context.Context, f commonFlags) (*portal.WeekSchedule, error) {
	if *f.id == "" {
		f.fs.Usage()
		return nil, errHelp
	}
	start, err := time.Parse("2006-01-02", *f.start)
	if err != nil {
		return nil, fmt.Errorf("invalid -start %q: %w", *f.start, err)
	}
	sched, err := cli.svc.Login(ctx, portal.LoginInput{
		StudentID: *f.id,
		Year:      start.Year(),
		Month:     int(start.Month()),
		Day:       start.Day(),
	})
	if err != nil && !cli.svc.Session().LoggedIn() {
		return nil, err
	}
	return sched, err
}

func (cli *commandLine) loginAndLoad(ctx context.Context, f commonFlags) (*portal.WeekSchedule, error) {
	sched, err := cli.login(ctx, f)
	if err != nil {
		return nil, err
	}
	if *f.week == 0 || *f.week == sched.Week {
		return sched, nil
	}
	return cli.svc.LoadWeek(ctx, *f.week)
}

func (cli *commandLine) printWeek(sched *portal.WeekSchedule) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("日期", "课程", "时间", "地点", "教师", "ID")

	for i, date := range sched.Dates {
		day := fmt.Sprintf("%s %s", portal.WeekdayLabel(i), portal.FormatDisplayDate(date))
		courses := sched.Days[i]
		if len(courses) == 0 {
			t.Row(day, "无课程安排", "", "", "", "")
			continue
		}
		for _, c := range courses {
			t.Row(day,
				c.DisplayName(),
				fmt.Sprintf("%s - %s", c.DisplayBegin(), c.DisplayEnd()),
				c.DisplayClassroom(),
				c.DisplayTeacher(),
				c.ID,
			)
		}
	}

	fmt.Fprintf(cli.out, "第 %d 周 (%d 门课程)\n", sched.Week, sched.Total())
	fmt.Fprintln(cli.out, t.Render())
}
