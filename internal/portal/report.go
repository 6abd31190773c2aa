package portal

import (
	"sync"
	"time"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l Level) Icon() string {
	switch l {
	case LevelSuccess:
		return "✅"
	case LevelWarning:
		return "⚠️"
	case LevelError:
		return "❌"
	default:
		return "ℹ️"
	}
}

type LogEntry struct {
	Time    time.Time
	Level   Level
	Message string
}

// Reporter receives the user-facing output of every operation: a single
// current status line and an append-only log stream.
type Reporter interface {
	Status(level Level, msg string)
	Log(entry LogEntry)
}

type NopReporter struct{}

func (NopReporter) Status(Level, string) {}
func (NopReporter) Log(LogEntry)         {}

// Journal is a Reporter that keeps everything in memory. Adapters that
// render asynchronously poll CurrentStatus and Entries.
type Journal struct {
	mu      sync.Mutex
	level   Level
	status  string
	entries []LogEntry
	loading int
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Status(level Level, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.level = level
	j.status = msg
}

func (j *Journal) Log(entry LogEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// SetLoading lets a Journal double as the client's loading indicator.
func (j *Journal) SetLoading(loading bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if loading {
		j.loading++
	} else if j.loading > 0 {
		j.loading--
	}
}

func (j *Journal) Loading() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.loading > 0
}

func (j *Journal) CurrentStatus() (Level, string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.level, j.status
}

func (j *Journal) Entries() []LogEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]LogEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Count returns how many entries were logged at level.
func (j *Journal) Count(level Level) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, e := range j.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func truncateText(s string, maxLen int) string {
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return s
}

// Truncate shortens s to maxLen runes, ending in "..." when cut.
func Truncate(s string, maxLen int) string {
	return truncateText(s, maxLen)
}
